package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/config"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/services"
)

// unreadCacheTTL bounds staleness of the cached unread counter.
const unreadCacheTTL = 5 * time.Minute

// NotificationRepository is the Mongo implementation of
// services.NotificationStore, with an optional Redis cache for the unread
// counter shown on every page load.
type NotificationRepository struct {
	collection *mongo.Collection
	cache      *redis.Client // may be nil; counts then always hit Mongo
}

// NewNotificationRepository creates the repository. cache may be nil.
func NewNotificationRepository(db *mongo.Client, cache *redis.Client) *NotificationRepository {
	return &NotificationRepository{
		collection: config.GetCollection(db, "notifications"),
		cache:      cache,
	}
}

// Insert persists a new notification and returns it with its assigned ID.
func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, n); err != nil {
		return nil, fmt.Errorf("inserting notification: %w", err)
	}
	r.invalidateUnread(ctx, n.UserID)
	return n, nil
}

// QueryByUser returns a user's notifications, newest first.
func (r *NotificationRepository) QueryByUser(ctx context.Context, userID primitive.ObjectID, filter services.NotificationFilter) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, r.buildFilter(userID, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("decoding notifications: %w", err)
	}
	return notifications, nil
}

// CountByUser counts a user's notifications matching the filter.
func (r *NotificationRepository) CountByUser(ctx context.Context, userID primitive.ObjectID, filter services.NotificationFilter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, r.buildFilter(userID, filter))
	if err != nil {
		return 0, fmt.Errorf("counting notifications: %w", err)
	}
	return count, nil
}

// CountByType groups a user's notifications by type tag.
func (r *NotificationRepository) CountByType(ctx context.Context, userID primitive.ObjectID) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating notification types: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Type  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding notification type counts: %w", err)
	}

	byType := make(map[string]int64, len(rows))
	for _, row := range rows {
		byType[row.Type] = row.Count
	}
	return byType, nil
}

// UpdateReadFlag sets isRead on the user's unread notifications selected by
// the update criteria and returns how many rows were flipped.
func (r *NotificationRepository) UpdateReadFlag(ctx context.Context, update services.ReadUpdate) (int64, error) {
	filter := bson.M{
		"userId": update.UserID,
		"isRead": false,
	}
	if update.NotificationID != nil {
		filter["_id"] = *update.NotificationID
	}
	if update.TicketID != nil {
		filter["data.ticket_id"] = update.TicketID.Hex()
	}

	result, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return 0, fmt.Errorf("updating read flag: %w", err)
	}
	if result.ModifiedCount > 0 {
		r.invalidateUnread(ctx, update.UserID)
	}
	return result.ModifiedCount, nil
}

// DeleteByPredicate removes notifications matching the retention predicate.
func (r *NotificationRepository) DeleteByPredicate(ctx context.Context, pred services.DeletePredicate) (int64, error) {
	filter := bson.M{
		"createdAt": bson.M{"$lt": pred.OlderThan},
	}
	if pred.ReadOnly {
		filter["isRead"] = true
	}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("deleting notifications: %w", err)
	}
	return result.DeletedCount, nil
}

// UnreadCount returns the cached unread counter, falling back to Mongo when
// the cache is cold or unavailable.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	key := unreadCacheKey(userID)
	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, key).Result(); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := r.CountByUser(ctx, userID, services.NotificationFilter{UnreadOnly: true})
	if err != nil {
		return 0, err
	}
	if r.cache != nil {
		r.cache.Set(ctx, key, count, unreadCacheTTL)
	}
	return count, nil
}

func (r *NotificationRepository) buildFilter(userID primitive.ObjectID, filter services.NotificationFilter) bson.M {
	query := bson.M{"userId": userID}
	if filter.UnreadOnly {
		query["isRead"] = false
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.CreatedAfter != nil {
		query["createdAt"] = bson.M{"$gte": *filter.CreatedAfter}
	}
	return query
}

func (r *NotificationRepository) invalidateUnread(ctx context.Context, userID primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	// Best effort; a stale counter expires with the TTL anyway.
	r.cache.Del(ctx, unreadCacheKey(userID))
}

func unreadCacheKey(userID primitive.ObjectID) string {
	return "notifications:unread:" + userID.Hex()
}
