// controllers/password_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/config"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/services"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/utils"
)

// PasswordController handles admin-mediated password resets. A user files a
// request, an admin approves or rejects it, and on approval the generated
// password is viewable exactly once.
type PasswordController struct {
	DB         *mongo.Client
	Dispatcher *services.NotificationDispatcher
}

func NewPasswordController(db *mongo.Client, dispatcher *services.NotificationDispatcher) *PasswordController {
	return &PasswordController{DB: db, Dispatcher: dispatcher}
}

// CreateRequest files a password request and broadcasts it to admins
func (pc *PasswordController) CreateRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requester, err := utils.GetUserFromToken(c, pc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.PasswordRequestCreate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Reason is required",
		})
	}

	collection := config.GetCollection(pc.DB, "password_requests")

	// One pending request per user at a time
	count, err := collection.CountDocuments(ctx, bson.M{
		"userId": requester.ID,
		"status": models.PasswordRequestPending,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing requests",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "A password request is already pending",
		})
	}

	request := models.PasswordRequest{
		ID:          primitive.NewObjectID(),
		UserID:      requester.ID,
		Reason:      req.Reason,
		Status:      models.PasswordRequestPending,
		RequestedAt: time.Now(),
	}
	if _, err := collection.InsertOne(ctx, request); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create request",
		})
	}

	pc.Dispatcher.PasswordRequested(c.Request().Context(), &request, requester)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Password request created",
		Data:    request,
	})
}

// GetRequests lists password requests. Admin only.
func (pc *PasswordController) GetRequests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := config.GetCollection(pc.DB, "password_requests").Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "requestedAt", Value: -1}}).
			SetProjection(bson.M{"newPassword": 0}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch requests",
		})
	}
	defer cursor.Close(ctx)

	requests := []models.PasswordRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode requests",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password requests retrieved",
		Data:    requests,
	})
}

// ApproveRequest generates a new password, stores its hash on the user and
// notifies the requester. Admin only.
func (pc *PasswordController) ApproveRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := utils.GetUserFromToken(c, pc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request ID",
		})
	}

	collection := config.GetCollection(pc.DB, "password_requests")

	var request models.PasswordRequest
	if err := collection.FindOne(ctx, bson.M{"_id": requestID}).Decode(&request); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Request not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch request",
		})
	}
	if request.Status != models.PasswordRequestPending {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Request already processed",
		})
	}

	newPassword, err := utils.GeneratePassword(12)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate password",
		})
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to hash password",
		})
	}

	var requester models.User
	if err := config.GetCollection(pc.DB, "users").FindOne(ctx, bson.M{"_id": request.UserID}).Decode(&requester); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Requesting user not found",
		})
	}

	if _, err := config.GetCollection(pc.DB, "users").UpdateOne(ctx,
		bson.M{"_id": request.UserID},
		bson.M{"$set": bson.M{"password": hashed, "updatedAt": time.Now()}}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update user password",
		})
	}

	now := time.Now()
	request.Status = models.PasswordRequestApproved
	request.ProcessedBy = &admin.ID
	request.ApprovedAt = &now
	request.NewPassword = newPassword

	if _, err := collection.UpdateOne(ctx,
		bson.M{"_id": requestID},
		bson.M{"$set": bson.M{
			"status":      models.PasswordRequestApproved,
			"processedBy": admin.ID,
			"approvedAt":  now,
			"newPassword": newPassword,
		}}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update request",
		})
	}

	pc.Dispatcher.PasswordChanged(c.Request().Context(), &request, admin)
	utils.SendPasswordApprovedEmail(requester.Email, requester.DisplayName())

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password request approved",
	})
}

// RejectRequest declines a password request and notifies the requester.
// Admin only.
func (pc *PasswordController) RejectRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := utils.GetUserFromToken(c, pc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request ID",
		})
	}

	var req models.PasswordRequestReject
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Rejection reason is required",
		})
	}

	collection := config.GetCollection(pc.DB, "password_requests")

	now := time.Now()
	result := collection.FindOneAndUpdate(ctx,
		bson.M{"_id": requestID, "status": models.PasswordRequestPending},
		bson.M{"$set": bson.M{
			"status":          models.PasswordRequestRejected,
			"processedBy":     admin.ID,
			"rejectedAt":      now,
			"rejectionReason": req.Reason,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var request models.PasswordRequest
	if err := result.Decode(&request); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Request not found or already processed",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to reject request",
		})
	}

	var requester models.User
	if err := config.GetCollection(pc.DB, "users").FindOne(ctx, bson.M{"_id": request.UserID}).Decode(&requester); err == nil {
		utils.SendPasswordRejectedEmail(requester.Email, requester.DisplayName(), req.Reason)
	}

	pc.Dispatcher.PasswordRejected(c.Request().Context(), &request, admin)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password request rejected",
	})
}

// ViewNewPassword reveals the generated password to the requester once, then
// clears the stored plaintext
func (pc *PasswordController) ViewNewPassword(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request ID",
		})
	}

	collection := config.GetCollection(pc.DB, "password_requests")

	// Single atomic read-and-clear so the plaintext can only come back once
	result := collection.FindOneAndUpdate(ctx,
		bson.M{
			"_id":         requestID,
			"userId":      userID,
			"status":      models.PasswordRequestApproved,
			"newPassword": bson.M{"$nin": bson.A{nil, ""}},
		},
		bson.M{"$unset": bson.M{"newPassword": ""}})

	var request models.PasswordRequest
	if err := result.Decode(&request); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "No password available to view",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve password",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password retrieved. It will not be shown again.",
		Data:    map[string]string{"newPassword": request.NewPassword},
	})
}
