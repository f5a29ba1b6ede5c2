// controllers/ticket_controller.go
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
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

// TicketController handles the ticket lifecycle. Every mutation that
// qualifies as a domain event goes through the notification dispatcher;
// dispatch failures never fail the ticket operation itself.
type TicketController struct {
	DB            *mongo.Client
	Dispatcher    *services.NotificationDispatcher
	Notifications *services.NotificationService
}

func NewTicketController(db *mongo.Client, dispatcher *services.NotificationDispatcher, notifications *services.NotificationService) *TicketController {
	return &TicketController{DB: db, Dispatcher: dispatcher, Notifications: notifications}
}

// newTicketNumber builds the human-readable reference shown in lists and
// notification payloads.
func newTicketNumber() string {
	return "TCK-" + strings.ToUpper(uuid.New().String()[:8])
}

// CreateTicket files a new ticket and broadcasts it to admins and supervisors
func (tc *TicketController) CreateTicket(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	creator, err := utils.GetUserFromToken(c, tc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.CreateTicketRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	now := time.Now()
	ticket := models.Ticket{
		ID:          primitive.NewObjectID(),
		Number:      newTicketNumber(),
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusOuvert,
		Priority:    req.Priority,
		Category:    req.Category,
		UserID:      &creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.EquipmentID != "" {
		equipmentID, err := primitive.ObjectIDFromHex(req.EquipmentID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid equipment ID",
			})
		}
		ticket.EquipmentID = &equipmentID
	}

	if _, err := config.GetCollection(tc.DB, "tickets").InsertOne(ctx, ticket); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create ticket",
		})
	}

	tc.Dispatcher.TicketCreated(c.Request().Context(), &ticket, creator)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Ticket created",
		Data:    ticket,
	})
}

// GetTickets lists tickets scoped by role: users see their own, technicians
// see their assignments and the open pool, admins and supervisors see all
func (tc *TicketController) GetTickets(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	caller, err := utils.GetUserFromToken(c, tc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	filter := bson.M{}
	switch caller.RoleID {
	case models.RoleAdmin, models.RoleSupervisor:
		// no scoping
	case models.RoleTechnician:
		filter["$or"] = []bson.M{
			{"technicianId": caller.ID},
			{"status": models.StatusOuvert},
		}
	default:
		filter["userId"] = caller.ID
	}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}

	cursor, err := config.GetCollection(tc.DB, "tickets").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch tickets",
		})
	}
	defer cursor.Close(ctx)

	tickets := []models.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode tickets",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Tickets retrieved",
		Data:    tickets,
	})
}

// GetTicket returns one ticket and marks the caller's related notifications
// as read
func (tc *TicketController) GetTicket(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ticketID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid ticket ID",
		})
	}

	var ticket models.Ticket
	err = config.GetCollection(tc.DB, "tickets").FindOne(ctx, bson.M{"_id": ticketID}).Decode(&ticket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Ticket not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch ticket",
		})
	}

	// Opening a ticket clears its pending notifications for the viewer
	if callerID, err := utils.GetUserIDFromToken(c); err == nil {
		tc.Notifications.MarkRelatedAsRead(ctx, callerID, ticketID)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ticket retrieved",
		Data:    ticket,
	})
}

// UpdateStatus transitions a ticket and notifies the owner
func (tc *TicketController) UpdateStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updater, err := utils.GetUserFromToken(c, tc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ticketID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid ticket ID",
		})
	}

	var req models.UpdateTicketStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid status",
		})
	}

	collection := config.GetCollection(tc.DB, "tickets")

	var ticket models.Ticket
	if err := collection.FindOne(ctx, bson.M{"_id": ticketID}).Decode(&ticket); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Ticket not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch ticket",
		})
	}

	oldStatus := ticket.Status
	now := time.Now()
	update := bson.M{"status": req.Status, "updatedAt": now}
	if req.Status == models.StatusResolu {
		update["resolvedAt"] = now
	}
	if req.Status == models.StatusFerme {
		update["closedAt"] = now
	}

	if _, err := collection.UpdateOne(ctx, bson.M{"_id": ticketID}, bson.M{"$set": update}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update ticket",
		})
	}

	ticket.Status = req.Status
	tc.Dispatcher.TicketStatusChanged(c.Request().Context(), &ticket, oldStatus, req.Status, updater)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ticket status updated",
	})
}

// TakeTicket lets a technician self-assign an open ticket and notifies the
// owner
func (tc *TicketController) TakeTicket(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	technician, err := utils.GetUserFromToken(c, tc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ticketID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid ticket ID",
		})
	}

	collection := config.GetCollection(tc.DB, "tickets")

	// Only an unassigned ticket can be taken; this is the concurrency guard
	// when two technicians grab the same ticket
	now := time.Now()
	result := collection.FindOneAndUpdate(ctx,
		bson.M{"_id": ticketID, "technicianId": nil},
		bson.M{"$set": bson.M{
			"technicianId": technician.ID,
			"status":       models.StatusEnCours,
			"updatedAt":    now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var ticket models.Ticket
	if err := result.Decode(&ticket); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Ticket not found or already assigned",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to take ticket",
		})
	}

	tc.Dispatcher.TicketTaken(c.Request().Context(), &ticket, technician)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ticket taken",
		Data:    ticket,
	})
}

// AssignTicket lets an admin assign a ticket to a technician and notifies
// the assignee
func (tc *TicketController) AssignTicket(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, err := utils.GetUserFromToken(c, tc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ticketID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid ticket ID",
		})
	}

	var req models.AssignTicketRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	technicianID, err := primitive.ObjectIDFromHex(req.TechnicianID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid technician ID",
		})
	}

	var technician models.User
	err = config.GetCollection(tc.DB, "users").FindOne(ctx,
		bson.M{"_id": technicianID, "roleId": models.RoleTechnician, "isActive": true}).Decode(&technician)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Technician not found or inactive",
		})
	}

	collection := config.GetCollection(tc.DB, "tickets")
	now := time.Now()
	result := collection.FindOneAndUpdate(ctx,
		bson.M{"_id": ticketID},
		bson.M{"$set": bson.M{
			"technicianId": technicianID,
			"status":       models.StatusEnCours,
			"updatedAt":    now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var ticket models.Ticket
	if err := result.Decode(&ticket); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Ticket not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to assign ticket",
		})
	}

	// The message names the requester; resolve their snapshot if the ticket
	// has an owner
	var requester *models.User
	if ticket.UserID != nil {
		var owner models.User
		if err := config.GetCollection(tc.DB, "users").FindOne(ctx, bson.M{"_id": *ticket.UserID}).Decode(&owner); err == nil {
			requester = &owner
		}
	}

	tc.Dispatcher.TicketAssigned(c.Request().Context(), &ticket, admin, requester)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Ticket assigned",
		Data:    ticket,
	})
}

// AddComment appends a comment to a ticket and notifies the owner
func (tc *TicketController) AddComment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	author, err := utils.GetUserFromToken(c, tc.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	ticketID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid ticket ID",
		})
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Comment body is required",
		})
	}

	var ticket models.Ticket
	if err := config.GetCollection(tc.DB, "tickets").FindOne(ctx, bson.M{"_id": ticketID}).Decode(&ticket); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Ticket not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch ticket",
		})
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		TicketID:  ticketID,
		UserID:    author.ID,
		Body:      req.Body,
		CreatedAt: time.Now(),
	}

	if _, err := config.GetCollection(tc.DB, "comments").InsertOne(ctx, comment); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to add comment",
		})
	}

	tc.Dispatcher.CommentAdded(c.Request().Context(), &ticket, &comment, author)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Comment added",
		Data:    comment,
	})
}

// GetComments lists a ticket's comments, oldest first
func (tc *TicketController) GetComments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ticketID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid ticket ID",
		})
	}

	cursor, err := config.GetCollection(tc.DB, "comments").Find(ctx,
		bson.M{"ticketId": ticketID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch comments",
		})
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode comments",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Comments retrieved",
		Data:    comments,
	})
}
