// controllers/export_controller.go
package controllers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/config"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/services"
)

// ExportController produces CSV dumps for reporting. Staff only.
type ExportController struct {
	DB *mongo.Client
}

func NewExportController(db *mongo.Client) *ExportController {
	return &ExportController{DB: db}
}

func writeCSV(c echo.Context, filename string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// ExportTickets dumps all tickets as CSV
func (ec *ExportController) ExportTickets(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(ec.DB, "tickets").Find(ctx, bson.M{},
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

	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		ownerID := ""
		if t.UserID != nil {
			ownerID = t.UserID.Hex()
		}
		technicianID := ""
		if t.TechnicianID != nil {
			technicianID = t.TechnicianID.Hex()
		}
		rows = append(rows, []string{
			t.Number,
			t.Title,
			services.StatusLabel(t.Status),
			t.Priority,
			t.Category,
			ownerID,
			technicianID,
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		})
	}

	header := []string{"Numéro", "Titre", "Statut", "Priorité", "Catégorie", "Demandeur", "Technicien", "Créé le", "Mis à jour le"}
	return writeCSV(c, "tickets.csv", header, rows)
}

// ExportEquipments dumps the equipment inventory as CSV
func (ec *ExportController) ExportEquipments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(ec.DB, "equipments").Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch equipments",
		})
	}
	defer cursor.Close(ctx)

	equipments := []models.Equipment{}
	if err := cursor.All(ctx, &equipments); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode equipments",
		})
	}

	rows := make([][]string, 0, len(equipments))
	for _, e := range equipments {
		rows = append(rows, []string{
			e.Name,
			e.Type,
			e.SerialNumber,
			e.Status,
			e.Location,
			formatTime(e.CreatedAt),
		})
	}

	header := []string{"Nom", "Type", "Numéro de série", "Statut", "Emplacement", "Créé le"}
	return writeCSV(c, "equipments.csv", header, rows)
}

// ExportUsers dumps user accounts as CSV. Passwords are never included.
func (ec *ExportController) ExportUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(ec.DB, "users").Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "lastName", Value: 1}}).
			SetProjection(bson.M{"password": 0}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch users",
		})
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode users",
		})
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		active := "non"
		if u.IsActive {
			active = "oui"
		}
		rows = append(rows, []string{
			u.DisplayName(),
			u.Email,
			fmt.Sprintf("%d", u.RoleID),
			u.Department,
			active,
			formatTime(u.CreatedAt),
		})
	}

	header := []string{"Nom", "Email", "Rôle", "Département", "Actif", "Créé le"}
	return writeCSV(c, "users.csv", header, rows)
}
