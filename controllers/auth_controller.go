// controllers/auth_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/config"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/middleware"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
	"github.com/zakariaaboussaad/maintenance-app2-sub003/utils"
)

// AuthController handles login and logout
type AuthController struct {
	DB *mongo.Client
}

func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{DB: db}
}

// Login authenticates a user and returns a JWT pair
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	collection := config.GetCollection(ac.DB, "users")

	var user models.User
	err := collection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid credentials",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check user",
		})
	}

	if !user.IsActive {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Account is deactivated",
		})
	}

	if !utils.CheckPassword(user.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.RoleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	// Track last login; failure here must not block the login itself
	collection.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"lastActivityAt": time.Now(), "updatedAt": time.Now()}})

	user.Password = ""

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":        token,
			"refreshToken": refreshToken,
			"user":         user,
		},
	})
}

// Logout invalidates the caller's current token
func (ac *AuthController) Logout(c echo.Context) error {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "No token found",
		})
	}

	claims := token.Claims.(*middleware.JwtCustomClaims)
	expiry := time.Unix(claims.ExpiresAt, 0)
	middleware.BlacklistToken(token.Raw, expiry)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// Me returns the authenticated user's profile
func (ac *AuthController) Me(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, ac.DB)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User profile",
		Data:    user,
	})
}
