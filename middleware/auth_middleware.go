// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

// RequireRole checks if the authenticated user holds one of the allowed roles
func RequireRole(allowedRoles ...int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleID := ExtractRoleID(c)

			if roleID == 0 {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: role not found",
				})
			}

			for _, allowed := range allowedRoles {
				if roleID == allowed {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your role",
			})
		}
	}
}

// RequireAdmin shorthand for admin-only routes
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin)
}

// RequireStaff allows admins, supervisors and technicians
func RequireStaff() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin, models.RoleSupervisor, models.RoleTechnician)
}
