package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"techshop/domain"
	"techshop/pkg/logger"
	jsonres "techshop/pkg/response"

	"github.com/labstack/echo/v4"
)

const staffKey = "staff"

type StaffLoader interface {
	FindByUserID(ctx context.Context, userID uint) (domain.StaffProfile, error)
}

// StaffOnly loads the caller's staff profile and rejects non-staff and
// deactivated staff. Must run after AuthMiddleware.
func StaffOnly(loader StaffLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "User not authenticated", nil,
				))
			}

			profile, err := loader.FindByUserID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return c.JSON(http.StatusForbidden, jsonres.Error(
						"FORBIDDEN", "Staff access required", nil,
					))
				}
				logger.Error("failed to load staff profile", err)
				return c.JSON(http.StatusInternalServerError, jsonres.Error(
					"INTERNAL_ERROR", "Internal server error", nil,
				))
			}

			if !profile.IsActive {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Staff account is inactive", nil,
				))
			}

			c.Set(staffKey, profile)

			return next(c)
		}
	}
}

// Staff returns the profile StaffOnly stored on the context.
func Staff(c echo.Context) (domain.StaffProfile, bool) {
	profile, ok := c.Get(staffKey).(domain.StaffProfile)
	return profile, ok
}

func RequirePermission(perm domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile, ok := Staff(c)
			if !ok || !profile.Has(perm) {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "You do not have permission to perform this action", map[string]string{"permission": string(perm)},
				))
			}

			return next(c)
		}
	}
}

// RequireAnyPermission passes when the staff member holds at least one of perms.
func RequireAnyPermission(perms ...domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile, ok := Staff(c)
			if ok {
				for _, p := range perms {
					if profile.Has(p) {
						return next(c)
					}
				}
			}

			return c.JSON(http.StatusForbidden, jsonres.Error(
				"FORBIDDEN", "You do not have permission to perform this action", nil,
			))
		}
	}
}

func RequireDashboard(d domain.Dashboard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile, ok := Staff(c)
			if !ok || !profile.CanView(d) {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "You do not have access to this dashboard", map[string]string{"dashboard": string(d)},
				))
			}

			return next(c)
		}
	}
}

// SelfOrPermission lets users reach their own :id, and staff holding perm
// reach anyone's.
func SelfOrPermission(loader StaffLoader, perm domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			loggedInUserID, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "User not authenticated", nil,
				))
			}

			requestedIDUint, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, jsonres.Error(
					"BAD_REQUEST", "Invalid user ID", nil,
				))
			}

			if uint(requestedIDUint) == loggedInUserID {
				return next(c)
			}

			profile, err := loader.FindByUserID(c.Request().Context(), loggedInUserID)
			if err == nil && profile.IsActive && profile.Has(perm) {
				return next(c)
			}

			return c.JSON(http.StatusForbidden, jsonres.Error(
				"FORBIDDEN", "You can only access your own data", nil,
			))
		}
	}
}
