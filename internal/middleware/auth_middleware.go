package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"techshop/pkg/logger"
	jsonres "techshop/pkg/response"
	"techshop/pkg/utils"

	"github.com/labstack/echo/v4"
)

var (
	errMissingHeader = errors.New("Missing authorization header")
	errHeaderFormat  = errors.New("Invalid authorization format")
	errInvalidToken  = errors.New("Invalid token")
	errTokenExpired  = errors.New("Token expired")
	errTokenSubject  = errors.New("Invalid user ID in token")
)

// authenticate validates the bearer token and stores user_id, role and token
// on the context.
func authenticate(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return errMissingHeader
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return errHeaderFormat
	}

	tokenString := tokenParts[1]

	claims, err := utils.ParseJWT(tokenString)
	if err != nil {
		return errInvalidToken
	}

	expAt, err := claims.GetExpirationTime()
	if err != nil || expAt == nil {
		return errInvalidToken
	}

	if time.Now().After(expAt.Time) {
		return errTokenExpired
	}

	userIDUint, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		logger.Error("Invalid user ID in token", err)
		return errTokenSubject
	}

	c.Set("user_id", uint(userIDUint))
	c.Set("role", claims.Role)
	c.Set("token", tokenString)

	return nil
}

// AuthMiddleware basic JWT authentication
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authenticate(c); err != nil {
				status := http.StatusUnauthorized
				code := "UNAUTHORIZED"
				if errors.Is(err, errTokenExpired) || errors.Is(err, errTokenSubject) {
					status = http.StatusForbidden
					code = "FORBIDDEN"
				}
				return c.JSON(status, jsonres.Error(code, err.Error(), nil))
			}

			return next(c)
		}
	}
}

// OptionalAuth authenticates when a token is sent and lets guests through.
// A bad token is treated as no token.
func OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") != "" {
				if err := authenticate(c); err != nil {
					logger.Debug("ignoring invalid token on optional route", "error", err)
				}
			}

			return next(c)
		}
	}
}

// UserID returns the authenticated user, if any.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok && id != 0
}
