// Package middleware provides authentication, logging, tracing, metrics and
// rate-limiting middleware for the HTTP API.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"warden/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// RoleAdmin is the value of the "role" claim carried by administrator tokens.
const RoleAdmin = "admin"

// Fiber locals written by the auth middleware.
const (
	LocalUserID  = "userID"
	LocalIsAdmin = "isAdmin"
)

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// Claims is the identity extracted from a verified token.
type Claims struct {
	UserID  uint
	IsAdmin bool
}

var (
	errMissingSubject = errors.New("invalid token structure - missing subject")
	errBadSubject     = errors.New("invalid user ID in token")
)

// ParseClaims verifies an HS256 token and extracts the subject and role.
func ParseClaims(tokenString string) (*Claims, error) {
	if cfg == nil {
		return nil, errors.New("auth middleware not initialized")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	subStr, ok := claims["sub"].(string)
	if !ok || subStr == "" {
		return nil, errMissingSubject
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil || userID == 0 {
		return nil, errBadSubject
	}

	role, _ := claims["role"].(string)
	return &Claims{
		UserID:  uint(userID),
		IsAdmin: strings.EqualFold(role, RoleAdmin),
	}, nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header required")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": msg,
		"code":  "UNAUTHORIZED",
	})
}

func storeClaims(c *fiber.Ctx, claims *Claims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalIsAdmin, claims.IsAdmin)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return unauthorized(c, err.Error())
	}
	claims, err := ParseClaims(tokenString)
	if err != nil {
		return unauthorized(c, err.Error())
	}
	storeClaims(c, claims)
	return c.Next()
}

// AdminRequired rejects callers whose token does not carry the admin role.
// It must run after AuthRequired or WebSocketAuthRequired.
func AdminRequired(c *fiber.Ctx) error {
	if isAdmin, _ := c.Locals(LocalIsAdmin).(bool); !isAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "admin access required",
			"code":  "UNAUTHORIZED",
		})
	}
	return c.Next()
}

// WebSocketAuthRequired is middleware that validates JWT tokens from query parameters for WebSocket connections.
func WebSocketAuthRequired(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		var err error
		if tokenString, err = bearerToken(c); err != nil {
			return unauthorized(c, "token required")
		}
	}
	claims, err := ParseClaims(tokenString)
	if err != nil {
		return unauthorized(c, err.Error())
	}
	storeClaims(c, claims)
	return c.Next()
}

// UserID returns the authenticated user id stored by the auth middleware.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}

// IsAdmin reports whether the authenticated caller holds the admin role.
func IsAdmin(c *fiber.Ctx) bool {
	isAdmin, _ := c.Locals(LocalIsAdmin).(bool)
	return isAdmin
}
