package middleware

import (
	"net/http"
	"strings"

	"garage-service/internal/model"
	"garage-service/pkg/jwtutil"
	"garage-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Actor is the authenticated user performing the current request
type Actor struct {
	ID       uint
	Username string
	Role     model.Role
}

// AuthMiddleware validates the JWT token and puts the actor in the context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Extract the token
		tokenString := parts[1]

		// Validate the token
		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// The role travels inside the token and must be a recognized value
		role, ok := model.ParseRole(claims.Role)
		if !ok {
			log.Warn("JWT token carries an unknown role", zap.String("role", claims.Role))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown role in token"})
		}

		// Store the actor in context for handlers
		c.Set("actor", Actor{
			ID:       claims.UserID,
			Username: claims.Username,
			Role:     role,
		})

		log.Info("Request authenticated",
			zap.Uint("user_id", claims.UserID),
			zap.String("username", claims.Username),
			zap.String("role", string(role)))

		// Token is valid, proceed with the request
		return next(c)
	}
}

// ActorFromContext retrieves the authenticated actor from the context
func ActorFromContext(c echo.Context) (Actor, bool) {
	actor, ok := c.Get("actor").(Actor)
	return actor, ok
}
