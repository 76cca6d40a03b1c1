package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"church-service/internal/model"
	"church-service/pkg/jwtutil"
	"church-service/pkg/logger"
	"church-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token from the Authorization header
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			prometheus.RecordError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			prometheus.RecordError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		tokenString := parts[1]

		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("user_role", claims.Role)

		// Store church context if the token carries one
		if claims.ChurchID != nil {
			c.Set("church_id", *claims.ChurchID)
			c.Set("church_name", claims.ChurchName)

			// Propagate church context to downstream services
			c.Request().Header.Set("X-Church-ID", fmt.Sprintf("%d", *claims.ChurchID))
			if claims.ChurchName != "" {
				c.Request().Header.Set("X-Church-Name", claims.ChurchName)
			}

			log.Debug("Request authenticated with church context",
				zap.Uint("church_id", *claims.ChurchID),
				zap.String("church_name", claims.ChurchName),
				zap.String("role", claims.Role))
		}

		return next(c)
	}
}

// RequireChurchContext ensures the authenticated token carries a church id.
// Must run after AuthMiddleware.
func RequireChurchContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := c.Get("church_id").(uint); !ok {
			logger.FromContext(c).Error("Missing church context")
			prometheus.RecordError("missing_church_context")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "church context required"})
		}
		return next(c)
	}
}

// RequireSuperAdmin restricts an endpoint to super admin users. Must run
// after AuthMiddleware.
func RequireSuperAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get("user_role").(string)
		if role != model.RoleSuperAdmin {
			logger.FromContext(c).Warn("Insufficient role for endpoint", zap.String("role", role))
			prometheus.RecordError("insufficient_role")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}
		return next(c)
	}
}
