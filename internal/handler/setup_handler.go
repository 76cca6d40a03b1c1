package handler

import (
	"errors"
	"net/http"
	"time"

	"church-service/internal/setup"
	"church-service/pkg/logger"
	"church-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SetupHandler bundles dependencies for the first-run setup endpoints.
type SetupHandler struct {
	svc *setup.Service
}

func NewSetupHandler(svc *setup.Service) *SetupHandler {
	return &SetupHandler{svc: svc}
}

// Status reports whether the system has been initialized. Clients call this
// before rendering anything so they know whether to show the setup screen.
func (h *SetupHandler) Status(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SetupStatusCounter.Inc()

	defer prometheus.TrackDBOperation("query")(time.Now())
	initialized, err := h.svc.Status(c.Request().Context())
	if err != nil {
		log.Error("Failed to check setup status", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check setup status"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"is_initialized": initialized,
		"needs_setup":    !initialized,
	})
}

// Initialize performs the one-time system bootstrap: it creates the first
// church and its super admin user in a single transaction.
func (h *SetupHandler) Initialize(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.InitializeCounter.Inc()

	var req setup.InitializeRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse initialize request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	user, church, err := h.svc.Initialize(c.Request().Context(), &req)
	if err != nil {
		var verr *setup.ValidationError
		switch {
		case errors.As(err, &verr):
			log.Error("Initialize request failed validation", zap.String("fields", verr.Error()))
			prometheus.RecordError("validation_failed")
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
		case errors.Is(err, setup.ErrAlreadyInitialized):
			log.Warn("Initialize called on an initialized system")
			prometheus.RecordError("already_initialized")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "system already initialized"})
		default:
			log.Error("System initialization failed", zap.Error(err))
			prometheus.RecordError("db_error")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "initialization failed"})
		}
	}

	log.Info("System initialized",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
		zap.Uint("church_id", church.ID),
		zap.String("church_slug", church.Slug))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "System initialized successfully",
		"user":    user,
		"church":  church,
	})
}
