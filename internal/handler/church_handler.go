package handler

import (
	"net/http"
	"strconv"
	"time"

	"church-service/internal/model"
	"church-service/pkg/logger"
	"church-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChurchHandler bundles dependencies for church management endpoints.
type ChurchHandler struct {
	db *gorm.DB
}

func NewChurchHandler(db *gorm.DB) *ChurchHandler {
	return &ChurchHandler{db: db}
}

// CreateChurch provisions an additional church. Only super admins may call
// it; the first church is created by the setup flow, not here. The slug is
// derived from the name the same way setup derives it and is not checked for
// uniqueness.
func (h *ChurchHandler) CreateChurch(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordChurchOperation("create")

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse church creation request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		log.Error("Invalid church data", zap.String("name", req.Name))
		prometheus.RecordError("incomplete_church_creation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	church := model.Church{
		Name:   req.Name,
		Slug:   model.SlugFromName(req.Name),
		Email:  req.Email,
		Active: true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&church); result.Error != nil {
		log.Error("Failed to create church", zap.Error(result.Error))
		prometheus.RecordError("church_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "church creation failed"})
	}

	log.Info("Church created",
		zap.String("name", church.Name),
		zap.String("slug", church.Slug),
		zap.Uint("id", church.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Church created successfully",
		"church":  church,
	})
}

// GetChurch retrieves church details. Users may only read their own church
// unless they are super admins.
func (h *ChurchHandler) GetChurch(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordChurchOperation("access")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid church ID", zap.Error(err))
		prometheus.RecordError("invalid_church_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid church ID"})
	}

	role, _ := c.Get("user_role").(string)
	churchID, hasChurch := c.Get("church_id").(uint)
	if role != model.RoleSuperAdmin && (!hasChurch || churchID != uint(id)) {
		log.Warn("Unauthorized church access attempt",
			zap.Uint64("church_id", id),
			zap.String("role", role))
		prometheus.RecordError("church_access_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var church model.Church
	if result := h.db.First(&church, id); result.Error != nil {
		log.Error("Church not found", zap.Uint64("id", id), zap.Error(result.Error))
		prometheus.RecordError("church_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
	}

	return c.JSON(http.StatusOK, church)
}

// UpdateChurch updates church contact details and active flag. Renaming does
// not re-derive the slug; the slug is fixed at creation.
func (h *ChurchHandler) UpdateChurch(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordChurchOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid church ID", zap.Error(err))
		prometheus.RecordError("invalid_church_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid church ID"})
	}

	role, _ := c.Get("user_role").(string)
	churchID, hasChurch := c.Get("church_id").(uint)
	if role != model.RoleSuperAdmin && !(role == model.RoleAdmin && hasChurch && churchID == uint(id)) {
		log.Warn("Unauthorized church update attempt",
			zap.Uint64("church_id", id),
			zap.String("role", role))
		prometheus.RecordError("church_access_denied")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req struct {
		Name   *string `json:"name,omitempty"`
		Email  *string `json:"email,omitempty"`
		Active *bool   `json:"active,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse church update request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var church model.Church
	if result := h.db.First(&church, id); result.Error != nil {
		log.Error("Church not found", zap.Uint64("id", id), zap.Error(result.Error))
		prometheus.RecordError("church_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "church not found"})
	}

	if err := h.db.Model(&church).Updates(updates).Error; err != nil {
		log.Error("Failed to update church", zap.Error(err))
		prometheus.RecordError("church_update_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "church update failed"})
	}

	log.Info("Church updated", zap.Uint("id", church.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Church updated successfully",
		"church":  church,
	})
}
