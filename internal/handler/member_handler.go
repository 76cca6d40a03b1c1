package handler

import (
	"errors"
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

// MemberHandler bundles dependencies for member profile endpoints. All
// operations are scoped to the church in the caller's token.
type MemberHandler struct {
	db *gorm.DB
}

func NewMemberHandler(db *gorm.DB) *MemberHandler {
	return &MemberHandler{db: db}
}

// CreateMember creates a member profile, optionally linked to a user account.
// A user may have at most one member profile; a second link is rejected.
func (h *MemberHandler) CreateMember(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordMemberOperation("create")

	churchID, ok := c.Get("church_id").(uint)
	if !ok {
		log.Error("Missing church context")
		prometheus.RecordError("missing_church_context")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "church context required"})
	}

	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Status    string `json:"status,omitempty"`
		UserID    *uint  `json:"user_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse member creation request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.FirstName == "" {
		log.Error("Invalid member data")
		prometheus.RecordError("incomplete_member_creation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name is required"})
	}

	if req.Status == "" {
		req.Status = model.MemberStatusActive
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if req.UserID != nil {
		var user model.User
		if result := h.db.First(&user, *req.UserID); result.Error != nil {
			log.Error("Linked user not found", zap.Uint("user_id", *req.UserID))
			prometheus.RecordError("user_not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}

		var existing model.Member
		result := h.db.Where("user_id = ?", *req.UserID).First(&existing)
		if result.Error == nil {
			log.Error("User already has a member profile", zap.Uint("user_id", *req.UserID))
			prometheus.RecordError("member_already_linked")
			return c.JSON(http.StatusConflict, echo.Map{"error": "user already has a member profile"})
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Error("Failed to check member link", zap.Error(result.Error))
			prometheus.RecordError("db_error")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "member creation failed"})
		}
	}

	member := model.Member{
		ChurchID:  churchID,
		UserID:    req.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Status:    req.Status,
	}

	if result := h.db.Create(&member); result.Error != nil {
		log.Error("Failed to create member", zap.Error(result.Error))
		prometheus.RecordError("member_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "member creation failed"})
	}

	log.Info("Member created",
		zap.Uint("id", member.ID),
		zap.Uint("church_id", churchID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Member created successfully",
		"member":  member,
	})
}

// GetMember retrieves a member profile within the caller's church.
func (h *MemberHandler) GetMember(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordMemberOperation("access")

	churchID, ok := c.Get("church_id").(uint)
	if !ok {
		log.Error("Missing church context")
		prometheus.RecordError("missing_church_context")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid member ID", zap.Error(err))
		prometheus.RecordError("invalid_member_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var member model.Member
	if result := h.db.Where("church_id = ?", churchID).First(&member, id); result.Error != nil {
		log.Error("Member not found", zap.Uint64("id", id))
		prometheus.RecordError("member_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	return c.JSON(http.StatusOK, member)
}

// ListMembers lists all member profiles in the caller's church.
func (h *MemberHandler) ListMembers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordMemberOperation("list")

	churchID, ok := c.Get("church_id").(uint)
	if !ok {
		log.Error("Missing church context")
		prometheus.RecordError("missing_church_context")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "church context required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var members []model.Member
	if result := h.db.Where("church_id = ?", churchID).Order("id").Find(&members); result.Error != nil {
		log.Error("Failed to list members", zap.Error(result.Error))
		prometheus.RecordError("member_list_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list members"})
	}

	return c.JSON(http.StatusOK, members)
}

// UpdateMember updates a member's name and status fields.
func (h *MemberHandler) UpdateMember(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordMemberOperation("update")

	churchID, ok := c.Get("church_id").(uint)
	if !ok {
		log.Error("Missing church context")
		prometheus.RecordError("missing_church_context")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid member ID", zap.Error(err))
		prometheus.RecordError("invalid_member_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member ID"})
	}

	var req struct {
		FirstName *string `json:"first_name,omitempty"`
		LastName  *string `json:"last_name,omitempty"`
		Status    *string `json:"status,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse member update request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil && *req.FirstName != "" {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Status != nil {
		switch *req.Status {
		case model.MemberStatusActive, model.MemberStatusInactive, model.MemberStatusVisitor:
			updates["status"] = *req.Status
		default:
			log.Error("Invalid member status", zap.String("status", *req.Status))
			prometheus.RecordError("invalid_member_status")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var member model.Member
	if result := h.db.Where("church_id = ?", churchID).First(&member, id); result.Error != nil {
		log.Error("Member not found", zap.Uint64("id", id))
		prometheus.RecordError("member_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	if err := h.db.Model(&member).Updates(updates).Error; err != nil {
		log.Error("Failed to update member", zap.Error(err))
		prometheus.RecordError("member_update_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "member update failed"})
	}

	log.Info("Member updated", zap.Uint("id", member.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Member updated successfully",
		"member":  member,
	})
}

// DeleteMember soft-deletes a member profile.
func (h *MemberHandler) DeleteMember(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordMemberOperation("delete")

	churchID, ok := c.Get("church_id").(uint)
	if !ok {
		log.Error("Missing church context")
		prometheus.RecordError("missing_church_context")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "church context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid member ID", zap.Error(err))
		prometheus.RecordError("invalid_member_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := h.db.Where("church_id = ?", churchID).Delete(&model.Member{}, id)
	if result.Error != nil {
		log.Error("Failed to delete member", zap.Error(result.Error))
		prometheus.RecordError("member_delete_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "member deletion failed"})
	}

	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	log.Info("Member deleted", zap.Uint64("id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Member deleted successfully"})
}
