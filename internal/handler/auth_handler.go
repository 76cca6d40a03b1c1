package handler

import (
	"errors"
	"net/http"
	"time"

	"church-service/internal/identity"
	"church-service/internal/model"
	"church-service/pkg/jwtutil"
	"church-service/pkg/logger"
	"church-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler bundles dependencies for authentication and profile endpoints.
type AuthHandler struct {
	db       *gorm.DB
	resolver *identity.Resolver
}

func NewAuthHandler(db *gorm.DB, resolver *identity.Resolver) *AuthHandler {
	return &AuthHandler{db: db, resolver: resolver}
}

// Login authenticates a user by email and password and issues a JWT carrying
// the user's church context.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Resolve the full identity up front; the church name goes into the token
	defer prometheus.TrackDBOperation("query")(time.Now())
	prometheus.RecordIdentityLookup("email")
	ident, err := h.resolver.ByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if !errors.Is(err, identity.ErrNotFound) {
			log.Error("Identity resolution failed", zap.Error(err))
			prometheus.RecordError("db_error")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ident.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !ident.Active {
		log.Warn("Login attempt for inactive user", zap.String("email", req.Email))
		prometheus.RecordError("inactive_user")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	now := time.Now()
	if err := h.db.Model(&model.User{}).Where("id = ?", ident.ID).Update("last_login_at", now).Error; err != nil {
		// Login still succeeds; the timestamp is best effort
		log.Warn("Failed to update last login timestamp", zap.Error(err))
	}

	var churchName string
	if ident.Church != nil {
		churchName = ident.Church.Name
	}

	token, err := jwtutil.GenerateToken(ident.Email, ident.ID, ident.Role, ident.ChurchID, churchName)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()

	log.Info("User logged in",
		zap.String("email", ident.Email),
		zap.Uint("user_id", ident.ID),
		zap.String("role", ident.Role))

	response := echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":         ident.ID,
			"email":      ident.Email,
			"first_name": ident.FirstName,
			"last_name":  ident.LastName,
			"role":       ident.Role,
		},
	}

	if ident.Church != nil {
		response["church"] = map[string]interface{}{
			"id":   ident.Church.ID,
			"name": ident.Church.Name,
			"slug": ident.Church.Slug,
		}
	}

	return c.JSON(http.StatusOK, response)
}

// GetProfile returns the assembled identity of the authenticated user: the
// user record with its church and member profile when they exist.
func (h *AuthHandler) GetProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordError("unauthorized_profile_access")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	prometheus.RecordIdentityLookup("id")
	ident, err := h.resolver.ByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			log.Error("User not found", zap.Uint("user_id", userID))
			prometheus.RecordError("user_not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Error("Identity resolution failed", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load profile"})
	}

	return c.JSON(http.StatusOK, ident)
}

// UpdateProfile updates the authenticated user's name fields.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordError("unauthorized_profile_update")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		FirstName *string `json:"first_name,omitempty"`
		LastName  *string `json:"last_name,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse profile update request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var user model.User
	if result := h.db.First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		prometheus.RecordError("user_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		log.Error("Failed to update profile", zap.Error(err))
		prometheus.RecordError("profile_update_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile update failed"})
	}

	log.Info("Profile updated", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// ChangePassword replaces the authenticated user's password after verifying
// the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordError("unauthorized_password_change")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse password change request", zap.Error(err))
		prometheus.RecordError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if len(req.NewPassword) < 6 {
		log.Error("New password too short", zap.Uint("user_id", userID))
		prometheus.RecordError("weak_password")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new password must be at least 6 characters"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var user model.User
	if result := h.db.First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		prometheus.RecordError("user_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		log.Error("Current password mismatch", zap.Uint("user_id", userID))
		prometheus.RecordError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password change failed"})
	}

	if err := h.db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		log.Error("Failed to update password", zap.Error(err))
		prometheus.RecordError("password_update_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password change failed"})
	}

	log.Info("Password changed", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}
