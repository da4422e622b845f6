package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type UserHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewUserHandler(db *gorm.DB, auditDispatcher *audit.Dispatcher) *UserHandler {
	return &UserHandler{db: db, audit: auditDispatcher}
}

type SetAdminRequest struct {
	IsAdmin *bool `json:"isAdmin" binding:"required"`
}

func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("created_at DESC").Find(&users).Error; err != nil {
		httperr.Internal(c, "failed_to_list_users", "Could not list users.", err)
		return
	}
	httpresp.List(c, users)
}

// SetAdmin toggles the admin flag. The change reaches the user's session
// at their next login, when a new token is issued.
func (h *UserHandler) SetAdmin(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "user_not_found", "User not found.")
			return
		}
		httperr.Internal(c, "failed_to_load_user", "Could not load user.", err)
		return
	}

	if err := h.db.Model(&user).Update("is_admin", *req.IsAdmin).Error; err != nil {
		httperr.Internal(c, "failed_to_update_user", "Could not update user.", err)
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   "user_admin_changed",
		Entity:   "user",
		EntityID: &user.ID,
		Metadata: map[string]any{"isAdmin": *req.IsAdmin},
	})

	httpresp.OK(c, user)
}
