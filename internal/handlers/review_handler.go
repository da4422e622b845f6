package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

type ReviewHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewReviewHandler(db *gorm.DB, auditDispatcher *audit.Dispatcher) *ReviewHandler {
	return &ReviewHandler{db: db, audit: auditDispatcher}
}

type CreateReviewRequest struct {
	Name    string `json:"name" binding:"max=100"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// ListApproved is the public feed.
func (h *ReviewHandler) ListApproved(c *gin.Context) {
	var reviews []models.Review
	if err := h.db.
		Where("status = ?", ReviewApproved).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		httperr.Internal(c, "failed_to_list_reviews", "Could not list reviews.", err)
		return
	}
	httpresp.List(c, reviews)
}

func (h *ReviewHandler) ListAll(c *gin.Context) {
	q := h.db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var reviews []models.Review
	if err := q.Find(&reviews).Error; err != nil {
		httperr.Internal(c, "failed_to_list_reviews", "Could not list reviews.", err)
		return
	}
	httpresp.List(c, reviews)
}

// Create accepts a review for moderation. Anonymous authors must give a
// name; signed-in authors default to their display name.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	review := models.Review{
		Name:    strings.TrimSpace(req.Name),
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
		Status:  ReviewPending,
	}

	if userID, ok := middleware.UserID(c); ok {
		review.UserID = &userID
		if review.Name == "" {
			var user models.User
			if err := h.db.First(&user, userID).Error; err == nil {
				review.Name = user.DisplayName()
			}
		}
	}

	if review.Name == "" {
		httperr.BadRequest(c, "missing_name", "Name is required.")
		return
	}

	if err := h.db.Create(&review).Error; err != nil {
		httperr.Internal(c, "failed_to_create_review", "Could not save review.", err)
		return
	}
	httpresp.Created(c, review)
}

func (h *ReviewHandler) Approve(c *gin.Context) {
	h.setStatus(c, ReviewApproved)
}

func (h *ReviewHandler) Reject(c *gin.Context) {
	h.setStatus(c, ReviewRejected)
}

func (h *ReviewHandler) setStatus(c *gin.Context, status string) {
	review, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.db.Model(review).Update("status", status).Error; err != nil {
		httperr.Internal(c, "failed_to_update_review", "Could not update review.", err)
		return
	}
	review.Status = status

	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   "review_" + status,
		Entity:   "review",
		EntityID: &review.ID,
	})
	httpresp.OK(c, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	review, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.db.Delete(review).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_review", "Could not delete review.", err)
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   "review_deleted",
		Entity:   "review",
		EntityID: &review.ID,
		Metadata: map[string]any{"name": review.Name, "rating": review.Rating},
	})
	httpresp.OK(c, gin.H{"success": true})
}

func (h *ReviewHandler) load(c *gin.Context) (*models.Review, bool) {
	id, ok := paramID(c)
	if !ok {
		return nil, false
	}

	var review models.Review
	if err := h.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "review_not_found", "Review not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_load_review", "Could not load review.", err)
		return nil, false
	}
	return &review, true
}
