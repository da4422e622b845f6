package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/i18n"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type ServiceHandler struct {
	db       *gorm.DB
	bookings domain.Repository
	audit    *audit.Dispatcher
}

func NewServiceHandler(db *gorm.DB, bookings domain.Repository, auditDispatcher *audit.Dispatcher) *ServiceHandler {
	return &ServiceHandler{db: db, bookings: bookings, audit: auditDispatcher}
}

// --------- Requests ---------

type ServiceRequest struct {
	Name        *i18n.Text `json:"name"`
	Description *i18n.Text `json:"description"`
	Price       *int       `json:"price"`
	Duration    *int       `json:"duration"`
	IsActive    *bool      `json:"isActive"`
}

func (r *ServiceRequest) validate(creating bool) (string, string, bool) {
	if creating && (r.Name == nil || r.Price == nil || r.Duration == nil) {
		return "invalid_request", "name, price and duration are required.", false
	}
	if r.Name != nil && r.Name.IsEmpty() {
		return "invalid_name", "Name must not be empty.", false
	}
	if r.Price != nil && *r.Price < 0 {
		return "invalid_price", "Price must not be negative.", false
	}
	if r.Duration != nil && *r.Duration < 1 {
		return "invalid_duration", "Duration must be at least one minute.", false
	}
	return "", "", true
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	q := h.db.Order("id ASC")
	if !wantsAll(c) {
		q = q.Where("is_active = ?", true)
	}

	var services []models.Service
	if err := q.Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not list services.", err)
		return
	}
	httpresp.List(c, services)
}

func (h *ServiceHandler) Get(c *gin.Context) {
	svc, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, svc)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if code, msg, ok := req.validate(true); !ok {
		httperr.BadRequest(c, code, msg)
		return
	}

	svc := models.Service{
		Name:     datatypes.NewJSONType(*req.Name),
		Price:    *req.Price,
		Duration: *req.Duration,
		IsActive: true,
	}
	if req.Description != nil {
		svc.Description = datatypes.NewJSONType(*req.Description)
	}

	if err := h.db.Create(&svc).Error; err != nil {
		httperr.Internal(c, "failed_to_create_service", "Could not create service.", err)
		return
	}

	// is_active defaults to true in the schema, so false is written explicitly.
	if req.IsActive != nil && !*req.IsActive {
		if err := h.db.Model(&svc).Update("is_active", false).Error; err != nil {
			httperr.Internal(c, "failed_to_create_service", "Could not create service.", err)
			return
		}
	}

	h.dispatch(c, "service_created", svc.ID, nil)
	httpresp.Created(c, svc)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	svc, ok := h.load(c)
	if !ok {
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if code, msg, ok := req.validate(false); !ok {
		httperr.BadRequest(c, code, msg)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = datatypes.NewJSONType(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = datatypes.NewJSONType(*req.Description)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	// Changing the duration moves the end of every booking not yet over.
	if len(updates) > 0 {
		if err := h.bookings.UpdateService(c.Request.Context(), svc.ID, updates, time.Now()); err != nil {
			writeError(c, err, "failed_to_update_service")
			return
		}
	}

	if err := h.db.First(svc, svc.ID).Error; err != nil {
		httperr.Internal(c, "failed_to_load_service", "Could not load service.", err)
		return
	}

	h.dispatch(c, "service_updated", svc.ID, nil)
	httpresp.OK(c, svc)
}

// Delete deactivates the service. Existing appointments keep referencing it.
func (h *ServiceHandler) Delete(c *gin.Context) {
	svc, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.db.Model(svc).Update("is_active", false).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_service", "Could not delete service.", err)
		return
	}

	h.dispatch(c, "service_deactivated", svc.ID, nil)
	httpresp.OK(c, gin.H{"success": true})
}

// --------- Helpers ---------

// load returns the service by :id. Inactive services are visible to admins only.
func (h *ServiceHandler) load(c *gin.Context) (*models.Service, bool) {
	id, ok := paramID(c)
	if !ok {
		return nil, false
	}

	var svc models.Service
	if err := h.db.First(&svc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "service_not_found", "Service not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_load_service", "Could not load service.", err)
		return nil, false
	}

	if !svc.IsActive && !middleware.IsAdmin(c) {
		httperr.NotFound(c, "service_not_found", "Service not found.")
		return nil, false
	}
	return &svc, true
}

func (h *ServiceHandler) dispatch(c *gin.Context, action string, id uint, metadata any) {
	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   action,
		Entity:   "service",
		EntityID: &id,
		Metadata: metadata,
	})
}
