package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/salon-booking/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create       *ucAppointment.CreateAppointment
	createClient *ucAppointment.CreateClientAppointment
	updateStatus *ucAppointment.UpdateAppointmentStatus
	cancel       *ucAppointment.CancelAppointment
	hide         *ucAppointment.HideAppointment
	list         *ucAppointment.ListAppointments
	listByDate   *ucAppointment.ListAppointmentsByDate
	slots        *ucAppointment.GetSlots
}

func NewAppointmentHandler(
	create *ucAppointment.CreateAppointment,
	createClient *ucAppointment.CreateClientAppointment,
	updateStatus *ucAppointment.UpdateAppointmentStatus,
	cancel *ucAppointment.CancelAppointment,
	hide *ucAppointment.HideAppointment,
	list *ucAppointment.ListAppointments,
	listByDate *ucAppointment.ListAppointmentsByDate,
	slots *ucAppointment.GetSlots,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:       create,
		createClient: createClient,
		updateStatus: updateStatus,
		cancel:       cancel,
		hide:         hide,
		list:         list,
		listByDate:   listByDate,
		slots:        slots,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ServiceID       uint   `json:"serviceId" binding:"required"`
	AppointmentDate string `json:"appointmentDate" binding:"required"`
	Notes           string `json:"notes" binding:"max=1000"`
}

type CreateClientAppointmentRequest struct {
	ServiceID       uint   `json:"serviceId" binding:"required"`
	AppointmentDate string `json:"appointmentDate" binding:"required"`
	ClientName      string `json:"clientName" binding:"required,max=100"`
	ClientPhone     string `json:"clientPhone" binding:"required,max=32"`
	ClientEmail     string `json:"clientEmail" binding:"omitempty,email"`
	Status          string `json:"status"`
	Notes           string `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	apps, err := h.list.Execute(c.Request.Context(), viewer(c))
	if err != nil {
		writeError(c, err, "failed_to_list_appointments")
		return
	}
	httpresp.List(c, apps)
}

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter date is required.")
		return
	}

	apps, err := h.listByDate.Execute(c.Request.Context(), date)
	if err != nil {
		writeError(c, err, "failed_to_list_appointments")
		return
	}
	httpresp.List(c, apps)
}

func (h *AppointmentHandler) Slots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Query parameter date is required.")
		return
	}

	var serviceID *uint
	if raw := c.Query("serviceId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			httperr.BadRequest(c, "invalid_id", "Invalid serviceId.")
			return
		}
		v := uint(id)
		serviceID = &v
	}

	slots, err := h.slots.Execute(c.Request.Context(), date, serviceID)
	if err != nil {
		writeError(c, err, "failed_to_build_slots")
		return
	}
	httpresp.List(c, slots)
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		UserID:          userID,
		ServiceID:       req.ServiceID,
		AppointmentDate: req.AppointmentDate,
		Notes:           req.Notes,
		Lang:            requestLang(c),
	})
	if err != nil {
		writeError(c, err, "failed_to_create_appointment")
		return
	}
	httpresp.Created(c, ap)
}

// CreateForClient books a walk-in or phone client on their behalf.
func (h *AppointmentHandler) CreateForClient(c *gin.Context) {
	adminID, _ := middleware.UserID(c)

	var req CreateClientAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	ap, err := h.createClient.Execute(c.Request.Context(), ucAppointment.CreateClientAppointmentInput{
		ActorID:         adminID,
		ServiceID:       req.ServiceID,
		AppointmentDate: req.AppointmentDate,
		Status:          req.Status,
		ClientName:      req.ClientName,
		ClientPhone:     req.ClientPhone,
		ClientEmail:     req.ClientEmail,
		Notes:           req.Notes,
		Lang:            requestLang(c),
	})
	if err != nil {
		writeError(c, err, "failed_to_create_appointment")
		return
	}
	httpresp.Created(c, ap)
}

// ======================================================
// UPDATE / CANCEL / DELETE
// ======================================================

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	adminID, _ := middleware.UserID(c)
	ap, err := h.updateStatus.Execute(c.Request.Context(), ucAppointment.UpdateStatusInput{
		ActorID:       adminID,
		AppointmentID: id,
		Status:        req.Status,
		Lang:          requestLang(c),
	})
	if err != nil {
		writeError(c, err, "failed_to_update_appointment")
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	ap, err := h.cancel.Execute(c.Request.Context(), userID, id, requestLang(c))
	if err != nil {
		writeError(c, err, "failed_to_cancel_appointment")
		return
	}
	httpresp.OK(c, ap)
}

// Delete hides the appointment from the admin list only.
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	adminID, _ := middleware.UserID(c)
	if err := h.hide.Execute(c.Request.Context(), adminID, id); err != nil {
		writeError(c, err, "failed_to_delete_appointment")
		return
	}
	httpresp.OK(c, gin.H{"success": true})
}
