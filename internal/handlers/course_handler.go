package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/i18n"
	"github.com/BruksfildServices01/salon-booking/internal/logging"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/storage"
)

const maxImageUpload = 10 << 20

type CourseHandler struct {
	db       *gorm.DB
	uploader storage.Uploader
	audit    *audit.Dispatcher
}

// NewCourseHandler accepts a nil uploader; image uploads then answer 503.
func NewCourseHandler(db *gorm.DB, uploader storage.Uploader, auditDispatcher *audit.Dispatcher) *CourseHandler {
	return &CourseHandler{db: db, uploader: uploader, audit: auditDispatcher}
}

type CourseRequest struct {
	Name        *i18n.Text `json:"name"`
	Description *i18n.Text `json:"description"`
	Price       *int       `json:"price"`
	Duration    *int       `json:"duration"`
	ImageURL    *string    `json:"imageUrl"`
	IsActive    *bool      `json:"isActive"`
}

func (r *CourseRequest) validate(creating bool) (string, string, bool) {
	if creating && (r.Name == nil || r.Price == nil) {
		return "invalid_request", "name and price are required.", false
	}
	if r.Name != nil && r.Name.IsEmpty() {
		return "invalid_name", "Name must not be empty.", false
	}
	if r.Price != nil && *r.Price < 0 {
		return "invalid_price", "Price must not be negative.", false
	}
	if r.Duration != nil && *r.Duration < 0 {
		return "invalid_duration", "Duration must not be negative.", false
	}
	return "", "", true
}

func (h *CourseHandler) List(c *gin.Context) {
	q := h.db.Order("id ASC")
	if !wantsAll(c) {
		q = q.Where("is_active = ?", true)
	}

	var courses []models.Course
	if err := q.Find(&courses).Error; err != nil {
		httperr.Internal(c, "failed_to_list_courses", "Could not list courses.", err)
		return
	}
	httpresp.List(c, courses)
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, course)
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if code, msg, ok := req.validate(true); !ok {
		httperr.BadRequest(c, code, msg)
		return
	}

	course := models.Course{
		Name:     datatypes.NewJSONType(*req.Name),
		Price:    *req.Price,
		IsActive: true,
	}
	if req.Description != nil {
		course.Description = datatypes.NewJSONType(*req.Description)
	}
	if req.Duration != nil {
		course.Duration = *req.Duration
	}
	if req.ImageURL != nil {
		course.ImageURL = *req.ImageURL
	}

	if err := h.db.Create(&course).Error; err != nil {
		httperr.Internal(c, "failed_to_create_course", "Could not create course.", err)
		return
	}
	if req.IsActive != nil && !*req.IsActive {
		if err := h.db.Model(&course).Update("is_active", false).Error; err != nil {
			httperr.Internal(c, "failed_to_create_course", "Could not create course.", err)
			return
		}
	}

	h.dispatch(c, "course_created", course.ID, nil)
	httpresp.Created(c, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	course, ok := h.load(c)
	if !ok {
		return
	}

	var req CourseRequest
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
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.Model(course).Updates(updates).Error; err != nil {
			httperr.Internal(c, "failed_to_update_course", "Could not update course.", err)
			return
		}
	}
	if err := h.db.First(course, course.ID).Error; err != nil {
		httperr.Internal(c, "failed_to_load_course", "Could not load course.", err)
		return
	}

	h.dispatch(c, "course_updated", course.ID, nil)
	httpresp.OK(c, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	course, ok := h.load(c)
	if !ok {
		return
	}

	if err := h.db.Model(course).Update("is_active", false).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_course", "Could not delete course.", err)
		return
	}

	h.dispatch(c, "course_deactivated", course.ID, nil)
	httpresp.OK(c, gin.H{"success": true})
}

// UploadImage stores a resized webp copy of the multipart "image" field.
func (h *CourseHandler) UploadImage(c *gin.Context) {
	if h.uploader == nil {
		httperr.Unavailable(c, "storage_unavailable", "Image storage is not configured.")
		return
	}

	course, ok := h.load(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageUpload)
	file, err := c.FormFile("image")
	if err != nil {
		httperr.BadRequest(c, "missing_image", "Multipart field image is required.")
		return
	}

	f, err := file.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Could not read image.")
		return
	}
	defer f.Close()

	body, err := storage.NormalizeImage(f)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			httperr.BadRequest(c, "unsupported_image", "Only jpeg, png and webp images are accepted.")
			return
		}
		httperr.Internal(c, "failed_to_process_image", "Could not process image.", err)
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), storage.CourseImageKey(), "image/webp", body)
	if err != nil {
		logging.FromContext(c.Request.Context()).WithError(err).Error("course image upload failed")
		httperr.Internal(c, "failed_to_upload_image", "Could not upload image.", err)
		return
	}

	if err := h.db.Model(course).Update("image_url", url).Error; err != nil {
		httperr.Internal(c, "failed_to_update_course", "Could not update course.", err)
		return
	}
	course.ImageURL = url

	h.dispatch(c, "course_image_uploaded", course.ID, map[string]any{"url": url})
	httpresp.OK(c, course)
}

func (h *CourseHandler) load(c *gin.Context) (*models.Course, bool) {
	id, ok := paramID(c)
	if !ok {
		return nil, false
	}

	var course models.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "course_not_found", "Course not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_load_course", "Could not load course.", err)
		return nil, false
	}

	if !course.IsActive && !middleware.IsAdmin(c) {
		httperr.NotFound(c, "course_not_found", "Course not found.")
		return nil, false
	}
	return &course, true
}

func (h *CourseHandler) dispatch(c *gin.Context, action string, id uint, metadata any) {
	h.audit.Dispatch(audit.Event{
		UserID:   actorID(c),
		Action:   action,
		Entity:   "course",
		EntityID: &id,
		Metadata: metadata,
	})
}
