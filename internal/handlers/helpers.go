package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/i18n"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
)

// requestLang picks the e-mail and display language: ?lang=, then
// Accept-Language, then the default.
func requestLang(c *gin.Context) string {
	if l := c.Query("lang"); l != "" {
		return i18n.Lang(l)
	}
	return i18n.Lang(c.GetHeader("Accept-Language"))
}

// paramID parses :id, writing a 400 on failure.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid id.")
		return 0, false
	}
	return uint(id), true
}

func viewer(c *gin.Context) domain.Viewer {
	id, _ := middleware.UserID(c)
	return domain.Viewer{UserID: id, IsAdmin: middleware.IsAdmin(c)}
}

func actorID(c *gin.Context) *uint {
	id, ok := middleware.UserID(c)
	if !ok {
		return nil
	}
	return &id
}

// wantsAll is the admin-only ?all=true switch on catalogue listings.
func wantsAll(c *gin.Context) bool {
	return middleware.IsAdmin(c) && c.Query("all") == "true"
}
