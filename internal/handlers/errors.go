package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

type errorSpec struct {
	status  int
	message string
}

// businessErrors maps use case error codes to HTTP.
var businessErrors = map[string]errorSpec{
	"invalid_date":          {http.StatusBadRequest, "Invalid date or time."},
	"in_the_past":           {http.StatusBadRequest, "Appointment must be in the future."},
	"service_not_found":     {http.StatusBadRequest, "Service not found."},
	"invalid_status":        {http.StatusBadRequest, "Status must be pending, confirmed, completed or cancelled."},
	"invalid_state":         {http.StatusConflict, "Appointment can no longer be changed."},
	"time_conflict":         {http.StatusConflict, "This time is already booked."},
	"appointment_not_found": {http.StatusNotFound, "Appointment not found."},
	"course_not_found":      {http.StatusNotFound, "Course not found."},
}

// writeError renders a use case error. Unknown errors become a 500.
func writeError(c *gin.Context, err error, internalCode string) {
	if code, ok := httperr.BusinessCode(err); ok {
		if spec, ok := businessErrors[code]; ok {
			httperr.Write(c, spec.status, code, spec.message)
			return
		}
		httperr.BadRequest(c, code, code)
		return
	}

	httperr.Internal(c, internalCode, "Internal server error.", err)
}

func invalidRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, httperr.HTTPError{
		Code:    "invalid_request",
		Message: "Invalid request.",
		Detail:  err.Error(),
	})
}
