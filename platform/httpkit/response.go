package httpkit

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

// ErrorResponse is the body returned for any failed request.
type ErrorResponse struct {
	Message string         `json:"message"`
	Success bool           `json:"success"`
	Details map[string]any `json:"details,omitempty"`
}

// OK writes a success payload. The payload is expected to already carry
// the message/success envelope fields.
func OK(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// HandleError maps an error onto the HTTP response. Application errors
// keep their message and details; anything else is downgraded to a
// generic message and logged server-side.
func HandleError(c *gin.Context, log *logger.Logger, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperr.KindInternal {
			log.Error("internal error", "op", appErr.Op, "error", appErr)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "something went wrong"})
			return
		}
		c.JSON(appErr.HTTPStatus(), ErrorResponse{Message: appErr.Message, Details: appErr.Details})
		return
	}

	log.Error("unhandled error", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "something went wrong"})
}
