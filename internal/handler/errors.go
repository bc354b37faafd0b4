package handler

import (
	"errors"
	"net/http"

	"clearance/pkg/apperror"
	"clearance/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError translates service errors into the response envelope.
// Unrecognized errors surface as 500 without leaking internals.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "Internal server error"

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusUnprocessableEntity
		msg = err.Error()
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusForbidden
		msg = err.Error()
	case errors.Is(err, apperror.ErrInvalidState):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	}

	c.JSON(status, response.Error(status, msg))
}
