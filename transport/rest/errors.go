package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rocketscienceinc/hangman-backend/internal/apperror"
)

var statusByKind = map[string]int{
	"invalid_input":    http.StatusBadRequest,
	"not_in_room":      http.StatusNotFound,
	"not_found":        http.StatusNotFound,
	"forbidden":        http.StatusForbidden,
	"conflict":         http.StatusConflict,
	"already_depleted": http.StatusConflict,
	"room_closed":      http.StatusGone,
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// abortWithError - maps an application error to its status code; unknown errors are
// logged and hidden from the client.
func (that *Handlers) abortWithError(c *gin.Context, err error) {
	kind := apperror.Kind(err)

	status, ok := statusByKind[kind]
	if !ok {
		that.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal"})
		return
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: kind, Message: err.Error()})
}
