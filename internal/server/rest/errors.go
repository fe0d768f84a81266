package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/qatrack/internal/common"
	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// handleError maps service errors to responses. Anything that is not a
// validation, lookup or conflict error is logged and answered with the opaque
// fallback message.
func (s *Server) handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeError(c, http.StatusNotFound, "Issue not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(c, http.StatusConflict, "Issue already exists")
	default:
		s.logger.Error(c.Request.Context(), fallback, "error", err, "path", c.FullPath())
		writeError(c, http.StatusInternalServerError, fallback)
	}
}
