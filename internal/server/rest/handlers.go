package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/qatrack/internal/export"
	"github.com/dmitrijs2005/qatrack/internal/issue"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleList(c *gin.Context) {
	issues, err := s.issues.List(c.Request.Context())
	if err != nil {
		s.handleError(c, err, "Failed to fetch issues")
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

func (s *Server) handleGet(c *gin.Context) {
	it, err := s.issues.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err, "Failed to fetch issue")
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": it})
}

func (s *Server) handleCreate(c *gin.Context) {
	var in issue.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	it, err := s.issues.Create(c.Request.Context(), in)
	if err != nil {
		s.handleError(c, err, "Failed to create issue")
		return
	}

	s.logger.Info(c.Request.Context(), "issue created", "id", it.ID, "screenshots", len(it.Screenshots))
	c.JSON(http.StatusCreated, gin.H{"issue": it})
}

func (s *Server) handleUpdate(c *gin.Context) {
	var in issue.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	it, err := s.issues.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		s.handleError(c, err, "Failed to update issue")
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": it})
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	if err := s.issues.Delete(c.Request.Context(), id); err != nil {
		s.handleError(c, err, "Failed to delete issue")
		return
	}

	s.logger.Info(c.Request.Context(), "issue deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := export.ParseFormat(strings.ToLower(c.DefaultQuery("format", string(export.FormatCSV))))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	issues, err := s.issues.List(c.Request.Context())
	if err != nil {
		s.handleError(c, err, "Failed to export issues")
		return
	}

	now := s.nowFn()
	body, err := export.Render(format, issues, now)
	if err != nil {
		s.handleError(c, err, "Failed to export issues")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format, now)))
	c.Data(http.StatusOK, export.ContentType(format), body)
}
