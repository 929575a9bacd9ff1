package api

import (
	"net/http"

	"outreach-gateway/internal/models"
	"outreach-gateway/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type TemplateHandler struct {
	Templates *store.TemplateStore
	Logs      *store.LogStore
	Log       zerolog.Logger
}

func NewTemplateHandler(templates *store.TemplateStore, logs *store.LogStore, log zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{Templates: templates, Logs: logs, Log: log}
}

// ListTemplates returns every saved template, oldest first.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.Templates.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "templates": templates})
}

type saveTemplateRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SaveTemplate creates a template or overwrites one by ID. Templates cannot
// be deleted through the API.
func (h *TemplateHandler) SaveTemplate(c *gin.Context) {
	var req saveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if req.Name == "" || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Template name and body are required"})
		return
	}

	tmpl := &models.EmailTemplate{
		ID:      req.ID,
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if tmpl.ID == "" {
		tmpl.ID = uuid.NewString()
	}

	if err := h.Templates.Save(tmpl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "template": tmpl})
}

// ListLogs returns the full dispatch history, oldest first.
func (h *TemplateHandler) ListLogs(c *gin.Context) {
	logs, err := h.Logs.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load email logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": logs})
}
