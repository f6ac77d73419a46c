package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/synaptiq/synapse-backend/internal/logger"
	"github.com/synaptiq/synapse-backend/internal/services"
)

type ProgressionHandler struct {
	log *logger.Logger
	svc services.ProgressionService
}

func NewProgressionHandler(log *logger.Logger, svc services.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{log: log.With("handler", "ProgressionHandler"), svc: svc}
}

// GET /api/progression
func (h *ProgressionHandler) Get(c *gin.Context) {
	snapshot, err := h.svc.Get(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to fetch progression", "error", err)
		RespondMapped(c, err)
		return
	}
	RespondOK(c, snapshot)
}

// POST /api/progression
func (h *ProgressionHandler) Apply(c *gin.Context) {
	var input services.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}
	if err := h.svc.ApplyEvent(c.Request.Context(), input); err != nil {
		h.log.Error("Failed to apply progression event", "error", err)
		RespondMapped(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}
