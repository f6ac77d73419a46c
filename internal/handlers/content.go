package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/synaptiq/synapse-backend/internal/content"
	"github.com/synaptiq/synapse-backend/internal/logger"
)

type ContentHandler struct {
	log      *logger.Logger
	resolver *content.Resolver
}

func NewContentHandler(log *logger.Logger, resolver *content.Resolver) *ContentHandler {
	return &ContentHandler{log: log.With("handler", "ContentHandler"), resolver: resolver}
}

// GET /api/content/lessons
func (h *ContentHandler) ListLessons(c *gin.Context) {
	docs, err := h.resolver.ResolveAll(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list content lessons", "error", err)
		RespondMapped(c, err)
		return
	}
	RespondOK(c, docs)
}

// GET /api/content/lessons/:id
func (h *ContentHandler) GetLesson(c *gin.Context) {
	doc, err := h.resolver.ResolveByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, doc)
}

// GET /api/content/:track/lessons/:id
func (h *ContentHandler) GetTrackLesson(c *gin.Context) {
	track := c.Param("track")
	if !content.IsLegacyTrack(track) {
		RespondError(c, http.StatusNotFound, "not_found", "unknown track")
		return
	}
	doc, err := h.resolver.ResolveByIDInTrack(c.Request.Context(), track, c.Param("id"))
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, doc)
}

// GET /api/content/flashcards/:track
func (h *ContentHandler) ListFlashcards(c *gin.Context) {
	cards, err := h.resolver.Flashcards(c.Request.Context(), c.Param("track"))
	if err != nil {
		h.log.Error("Failed to list flashcards", "error", err)
		RespondMapped(c, err)
		return
	}
	RespondOK(c, cards)
}
