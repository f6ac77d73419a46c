package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/synaptiq/synapse-backend/internal/services"
)

type LessonHandler struct {
	svc services.LessonService
}

func NewLessonHandler(svc services.LessonService) *LessonHandler {
	return &LessonHandler{svc: svc}
}

// GET /api/lessons
func (h *LessonHandler) ListLessons(c *gin.Context) {
	lessons, err := h.svc.ListLessons(c.Request.Context())
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, lessons)
}

// GET /api/lessons/:slug
func (h *LessonHandler) GetLesson(c *gin.Context) {
	lesson, err := h.svc.GetLessonBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, lesson)
}
