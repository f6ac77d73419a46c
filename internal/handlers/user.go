package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/synaptiq/synapse-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetMe(c.Request.Context())
	if err != nil {
		RespondMapped(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}
