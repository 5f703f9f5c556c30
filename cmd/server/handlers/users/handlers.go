package users

import (
	"context"

	"voicelog/cmd/server/handlers/handlerutil"
	"voicelog/cmd/server/handlers/httperr"
	"voicelog/internal/logger"
	"voicelog/internal/services/auth"

	"github.com/gofiber/fiber/v2"
)

// DirectoryService defines the interface for the user directory
type DirectoryService interface {
	Directory(ctx context.Context) (*auth.DirectoryResponse, error)
}

// Handlers contains the users HTTP handlers
type Handlers struct {
	service DirectoryService
}

// NewHandlers creates new users handlers
func NewHandlers(service DirectoryService) *Handlers {
	return &Handlers{service: service}
}

// List returns the user directory
// @Summary List all registered users (id, email, username)
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} auth.DirectoryResponse
// @Failure 401 {object} httperr.E
// @Router /users [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.service.Directory(c.Context())
	if err != nil {
		logger.L().Error("directory lookup failed", "handler", "List", "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(resp)
}
