package transcribe

import (
	"context"
	"errors"

	"voicelog/cmd/server/handlers/handlerutil"
	"voicelog/cmd/server/handlers/httperr"
	"voicelog/internal/logger"
	"voicelog/internal/services/transcribe"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Service defines the interface for the transcription service
type Service interface {
	Transcribe(ctx context.Context, req transcribe.TranscribeRequest) (*transcribe.TranscribeResponse, error)
}

// Handlers contains the transcription HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new transcription handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// Transcribe converts an audio clip to text
// @Summary Transcribe a voice recording
// @Tags transcribe
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body transcribe.TranscribeRequest true "Base64 audio clip"
// @Success 200 {object} transcribe.TranscribeResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 413 {object} httperr.E
// @Failure 415 {object} httperr.E
// @Failure 422 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /transcribe [post]
func (h *Handlers) Transcribe(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req transcribe.TranscribeRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Transcribe"); err != nil {
		return err
	}

	resp, err := h.service.Transcribe(c.Context(), req)
	if err != nil {
		return mapTranscribeError(err, userID.Hex())
	}

	return c.JSON(resp)
}

func mapTranscribeError(err error, userIDHex string) error {
	switch {
	case errors.Is(err, transcribe.ErrInvalidAudio):
		return httperr.Fail(httperr.E{Status: 400, Message: err.Error()})
	case errors.Is(err, transcribe.ErrAudioTooLarge):
		return httperr.Fail(httperr.E{Status: 413, Message: err.Error()})
	case errors.Is(err, transcribe.ErrUnsupportedFormat):
		return httperr.Fail(httperr.E{Status: 415, Message: err.Error()})
	case errors.Is(err, transcribe.ErrNoSpeech):
		return httperr.Fail(httperr.E{Status: 422, Message: err.Error()})
	case errors.Is(err, transcribe.ErrService):
		logger.L().Error("transcription upstream failed", "handler", "Transcribe", "userID", userIDHex, "error", err)
		return httperr.Fail(httperr.ErrBadGateway)
	}
	logger.L().Error("transcription failed", "handler", "Transcribe", "userID", userIDHex, "error", err)
	return httperr.Fail(httperr.ErrInternal)
}
