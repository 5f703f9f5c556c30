package transcribe

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"

	"voicelog/internal/utils/sanitize"
)

// Service validates audio payloads and delegates speech-to-text to a
// Transcriber. It holds no state beyond its collaborators.
type Service struct {
	gw       Transcriber
	maxBytes int64
	log      *slog.Logger
}

// NewService creates a new transcription service. maxBytes caps the decoded
// audio size.
func NewService(gw Transcriber, maxBytes int64, log *slog.Logger) *Service {
	return &Service{
		gw:       gw,
		maxBytes: maxBytes,
		log:      log,
	}
}

// TranscribeRequest carries a base64-encoded audio clip.
type TranscribeRequest struct {
	Audio    string `json:"audio" validate:"required" example:"UklGRiQAAABXQVZF..."`
	MimeType string `json:"mime_type" validate:"required" example:"audio/webm"`
}

// TranscribeResponse is the recognized text.
type TranscribeResponse struct {
	Text string `json:"text" example:"Printer on floor 3 is broken"`
}

// Transcribe decodes the payload, enforces format and size limits, and runs
// speech-to-text. A transcript that trims to nothing is reported as
// ErrNoSpeech rather than silently creating an empty note upstream.
func (s *Service) Transcribe(ctx context.Context, req TranscribeRequest) (*TranscribeResponse, error) {
	if _, ok := extensions[req.MimeType]; !ok {
		return nil, ErrUnsupportedFormat
	}

	// Browser MediaRecorder uploads arrive as data URLs; strip the prefix.
	payload := req.Audio
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		payload = payload[idx+len(";base64,"):]
	}

	audio, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidAudio
	}
	if len(audio) == 0 {
		return nil, ErrInvalidAudio
	}
	if int64(len(audio)) > s.maxBytes {
		return nil, ErrAudioTooLarge
	}

	text, err := s.gw.Transcribe(ctx, audio, req.MimeType)
	if err != nil {
		s.log.Error("transcription failed", "error", err, "mime_type", req.MimeType, "audio_bytes", len(audio))
		return nil, err
	}

	text = sanitize.Clean(text)
	if text == "" {
		return nil, ErrNoSpeech
	}

	return &TranscribeResponse{Text: text}, nil
}
