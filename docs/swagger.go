// Package docs VoiceLog API
//
// @title  VoiceLog API
// @version 0.1.0
// @description Voice note capture: transcription, categorized notes, complaint workflow and live updates.
// @host      localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package docs

import (
	_ "voicelog/cmd/server/handlers/httperr"
	_ "voicelog/internal/services/auth"
	_ "voicelog/internal/services/notes"
	_ "voicelog/internal/services/transcribe"
)
