package main

import (
	"context"
	"strings"
	"time"

	"voicelog/cmd/server/handlers"
	authHandlers "voicelog/cmd/server/handlers/auth"
	"voicelog/cmd/server/handlers/httperr"
	notesHandlers "voicelog/cmd/server/handlers/notes"
	transcribeHandlers "voicelog/cmd/server/handlers/transcribe"
	usersHandlers "voicelog/cmd/server/handlers/users"
	"voicelog/cmd/server/middlewares"
	"voicelog/internal/clients/mongo"
	"voicelog/internal/config"
	"voicelog/internal/logger"
	authServices "voicelog/internal/services/auth"
	notesServices "voicelog/internal/services/notes"
	transcribeServices "voicelog/internal/services/transcribe"
	"voicelog/internal/utils/crypto"

	_ "voicelog/docs" // Load swagger docs

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// setupRouter configures and returns a Fiber app with all routes
func setupRouter(ctx context.Context, cfg config.Config) *fiber.App {

	// Initialize validator and register password validation
	v := validator.New()
	if err := crypto.RegisterPasswordValidator(v); err != nil {
		logger.L().Error("failed to register password validator", "err", err)
		panic(err)
	}

	// Validate JWT algorithm at boot
	alg := strings.ToUpper(cfg.JWTAlgorithm)
	if alg != "HS256" {
		logger.L().Error("unsupported JWT algorithm", "algorithm", cfg.JWTAlgorithm)
		panic("unsupported JWT algorithm: " + cfg.JWTAlgorithm)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app)
	}

	// Health check endpoint, outside versioned API to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz)

	app.Get("/docs/*", swagger.HandlerDefault)

	app.Static("/", "./web-ui", fiber.Static{
		Browse: false,
		Index:  "index.html",
	})

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}

	jwtMiddleware := middlewares.JWT(cfg)

	limiterMW := middlewares.BuildRateLimiter(cfg.SignInRatePerMin, RateLimitExpiration)

	// Auth routes
	usersRepo := mongo.NewUsersRepo(mongo.DB())
	authSvc := authServices.NewService(usersRepo, cfg, logger.L())
	authH := authHandlers.NewHandlers(authSvc, v)

	authGrp := v1.Group("/auth", limiterMW)
	authGrp.Post("/sign-up", authH.SignUp)
	authGrp.Post("/sign-in", authH.SignIn)

	// Notes routes
	notesRepo, err := mongo.NewNotesRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error(notesServices.ErrCreateNotesRepo.Error(), "error", err)
		panic(err)
	}
	hub := notesServices.NewHub(cfg.WSOutboxBuffer)
	notesSvc := notesServices.NewService(notesRepo, hub, logger.L())
	notesH := notesHandlers.NewHandlers(notesSvc, v)

	notesGrp := v1.Group("/notes", jwtMiddleware)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Get("/", notesH.List)
	notesGrp.Get("/:id", notesH.Get)
	notesGrp.Patch("/:id", notesH.Update)
	notesGrp.Delete("/:id", notesH.Delete)
	notesGrp.Post("/:id/work-updates", notesH.AppendWorkUpdate)
	notesGrp.Post("/:id/close", notesH.CloseIssue)

	// Transcription gateway
	whisper := transcribeServices.NewWhisperClient(
		cfg.TranscribeURL,
		cfg.TranscribeAPIKey,
		cfg.TranscribeModel,
		time.Duration(cfg.TranscribeTimeoutSec)*time.Second,
	)
	transcribeSvc := transcribeServices.NewService(whisper, int64(cfg.MaxAudioBytes), logger.L())
	transcribeH := transcribeHandlers.NewHandlers(transcribeSvc, v)
	v1.Post("/transcribe", jwtMiddleware, transcribeH.Transcribe)

	// User directory
	usersH := usersHandlers.NewHandlers(authSvc)
	v1.Get("/users", jwtMiddleware, usersH.List)

	// WebSocket routes
	wsHandlers := notesHandlers.NewWebSocketHandlers(hub, cfg.JWTSecret, cfg.WSMaxSessionSec)
	app.Use("/ws", notesHandlers.LogWSConnections(cfg.JWTSecret))
	app.Get("/ws/notes/stream", wsHandlers.WSUpgrade, websocket.New(wsHandlers.WSNotesStream))

	// User profile endpoint
	v1.Get("/me", jwtMiddleware, handlers.Me)

	return app
}
