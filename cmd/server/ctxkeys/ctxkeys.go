// Package ctxkeys holds the fiber.Ctx.Locals keys shared between middlewares
// and handlers.
package ctxkeys

const (
	// UserIDKey holds the authenticated user's id (hex string).
	UserIDKey = "userID"
	// UserEmailKey holds the authenticated user's email.
	UserEmailKey = "userEmail"
	// ParentCtxKey carries the request-bound context into WebSocket handlers.
	ParentCtxKey = "parentCtx"
)
