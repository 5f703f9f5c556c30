package notes

import (
	"context"
	"errors"

	"voicelog/cmd/server/handlers/handlerutil"
	"voicelog/cmd/server/handlers/httperr"
	"voicelog/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the interface for notes service
type Service interface {
	Create(ctx context.Context, userID bson.ObjectID, userEmail string, req notes.CreateNoteRequest) (*notes.NoteResponse, error)
	Get(ctx context.Context, noteID bson.ObjectID) (*notes.NoteResponse, error)
	List(ctx context.Context, req notes.ListNotesRequest) (*notes.ListNotesResponse, error)
	Update(ctx context.Context, userID, noteID bson.ObjectID, req notes.UpdateNoteRequest) (*notes.NoteResponse, error)
	AppendWorkUpdate(ctx context.Context, noteID bson.ObjectID, authorEmail string, req notes.AppendWorkUpdateRequest) (*notes.NoteResponse, error)
	CloseIssue(ctx context.Context, noteID bson.ObjectID) (*notes.NoteResponse, error)
	Delete(ctx context.Context, userID, noteID bson.ObjectID) error
}

// Handlers contains the notes HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// mapServiceError translates domain sentinels into HTTP errors. Anything not
// matched here falls back to handlerutil's generic 404/500 treatment.
func mapServiceError(err error, handlerName string, userID bson.ObjectID, noteID *bson.ObjectID) error {
	switch {
	case errors.Is(err, notes.ErrEmptyText),
		errors.Is(err, notes.ErrInvalidCategory),
		errors.Is(err, notes.ErrInvalidStatus),
		errors.Is(err, notes.ErrInvalidLimit):
		return httperr.Fail(httperr.E{Status: 400, Message: err.Error()})
	case errors.Is(err, notes.ErrNotAuthorized):
		return httperr.Fail(httperr.E{Status: 403, Message: err.Error()})
	case errors.Is(err, notes.ErrNotComplaint):
		return httperr.Fail(httperr.E{Status: 409, Message: err.Error()})
	}
	return handlerutil.HandleServiceError(err, handlerName, userID, noteID, notes.ErrNoteNotFound)
}

// Create handles note creation
// @Summary Create a new note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body notes.CreateNoteRequest true "Create note request"
// @Success 201 {object} notes.NoteResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}
	userEmail, err := handlerutil.GetUserEmail(c)
	if err != nil {
		return err
	}

	var req notes.CreateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	resp, err := h.service.Create(c.Context(), userID, userEmail, req)
	if err != nil {
		return mapServiceError(err, "Create", userID, nil)
	}

	return c.Status(201).JSON(resp)
}

// List handles notes listing
// @Summary List notes newest-first across all users
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param category query string false "Exact category filter"
// @Param q query string false "Case-insensitive text search"
// @Param limit query int false "Limit (default: 100, max: 500)" minimum(1) maximum(500)
// @Success 200 {object} notes.ListNotesResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req notes.ListNotesRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "List"); err != nil {
		return err
	}

	resp, err := h.service.List(c.Context(), req)
	if err != nil {
		return mapServiceError(err, "List", userID, nil)
	}

	return c.JSON(resp)
}

// Get handles fetching a single note
// @Summary Get a note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.NoteResponse
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractNoteID(c, userID, "Get", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	resp, err := h.service.Get(c.Context(), noteID)
	if err != nil {
		return mapServiceError(err, "Get", userID, &noteID)
	}

	return c.JSON(resp)
}

// Update handles note updates
// @Summary Update a note (owner only)
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.UpdateNoteRequest true "Update note request"
// @Success 200 {object} notes.NoteResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Router /notes/{id} [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractNoteID(c, userID, "Update", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.UpdateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	resp, err := h.service.Update(c.Context(), userID, noteID, req)
	if err != nil {
		return mapServiceError(err, "Update", userID, &noteID)
	}

	return c.JSON(resp)
}

// AppendWorkUpdate appends a work update to a Customer Complaints note
// @Summary Append a work update (any authenticated user)
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.AppendWorkUpdateRequest true "Work update"
// @Success 200 {object} notes.NoteResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Router /notes/{id}/work-updates [post]
func (h *Handlers) AppendWorkUpdate(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}
	userEmail, err := handlerutil.GetUserEmail(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractNoteID(c, userID, "AppendWorkUpdate", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.AppendWorkUpdateRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "AppendWorkUpdate"); err != nil {
		return err
	}

	resp, err := h.service.AppendWorkUpdate(c.Context(), noteID, userEmail, req)
	if err != nil {
		return mapServiceError(err, "AppendWorkUpdate", userID, &noteID)
	}

	return c.JSON(resp)
}

// CloseIssue marks a Customer Complaints note Completed
// @Summary Close a complaint (any authenticated user, idempotent)
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.NoteResponse
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Router /notes/{id}/close [post]
func (h *Handlers) CloseIssue(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractNoteID(c, userID, "CloseIssue", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	resp, err := h.service.CloseIssue(c.Context(), noteID)
	if err != nil {
		return mapServiceError(err, "CloseIssue", userID, &noteID)
	}

	return c.JSON(resp)
}

// Delete handles note deletion
// @Summary Delete a note (owner only)
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 204
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	noteID, err := handlerutil.ExtractNoteID(c, userID, "Delete", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Context(), userID, noteID)
	if err != nil {
		return mapServiceError(err, "Delete", userID, &noteID)
	}

	return c.SendStatus(204)
}
