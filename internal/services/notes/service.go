package notes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"voicelog/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles notes business logic: it owns the note lifecycle and the
// Customer Complaints workflow state machine. It is a thin orchestrator over
// the repository - no note state is cached between calls.
type Service struct {
	repo Repository
	bus  Bus
	log  *slog.Logger
}

// NewService creates a new notes service
func NewService(repo Repository, bus Bus, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
		log:  log,
	}
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	Text       string `json:"text" validate:"required" example:"Printer on floor 3 is broken"`
	Category   string `json:"category" validate:"required" example:"Customer Complaints"`
	AssignedTo string `json:"assigned_to" validate:"omitempty,email" example:"support@example.com"`
}

// UpdateNoteRequest represents a note update request. Omitted fields are left
// unchanged; workflow fields are only accepted for Customer Complaints notes.
type UpdateNoteRequest struct {
	Text        *string       `json:"text,omitempty" validate:"omitempty,min=1"`
	Status      *string       `json:"status,omitempty"`
	AssignedTo  *string       `json:"assigned_to,omitempty"`
	WorkUpdates *[]WorkUpdate `json:"work_updates,omitempty"`
}

// AppendWorkUpdateRequest represents a work update submission
type AppendWorkUpdateRequest struct {
	Text string `json:"text" validate:"required" example:"Ordered replacement part"`
}

// ListNotesRequest represents a list notes request
type ListNotesRequest struct {
	Category string `query:"category" validate:"omitempty" example:"Improvement Idea"`
	Q        string `query:"q"        validate:"omitempty,min=1,max=256" example:"performance"`
	Limit    int    `query:"limit"    validate:"omitempty,min=1,max=500" example:"100"`
}

// NoteResponse represents a single note response
type NoteResponse struct {
	Note *Note `json:"note"`
}

// ListNotesResponse represents a list of notes response
type ListNotesResponse struct {
	Notes []*Note `json:"notes"`
	Count int     `json:"count" example:"42"`
}

const defaultListLimit = 100

// Create creates a new note from transcribed (or typed) text.
// Customer Complaints notes start their workflow at Not Started with an
// empty work-update log; other categories carry no workflow at all.
func (s *Service) Create(ctx context.Context, userID bson.ObjectID, userEmail string, req CreateNoteRequest) (*NoteResponse, error) {
	category, err := ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	text := sanitize.Clean(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}

	now := time.Now().UTC()
	note := &Note{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		UserEmail: userEmail,
		Text:      text,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if category == CategoryCustomerComplaint {
		note.Workflow = &Workflow{
			Status:      StatusNotStarted,
			AssignedTo:  req.AssignedTo,
			WorkUpdates: []WorkUpdate{},
		}
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "user_id", userID.Hex())
		return nil, ErrCreateNote
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: "created",
		Note: note,
	})

	return &NoteResponse{Note: note}, nil
}

// Get returns a single note. Notes are readable by every authenticated user.
func (s *Service) Get(ctx context.Context, noteID bson.ObjectID) (*NoteResponse, error) {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrFindNote.Error(), "error", err, "note_id", noteID.Hex())
		return nil, ErrFindNote
	}
	return &NoteResponse{Note: note}, nil
}

// List retrieves notes newest-first across all users. The category filter is
// pushed down to the repository; the free-text term is applied in memory via
// Filter so search semantics stay identical to the pure helper.
func (s *Service) List(ctx context.Context, req ListNotesRequest) (*ListNotesResponse, error) {
	if req.Limit == 0 {
		req.Limit = defaultListLimit
	}
	if req.Limit < 0 || req.Limit > 500 {
		return nil, ErrInvalidLimit
	}
	if req.Category != "" {
		if _, err := ParseCategory(req.Category); err != nil {
			return nil, err
		}
	}

	notesList, err := s.repo.List(ctx, req)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err)
		return nil, ErrListNotes
	}

	if req.Q != "" {
		notesList = Filter(notesList, "", req.Q)
	}

	return &ListNotesResponse{
		Notes: notesList,
		Count: len(notesList),
	}, nil
}

// Update edits a note. Only the owner may edit; workflow fields are rejected
// for notes outside the Customer Complaints category. Omitted fields keep
// their stored values.
func (s *Service) Update(ctx context.Context, userID, noteID bson.ObjectID, req UpdateNoteRequest) (*NoteResponse, error) {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		return nil, translateLookupErr(err)
	}
	if note.UserID != userID {
		s.log.Info("edit rejected for non-owner", "user_id", userID.Hex(), "note_id", noteID.Hex())
		return nil, ErrNotAuthorized
	}

	patch, err := buildPatch(note, req)
	if err != nil {
		return nil, err
	}

	updatedNote, err := s.repo.Update(ctx, userID, noteID, patch)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return nil, ErrUpdateNote
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: "updated",
		Note: updatedNote,
	})

	return &NoteResponse{Note: updatedNote}, nil
}

// buildPatch validates an update request against the stored note and turns it
// into a repository patch.
func buildPatch(note *Note, req UpdateNoteRequest) (UpdateNote, error) {
	var patch UpdateNote

	if req.Text != nil {
		text := sanitize.Clean(*req.Text)
		if text == "" {
			return UpdateNote{}, ErrEmptyText
		}
		patch.Text = &text
	}

	wantsWorkflow := req.Status != nil || req.AssignedTo != nil || req.WorkUpdates != nil
	if wantsWorkflow && !note.IsComplaint() {
		return UpdateNote{}, ErrNotComplaint
	}

	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return UpdateNote{}, err
		}
		patch.Status = &status
	}
	patch.AssignedTo = req.AssignedTo
	patch.WorkUpdates = req.WorkUpdates

	return patch, nil
}

// AppendWorkUpdate appends a timestamped annotation to a Customer Complaints
// note. Any authenticated collaborator may call this - the category is built
// around shared follow-up, so there is no ownership check. Appending moves
// Not Started to In Progress; a Completed note keeps collecting updates
// without its status regressing.
func (s *Service) AppendWorkUpdate(ctx context.Context, noteID bson.ObjectID, authorEmail string, req AppendWorkUpdateRequest) (*NoteResponse, error) {
	text := sanitize.Clean(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}

	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		return nil, translateLookupErr(err)
	}
	if !note.IsComplaint() || note.Workflow == nil {
		return nil, ErrNotComplaint
	}

	wu := WorkUpdate{
		Text:        text,
		Timestamp:   time.Now().UTC(),
		AuthorEmail: authorEmail,
	}
	status := advanceOnWorkUpdate(note.Workflow.Status)

	updatedNote, err := s.repo.AppendWorkUpdate(ctx, noteID, wu, status)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "note_id", noteID.Hex())
		return nil, ErrUpdateNote
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: "updated",
		Note: updatedNote,
	})

	return &NoteResponse{Note: updatedNote}, nil
}

// CloseIssue marks a Customer Complaints note Completed. Closing an already
// closed note is a no-op success.
func (s *Service) CloseIssue(ctx context.Context, noteID bson.ObjectID) (*NoteResponse, error) {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		return nil, translateLookupErr(err)
	}
	if !note.IsComplaint() || note.Workflow == nil {
		return nil, ErrNotComplaint
	}

	updatedNote, err := s.repo.SetStatus(ctx, noteID, StatusCompleted)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "note_id", noteID.Hex())
		return nil, ErrUpdateNote
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: "updated",
		Note: updatedNote,
	})

	return &NoteResponse{Note: updatedNote}, nil
}

// Delete deletes a note belonging to the user
func (s *Service) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		return translateLookupErr(err)
	}
	if note.UserID != userID {
		s.log.Info("delete rejected for non-owner", "user_id", userID.Hex(), "note_id", noteID.Hex())
		return ErrNotAuthorized
	}

	if err := s.repo.Delete(ctx, userID, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return ErrNoteNotFound
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "user_id", userID.Hex(), "note_id", noteID.Hex())
		return ErrDeleteNote
	}

	// Broadcast deletion event with minimal note data
	deletedNote := &Note{
		ID:     noteID,
		UserID: userID,
	}

	s.bus.Broadcast(ctx, NoteEvent{
		Type: "deleted",
		Note: deletedNote,
	})

	return nil
}

func translateLookupErr(err error) error {
	if errors.Is(err, ErrNoteNotFound) {
		return ErrNoteNotFound
	}
	return ErrFindNote
}
