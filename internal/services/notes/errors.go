package notes

import "errors"

// ErrNoteNotFound - note not found in DB.
var ErrNoteNotFound = errors.New("note not found")

// ErrNotAuthorized is returned when a non-owner tries to edit or delete a note.
var ErrNotAuthorized = errors.New("only the note owner may perform this action")

// ErrEmptyText is returned when note or work-update text trims to nothing.
var ErrEmptyText = errors.New("text must not be empty")

// ErrInvalidCategory is returned for an unknown note category.
var ErrInvalidCategory = errors.New("invalid note category")

// ErrInvalidStatus is returned for an unknown workflow status.
var ErrInvalidStatus = errors.New("invalid workflow status")

// ErrNotComplaint is returned when a workflow operation targets a note that
// is not a Customer Complaints note.
var ErrNotComplaint = errors.New("workflow operations apply only to Customer Complaints notes")

// ErrCreateNote is returned when note creation fails.
var ErrCreateNote = errors.New("failed to create note")

// ErrUpdateNote is returned when note update fails.
var ErrUpdateNote = errors.New("failed to update note")

// ErrDeleteNote is returned when note deletion fails.
var ErrDeleteNote = errors.New("failed to delete note")

// ErrFindNote is returned when loading a single note fails.
var ErrFindNote = errors.New("failed to load note")

// ErrListNotes is returned when notes listing fails.
var ErrListNotes = errors.New("failed to list notes")

// ErrCreateNotesRepo is returned when notes repository creation fails.
var ErrCreateNotesRepo = errors.New("failed to create notes repository")

// ErrInvalidLimit is returned when limit is invalid.
var ErrInvalidLimit = errors.New("invalid limit")
