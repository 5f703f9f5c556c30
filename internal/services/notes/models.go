package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Category classifies a note and controls which workflow fields apply.
type Category string

// Known note categories. Customer Complaints is the only category that
// carries workflow state (status, assignment, work updates).
const (
	CategoryWorkUpdate        Category = "Work Update"
	CategoryImprovementIdea   Category = "Improvement Idea"
	CategoryNewLearning       Category = "New Learning"
	CategoryCustomerComplaint Category = "Customer Complaints"
)

// ParseCategory validates a raw category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	switch c {
	case CategoryWorkUpdate, CategoryImprovementIdea, CategoryNewLearning, CategoryCustomerComplaint:
		return c, nil
	}
	return "", ErrInvalidCategory
}

// Status is the workflow stage of a Customer Complaints note.
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// advanceOnWorkUpdate returns the status a note moves to when a work update
// is appended. Not Started becomes In Progress; Completed never regresses.
func advanceOnWorkUpdate(current Status) Status {
	if current == StatusCompleted {
		return StatusCompleted
	}
	return StatusInProgress
}

// WorkUpdate is a single append-only annotation on a Customer Complaints note.
// Entries are never edited or removed once written; slice order is
// chronological insertion order.
type WorkUpdate struct {
	Text        string    `bson:"text" json:"text" validate:"required" example:"Ordered replacement part"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp" example:"2025-06-01T23:00:26.005703677Z"`
	AuthorEmail string    `bson:"author_email" json:"author_email" example:"tech@example.com"`
}

// Workflow holds the fields that only exist on Customer Complaints notes.
// Keeping them in a separate sub-document (nil for every other category)
// means a note of another category cannot carry stray workflow state.
type Workflow struct {
	Status      Status       `bson:"status" json:"status" example:"Not Started"`
	AssignedTo  string       `bson:"assigned_to,omitempty" json:"assigned_to,omitempty" example:"support@example.com"`
	WorkUpdates []WorkUpdate `bson:"work_updates" json:"work_updates"`
}

// Note is a transcribed voice note.
type Note struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	UserID    bson.ObjectID `bson:"user_id" json:"user_id" example:"683cdb8aa96ad71e8e075bd0"`
	UserEmail string        `bson:"user_email" json:"user_email" example:"owner@example.com"`
	Text      string        `bson:"text" json:"text" validate:"required" example:"Printer on floor 3 is broken"`
	Category  Category      `bson:"category" json:"category" example:"Customer Complaints"`
	Workflow  *Workflow     `bson:"workflow,omitempty" json:"workflow,omitempty"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// IsComplaint reports whether workflow operations apply to this note.
func (n *Note) IsComplaint() bool {
	return n.Category == CategoryCustomerComplaint
}

// UpdateNote represents the fields that can be updated in a note.
// Nil pointers mean "leave unchanged"; the category itself is immutable.
type UpdateNote struct {
	Text        *string       `json:"text,omitempty" validate:"omitempty,min=1"`
	Status      *Status       `json:"status,omitempty"`
	AssignedTo  *string       `json:"assigned_to,omitempty"`
	WorkUpdates *[]WorkUpdate `json:"work_updates,omitempty"`
}

// NoteEvent represents an event that occurred on a note
type NoteEvent struct {
	Type string `json:"type"` // "created", "updated", "deleted"
	Note *Note  `json:"note"`
}
