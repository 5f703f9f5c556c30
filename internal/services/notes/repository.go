package notes

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Repository defines the interface for notes repository operations.
//
// Edit and Delete take the requesting user's ID so the store can enforce
// ownership in the same atomic call; the workflow operations
// (AppendWorkUpdate, SetStatus) deliberately do not - any authenticated
// collaborator may act on a Customer Complaints note.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, noteID bson.ObjectID) (*Note, error)
	List(ctx context.Context, filter ListNotesRequest) ([]*Note, error)
	Update(ctx context.Context, userID, noteID bson.ObjectID, patch UpdateNote) (*Note, error)
	AppendWorkUpdate(ctx context.Context, noteID bson.ObjectID, wu WorkUpdate, status Status) (*Note, error)
	SetStatus(ctx context.Context, noteID bson.ObjectID, status Status) (*Note, error)
	Delete(ctx context.Context, userID, noteID bson.ObjectID) error
}

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev NoteEvent)
}
