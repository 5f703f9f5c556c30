package notes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	errDB       = errors.New("db error")
	mockNoteArg = mock.AnythingOfType("*notes.Note")
)

// MockNotesRepo is a mock implementation of Repository
type MockNotesRepo struct {
	mock.Mock
}

func (m *MockNotesRepo) Create(ctx context.Context, note *Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNotesRepo) FindByID(ctx context.Context, noteID bson.ObjectID) (*Note, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) List(ctx context.Context, filter ListNotesRequest) ([]*Note, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Note), args.Error(1)
}

func (m *MockNotesRepo) Update(ctx context.Context, userID, noteID bson.ObjectID, patch UpdateNote) (*Note, error) {
	args := m.Called(ctx, userID, noteID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) AppendWorkUpdate(ctx context.Context, noteID bson.ObjectID, wu WorkUpdate, status Status) (*Note, error) {
	args := m.Called(ctx, noteID, wu, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) SetStatus(ctx context.Context, noteID bson.ObjectID, status Status) (*Note, error) {
	args := m.Called(ctx, noteID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	args := m.Called(ctx, userID, noteID)
	return args.Error(0)
}

// MockBus is a mock implementation of Bus
type MockBus struct {
	mock.Mock
}

func (m *MockBus) Broadcast(ctx context.Context, ev NoteEvent) {
	m.Called(ctx, ev)
}

// newServiceWithMocks wires together a Service + fresh mocks and lets the
// caller register expectations before the test starts.
func newServiceWithMocks(
	t *testing.T,
	setup func(repo *MockNotesRepo, bus *MockBus),
) (*Service, *MockNotesRepo, *MockBus) {
	t.Helper()

	repo := new(MockNotesRepo)
	bus := new(MockBus)

	if setup != nil {
		setup(repo, bus)
	}

	svc := NewService(repo, bus, silentLogger)
	return svc, repo, bus
}

// makeComplaint returns a Customer Complaints note owned by userID.
func makeComplaint(id, userID bson.ObjectID, status Status, updates ...WorkUpdate) *Note {
	now := time.Now().UTC()
	if updates == nil {
		updates = []WorkUpdate{}
	}
	return &Note{
		ID:        id,
		UserID:    userID,
		UserEmail: "owner@example.com",
		Text:      "Printer is broken",
		Category:  CategoryCustomerComplaint,
		Workflow: &Workflow{
			Status:      status,
			WorkUpdates: updates,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func expectBroadcast(bus *MockBus, eventType string) {
	bus.On("Broadcast", mock.Anything, mock.MatchedBy(func(ev NoteEvent) bool {
		return ev.Type == eventType
	})).Return()
}

func TestServiceCreate(t *testing.T) {
	userID := bson.NewObjectID()

	tests := []struct {
		name    string
		req     CreateNoteRequest
		setup   func(*MockNotesRepo, *MockBus)
		wantErr error
		check   func(*testing.T, *NoteResponse)
	}{
		{
			name: "plain note has no workflow",
			req:  CreateNoteRequest{Text: "Learned about B-trees", Category: string(CategoryNewLearning)},
			setup: func(repo *MockNotesRepo, bus *MockBus) {
				repo.On("Create", mock.Anything, mockNoteArg).Return(nil)
				expectBroadcast(bus, "created")
			},
			check: func(t *testing.T, resp *NoteResponse) {
				assert.Nil(t, resp.Note.Workflow)
				assert.Equal(t, CategoryNewLearning, resp.Note.Category)
			},
		},
		{
			name: "complaint starts at Not Started with empty log",
			req:  CreateNoteRequest{Text: "Printer is broken", Category: string(CategoryCustomerComplaint), AssignedTo: "tech@example.com"},
			setup: func(repo *MockNotesRepo, bus *MockBus) {
				repo.On("Create", mock.Anything, mockNoteArg).Return(nil)
				expectBroadcast(bus, "created")
			},
			check: func(t *testing.T, resp *NoteResponse) {
				require.NotNil(t, resp.Note.Workflow)
				assert.Equal(t, StatusNotStarted, resp.Note.Workflow.Status)
				assert.Equal(t, "tech@example.com", resp.Note.Workflow.AssignedTo)
				assert.Empty(t, resp.Note.Workflow.WorkUpdates)
				assert.NotNil(t, resp.Note.Workflow.WorkUpdates)
			},
		},
		{
			name:    "whitespace-only text is rejected before any write",
			req:     CreateNoteRequest{Text: "   \n\t ", Category: string(CategoryWorkUpdate)},
			wantErr: ErrEmptyText,
		},
		{
			name:    "unknown category",
			req:     CreateNoteRequest{Text: "hello", Category: "Gossip"},
			wantErr: ErrInvalidCategory,
		},
		{
			name: "repository error",
			req:  CreateNoteRequest{Text: "hello", Category: string(CategoryWorkUpdate)},
			setup: func(repo *MockNotesRepo, bus *MockBus) {
				repo.On("Create", mock.Anything, mockNoteArg).Return(errDB)
			},
			wantErr: ErrCreateNote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, bus := newServiceWithMocks(t, tt.setup)

			resp, err := svc.Create(context.Background(), userID, "owner@example.com", tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				if errors.Is(tt.wantErr, ErrEmptyText) || errors.Is(tt.wantErr, ErrInvalidCategory) {
					repo.AssertNotCalled(t, "Create")
					bus.AssertNotCalled(t, "Broadcast")
				}
			} else {
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, userID, resp.Note.UserID)
				assert.Equal(t, "owner@example.com", resp.Note.UserEmail)
				assert.False(t, resp.Note.ID.IsZero())
				assert.False(t, resp.Note.CreatedAt.IsZero())
				if tt.check != nil {
					tt.check(t, resp)
				}
			}

			repo.AssertExpectations(t)
			bus.AssertExpectations(t)
		})
	}
}

func TestServiceUpdateAuthorization(t *testing.T) {
	ownerID := bson.NewObjectID()
	strangerID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	newText := "corrected text"

	svc, repo, bus := newServiceWithMocks(t, func(repo *MockNotesRepo, _ *MockBus) {
		repo.On("FindByID", mock.Anything, noteID).
			Return(makeComplaint(noteID, ownerID, StatusNotStarted), nil)
	})

	resp, err := svc.Update(context.Background(), strangerID, noteID, UpdateNoteRequest{Text: &newText})

	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Nil(t, resp)
	repo.AssertNotCalled(t, "Update")
	bus.AssertNotCalled(t, "Broadcast")
}

func TestServiceUpdateValidation(t *testing.T) {
	ownerID := bson.NewObjectID()
	noteID := bson.NewObjectID()

	blank := "   "
	status := string(StatusInProgress)
	badStatus := "Done"

	tests := []struct {
		name    string
		stored  *Note
		req     UpdateNoteRequest
		wantErr error
	}{
		{
			name:    "text trimming to empty",
			stored:  makeComplaint(noteID, ownerID, StatusNotStarted),
			req:     UpdateNoteRequest{Text: &blank},
			wantErr: ErrEmptyText,
		},
		{
			name: "workflow fields rejected on plain note",
			stored: &Note{
				ID:       noteID,
				UserID:   ownerID,
				Text:     "some idea",
				Category: CategoryImprovementIdea,
			},
			req:     UpdateNoteRequest{Status: &status},
			wantErr: ErrNotComplaint,
		},
		{
			name:    "unknown status value",
			stored:  makeComplaint(noteID, ownerID, StatusNotStarted),
			req:     UpdateNoteRequest{Status: &badStatus},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, bus := newServiceWithMocks(t, func(repo *MockNotesRepo, _ *MockBus) {
				repo.On("FindByID", mock.Anything, noteID).Return(tt.stored, nil)
			})

			resp, err := svc.Update(context.Background(), ownerID, noteID, tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
			repo.AssertNotCalled(t, "Update")
			bus.AssertNotCalled(t, "Broadcast")
		})
	}
}

func TestServiceUpdatePartialPatch(t *testing.T) {
	ownerID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	stored := makeComplaint(noteID, ownerID, StatusInProgress)
	assignee := "new-assignee@example.com"

	svc, repo, _ := newServiceWithMocks(t, func(repo *MockNotesRepo, bus *MockBus) {
		repo.On("FindByID", mock.Anything, noteID).Return(stored, nil)
		repo.On("Update", mock.Anything, ownerID, noteID, mock.MatchedBy(func(patch UpdateNote) bool {
			// Only the assignee is patched; text and work updates stay untouched.
			return patch.Text == nil &&
				patch.Status == nil &&
				patch.WorkUpdates == nil &&
				patch.AssignedTo != nil && *patch.AssignedTo == assignee
		})).Return(stored, nil)
		expectBroadcast(bus, "updated")
	})

	resp, err := svc.Update(context.Background(), ownerID, noteID, UpdateNoteRequest{AssignedTo: &assignee})

	require.NoError(t, err)
	require.NotNil(t, resp)
	repo.AssertExpectations(t)
}

func TestServiceAppendWorkUpdateStatusTransitions(t *testing.T) {
	ownerID := bson.NewObjectID()

	tests := []struct {
		name       string
		current    Status
		wantStatus Status
	}{
		{"not started moves to in progress", StatusNotStarted, StatusInProgress},
		{"in progress stays in progress", StatusInProgress, StatusInProgress},
		{"completed does not regress", StatusCompleted, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noteID := bson.NewObjectID()
			stored := makeComplaint(noteID, ownerID, tt.current)

			svc, repo, _ := newServiceWithMocks(t, func(repo *MockNotesRepo, bus *MockBus) {
				repo.On("FindByID", mock.Anything, noteID).Return(stored, nil)
				repo.On("AppendWorkUpdate", mock.Anything, noteID, mock.MatchedBy(func(wu WorkUpdate) bool {
					return wu.Text == "Ordered replacement part" &&
						wu.AuthorEmail == "tech@example.com" &&
						!wu.Timestamp.IsZero()
				}), tt.wantStatus).Return(stored, nil)
				expectBroadcast(bus, "updated")
			})

			resp, err := svc.AppendWorkUpdate(context.Background(), noteID, "tech@example.com",
				AppendWorkUpdateRequest{Text: "Ordered replacement part"})

			require.NoError(t, err)
			require.NotNil(t, resp)
			repo.AssertExpectations(t)
		})
	}
}

func TestServiceAppendWorkUpdateRejections(t *testing.T) {
	ownerID := bson.NewObjectID()
	noteID := bson.NewObjectID()

	t.Run("empty update text", func(t *testing.T) {
		svc, repo, bus := newServiceWithMocks(t, nil)

		resp, err := svc.AppendWorkUpdate(context.Background(), noteID, "tech@example.com",
			AppendWorkUpdateRequest{Text: " \t "})

		assert.ErrorIs(t, err, ErrEmptyText)
		assert.Nil(t, resp)
		repo.AssertNotCalled(t, "FindByID")
		repo.AssertNotCalled(t, "AppendWorkUpdate")
		bus.AssertNotCalled(t, "Broadcast")
	})

	t.Run("not a complaint", func(t *testing.T) {
		stored := &Note{
			ID:       noteID,
			UserID:   ownerID,
			Text:     "shipped the quarterly report",
			Category: CategoryWorkUpdate,
		}
		svc, repo, bus := newServiceWithMocks(t, func(repo *MockNotesRepo, _ *MockBus) {
			repo.On("FindByID", mock.Anything, noteID).Return(stored, nil)
		})

		resp, err := svc.AppendWorkUpdate(context.Background(), noteID, "tech@example.com",
			AppendWorkUpdateRequest{Text: "irrelevant"})

		assert.ErrorIs(t, err, ErrNotComplaint)
		assert.Nil(t, resp)
		repo.AssertNotCalled(t, "AppendWorkUpdate")
		bus.AssertNotCalled(t, "Broadcast")
	})
}

func TestServiceCloseIssueIdempotent(t *testing.T) {
	ownerID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	closed := makeComplaint(noteID, ownerID, StatusCompleted)

	svc, repo, _ := newServiceWithMocks(t, func(repo *MockNotesRepo, bus *MockBus) {
		repo.On("FindByID", mock.Anything, noteID).Return(closed, nil).Twice()
		repo.On("SetStatus", mock.Anything, noteID, StatusCompleted).Return(closed, nil).Twice()
		expectBroadcast(bus, "updated")
	})

	// Closing twice in a row must succeed both times.
	for i := 0; i < 2; i++ {
		resp, err := svc.CloseIssue(context.Background(), noteID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, resp.Note.Workflow.Status)
	}
	repo.AssertExpectations(t)
}

func TestServiceCloseIssueNotComplaint(t *testing.T) {
	noteID := bson.NewObjectID()
	stored := &Note{
		ID:       noteID,
		UserID:   bson.NewObjectID(),
		Text:     "read a paper on consensus",
		Category: CategoryNewLearning,
	}

	svc, repo, bus := newServiceWithMocks(t, func(repo *MockNotesRepo, _ *MockBus) {
		repo.On("FindByID", mock.Anything, noteID).Return(stored, nil)
	})

	resp, err := svc.CloseIssue(context.Background(), noteID)

	assert.ErrorIs(t, err, ErrNotComplaint)
	assert.Nil(t, resp)
	repo.AssertNotCalled(t, "SetStatus")
	bus.AssertNotCalled(t, "Broadcast")
}

func TestServiceDelete(t *testing.T) {
	ownerID := bson.NewObjectID()
	strangerID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	stored := makeComplaint(noteID, ownerID, StatusNotStarted)

	t.Run("non-owner is rejected without a write", func(t *testing.T) {
		svc, repo, bus := newServiceWithMocks(t, func(repo *MockNotesRepo, _ *MockBus) {
			repo.On("FindByID", mock.Anything, noteID).Return(stored, nil)
		})

		err := svc.Delete(context.Background(), strangerID, noteID)

		assert.ErrorIs(t, err, ErrNotAuthorized)
		repo.AssertNotCalled(t, "Delete")
		bus.AssertNotCalled(t, "Broadcast")
	})

	t.Run("owner delete broadcasts", func(t *testing.T) {
		svc, repo, bus := newServiceWithMocks(t, func(repo *MockNotesRepo, bus *MockBus) {
			repo.On("FindByID", mock.Anything, noteID).Return(stored, nil)
			repo.On("Delete", mock.Anything, ownerID, noteID).Return(nil)
			expectBroadcast(bus, "deleted")
		})

		err := svc.Delete(context.Background(), ownerID, noteID)

		require.NoError(t, err)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})
}

func TestServiceListAppliesSearchInMemory(t *testing.T) {
	a := makeComplaint(bson.NewObjectID(), bson.NewObjectID(), StatusNotStarted)
	a.Text = "Database performance is terrible"
	b := makeComplaint(bson.NewObjectID(), bson.NewObjectID(), StatusNotStarted)
	b.Text = "Lobby coffee machine leaks"

	svc, repo, _ := newServiceWithMocks(t, func(repo *MockNotesRepo, _ *MockBus) {
		repo.On("List", mock.Anything, mock.AnythingOfType("notes.ListNotesRequest")).
			Return([]*Note{a, b}, nil)
	})

	resp, err := svc.List(context.Background(), ListNotesRequest{Q: "PERFORMANCE"})

	require.NoError(t, err)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, a.ID, resp.Notes[0].ID)
	assert.Equal(t, 1, resp.Count)
	repo.AssertExpectations(t)
}

func TestServiceListRejectsUnknownCategory(t *testing.T) {
	svc, repo, _ := newServiceWithMocks(t, nil)

	resp, err := svc.List(context.Background(), ListNotesRequest{Category: "Rants"})

	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.Nil(t, resp)
	repo.AssertNotCalled(t, "List")
}

// fakeNotesRepo holds a single note in memory so a test can walk a multi-step
// workflow without scripting every mock return.
type fakeNotesRepo struct {
	MockNotesRepo
	stored *Note
}

func (f *fakeNotesRepo) Create(_ context.Context, note *Note) error {
	f.stored = note
	return nil
}

func (f *fakeNotesRepo) FindByID(_ context.Context, _ bson.ObjectID) (*Note, error) {
	if f.stored == nil {
		return nil, ErrNoteNotFound
	}
	return f.stored, nil
}

func (f *fakeNotesRepo) AppendWorkUpdate(_ context.Context, _ bson.ObjectID, wu WorkUpdate, status Status) (*Note, error) {
	f.stored.Workflow.WorkUpdates = append(f.stored.Workflow.WorkUpdates, wu)
	f.stored.Workflow.Status = status
	return f.stored, nil
}

func (f *fakeNotesRepo) SetStatus(_ context.Context, _ bson.ObjectID, status Status) (*Note, error) {
	f.stored.Workflow.Status = status
	return f.stored, nil
}

// TestComplaintLifecycleScenario walks the full collaborative complaint flow:
// create, first update from another collaborator, close, late update.
func TestComplaintLifecycleScenario(t *testing.T) {
	ownerID := bson.NewObjectID()

	repo := &fakeNotesRepo{}
	bus := new(MockBus)
	bus.On("Broadcast", mock.Anything, mock.Anything).Return()

	svc := NewService(repo, bus, silentLogger)
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, "u1@x.com", CreateNoteRequest{
		Text:     "Printer is broken",
		Category: string(CategoryCustomerComplaint),
	})
	require.NoError(t, err)
	require.Equal(t, StatusNotStarted, created.Note.Workflow.Status)
	require.Empty(t, created.Note.Workflow.WorkUpdates)

	after1, err := svc.AppendWorkUpdate(ctx, created.Note.ID, "u2@x.com",
		AppendWorkUpdateRequest{Text: "Ordered replacement part"})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, after1.Note.Workflow.Status)
	require.Len(t, after1.Note.Workflow.WorkUpdates, 1)
	assert.Equal(t, "u2@x.com", after1.Note.Workflow.WorkUpdates[0].AuthorEmail)

	closed, err := svc.CloseIssue(ctx, created.Note.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, closed.Note.Workflow.Status)

	after2, err := svc.AppendWorkUpdate(ctx, created.Note.ID, "u3@x.com",
		AppendWorkUpdateRequest{Text: "Follow-up note"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, after2.Note.Workflow.Status)
	require.Len(t, after2.Note.Workflow.WorkUpdates, 2)
	assert.Equal(t, "Ordered replacement part", after2.Note.Workflow.WorkUpdates[0].Text)
	assert.Equal(t, "Follow-up note", after2.Note.Workflow.WorkUpdates[1].Text)
}
