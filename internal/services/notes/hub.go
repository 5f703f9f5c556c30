package notes

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"voicelog/internal/logger"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Subscriber represents a connection that can receive note events
type Subscriber struct {
	UserID bson.ObjectID
	Ch     chan NoteEvent
	Done   chan struct{}
}

// ConnInfo holds connection metadata
type ConnInfo struct {
	ID          ulid.ULID
	ConnectedAt time.Time
	Subscriber  *Subscriber
}

// Hub manages WebSocket connections and broadcasts note events. The note
// collection is shared across users, so every event goes to every connected
// client regardless of who owns the note - clients re-fetch on notification.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[ulid.ULID]ConnInfo
	bufferSize  int
	dropped     uint64
}

// NewHub creates a new event hub with configurable buffer size
func NewHub(bufferSize int) *Hub {
	return &Hub{
		subscribers: make(map[ulid.ULID]ConnInfo),
		bufferSize:  bufferSize,
	}
}

// Subscribe adds a new subscriber to the hub
func (h *Hub) Subscribe(connULID ulid.ULID, userID bson.ObjectID) (*Subscriber, func()) {
	log := logger.L()
	if log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("subscribing connection", "conn_id", connULID.String(), "user_id", userID.Hex())
	}

	sub := &Subscriber{
		UserID: userID,
		Ch:     make(chan NoteEvent, h.bufferSize),
		Done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.subscribers[connULID] = ConnInfo{
		ID:          connULID,
		ConnectedAt: time.Now(),
		Subscriber:  sub,
	}
	h.mu.Unlock()

	cancel := func() {
		h.Unsubscribe(connULID)
	}
	return sub, cancel
}

// Unsubscribe removes a subscriber from the hub
func (h *Hub) Unsubscribe(connULID ulid.ULID) {
	log := logger.L()
	if log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("unsubscribing connection", "conn_id", connULID.String())
	}

	h.mu.Lock()
	connInfo, exists := h.subscribers[connULID]
	if exists {
		delete(h.subscribers, connULID)
	}
	h.mu.Unlock()

	if exists {
		close(connInfo.Subscriber.Ch)
		close(connInfo.Subscriber.Done)
	}
}

// Broadcast delivers ev to every connected subscriber
func (h *Hub) Broadcast(_ context.Context, ev NoteEvent) {
	if ev.Note == nil {
		return
	}

	log := logger.L()
	if log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("broadcasting event", "note_id", ev.Note.ID.Hex(), "event_type", ev.Type)
	}

	h.mu.RLock()
	for _, connInfo := range h.subscribers {
		sendOrDrop(connInfo.Subscriber.Ch, ev, func() {
			atomic.AddUint64(&h.dropped, 1)
			if log != nil {
				log.Warn("outbox full, dropping event", "conn_id", connInfo.ID.String(), "user_id", connInfo.Subscriber.UserID.Hex(), "event_type", ev.Type)
			}
		})
	}
	h.mu.RUnlock()
}

// GetSubscriberCount returns the current number of subscribers (for testing)
func (h *Hub) GetSubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// sendOrDrop is the only place that can decide to drop an event.
func sendOrDrop(ch chan NoteEvent, ev NoteEvent, onDrop func()) {
	select {
	case ch <- ev: // hot path, no nesting
	default:
		onDrop()
	}
}

// Stats returns current counters for observability / tests.
func (h *Hub) Stats() (subscribers int, dropped uint64) {
	return h.GetSubscriberCount(), atomic.LoadUint64(&h.dropped)
}
