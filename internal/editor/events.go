package editor

import (
	"sync"

	"github.com/professor-lee/FalseClose/internal/model"
)

// EventType identifies what happened to the project.
type EventType string

const (
	// EventNodeChanged fires after every successful node mutation, live or replayed.
	EventNodeChanged EventType = "node_changed"

	// EventPageCreated and EventPageDeleted fire for page management.
	EventPageCreated EventType = "page_created"
	EventPageDeleted EventType = "page_deleted"

	// EventProjectLoaded fires after Load and Reset.
	EventProjectLoaded EventType = "project_loaded"

	// EventProjectChanged fires for project-level edits (global styles, canvas).
	EventProjectChanged EventType = "project_changed"
)

// Event is a typed change notification.
type Event struct {
	Type   EventType
	PageID string

	// Change is set for EventNodeChanged. Indices and removed nodes are the
	// ones actually applied.
	Change *model.Change

	// Page is a snapshot of the created page for EventPageCreated.
	Page *model.Page

	// Replay is true when the change comes from Undo or Redo.
	Replay bool
}

// Handler receives events synchronously, in subscription order.
type Handler func(Event)

// Bus is a synchronous publish/subscribe channel.
//
// Thread-safety: Subscribe and Publish are safe for concurrent use. Handlers
// run on the publishing goroutine.
type Bus struct {
	mu       sync.Mutex
	next     int
	handlers []subscription
}

type subscription struct {
	id int
	fn Handler
}

// NewBus returns a bus with no subscribers.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.handlers = append(b.handlers, subscription{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.handlers {
			if s.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every current subscriber. Each handler gets its
// own copy of the change.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	handlers := make([]Handler, len(b.handlers))
	for i, s := range b.handlers {
		handlers[i] = s.fn
	}
	b.mu.Unlock()

	for _, fn := range handlers {
		delivered := ev
		if ev.Change != nil {
			c := ev.Change.Clone()
			delivered.Change = &c
		}
		if ev.Page != nil {
			delivered.Page = ev.Page.Clone()
		}
		fn(delivered)
	}
}
