package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventAOQCreated          = "aoq_created"
	EventNPSCreated          = "nps_created"
	EventSpecialistsImported = "specialists_imported"
	EventBroadcastFinished   = "broadcast_finished"
)

// AOQEventPayload describes the minimal assessment snapshot for event consumers.
type AOQEventPayload struct {
	AOQID          string    `json:"aoq_id"`
	UserTgID       int64     `json:"user_tg_id"`
	SpecialistID   string    `json:"specialist_id"`
	SpecialistName string    `json:"specialist_name"`
	Score          int       `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
}

// NPSEventPayload carries the follow-up score tied to its assessment.
type NPSEventPayload struct {
	NPSID    string `json:"nps_id"`
	AOQID    string `json:"aoq_id"`
	UserTgID int64  `json:"user_tg_id"`
	Score    int    `json:"score"`
}

// ImportEventPayload lists specialists created by a roster import.
type ImportEventPayload struct {
	CreatedIDs []string `json:"created_ids"`
	AdminTgID  int64    `json:"admin_tg_id"`
	Total      int      `json:"total"`
}

// BroadcastEventPayload is the final tally of a broadcast run.
type BroadcastEventPayload struct {
	AdminTgID int64 `json:"admin_tg_id"`
	Sent      int   `json:"sent"`
	Failed    int   `json:"failed"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
