package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/observability"
	"github.com/aretw0/seqflow/pkg/render"
)

// Stream topics.
const (
	TopicCanvas  = "canvas"
	TopicLibrary = "library"
)

// Event is one server-sent message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// StreamManager fans events out to SSE subscribers, per topic.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for topic. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(topic string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 64)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Subscribers counts the listeners of topic.
func (sm *StreamManager) Subscribers(topic string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[topic])
}

// Broadcast sends msg to every subscriber of topic. Slow clients miss messages.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("sse client buffer full, dropping message", "topic", topic)
		}
	}
}

// Publish encodes ev as JSON and broadcasts it.
func (sm *StreamManager) Publish(topic string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		sm.logger.Error("failed to encode event", "type", ev.Type, "err", err)
		return
	}
	sm.Broadcast(topic, string(data))
}

// Attach streams every command of t to the canvas topic.
func (sm *StreamManager) Attach(t *render.Table) func() {
	return t.Subscribe(func(cmd render.Command) {
		sm.Publish(TopicCanvas, Event{Type: "command", Data: cmd})
	})
}

// runEnd is the wire form of a finished run.
type runEnd struct {
	RunID   string         `json:"run_id"`
	Kind    domain.RunKind `json:"kind"`
	Outcome string         `json:"outcome"`
	Error   string         `json:"error,omitempty"`
}

// Hooks returns lifecycle hooks that stream run boundaries and traversal
// steps to the canvas topic.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			sm.Publish(TopicCanvas, Event{Type: string(e.Type), Data: e})
		},
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			end := runEnd{RunID: e.RunID, Kind: e.Kind, Outcome: observability.Outcome(e.Err)}
			if e.Err != nil {
				end.Error = e.Err.Error()
			}
			sm.Publish(TopicCanvas, Event{Type: string(e.Type), Data: end})
		},
		OnEntityEnter: func(_ context.Context, e *domain.EntityEvent) {
			sm.Publish(TopicCanvas, Event{Type: string(e.Type), Data: e})
		},
		OnEntityLeave: func(_ context.Context, e *domain.EntityEvent) {
			sm.Publish(TopicCanvas, Event{Type: string(e.Type), Data: e})
		},
	}
}
