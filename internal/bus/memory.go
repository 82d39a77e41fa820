package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Envelope is the delivered form of a published event.
type Envelope struct {
	ID         string
	DetailType string
	Source     string
	Time       time.Time
	Detail     json.RawMessage
}

type subscription struct {
	filter  Filter
	handler func(Envelope)
}

// Memory is an in-process bus used by tests and local wiring. Delivery is
// synchronous fan-out to every matching subscriber in subscription order;
// callers must not rely on that order, the production transport provides
// none.
type Memory struct {
	mu   sync.Mutex
	subs []subscription

	// Published keeps every envelope in publish order for assertions.
	published []Envelope
}

// NewMemory returns an empty in-process bus.
func NewMemory() *Memory { return &Memory{} }

// Publish marshals detail, assigns an event id, and delivers to matching
// subscribers.
func (m *Memory) Publish(_ context.Context, detailType, source string, detail any) error {
	body, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", detailType, err)
	}
	env := Envelope{
		ID:         uuid.NewString(),
		DetailType: detailType,
		Source:     source,
		Time:       time.Now().UTC(),
		Detail:     body,
	}

	m.mu.Lock()
	m.published = append(m.published, env)
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, s := range subs {
		if matches(s.filter, env) {
			s.handler(env)
		}
	}
	return nil
}

// Subscribe registers a handler for every event matching the filter.
func (m *Memory) Subscribe(f Filter, handler func(Envelope)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, subscription{filter: f, handler: handler})
}

// Published returns a copy of every envelope published so far.
func (m *Memory) Published() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Envelope, len(m.published))
	copy(out, m.published)
	return out
}

func matches(f Filter, env Envelope) bool {
	if f.DetailType != "" && f.DetailType != env.DetailType {
		return false
	}
	if f.Source != "" && f.Source != env.Source {
		return false
	}
	if len(f.Detail) == 0 {
		return true
	}
	var fields map[string]any
	if err := json.Unmarshal(env.Detail, &fields); err != nil {
		return false
	}
	for k, want := range f.Detail {
		got, ok := fields[k].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}
