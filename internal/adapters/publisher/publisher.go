// Package publisher fans card events out to the push sinks: the WebSocket
// hub and, optionally, a Redis stream.
package publisher

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/pkg/metrics"
)

// Publisher delivers one card event.
type Publisher interface {
	Publish(ctx context.Context, ev model.CardEvent) error
}

// Sink is a named Publisher.
type Sink struct {
	Name string
	Publisher
}

// Multi publishes every event to all sinks. A failing sink does not stop the
// others; their errors are combined.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a fan-out over sinks. Nil publishers are skipped.
func NewMulti(sinks ...Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s.Publisher != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Add appends a sink.
func (m *Multi) Add(name string, p Publisher) {
	if p != nil {
		m.sinks = append(m.sinks, Sink{Name: name, Publisher: p})
	}
}

// Sinks returns the sink names in publish order.
func (m *Multi) Sinks() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name
	}
	return names
}

func (m *Multi) Publish(ctx context.Context, ev model.CardEvent) error {
	var combined error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			metrics.RecordPublisherError(s.Name)
			combined = errors.CombineErrors(combined, errors.Wrapf(err, "sink %s", s.Name))
		}
	}
	return combined
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, model.CardEvent) error { return nil }
