// Package activity captures the log records emitted while serving one request
// so they can be returned to the caller alongside the result.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultCategory = "GENERAL"

type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Category  string                 `json:"category"`
	Message   string                 `json:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// Collector accumulates events. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	events []Event
	min    slog.Level
}

func NewCollector(min slog.Level) *Collector {
	return &Collector{min: min}
}

func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *Collector) add(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

type ctxKey struct{}

func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func FromContext(ctx context.Context) *Collector {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(ctxKey{}).(*Collector)
	return c
}

// Handler forwards records to next and also copies them into the collector
// carried by the record's context, if any.
type Handler struct {
	next  slog.Handler
	attrs []slog.Attr
}

func NewHandler(next slog.Handler) *Handler {
	return &Handler{next: next}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	if c := FromContext(ctx); c != nil && level >= c.min {
		return true
	}
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if c := FromContext(ctx); c != nil && r.Level >= c.min {
		c.add(h.event(r))
	}
	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{next: h.next.WithAttrs(attrs), attrs: merged}
}

// WithGroup only affects the forwarded output; collected events stay flat.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), attrs: h.attrs}
}

func (h *Handler) event(r slog.Record) Event {
	e := Event{
		Timestamp: r.Time,
		Level:     r.Level.String(),
		Category:  defaultCategory,
		Message:   r.Message,
	}
	collect := func(a slog.Attr) bool {
		if a.Key == "category" {
			e.Category = a.Value.String()
			return true
		}
		if e.Meta == nil {
			e.Meta = make(map[string]interface{})
		}
		v := a.Value.Resolve()
		if err, ok := v.Any().(error); ok {
			e.Meta[a.Key] = err.Error()
		} else {
			e.Meta[a.Key] = v.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)
	return e
}
