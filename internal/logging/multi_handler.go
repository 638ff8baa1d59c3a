package logging

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler sends each record to every member enabled for its level.
// Members see their own clone, and one member failing does not skip the rest.
type MultiHandler struct {
	members []slog.Handler
}

func NewMultiHandler(members ...slog.Handler) *MultiHandler {
	return &MultiHandler{members: members}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.members {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range m.members {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	members := make([]slog.Handler, len(m.members))
	for i, h := range m.members {
		members[i] = fn(h)
	}
	return &MultiHandler{members: members}
}
