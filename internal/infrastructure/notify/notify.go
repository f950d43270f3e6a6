// Package notify delivers user-visible cart failure messages. Every sink
// returns immediately; none of them can fail the caller.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mrops-br/rocketshoes-cart/internal/domain"
)

// LogSink writes notifications to the structured log
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, n domain.Notification) {
	s.logger.WarnContext(ctx, "User notification",
		slog.String("notification_id", n.ID),
		slog.String("operation", string(n.Op)),
		slog.String("kind", n.Kind),
		slog.Int64("product_id", int64(n.ProductID)),
		slog.String("message", n.Message),
	)
}

// Feed buffers the most recent notifications until a UI drains them.
// When full, the oldest entry is dropped.
type Feed struct {
	mu      sync.Mutex
	buf     []domain.Notification
	cap     int
	dropped int
}

func NewFeed(capacity int) *Feed {
	if capacity < 1 {
		capacity = 1
	}
	return &Feed{cap: capacity}
}

func (f *Feed) Notify(_ context.Context, n domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.buf) == f.cap {
		f.buf = f.buf[1:]
		f.dropped++
	}
	f.buf = append(f.buf, n)
}

// Drain returns the buffered notifications, oldest first, and empties the feed
func (f *Feed) Drain() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.buf
	f.buf = nil
	if out == nil {
		out = []domain.Notification{}
	}
	return out
}

// Dropped reports how many notifications were discarded because the feed was full
func (f *Feed) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// Multi fans a notification out to several sinks
type Multi []domain.NotificationSink

func (m Multi) Notify(ctx context.Context, n domain.Notification) {
	for _, sink := range m {
		sink.Notify(ctx, n)
	}
}
