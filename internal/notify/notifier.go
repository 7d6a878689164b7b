package notify

import (
	"context"
	"log/slog"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier receives the user-facing messages the cart flows produce
// ("removed", "stock exhausted", quantity-bound warnings). The storefront
// renders these as toasts; the service side only has to surface them.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

type slogNotifier struct {
	logger *slog.Logger
}

func NewSlogNotifier(logger *slog.Logger) Notifier {
	return &slogNotifier{logger: logger}
}

func (n *slogNotifier) Notify(_ context.Context, level Level, message string) {
	if level == LevelError {
		n.logger.Warn("User notification", slog.String("level", string(level)), slog.String("message", message))
		return
	}

	n.logger.Info("User notification", slog.String("level", string(level)), slog.String("message", message))
}

// Recorder keeps notifications in memory, for tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

type Entry struct {
	Level   Level
	Message string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, Entry{Level: level, Message: message})
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Entry(nil), r.entries...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
}
