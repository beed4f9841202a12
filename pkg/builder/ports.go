package builder

import (
	"context"
	"sync"
)

// PreferenceKey is the preference entry holding the selected target.
const PreferenceKey = "formLibrary"

// PreferenceStore loads and saves session preferences. Load reports a
// missing key with preference.ErrNotFound.
type PreferenceStore interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
}

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a transient message for the user.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	// Detail carries optional supporting text, such as the submitted values.
	Detail string `json:"detail,omitempty"`
}

// Notifier surfaces notifications, typically as toasts.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Clipboard writes text to the user's clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(ctx context.Context, text string) error

// WriteText calls f.
func (f ClipboardFunc) WriteText(ctx context.Context, text string) error { return f(ctx, text) }

// Recorder is a Notifier that keeps every notification, for hosts that
// drain messages after each operation.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records n.
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Drain returns and clears the recorded notifications.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

type discard struct{}

func (discard) Notify(context.Context, Notification) {}

type noClipboard struct{}

func (noClipboard) WriteText(context.Context, string) error { return ErrNoClipboard }
