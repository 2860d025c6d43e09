// Package console provides terminal implementations of the navigation and notice ports.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
)

// Navigator prints redirects and remembers the current location.
type Navigator struct {
	mu      sync.Mutex
	out     io.Writer
	current string
}

// NewNavigator writes redirect lines to out.
func NewNavigator(out io.Writer) *Navigator {
	return &Navigator{out: out}
}

func (n *Navigator) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
	if _, err := fmt.Fprintf(n.out, "-> %s\n", path); err != nil {
		return fmt.Errorf("write navigation: %w", err)
	}
	return nil
}

// Current returns the last path navigated to.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Notifier prints notices to out and mirrors them to the logger.
type Notifier struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger
}

// NewNotifier creates a Notifier. logger may be nil.
func NewNotifier(out io.Writer, logger *slog.Logger) *Notifier {
	return &Notifier{out: out, logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, notice domainauth.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	prefix := "info"
	if notice.Level == domainauth.NoticeError {
		prefix = "error"
	}
	if _, err := fmt.Fprintf(n.out, "[%s] %s\n", prefix, notice.Message); err != nil && n.logger != nil {
		n.logger.WarnContext(ctx, "write notice failed", "error", err)
	}
	if n.logger != nil {
		n.logger.DebugContext(ctx, "notice", "level", string(notice.Level), "message", notice.Message)
	}
}
