package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/agrilink-hq/agrilink-client/internal/guest"
)

// ToastNotifier renders user-facing notifications as single terminal
// lines, the CLI stand-in for toast popups.
type ToastNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewToastNotifier(out io.Writer) *ToastNotifier {
	return &ToastNotifier{out: out}
}

var _ guest.Notifier = (*ToastNotifier)(nil)

func (n *ToastNotifier) Success(_ context.Context, msg string) {
	n.write("ok", msg)
}

func (n *ToastNotifier) Warn(_ context.Context, msg string) {
	n.write("warning", msg)
}

func (n *ToastNotifier) write(level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "[%s] %s\n", level, msg)
}
