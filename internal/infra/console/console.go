// Package console implements delivery providers that announce each notification
// as a single line on a writer, normally standard output.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"pipenotify/internal/domain/notification"
)

// lineWriter serializes writes so concurrent dispatches never interleave a line.
type lineWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func newLineWriter(out io.Writer) *lineWriter {
	if out == nil {
		out = os.Stdout
	}
	return &lineWriter{out: out}
}

func (w *lineWriter) announce(label string, n notification.Notification) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, err := fmt.Fprintf(w.out, "Sending %s notification: %s with severity %s\n", label, n.Message, n.Severity)
	return err
}

// New returns the console provider for the given channel.
func New(channel notification.Channel, out io.Writer) (notification.Provider, error) {
	switch channel {
	case notification.ChannelEmail:
		return NewEmailService(out), nil
	case notification.ChannelSlack:
		return NewSlackService(out), nil
	default:
		return nil, fmt.Errorf("unsupported channel: %s", channel)
	}
}
