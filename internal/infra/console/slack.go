package console

import (
	"context"
	"io"

	"pipenotify/internal/domain/notification"
)

var _ notification.Provider = (*SlackService)(nil)

// SlackService is the chat-style console provider.
type SlackService struct {
	w *lineWriter
}

// NewSlackService creates a Slack-style provider writing to out (stdout when nil).
func NewSlackService(out io.Writer) *SlackService {
	return &SlackService{w: newLineWriter(out)}
}

func (s *SlackService) Channel() notification.Channel {
	return notification.ChannelSlack
}

func (s *SlackService) Send(_ context.Context, n notification.Notification) error {
	return s.w.announce("Slack", n)
}
