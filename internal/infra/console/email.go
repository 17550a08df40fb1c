package console

import (
	"context"
	"io"

	"pipenotify/internal/domain/notification"
)

var _ notification.Provider = (*EmailService)(nil)

// EmailService is the email-style console provider.
type EmailService struct {
	w *lineWriter
}

// NewEmailService creates an email-style provider writing to out (stdout when nil).
func NewEmailService(out io.Writer) *EmailService {
	return &EmailService{w: newLineWriter(out)}
}

// Channel returns the email channel identifier.
func (s *EmailService) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Send writes "Sending email notification: <message> with severity <severity>".
func (s *EmailService) Send(_ context.Context, n notification.Notification) error {
	return s.w.announce("email", n)
}
