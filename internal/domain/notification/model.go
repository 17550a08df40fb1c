package notification

import (
	"fmt"
	"strings"
	"time"

	"pipenotify/internal/common"
)

// Channel represents a notification delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSlack Channel = "slack"
)

// validChannels is the set of all recognized delivery channels.
var validChannels = map[Channel]bool{
	ChannelEmail: true,
	ChannelSlack: true,
}

// IsValidChannel checks whether a delivery channel is recognized.
func IsValidChannel(c Channel) bool {
	return validChannels[c]
}

// Severity is the importance level attached to a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// IsValid reports whether s is one of the three known severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError:
		return true
	}
	return false
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity converts user input into a Severity. Matching is case-insensitive.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", common.NewValidationError(fmt.Sprintf("unsupported severity: %q", raw))
	}
	return s, nil
}

// Notification is an immutable record of a message raised by a pipeline stage.
// It is passed by value; there is nothing to mutate once it has been built.
type Notification struct {
	ID        int       `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotification builds a notification, rejecting unknown severities.
func NewNotification(id int, message string, severity Severity, ts time.Time) (Notification, error) {
	if !severity.IsValid() {
		return Notification{}, common.NewValidationError(fmt.Sprintf("unsupported severity: %q", severity))
	}
	return Notification{
		ID:        id,
		Message:   message,
		Severity:  severity,
		Timestamp: ts,
	}, nil
}

// DispatchResponse is the API response payload after a stage dispatch is enqueued.
type DispatchResponse struct {
	DispatchID     string `json:"dispatch_id"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	Stage          string `json:"stage"`
	Channel        string `json:"channel"`
	Status         string `json:"status"`
}

// ServiceStatus describes what this API process serves.
type ServiceStatus struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	Pipeline        string `json:"pipeline"`
	Stages          int    `json:"stages"`
	Channel         string `json:"channel"`
	DeliveryHistory bool   `json:"delivery_history"`
}
