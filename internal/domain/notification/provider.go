package notification

import "context"

// Provider defines the contract for a notification delivery channel.
// Implementations live in infra/ (e.g., the console email and Slack variants).
type Provider interface {
	// Send delivers a single notification.
	Send(ctx context.Context, n Notification) error

	// Channel returns which delivery channel this provider handles.
	Channel() Channel
}

// ProviderFunc adapts a plain function into a Provider for the given channel.
type ProviderFunc struct {
	Ch Channel
	Fn func(ctx context.Context, n Notification) error
}

func (p ProviderFunc) Send(ctx context.Context, n Notification) error {
	return p.Fn(ctx, n)
}

func (p ProviderFunc) Channel() Channel {
	return p.Ch
}
