package notification

import "time"

// DeliveryStatus represents the outcome of delivering one notification.
type DeliveryStatus string

const (
	StatusQueued DeliveryStatus = "queued"
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)

// DeliveryLog is a persisted record of one notification handed to a provider.
type DeliveryLog struct {
	ID             string         `json:"id"`
	DispatchID     string         `json:"dispatch_id"`
	Pipeline       string         `json:"pipeline"`
	Stage          string         `json:"stage"`
	NotificationID int            `json:"notification_id"`
	Message        string         `json:"message"`
	Severity       Severity       `json:"severity"`
	Channel        string         `json:"channel"`
	Status         DeliveryStatus `json:"status"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
}

// ListFilter defines pagination and filtering options for listing delivery logs.
type ListFilter struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Stage      string `form:"stage"`
	Channel    string `form:"channel"`
	DispatchID string `form:"dispatch_id"`
}

// Normalize applies pagination defaults: page 1, 20 items, at most 100 per page.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	return f
}

// Offset returns the zero-based index of the first item on the page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// ListResponse wraps a paginated list of delivery logs.
type ListResponse struct {
	Deliveries []*DeliveryLog `json:"deliveries"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}
