package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pipenotify/internal/domain/notification"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

const tableName = "delivery_logs"

var _ notification.DeliveryStore = (*SupabaseStore)(nil)

// SupabaseStore implements DeliveryStore using the Supabase Go SDK.
type SupabaseStore struct {
	client *supa.Client
}

// NewSupabaseStore creates a new Supabase-backed delivery store.
func NewSupabaseStore(supabaseURL, serviceKey string) (*SupabaseStore, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

// supabaseRow is the internal representation for Supabase PostgREST insert/select.
type supabaseRow struct {
	ID             string  `json:"id,omitempty"`
	DispatchID     string  `json:"dispatch_id"`
	Pipeline       string  `json:"pipeline"`
	Stage          string  `json:"stage"`
	NotificationID int     `json:"notification_id"`
	Message        string  `json:"message"`
	Severity       string  `json:"severity"`
	Channel        string  `json:"channel"`
	Status         string  `json:"status"`
	ErrorMessage   *string `json:"error_message,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
	SentAt         *string `json:"sent_at,omitempty"`
}

// Record inserts a new delivery log record.
func (s *SupabaseStore) Record(ctx context.Context, log *notification.DeliveryLog) error {
	row := logToRow(log)

	var results []supabaseRow
	data, _, err := s.client.From(tableName).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}

	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parsing insert response: %w", err)
	}

	if len(results) > 0 {
		log.ID = results[0].ID
		if t, ok := parseTime(results[0].CreatedAt); ok {
			log.CreatedAt = t
		}
	}

	return nil
}

// List retrieves delivery logs with pagination and filtering.
func (s *SupabaseStore) List(ctx context.Context, filter notification.ListFilter) ([]*notification.DeliveryLog, int, error) {
	filter = filter.Normalize()
	offset := filter.Offset()

	query := s.client.From(tableName).Select("*", "exact", false)

	if filter.Stage != "" {
		query = query.Eq("stage", filter.Stage)
	}
	if filter.Channel != "" {
		query = query.Eq("channel", filter.Channel)
	}
	if filter.DispatchID != "" {
		query = query.Eq("dispatch_id", filter.DispatchID)
	}

	query = query.Order("created_at", &postgrest.OrderOpts{Ascending: false})
	query = query.Range(offset, offset+filter.PageSize-1, "")

	data, count, err := query.Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("listing delivery logs: %w", err)
	}

	var rows []supabaseRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("parsing delivery list: %w", err)
	}

	logs := make([]*notification.DeliveryLog, len(rows))
	for i := range rows {
		logs[i] = rowToLog(&rows[i])
	}

	return logs, int(count), nil
}

func logToRow(log *notification.DeliveryLog) supabaseRow {
	row := supabaseRow{
		DispatchID:     log.DispatchID,
		Pipeline:       log.Pipeline,
		Stage:          log.Stage,
		NotificationID: log.NotificationID,
		Message:        log.Message,
		Severity:       string(log.Severity),
		Channel:        log.Channel,
		Status:         string(log.Status),
	}
	if log.ErrorMessage != "" {
		row.ErrorMessage = &log.ErrorMessage
	}
	if log.SentAt != nil {
		sentAt := log.SentAt.UTC().Format(time.RFC3339Nano)
		row.SentAt = &sentAt
	}
	return row
}

// rowToLog converts a supabaseRow to a DeliveryLog.
func rowToLog(row *supabaseRow) *notification.DeliveryLog {
	log := &notification.DeliveryLog{
		ID:             row.ID,
		DispatchID:     row.DispatchID,
		Pipeline:       row.Pipeline,
		Stage:          row.Stage,
		NotificationID: row.NotificationID,
		Message:        row.Message,
		Severity:       notification.Severity(row.Severity),
		Channel:        row.Channel,
		Status:         notification.DeliveryStatus(row.Status),
	}

	if row.ErrorMessage != nil {
		log.ErrorMessage = *row.ErrorMessage
	}
	if t, ok := parseTime(row.CreatedAt); ok {
		log.CreatedAt = t
	}
	if row.SentAt != nil {
		if t, ok := parseTime(*row.SentAt); ok {
			log.SentAt = &t
		}
	}

	return log
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
