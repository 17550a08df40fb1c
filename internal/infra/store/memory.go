package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"pipenotify/internal/domain/notification"

	"github.com/google/uuid"
)

var _ notification.DeliveryStore = (*MemoryStore)(nil)

// MemoryStore keeps delivery logs in process memory. It backs the service when
// no Supabase project is configured and is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	logs []*notification.DeliveryLog
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory delivery store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Record stores a copy of the log and assigns its ID and CreatedAt.
func (s *MemoryStore) Record(_ context.Context, log *notification.DeliveryLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = uuid.New().String()
	log.CreatedAt = s.now().UTC()

	stored := *log
	s.logs = append(s.logs, &stored)
	return nil
}

// List returns matching logs newest first.
func (s *MemoryStore) List(_ context.Context, filter notification.ListFilter) ([]*notification.DeliveryLog, int, error) {
	filter = filter.Normalize()

	s.mu.RLock()
	matched := make([]*notification.DeliveryLog, 0)
	for i := len(s.logs) - 1; i >= 0; i-- {
		l := s.logs[i]
		if filter.Stage != "" && l.Stage != filter.Stage {
			continue
		}
		if filter.Channel != "" && l.Channel != filter.Channel {
			continue
		}
		if filter.DispatchID != "" && l.DispatchID != filter.DispatchID {
			continue
		}
		cp := *l
		matched = append(matched, &cp)
	}
	s.mu.RUnlock()

	total := len(matched)
	start := min(filter.Offset(), total)
	end := min(start+filter.PageSize, total)

	return slices.Clip(matched[start:end]), total, nil
}
