package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// captureProvider records every notification it is asked to send.
type captureProvider struct {
	mu      sync.Mutex
	channel Channel
	sent    []Notification
	failIDs map[int]bool
}

func (p *captureProvider) Channel() Channel {
	if p.channel == "" {
		return ChannelEmail
	}
	return p.channel
}

func (p *captureProvider) Send(_ context.Context, n Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	if p.failIDs[n.ID] {
		return fmt.Errorf("boom %d", n.ID)
	}
	return nil
}

func (p *captureProvider) ids() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.sent))
	for i, n := range p.sent {
		out[i] = n.ID
	}
	return out
}

type fakeStore struct {
	mu      sync.Mutex
	logs    []*DeliveryLog
	err     error
	listErr error
}

func (s *fakeStore) Record(_ context.Context, log *DeliveryLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	log.ID = fmt.Sprintf("log-%d", len(s.logs)+1)
	cp := *log
	s.logs = append(s.logs, &cp)
	return nil
}

func (s *fakeStore) List(_ context.Context, filter ListFilter) ([]*DeliveryLog, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.logs, len(s.logs), nil
}

type fakeEnqueuer struct {
	calls [][2]string
	err   error
}

func (e *fakeEnqueuer) EnqueueDispatchStage(dispatchID, stage string) error {
	if e.err != nil {
		return e.err
	}
	e.calls = append(e.calls, [2]string{dispatchID, stage})
	return nil
}

type fakeGuard struct {
	keys     map[string]DispatchRecord
	released []string
	err      error
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{keys: map[string]DispatchRecord{}}
}

func (g *fakeGuard) Claim(_ context.Context, key string, rec DispatchRecord, _ time.Duration) (DispatchRecord, bool, error) {
	if g.err != nil {
		return DispatchRecord{}, false, g.err
	}
	if existing, ok := g.keys[key]; ok {
		return existing, false, nil
	}
	g.keys[key] = rec
	return rec, true, nil
}

func (g *fakeGuard) Release(_ context.Context, key string) error {
	delete(g.keys, key)
	g.released = append(g.released, key)
	return nil
}

var errRedisDown = errors.New("redis down")
