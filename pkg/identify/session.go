package identify

import (
	"context"
	"sync"
	"sync/atomic"

	"riftscan/pkg/vision"
)

// Session serializes a stream of captures from one client. Only the newest
// submission produces a result; older ones are cancelled and return
// ErrSuperseded.
type Session struct {
	svc *Service
	gen atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSession(svc *Service) *Session {
	return &Session{svc: svc}
}

func (s *Session) Submit(ctx context.Context, img vision.Image, lang string) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	g := s.gen.Add(1)
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	res, err := s.svc.Identify(ctx, img, lang)

	s.mu.Lock()
	latest := s.gen.Load() == g
	if latest {
		s.cancel = nil
	}
	s.mu.Unlock()
	if !latest {
		return Result{}, ErrSuperseded
	}
	return res, err
}
