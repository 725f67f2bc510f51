package generator

import (
	"context"
	"sync"
)

// Stub returns fixed fixtures instead of calling a model. It records the
// requests it receives. A Stub with neither Generation nor Err behaves like
// a model that answered without an image.
type Stub struct {
	Generation *Generation
	Err        error

	mu       sync.Mutex
	requests []Request
}

func (s *Stub) Generate(ctx context.Context, req Request) (*Generation, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Generation == nil {
		return nil, ErrNoImageGenerated
	}
	out := *s.Generation
	return &out, nil
}

func (s *Stub) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}
