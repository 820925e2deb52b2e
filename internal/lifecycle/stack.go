package lifecycle

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// Teardown releases one provisioned resource.
type Teardown func(ctx context.Context) error

// Stack collects teardown functions as resources are created, so a
// failure partway through provisioning can release everything in
// reverse order of creation.
type Stack struct {
	mu        sync.Mutex
	teardowns []Teardown
}

// NewStack returns an empty teardown stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push records a teardown for a freshly created resource.
func (s *Stack) Push(t Teardown) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardowns = append(s.teardowns, t)
}

// Len returns the number of recorded teardowns.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.teardowns)
}

// Unwind runs every teardown in reverse order. A failing teardown does
// not stop the rest; all errors are joined and returned. The stack is
// empty afterwards.
func (s *Stack) Unwind(ctx context.Context) error {
	s.mu.Lock()
	teardowns := s.teardowns
	s.teardowns = nil
	s.mu.Unlock()

	var errs []error
	for _, teardown := range slices.Backward(teardowns) {
		if err := teardown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
