package publish

import (
	"context"
	"sync"
)

// Latest keeps the most recent publication for request handlers.
type Latest struct {
	mu  sync.RWMutex
	pub *Publication
}

func NewLatest() *Latest {
	return &Latest{}
}

func (l *Latest) Publish(_ context.Context, p *Publication) error {
	l.mu.Lock()
	l.pub = p
	l.mu.Unlock()
	return nil
}

// Get returns the last publication, or nil before the first cycle.
func (l *Latest) Get() *Publication {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pub
}
