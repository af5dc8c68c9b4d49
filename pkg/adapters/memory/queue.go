package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tendril/pkg/domain"
)

// Queue is an UpdateSource fed by Push. Updates are returned in push order,
// one per Poll.
type Queue struct {
	mu      sync.Mutex
	pending []*domain.Definition
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push enqueues an update document.
func (q *Queue) Push(update *domain.Definition) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, update.Clone())
}

// Poll dequeues the oldest update, or returns nil when the queue is empty.
func (q *Queue) Poll(ctx context.Context) (*domain.Definition, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, nil
	}
	next := q.pending[0]
	q.pending = q.pending[1:]
	return next, nil
}

// Len returns the number of pending updates.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
