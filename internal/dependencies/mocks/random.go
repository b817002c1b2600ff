package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/trackquiz/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued results are returned first; once the queue is empty it returns
// "mock-1", "mock-2", ... so generated tokens stay distinct.
type MockRandom struct {
	mu      sync.Mutex
	queue   []string
	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result
func (r *MockRandom) String(length int, alphabet string) string {
	return r.next()
}

// Token returns the next queued result
func (r *MockRandom) Token(length int) string {
	return r.next()
}

// Queue adds values to the result queue
func (r *MockRandom) Queue(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = nil
	r.counter = 0
}

func (r *MockRandom) next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) > 0 {
		result := r.queue[0]
		r.queue = r.queue[1:]
		return result
	}
	r.counter++
	return fmt.Sprintf("mock-%d", r.counter)
}
