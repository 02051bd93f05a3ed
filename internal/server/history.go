package server

import (
	"sync"

	"github.com/eapache/queue"
)

// History is a bounded FIFO of broadcast lines. When the buffer is full the
// oldest line is dropped on every push.
type History struct {
	mu  sync.Mutex
	max int
	q   *queue.Queue
}

// NewHistory creates a history buffer retaining up to max lines. A max of
// zero disables retention entirely.
func NewHistory(max int) *History {
	return &History{
		max: max,
		q:   queue.New(),
	}
}

// Push appends line, evicting the oldest entries beyond the buffer's bound.
func (h *History) Push(line string) {
	if h.max <= 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.q.Add(line)
	for h.q.Length() > h.max {
		h.q.Remove()
	}
}

// Len returns the number of retained lines.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.q.Length()
}

// Tail copies the most recent n lines in chronological order. It returns
// fewer lines when the buffer holds fewer, and nil when n is not positive.
func (h *History) Tail(n int) []string {
	if n <= 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	length := h.q.Length()
	if length == 0 {
		return nil
	}
	if n > length {
		n = length
	}

	tail := make([]string, 0, n)
	for i := length - n; i < length; i++ {
		tail = append(tail, h.q.Get(i).(string))
	}
	return tail
}
