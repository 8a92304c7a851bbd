package voice

import "sync"

// DefaultQueueBytes bounds buffered playback audio per session.
const DefaultQueueBytes = 4 << 20

// PlaybackQueue buffers model audio until the client pulls it. Once
// closed it drops everything pushed to it.
type PlaybackQueue struct {
	mu       sync.Mutex
	chunks   [][]byte
	size     int
	maxBytes int
	closed   bool
}

func NewPlaybackQueue(maxBytes int) *PlaybackQueue {
	if maxBytes <= 0 {
		maxBytes = DefaultQueueBytes
	}
	return &PlaybackQueue{maxBytes: maxBytes}
}

// Push appends a chunk, evicting the oldest audio when over budget.
// It reports false if the queue is closed.
func (q *PlaybackQueue) Push(b []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if len(b) == 0 {
		return true
	}
	q.chunks = append(q.chunks, b)
	q.size += len(b)
	for q.size > q.maxBytes && len(q.chunks) > 1 {
		q.size -= len(q.chunks[0])
		q.chunks[0] = nil
		q.chunks = q.chunks[1:]
	}
	return true
}

// Drain removes and returns every buffered chunk in order.
func (q *PlaybackQueue) Drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.chunks
	q.chunks = nil
	q.size = 0
	return out
}

// Flush discards buffered audio, e.g. when the user barges in. It returns
// the number of chunks dropped.
func (q *PlaybackQueue) Flush() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.flushLocked()
}

// Close flushes and refuses further audio.
func (q *PlaybackQueue) Close() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	return q.flushLocked()
}

func (q *PlaybackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.chunks)
}

func (q *PlaybackQueue) Bytes() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.size
}

func (q *PlaybackQueue) flushLocked() int {
	n := len(q.chunks)
	for i := range q.chunks {
		q.chunks[i] = nil
	}
	q.chunks = nil
	q.size = 0
	return n
}
