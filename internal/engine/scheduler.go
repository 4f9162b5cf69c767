package engine

import (
	"sync"
	"time"
)

type FrameID uint64

// FrameFunc receives the frame timestamp, measured from any fixed origin.
type FrameFunc func(now time.Duration)

// Scheduler requests one callback on the next display frame. A cancelled
// request never fires.
type Scheduler interface {
	RequestFrame(cb FrameFunc) FrameID
	CancelFrame(id FrameID)
}

type frameRequest struct {
	id FrameID
	cb FrameFunc
}

// FrameQueue is a Scheduler the host drains once per display frame.
// Callbacks requested while draining run on the following Dispatch.
type FrameQueue struct {
	mu      sync.Mutex
	nextID  FrameID
	pending []frameRequest
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

func (q *FrameQueue) RequestFrame(cb FrameFunc) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	q.pending = append(q.pending, frameRequest{id: q.nextID, cb: cb})
	return q.nextID
}

func (q *FrameQueue) CancelFrame(id FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, r := range q.pending {
		if r.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Dispatch runs every request pending at the time of the call and returns
// how many ran.
func (q *FrameQueue) Dispatch(now time.Duration) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, r := range batch {
		r.cb(now)
	}
	return len(batch)
}

func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
