package sim

import "time"

// FrameQueue is a Scheduler driven by the host's display loop: callbacks
// requested during a frame run on the next Fire. It is not safe for
// concurrent use.
type FrameQueue struct {
	pending []func(time.Duration)
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

func (q *FrameQueue) RequestFrame(cb func(now time.Duration)) {
	q.pending = append(q.pending, cb)
}

// Fire runs the callbacks queued before this call and returns how many ran.
func (q *FrameQueue) Fire(now time.Duration) int {
	cbs := q.pending
	q.pending = nil
	for _, cb := range cbs {
		cb(now)
	}
	return len(cbs)
}

func (q *FrameQueue) Pending() int { return len(q.pending) }
