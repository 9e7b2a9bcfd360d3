package dispatcher

/*------------------------------------------------------------------
 *
 * Purpose:	Scheduler thread for future-dated bundles: a min-heap keyed
 *		by timetag, a goroutine that sleeps until the earliest entry
 *		is due. Two bundles with the same timetag dispatch in the
 *		order they were enqueued. Cancellation on shutdown drops all
 *		pending bundles without dispatching them.
 *
 *---------------------------------------------------------------*/

import (
	"container/heap"
	"sync"
	"time"

	"github.com/oscmex/engine/internal/osc"
)

type scheduledBundle struct {
	bundle osc.Bundle
	seq    uint64
}

// bundleHeap orders by (timetag, sequence) so same-timetag bundles
// preserve enqueue order.
type bundleHeap []scheduledBundle

func (h bundleHeap) Len() int { return len(h) }
func (h bundleHeap) Less(i, j int) bool {
	if h[i].bundle.Timetag != h[j].bundle.Timetag {
		return h[i].bundle.Timetag < h[j].bundle.Timetag
	}
	return h[i].seq < h[j].seq
}
func (h bundleHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *bundleHeap) Push(x interface{}) { *h = append(*h, x.(scheduledBundle)) }
func (h *bundleHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type scheduler struct {
	mu       sync.Mutex
	heap     bundleHeap
	nextSeq  uint64
	wake     chan struct{}
	done     chan struct{}
	dispatch func(osc.Bundle)
}

func newScheduler(dispatch func(osc.Bundle)) *scheduler {
	s := &scheduler{
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		dispatch: dispatch,
	}
	go s.run()
	return s
}

func (s *scheduler) schedule(b osc.Bundle) {
	s.mu.Lock()
	s.nextSeq++
	heap.Push(&s.heap, scheduledBundle{bundle: b, seq: s.nextSeq})
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *scheduler) stop() {
	close(s.done)
}

func (s *scheduler) run() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		s.mu.Lock()
		var wait time.Duration
		if s.heap.Len() == 0 {
			wait = time.Hour
		} else {
			due := s.heap[0].bundle.Timetag.Time()
			wait = time.Until(due)
			if wait < 0 {
				wait = 0
			}
		}
		s.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-s.done:
			return
		case <-s.wake:
			continue
		case <-timer.C:
			s.fireDue()
		}
	}
}

func (s *scheduler) fireDue() {
	now := osc.TimetagNow()
	for {
		s.mu.Lock()
		if s.heap.Len() == 0 || !s.heap[0].bundle.Timetag.Before(now) {
			s.mu.Unlock()
			return
		}
		item := heap.Pop(&s.heap).(scheduledBundle)
		s.mu.Unlock()
		s.dispatch(item.bundle)
	}
}
