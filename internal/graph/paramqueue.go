package graph

/*------------------------------------------------------------------
 *
 * Purpose:	Bounded, drop-oldest-per-key parameter delivery queue.
 *		An OSC dispatch goroutine calls Push; the audio
 *		thread calls Apply once per tick to drain and apply every
 *		pending update without ever blocking on dispatch. Updates
 *		racing on the same (node, filter, key) triple coalesce to
 *		the most recent value, same as the filterchain stages'
 *		own per-process coalescing one layer further down.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"sync"

	"github.com/oscmex/engine/internal/oscerr"
)

// Update is one parameter delivery: set (node, filter, key) to value.
type Update struct {
	Node   string
	Filter string
	Key    string
	Value  float64
}

type paramKey struct {
	node, filter, key string
}

// ParamQueue coalesces updates by key between ticks. capacity bounds the
// number of distinct in-flight keys; pushing past it evicts the oldest
// pending key rather than blocking the caller, reporting the eviction to
// onDrop as a ScheduleFull error.
type ParamQueue struct {
	mu       sync.Mutex
	capacity int
	order    []paramKey
	pending  map[paramKey]Update
	onDrop   oscerr.Handler
}

func NewParamQueue(capacity int, onDrop oscerr.Handler) *ParamQueue {
	if onDrop == nil {
		onDrop = oscerr.Discard
	}
	return &ParamQueue{
		capacity: capacity,
		pending:  make(map[paramKey]Update),
		onDrop:   onDrop,
	}
}

// Push enqueues an update, overwriting any pending update for the same
// key. Never blocks on anything but the queue's short mutex; the map and
// order slice hold at most capacity distinct keys, but Apply replaces both,
// so Push allocates again as they refill after each drain.
func (q *ParamQueue) Push(u Update) {
	k := paramKey{u.Node, u.Filter, u.Key}
	var dropped Update
	var droppedAny bool
	q.mu.Lock()
	if _, exists := q.pending[k]; !exists {
		if len(q.order) >= q.capacity {
			oldest := q.order[0]
			q.order = q.order[1:]
			dropped = q.pending[oldest]
			droppedAny = true
			delete(q.pending, oldest)
		}
		q.order = append(q.order, k)
	}
	q.pending[k] = u
	q.mu.Unlock()
	if droppedAny {
		q.onDrop(oscerr.New(oscerr.ScheduleFull,
			dropped.Node+"/"+dropped.Filter+"/"+dropped.Key,
			fmt.Errorf("graph: parameter queue full, dropped oldest pending update")))
	}
}

// Apply drains every pending update, invoking fn once per update, in the
// order each key was first pushed since the last Apply.
func (q *ParamQueue) Apply(fn func(Update)) {
	q.mu.Lock()
	order := q.order
	pending := q.pending
	q.order = nil
	q.pending = make(map[paramKey]Update)
	q.mu.Unlock()

	for _, k := range order {
		fn(pending[k])
	}
}
