// Package dispatcher routes decoded OSC messages and bundles to
// registered methods: pattern matching, type reconciliation, bundle
// start/end hooks, and future-dated bundle scheduling.
package dispatcher

/*------------------------------------------------------------------
 *
 * Purpose:	Method registry: reader-writer locked, ids monotonic
 *		and never reused after removal.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/oscmex/engine/internal/osc"
	"github.com/oscmex/engine/internal/oscerr"
)

// Handler is the capability the dispatcher invokes for a matched message:
// a closure or an object, the dispatcher only knows {invoke(message)}.
type Handler func(osc.Message)

// MethodID identifies a registration for later removal.
type MethodID uint64

type method struct {
	id        MethodID
	pattern   string
	typeSpec  string
	handler   Handler
	isDefault bool
}

// Registry holds every registered method, guarded by a reader-writer
// lock: Dispatch takes the reader lock, Add/Remove take the writer lock.
type Registry struct {
	mu      sync.RWMutex
	methods []*method
	nextID  atomic.Uint64
	coerce  bool
}

// NewRegistry returns an empty registry with type coercion enabled, the
// documented default.
func NewRegistry() *Registry {
	return &Registry{coerce: true}
}

// SetCoercion toggles numeric widening during type reconciliation.
func (r *Registry) SetCoercion(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coerce = enabled
}

// AddMethod registers a non-default handler. typeSpec is either "" (accept
// any argument types) or a string of type-tag characters to reconcile
// against. A malformed pattern is rejected here (registration-time
// validation) even though Match itself never errors.
func (r *Registry) AddMethod(pattern, typeSpec string, handler Handler) (MethodID, error) {
	if err := validatePattern(pattern); err != nil {
		return 0, oscerr.New(oscerr.PatternError, pattern, err)
	}
	return r.add(pattern, typeSpec, handler, false), nil
}

// AddDefaultMethod registers a handler invoked only when no non-default
// method matched a message.
func (r *Registry) AddDefaultMethod(handler Handler) MethodID {
	return r.add("", "", handler, true)
}

func (r *Registry) add(pattern, typeSpec string, handler Handler, isDefault bool) MethodID {
	id := MethodID(r.nextID.Add(1))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods = append(r.methods, &method{
		id: id, pattern: pattern, typeSpec: typeSpec, handler: handler, isDefault: isDefault,
	})
	return id
}

// RemoveMethod unregisters a method by id. The id is never reused.
func (r *Registry) RemoveMethod(id MethodID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.methods {
		if m.id == id {
			r.methods = append(r.methods[:i:i], r.methods[i+1:]...)
			return
		}
	}
}

// validatePattern rejects patterns with an unclosed '[' or '{' at
// registration time, distinct from Match's never-error contract on
// arbitrary incoming data.
func validatePattern(pattern string) error {
	depthBrace := 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '[':
			j := i + 1
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j >= len(pattern) {
				return fmt.Errorf("dispatcher: unclosed '[' in pattern %q", pattern)
			}
			i = j
		case '{':
			depthBrace++
		case '}':
			depthBrace--
			if depthBrace < 0 {
				return fmt.Errorf("dispatcher: unmatched '}' in pattern %q", pattern)
			}
		}
	}
	if depthBrace != 0 {
		return fmt.Errorf("dispatcher: unclosed '{' in pattern %q", pattern)
	}
	if pattern == "" || pattern[0] != '/' {
		return fmt.Errorf("dispatcher: pattern must start with '/': %q", pattern)
	}
	return nil
}
