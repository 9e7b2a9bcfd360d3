package dispatcher

/*------------------------------------------------------------------
 *
 * Purpose:	Dispatch of a single message (pattern match + type
 *		reconciliation + tie-break rules) and of a bundle (immediate
 *		vs scheduled, start/end hooks, encounter-order element
 *		sweep). Handler failures are caught and reported; they never
 *		abort dispatch of the remaining matched methods.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"github.com/oscmex/engine/internal/osc"
	"github.com/oscmex/engine/internal/oscerr"
)

// Dispatcher drives method resolution for decoded packets and owns the
// future-bundle scheduler. BundleStart/BundleEnd are invoked around the
// element sweep of every bundle, nested bundles included.
type Dispatcher struct {
	Registry     *Registry
	ErrorHandler oscerr.Handler
	BundleStart  func(osc.Timetag)
	BundleEnd    func()

	scheduler *scheduler
}

// New returns a Dispatcher backed by a fresh registry and a running
// scheduler goroutine. Call Close to stop the scheduler.
func New(errHandler oscerr.Handler) *Dispatcher {
	if errHandler == nil {
		errHandler = oscerr.Discard
	}
	d := &Dispatcher{Registry: NewRegistry(), ErrorHandler: errHandler}
	d.scheduler = newScheduler(d.dispatchBundleNow)
	return d
}

// Close cancels all pending scheduled bundles and stops the scheduler
// goroutine.
func (d *Dispatcher) Close() { d.scheduler.stop() }

// DispatchMessage resolves and invokes every non-default method whose
// pattern matches the message's address, falling back to default methods
// only when nothing non-default fired.
func (d *Dispatcher) DispatchMessage(msg osc.Message) {
	d.Registry.mu.RLock()
	methods := make([]*method, len(d.Registry.methods))
	copy(methods, d.Registry.methods)
	coerce := d.Registry.coerce
	d.Registry.mu.RUnlock()

	fired := false
	for _, m := range methods {
		if m.isDefault || !osc.Match(m.pattern, msg.Address) {
			continue
		}
		args, ok := reconcile(m.typeSpec, msg.Args, coerce)
		if !ok {
			continue
		}
		d.invoke(m, osc.Message{Address: msg.Address, Args: args})
		fired = true
	}
	if fired {
		return
	}
	for _, m := range methods {
		if m.isDefault {
			d.invoke(m, msg)
		}
	}
}

func (d *Dispatcher) invoke(m *method, msg osc.Message) {
	defer func() {
		if r := recover(); r != nil {
			d.ErrorHandler(oscerr.New(oscerr.RuntimeError, msg.Address, fmt.Errorf("handler panic: %v", r)))
		}
	}()
	m.handler(msg)
}

// DispatchBundle dispatches immediately if the timetag is already due,
// otherwise enqueues it on the scheduler heap.
func (d *Dispatcher) DispatchBundle(b osc.Bundle) {
	now := osc.TimetagNow()
	if b.Timetag.Before(now) {
		d.dispatchBundleNow(b)
		return
	}
	d.scheduler.schedule(b)
}

func (d *Dispatcher) dispatchBundleNow(b osc.Bundle) {
	if d.BundleStart != nil {
		d.BundleStart(b.Timetag)
	}
	for _, elem := range b.Elements {
		switch e := elem.(type) {
		case osc.Message:
			d.DispatchMessage(e)
		case osc.Bundle:
			// Nested bundles recurse with the same start/end
			// protocol; some OSC libraries skip them instead.
			d.dispatchBundleNow(e)
		}
	}
	if d.BundleEnd != nil {
		d.BundleEnd()
	}
}

// reconcile applies type reconciliation against typeSpec. An empty
// typeSpec accepts any argument types. Numeric widening (i->h, f->d,
// i<->f and 64-bit counterparts) and T/F->int are permitted when coerce
// is true; otherwise tags must match exactly.
func reconcile(typeSpec string, args []osc.Value, coerce bool) ([]osc.Value, bool) {
	if typeSpec == "" {
		return args, true
	}
	if len(typeSpec) != len(args) {
		return nil, false
	}
	out := make([]osc.Value, len(args))
	for i, want := range typeSpec {
		v := args[i]
		if osc.Tag(want) == v.Tag {
			out[i] = v
			continue
		}
		if !coerce {
			return nil, false
		}
		cv, ok := coerceValue(osc.Tag(want), v)
		if !ok {
			return nil, false
		}
		out[i] = cv
	}
	return out, true
}

func coerceValue(want osc.Tag, v osc.Value) (osc.Value, bool) {
	switch {
	case want == osc.TagInt64 && v.Tag == osc.TagInt32:
		return osc.Int64(int64(v.Raw.(int32))), true
	case want == osc.TagFloat64 && v.Tag == osc.TagFloat32:
		return osc.Float64(float64(v.Raw.(float32))), true
	case want == osc.TagFloat32 && v.Tag == osc.TagInt32:
		return osc.Float32(float32(v.Raw.(int32))), true
	case want == osc.TagFloat64 && v.Tag == osc.TagInt64:
		return osc.Float64(float64(v.Raw.(int64))), true
	case want == osc.TagInt32 && v.Tag == osc.TagFloat32:
		return osc.Int32(int32(v.Raw.(float32))), true
	case want == osc.TagInt64 && v.Tag == osc.TagFloat64:
		return osc.Int64(int64(v.Raw.(float64))), true
	case want == osc.TagInt32 && (v.Tag == osc.TagTrue || v.Tag == osc.TagFalse):
		if v.Tag == osc.TagTrue {
			return osc.Int32(1), true
		}
		return osc.Int32(0), true
	default:
		return osc.Value{}, false
	}
}
