// Package async provides the tagged state used for every asynchronous
// resource the client displays, and an observable value to publish it.
package async

import "sync"

// Status tags a Resource.
type Status int

const (
	// Idle means nothing was requested yet.
	Idle Status = iota
	Pending
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Resource is exactly one of Idle, Pending, Ready(value) or Failed(err).
// The constructors are the only way to build a non-idle Resource, so a
// Failed resource never carries a stale value.
type Resource[T any] struct {
	status Status
	value  T
	err    error
}

// PendingOf returns a pending resource.
func PendingOf[T any]() Resource[T] {
	return Resource[T]{status: Pending}
}

// ReadyOf returns a ready resource holding v.
func ReadyOf[T any](v T) Resource[T] {
	return Resource[T]{status: Ready, value: v}
}

// FailedOf returns a failed resource holding err.
func FailedOf[T any](err error) Resource[T] {
	return Resource[T]{status: Failed, err: err}
}

func (r Resource[T]) Status() Status { return r.status }
func (r Resource[T]) Loading() bool  { return r.status == Pending }

// Value returns the value and true only when the resource is ready.
func (r Resource[T]) Value() (T, bool) {
	if r.status != Ready {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Err returns the failure, or nil unless the resource failed.
func (r Resource[T]) Err() error {
	if r.status != Failed {
		return nil
	}
	return r.err
}

// Value is a mutex-guarded value that notifies subscribers after each change.
// Notifications are delivered one change at a time in commit order, and a
// change superseded before its turn is never delivered, so the last value a
// subscriber sees is always the current one.
type Value[T any] struct {
	mu      sync.Mutex
	cur     T
	version uint64
	nextID  int
	subs    map[int]func(T)

	// notifyMu serializes fan-out; delivered is the newest version sent.
	notifyMu  sync.Mutex
	delivered uint64
}

// NewValue returns a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial, subs: make(map[int]func(T))}
}

// Get returns the current snapshot.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set swaps in next and notifies subscribers with it.
func (v *Value[T]) Set(next T) {
	v.Update(func(T) (T, bool) { return next, true })
}

// Update applies fn to the current value under the lock. When fn reports
// a change, the new value is stored and subscribers are called outside the
// lock, in subscription order. It returns the value after the update.
func (v *Value[T]) Update(fn func(cur T) (T, bool)) T {
	v.mu.Lock()
	next, changed := fn(v.cur)
	if !changed {
		cur := v.cur
		v.mu.Unlock()
		return cur
	}
	v.cur = next
	v.version++
	version := v.version
	v.mu.Unlock()

	v.notify(version, next)
	return next
}

func (v *Value[T]) notify(version uint64, next T) {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()
	if version <= v.delivered {
		return
	}
	v.delivered = version

	v.mu.Lock()
	subs := v.snapshotSubs()
	v.mu.Unlock()
	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers fn for future changes. The returned func removes it.
// fn must not update the Value it is subscribed to.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

func (v *Value[T]) snapshotSubs() []func(T) {
	out := make([]func(T), 0, len(v.subs))
	for id := 0; id < v.nextID; id++ {
		if fn, ok := v.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
