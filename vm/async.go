package vm

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hetu-lang/hetu/values"
)

// Future is the host-visible handle an async function call produces
// (§4.K). Its body runs on its own goroutine; `await` blocks the awaiting
// frame on Done until the goroutine resolves it. Real bytecode-level
// suspension (pausing mid-instruction-stream and returning control to the
// caller without blocking a goroutine) needs continuation points the
// compiler would emit; since no compiler front-end exists here, goroutine
// parking stands in for it — the host still observes a genuine future
// value and concurrently progressing async calls, which is what §4.K's
// invariants are about.
type Future struct {
	ID   string
	Done chan struct{}

	mu     sync.Mutex
	result *values.Value
	err    error
}

// NewFuture allocates a suspension record (§4.K "suspension record") keyed
// by a fresh id.
func NewFuture() *Future {
	return &Future{ID: uuid.NewString(), Done: make(chan struct{})}
}

func (f *Future) resolve(v *values.Value, err error) {
	f.mu.Lock()
	f.result, f.err = v, err
	f.mu.Unlock()
	close(f.Done)
}

// Await blocks until the future resolves and returns its outcome.
func (f *Future) Await() (*values.Value, error) {
	<-f.Done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

func (f *Future) AsValue() *values.Value {
	return values.NewAccessor(values.TypeExternalInstance, f)
}

// AsyncSpawner implements function.Function's async wrapper hook (§4.K): it
// runs body on a new goroutine and hands the caller back a Future value
// immediately.
func AsyncSpawner(run func() (*values.Value, error)) (*values.Value, error) {
	fut := NewFuture()
	go func() {
		v, err := run()
		fut.resolve(v, err)
	}()
	return fut.AsValue(), nil
}

// await implements the AwaitedValue opcode: if the operand already is a
// settled, non-future value it passes through unchanged (awaiting a
// non-future is permitted and a no-op, matching how `await` composes with
// plain values in the host-facing semantics).
func await(v *values.Value) (*values.Value, error) {
	if v == nil {
		return values.NewNull(), nil
	}
	if fut, ok := v.Data.(*Future); ok && v.Type == values.TypeExternalInstance {
		return fut.Await()
	}
	return v, nil
}
