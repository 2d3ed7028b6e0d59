package interview

import (
	"iter"
	"strings"
	"sync"
)

// Turn is one in-flight answer. Its increments are produced lazily by
// Deltas, which can be ranged over once. When the sequence is drained
// without error the full answer is recorded in the session memory and
// OnDone callbacks run.
type Turn struct {
	run      func(yield func(string) bool) error
	finalize func(full string) string

	mu       sync.Mutex
	consumed bool
	done     bool
	answer   string
	onDone   []func(answer string)
}

func newTurn(run func(yield func(string) bool) error, finalize func(full string) string) *Turn {
	return &Turn{run: run, finalize: finalize}
}

// failedTurn returns a Turn whose only element is err.
func failedTurn(err error) *Turn {
	return newTurn(func(func(string) bool) error { return err }, nil)
}

// OnDone registers fn to run with the final answer after the turn has been
// drained successfully. It returns t for chaining.
func (t *Turn) OnDone(fn func(answer string)) *Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDone = append(t.onDone, fn)
	return t
}

// Deltas yields text increments in generation order. A failure is yielded
// as the final element with an empty string. Stopping early abandons the
// turn without touching the session memory.
func (t *Turn) Deltas() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !t.claim() {
			yield("", ErrConsumed)
			return
		}
		var sb strings.Builder
		stopped := false
		err := t.run(func(s string) bool {
			sb.WriteString(s)
			if !yield(s, nil) {
				stopped = true
				return false
			}
			return true
		})
		if stopped {
			return
		}
		if err != nil {
			yield("", err)
			return
		}
		t.complete(sb.String())
	}
}

// Answer returns the final answer once the turn completed.
func (t *Turn) Answer() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.answer, t.done
}

// Collect drains the turn and returns the concatenated increments.
func (t *Turn) Collect() (string, error) {
	var sb strings.Builder
	for s, err := range t.Deltas() {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func (t *Turn) claim() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.consumed {
		return false
	}
	t.consumed = true
	return true
}

func (t *Turn) complete(full string) {
	answer := strings.TrimSpace(full)
	if t.finalize != nil {
		answer = t.finalize(full)
	}
	t.mu.Lock()
	t.answer, t.done = answer, true
	callbacks := t.onDone
	t.mu.Unlock()
	for _, fn := range callbacks {
		fn(answer)
	}
}
