package buffer

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrIteratorDone is returned by Next once the write side is closed and every
// buffered element has been consumed.
var ErrIteratorDone = errors.New("buffer: iterator done")

// BlockBuffer is a fixed-size circular queue safe for one producer and one
// consumer running on different goroutines. Add blocks while the queue is
// full, Next blocks while it is empty.
type BlockBuffer[T any] struct {
	cond *sync.Cond

	mu         sync.Mutex
	buf        []T
	head, tail int64
	closeWrite bool
	closeErr   error
}

// BlockN creates a BlockBuffer holding at most size elements.
func BlockN[T any](size int) *BlockBuffer[T] {
	if size <= 0 {
		size = 1
	}
	bb := &BlockBuffer[T]{buf: make([]T, size)}
	bb.cond = sync.NewCond(&bb.mu)
	return bb
}

// Add appends one element, blocking until there is room.
//
// Returns an error if the buffer has been closed for writing or closed with
// an error while waiting.
func (bb *BlockBuffer[T]) Add(t T) error {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	size := int64(len(bb.buf))
	for {
		if bb.closeErr != nil {
			return fmt.Errorf("buffer: write to closed buffer: %w", bb.closeErr)
		}
		if bb.closeWrite {
			return fmt.Errorf("buffer: write to closed buffer: %w", io.ErrClosedPipe)
		}
		if bb.tail-bb.head < size {
			break
		}
		bb.cond.Wait()
	}
	bb.buf[bb.tail%size] = t
	bb.tail++
	bb.cond.Broadcast()
	return nil
}

// Next removes and returns the oldest element, blocking until one is
// available. It returns ErrIteratorDone when the write side is closed and
// the queue is drained.
func (bb *BlockBuffer[T]) Next() (t T, err error) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	size := int64(len(bb.buf))
	for {
		if bb.closeErr != nil {
			return t, fmt.Errorf("buffer: read from closed buffer: %w", bb.closeErr)
		}
		if bb.head != bb.tail {
			break
		}
		if bb.closeWrite {
			return t, ErrIteratorDone
		}
		bb.cond.Wait()
	}
	idx := bb.head % size
	t = bb.buf[idx]
	var zero T
	bb.buf[idx] = zero
	bb.head++
	bb.cond.Broadcast()
	return t, nil
}

// CloseWrite closes the write side. Buffered elements stay readable.
func (bb *BlockBuffer[T]) CloseWrite() error {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if bb.closeWrite {
		return nil
	}
	bb.closeWrite = true
	bb.cond.Broadcast()
	return nil
}

// CloseWithError closes both sides. Pending and future Add and Next calls
// fail with err; a nil err means io.ErrClosedPipe. Only the first call has an
// effect.
func (bb *BlockBuffer[T]) CloseWithError(err error) error {
	if err == nil {
		err = io.ErrClosedPipe
	}
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if bb.closeErr != nil {
		return nil
	}
	bb.closeErr = err
	bb.closeWrite = true
	bb.cond.Broadcast()
	return nil
}

// Close is CloseWithError(io.ErrClosedPipe).
func (bb *BlockBuffer[T]) Close() error {
	return bb.CloseWithError(io.ErrClosedPipe)
}

// Error returns the error the buffer was closed with, if any.
func (bb *BlockBuffer[T]) Error() error {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	return bb.closeErr
}

// Len returns the number of buffered elements.
func (bb *BlockBuffer[T]) Len() int {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	return int(bb.tail - bb.head)
}
