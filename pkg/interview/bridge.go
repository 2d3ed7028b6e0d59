package interview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/interviewai/backend/pkg/buffer"
)

// bridgeDepth is the number of increments that may wait between the
// producer and the consumer.
const bridgeDepth = 1

type bridgeItem struct {
	text string
	err  error
	end  bool
}

// Bridged carries increments from a producer goroutine to an asynchronous
// consumer. Items arrive in production order: text increments, then at most
// one error, then the end sentinel, which Recv reports as io.EOF.
type Bridged struct {
	bb   *buffer.BlockBuffer[bridgeItem]
	stop func() bool
	done chan struct{}
}

// Bridge starts draining seq on a new goroutine. Empty increments are
// skipped. When ctx is done or the consumer calls Close, the producer stops
// at its next increment; a call already in flight upstream is not
// interrupted by the bridge.
func Bridge(ctx context.Context, seq iter.Seq2[string, error]) *Bridged {
	b := &Bridged{
		bb:   buffer.BlockN[bridgeItem](bridgeDepth),
		done: make(chan struct{}),
	}
	b.stop = context.AfterFunc(ctx, func() { b.bb.CloseWithError(ctx.Err()) })
	go b.produce(seq)
	return b
}

func (b *Bridged) produce(seq iter.Seq2[string, error]) {
	defer close(b.done)
	defer b.stop()
	if err := b.pump(seq); err != nil {
		if b.bb.Add(bridgeItem{err: err}) != nil {
			return
		}
	}
	if b.bb.Add(bridgeItem{end: true}) != nil {
		return
	}
	b.bb.CloseWrite()
}

var errConsumerGone = errors.New("interview: bridge consumer gone")

func (b *Bridged) pump(seq iter.Seq2[string, error]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interview: producer panic: %v", r)
		}
	}()
	for s, e := range seq {
		if e != nil {
			return e
		}
		if s == "" {
			continue
		}
		if b.bb.Add(bridgeItem{text: s}) != nil {
			return errConsumerGone
		}
	}
	return nil
}

// Recv returns the next increment. It returns io.EOF after the last one,
// the producer's error if it failed, and ctx's error if ctx ends first.
// Cancelling ctx closes the bridge.
func (b *Bridged) Recv(ctx context.Context) (string, error) {
	stop := context.AfterFunc(ctx, func() { b.bb.CloseWithError(ctx.Err()) })
	defer stop()

	it, err := b.bb.Next()
	switch {
	case errors.Is(err, buffer.ErrIteratorDone):
		return "", io.EOF
	case err != nil:
		if cerr := b.bb.Error(); cerr != nil && !errors.Is(cerr, io.ErrClosedPipe) {
			return "", cerr
		}
		return "", io.EOF
	case it.end:
		return "", io.EOF
	case it.err != nil:
		return "", it.err
	}
	return it.text, nil
}

// All ranges over the remaining increments. Breaking out of the loop closes
// the bridge.
func (b *Bridged) All(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			s, err := b.Recv(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(s, nil) {
				b.Close()
				return
			}
		}
	}
}

// Close stops the bridge. The producer exits at its next increment.
func (b *Bridged) Close() error {
	return b.bb.Close()
}

// Wait blocks until the producer goroutine has exited.
func (b *Bridged) Wait() {
	<-b.done
}
