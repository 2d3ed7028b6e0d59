// Package buffer provides the bounded, blocking FIFO used to hand stream
// events from a producing goroutine to a single consumer.
//
// BlockBuffer blocks the producer when full and the consumer when empty. The
// producer ends a stream gracefully with CloseWrite (buffered elements remain
// readable, then Next returns ErrIteratorDone) or abruptly with
// CloseWithError (both sides fail immediately with the given error).
//
// Example usage:
//
//	bb := buffer.BlockN[string](16)
//	go func() {
//	    defer bb.CloseWrite()
//	    bb.Add("hello")
//	}()
//	for {
//	    s, err := bb.Next()
//	    if errors.Is(err, buffer.ErrIteratorDone) {
//	        break
//	    }
//	}
package buffer
