package genx

import (
	"errors"
	"iter"
	"log/slog"
	"strings"
)

// Texts adapts str into an iterator of non-empty text deltas. Iteration ends
// cleanly on StatusDone and StatusTruncated; any other terminal state is
// yielded as an error. The stream is closed when iteration stops.
func Texts(str Stream) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer str.Close()
		for {
			chunk, err := str.Next()
			if err != nil {
				var st *State
				if errors.As(err, &st) {
					switch st.Status() {
					case StatusDone:
						return
					case StatusTruncated:
						slog.Warn("genx/stream: output truncated", "usage", st.Usage().GeneratedTokenCount)
						return
					}
				}
				yield("", err)
				return
			}
			if chunk == nil {
				continue
			}
			if t, ok := chunk.Part.(Text); ok && t != "" {
				if !yield(string(t), nil) {
					return
				}
			}
		}
	}
}

// Collect drains str and returns the concatenated text.
func Collect(str Stream) (string, error) {
	var sb strings.Builder
	for s, err := range Texts(str) {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}
