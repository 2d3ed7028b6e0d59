package interview

import (
	"iter"
	"strings"
)

// Chunks splits text into line-aligned pieces of at most maxLen bytes.
// Lines are never split, so a single longer line becomes its own chunk.
// Joining the chunks with "\n" reproduces the trimmed text.
func Chunks(text string, maxLen int) iter.Seq[string] {
	return func(yield func(string) bool) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return
		}
		if maxLen <= 0 {
			yield(trimmed)
			return
		}
		var pending []string
		size := 0
		for _, line := range strings.Split(trimmed, "\n") {
			add := len(line)
			if len(pending) > 0 {
				add++
			}
			if len(pending) > 0 && size+add > maxLen {
				if !yield(strings.Join(pending, "\n")) {
					return
				}
				pending, size, add = pending[:0], 0, len(line)
			}
			pending = append(pending, line)
			size += add
		}
		yield(strings.Join(pending, "\n"))
	}
}

// WordChunks splits text on whitespace into pieces of roughly maxLen bytes,
// flushing once a piece reaches maxLen.
func WordChunks(text string, maxLen int) iter.Seq[string] {
	return func(yield func(string) bool) {
		var words []string
		size := 0
		for _, w := range strings.Fields(text) {
			words = append(words, w)
			size += len(w) + 1
			if size >= maxLen {
				if !yield(strings.Join(words, " ")) {
					return
				}
				words, size = words[:0], 0
			}
		}
		if len(words) > 0 {
			yield(strings.Join(words, " "))
		}
	}
}
