package interview

import (
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChunks(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{"empty", "  \n ", 10, nil},
		{"fits", "a\nb", 10, []string{"a\nb"}},
		{"packs lines", "aaa\nbbb\nccc\nddd", 7, []string{"aaa\nbbb", "ccc\nddd"}},
		{"long line alone", "short\n" + strings.Repeat("x", 12) + "\ntail", 8, []string{"short", strings.Repeat("x", 12), "tail"}},
		{"keeps blank lines", "a\n\nb", 3, []string{"a\n", "b"}},
		{"no limit", " a\nb ", 0, []string{"a\nb"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(Chunks(tt.text, tt.maxLen))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Chunks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChunks_Rejoin(t *testing.T) {
	texts := []string{
		"## Intuition\nUse a map.\n\n## Implementation\n```go\nfunc twoSum(nums []int, target int) []int {\n\treturn nil\n}\n```",
		strings.Repeat("word ", 200),
		"one line",
	}
	for _, text := range texts {
		for _, maxLen := range []int{1, 5, 40, 400} {
			chunks := slices.Collect(Chunks(text, maxLen))
			if got, want := strings.Join(chunks, "\n"), strings.TrimSpace(text); got != want {
				t.Errorf("rejoined chunks (max %d) = %q, want %q", maxLen, got, want)
			}
			for _, c := range chunks {
				if len(c) > maxLen && strings.Contains(c, "\n") {
					t.Errorf("multi-line chunk %q exceeds %d", c, maxLen)
				}
			}
		}
	}
}

func TestWordChunks(t *testing.T) {
	got := slices.Collect(WordChunks("What is the difference between a process and a thread?", 20))
	want := []string{"What is the difference", "between a process and", "a thread?"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WordChunks mismatch (-want +got):\n%s", diff)
	}
	if n := len(slices.Collect(WordChunks("  ", 20))); n != 0 {
		t.Errorf("blank text gave %d chunks", n)
	}
}
