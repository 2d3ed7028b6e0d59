package interview

import (
	"regexp"
	"strings"
)

// Separator divides the one-sentence summary from the full answer in a
// solved problem, both in the model output and in the stream sent to
// clients.
const Separator = "---SPLIT---"

var (
	// A dashed SPLIT token anywhere, or a bare SPLIT line.
	separatorRe = regexp.MustCompile(`(?im)-+[ \t]*split[ \t]*-+|^[ \t]*split[ \t]*$`)
	ruleLineRe  = regexp.MustCompile(`(?m)^[ \t]*---[ \t]*$`)
	intuitionRe = regexp.MustCompile(`(?im)^[ \t]*#{1,6}[ \t]*intuition\b`)
)

// SplitDocument divides a solved-problem document into its summary and full
// answer. It tries, in order, the separator token, a standalone "---" line,
// and the "## Intuition" heading; when none is present the whole text is
// the summary. Leftover separator fragments are removed from both halves.
func SplitDocument(text string) (summary, answer string) {
	if loc := separatorRe.FindStringIndex(text); loc != nil {
		return cleanHalf(text[:loc[0]]), cleanHalf(text[loc[1]:])
	}
	if loc := ruleLineRe.FindStringIndex(text); loc != nil {
		return cleanHalf(text[:loc[0]]), cleanHalf(text[loc[1]:])
	}
	if loc := intuitionRe.FindStringIndex(text); loc != nil {
		return cleanHalf(text[:loc[0]]), cleanHalf(text[loc[0]:])
	}
	return cleanHalf(text), ""
}

func cleanHalf(s string) string {
	return strings.TrimSpace(separatorRe.ReplaceAllString(s, ""))
}
