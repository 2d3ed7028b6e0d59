package interview

import (
	"regexp"
	"strings"
	"unicode"
)

// Heading is a section of a solved-problem answer. Sections are rendered in
// declaration order and ComplexityAnalysis is the last one.
type Heading int

const (
	HeadingNone Heading = iota
	Intuition
	Algorithm
	Implementation
	ComplexityAnalysis

	headingCount
)

var headingTitles = [headingCount]string{
	Intuition:          "Intuition",
	Algorithm:          "Algorithm",
	Implementation:     "Implementation",
	ComplexityAnalysis: "Complexity Analysis",
}

func (h Heading) String() string {
	if h <= HeadingNone || h >= headingCount {
		return "none"
	}
	return headingTitles[h]
}

// Normalized heading prefixes. Longer keys come first so the lookup is
// unambiguous.
var headingKeys = []struct {
	prefix  string
	heading Heading
}{
	{"complexityanalysis", ComplexityAnalysis},
	{"implementation", Implementation},
	{"complexity", ComplexityAnalysis},
	{"intuition", Intuition},
	{"algorithm", Algorithm},
}

// normalizeHeading lowercases s and drops everything but letters, so that
// "Complexity-Analysis:" and "complexity analysis" compare equal.
func normalizeHeading(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// lookupHeading matches heading text such as "Implementation (Python)".
func lookupHeading(text string) (Heading, bool) {
	n := normalizeHeading(text)
	for _, k := range headingKeys {
		if strings.HasPrefix(n, k.prefix) {
			return k.heading, true
		}
	}
	return HeadingNone, false
}

type lineKind int

const (
	lineContent lineKind = iota
	lineFence
	lineHeading
)

type classifiedLine struct {
	kind    lineKind
	heading Heading
}

var (
	markdownHeadingRe = regexp.MustCompile(`^[ \t]{0,3}#{1,6}[ \t]*(.+?)[ \t#]*$`)
	boldHeadingRe     = regexp.MustCompile(`^[ \t]*(?:\*\*|__)([^*_]+?)(?:\*\*|__)[ \t]*:?[ \t]*$`)
	fenceRe           = regexp.MustCompile("^[ \t]*(?:```|~~~)")
)

// classifyLine recognizes fence delimiters and known section headings. A
// heading is a markdown heading whose text starts with a known key, or a
// fully bold line whose text is exactly a known key.
func classifyLine(line string) classifiedLine {
	if fenceRe.MatchString(line) {
		return classifiedLine{kind: lineFence}
	}
	if m := markdownHeadingRe.FindStringSubmatch(line); m != nil {
		if h, ok := lookupHeading(m[1]); ok {
			return classifiedLine{kind: lineHeading, heading: h}
		}
		return classifiedLine{kind: lineContent}
	}
	if m := boldHeadingRe.FindStringSubmatch(line); m != nil {
		n := normalizeHeading(m[1])
		for _, k := range headingKeys {
			if n == k.prefix {
				return classifiedLine{kind: lineHeading, heading: k.heading}
			}
		}
	}
	return classifiedLine{kind: lineContent}
}
