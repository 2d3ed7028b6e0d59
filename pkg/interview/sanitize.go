package interview

import (
	"regexp"
	"strings"
)

var (
	spaceComplexityRe = regexp.MustCompile(`(?i)^[ \t]*(?:[-*+>•#][ \t]*|\d+[.)][ \t]*)*(?:\*\*|__)?[ \t]*space[ \t]+complexity(.*)$`)
	inlineHeadingRe   = regexp.MustCompile(`(?i)(?:^|[^\pL\pN_#])(#{1,6}[ \t]*(?:intuition|algorithm|implementation|complexity))`)
)

const fence = "```"

// Sanitize canonicalizes a solved-problem answer. Recognized sections keep
// their first occurrence and are rendered as "## <Heading>" in Heading
// order, preceded by any text before the first heading. A repeated section
// is dropped up to the next recognized heading. Complexity Analysis ends the
// document: parsing stops at a repeat of it, at a heading token glued to the
// end of one of its content lines, or right after the Space Complexity line
// and its value. A section first seen after it is still kept. Code fences
// left open at a section boundary are closed.
//
// Text without any recognized heading is returned trimmed. Sanitize is
// idempotent.
func Sanitize(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	var (
		preamble   []string
		sections   [headingCount][]string
		seen       [headingCount]bool
		current    = HeadingNone
		discarding bool
		inFence    bool
		recognized bool
		awaitValue bool
	)
	emit := func(line string) {
		switch {
		case discarding:
		case current == HeadingNone:
			preamble = append(preamble, line)
		default:
			sections[current] = append(sections[current], line)
		}
	}

parse:
	for _, raw := range strings.Split(trimmed, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		cl := classifyLine(line)

		if cl.kind == lineFence {
			inFence = !inFence
			emit(line)
			continue
		}
		if inFence {
			if cl.kind != lineHeading || cl.heading != ComplexityAnalysis {
				emit(line)
				continue
			}
			// The terminal heading never stays inside code.
			emit(fence)
			inFence = false
		}

		if cl.kind == lineHeading {
			recognized = true
			if seen[cl.heading] && cl.heading == ComplexityAnalysis {
				break parse
			}
			if seen[cl.heading] {
				current, discarding = HeadingNone, true
				continue
			}
			seen[cl.heading] = true
			current, discarding = cl.heading, false
			continue
		}

		if current == ComplexityAnalysis {
			if loc := inlineHeadingRe.FindStringSubmatchIndex(line); loc != nil && loc[2] > 0 {
				if before := strings.TrimRight(line[:loc[2]], " \t"); strings.TrimSpace(before) != "" {
					emit(before)
					break parse
				}
			}
			if awaitValue && strings.TrimSpace(line) != "" {
				emit(line)
				break parse
			}
			if m := spaceComplexityRe.FindStringSubmatch(line); m != nil {
				emit(line)
				if strings.Trim(m[1], " \t*_:-") != "" {
					break parse
				}
				// The value follows on the next line.
				awaitValue = true
				continue
			}
		}
		emit(line)
	}

	if !recognized {
		return trimmed
	}

	var parts []string
	if body := renderBody(preamble); body != "" {
		parts = append(parts, body)
	}
	for h := Intuition; h < headingCount; h++ {
		if body := renderBody(sections[h]); body != "" {
			parts = append(parts, "## "+h.String()+"\n"+body)
		}
	}
	if len(parts) == 0 {
		return trimmed
	}
	return strings.Join(parts, "\n\n")
}

// renderBody trims blank lines at both ends and closes a fence left open.
func renderBody(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start == end {
		return ""
	}
	lines = lines[start:end]
	open := false
	for _, l := range lines {
		if fenceRe.MatchString(l) {
			open = !open
		}
	}
	body := strings.Join(lines, "\n")
	if open {
		body += "\n" + fence
	}
	return body
}
