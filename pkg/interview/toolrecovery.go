package interview

import (
	"regexp"
	"strings"

	"github.com/interviewai/backend/pkg/genx"
)

// maxArgumentWindow bounds how far past a function marker the fallback
// query scan looks.
const maxArgumentWindow = 1024

var (
	functionMarkerRe = regexp.MustCompile(`(?i)<function\s*=\s*["']?` + webSearchToolName + `\b["']?`)
	queryFieldRe     = regexp.MustCompile(`(?i)["']?query["']?\s*[:=]\s*["']([^"'\n]+)["']`)

	// Rejection bodies embed the failed generation as a JSON string, so the
	// markup arrives escaped.
	escapeReplacer = strings.NewReplacer(
		`\u003c`, "<",
		`\u003e`, ">",
		`\u0026`, "&",
		`\"`, `"`,
		`\\`, `\`,
	)
)

// ExtractQuery recovers the web_search query from the textual function-call
// syntax some providers emit instead of a structured tool call, such as
// `<function=web_search{"query": "react 19"}</function>`. text may be plain
// model content or a provider rejection message that embeds the failed
// generation. It reports false when text has no web_search marker or no
// query can be read after one.
func ExtractQuery(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	text = escapeReplacer.Replace(text)
	for _, loc := range functionMarkerRe.FindAllStringIndex(text, -1) {
		if q := queryAfterMarker(text[loc[1]:]); q != "" {
			return q, true
		}
	}
	return "", false
}

func queryAfterMarker(tail string) string {
	if end := strings.Index(strings.ToLower(tail), "</function>"); end >= 0 {
		tail = tail[:end]
	}
	if len(tail) > maxArgumentWindow {
		tail = tail[:maxArgumentWindow]
	}
	if start := strings.IndexByte(tail, '{'); start >= 0 {
		if q := decodeQuery(jsonObjectAt(tail, start)); q != "" {
			return q
		}
	}
	if m := queryFieldRe.FindStringSubmatch(tail); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// decodeQuery reads the query field of a web_search argument object,
// repairing malformed JSON.
func decodeQuery(args string) string {
	var v searchArgs
	if err := genx.UnmarshalJSON([]byte(args), &v); err != nil {
		return ""
	}
	return strings.TrimSpace(v.Query)
}

// jsonObjectAt returns the object starting at s[start] up to its matching
// brace, or the rest of s when the object is not closed.
func jsonObjectAt(s string, start int) string {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}
