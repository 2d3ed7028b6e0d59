package interview

import (
	"context"
	"encoding/base64"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/interviewai/backend/pkg/genx"
	"github.com/interviewai/backend/pkg/search"
)

const (
	DefaultSummaryChunkSize = 80
	DefaultAnswerChunkSize  = 400
	DefaultLanguage         = "python"
)

var (
	// DefaultExtractParams are the sampling parameters of the transcription
	// call.
	DefaultExtractParams = genx.ModelParams{Temperature: 0.1, MaxTokens: 1024}

	// DefaultSolveParams are the sampling parameters of the solution call.
	DefaultSolveParams = genx.ModelParams{Temperature: 0.2, MaxTokens: 2048}
)

// Vision answers coding problems captured as screenshots. A turn runs three
// phases: transcribe the image into a problem statement, solve it with the
// same web_search probe as spoken answers, and re-emit the solution as
// summary chunks, the Separator, and sanitized answer chunks.
type Vision struct {
	// Extractor must accept image input.
	Extractor genx.Generator
	// Solver writes the solution. Nil means Extractor.
	Solver   genx.Generator
	Searcher search.Searcher

	SummaryChunkSize int
	AnswerChunkSize  int
	// DefaultLanguage is used when the screenshot names no language.
	DefaultLanguage string
}

// Problem is the transcription of a screenshot.
type Problem struct {
	Text     string `json:"problem"`
	Language string `json:"language"`
}

// Stream starts a turn for the base64 image, optionally a data URL. An
// empty payload fails before any upstream call. The session memory records
// the problem text and the reconstructed answer.
func (v *Vision) Stream(ctx context.Context, sess *Session, imageBase64 string) *Turn {
	mimeType, data, err := decodeImage(imageBase64)
	if err != nil {
		return failedTurn(err)
	}

	var problem Problem
	run := func(yield func(string) bool) error {
		p, err := v.Extract(ctx, mimeType, data)
		if err != nil {
			return err
		}
		problem = p
		raw, err := v.solve(ctx, sess, p)
		if err != nil {
			return err
		}
		for s := range v.Reconstruct(raw) {
			if !yield(s) {
				return nil
			}
		}
		return nil
	}
	finalize := func(full string) string {
		summary, answer := SplitDocument(full)
		text := strings.TrimSpace(summary + "\n\n" + answer)
		sess.AddMemory(problem.Text, text)
		return text
	}
	return newTurn(run, finalize)
}

// Extract transcribes the problem in the image. The reply is read as JSON
// when possible, then as a "language: x" line, then as the raw text.
func (v *Vision) Extract(ctx context.Context, mimeType string, image []byte) (Problem, error) {
	p := DefaultExtractParams
	mcb := &genx.ModelContextBuilder{Params: &p}
	mcb.UserBlob("", buildExtractPrompt(), mimeType, image)

	comp, err := v.Extractor.Complete(ctx, mcb.Build())
	if err != nil {
		return Problem{}, &UpstreamError{Op: "extract", Err: err}
	}
	problem := parseProblem(comp.Content, v.defaultLanguage())
	if problem.Text == "" {
		return Problem{}, fmt.Errorf("%w: no problem found in image", ErrEmptyInput)
	}
	slog.Debug("interview: problem extracted", "language", problem.Language, "len", len(problem.Text))
	return problem, nil
}

func (v *Vision) solve(ctx context.Context, sess *Session, p Problem) (string, error) {
	gen := v.Solver
	if gen == nil {
		gen = v.Extractor
	}
	params := DefaultSolveParams
	mcb := &genx.ModelContextBuilder{Params: &params}
	mcb.UserText("", buildSolvePrompt(sess, p.Text, p.Language))

	r := &resolver{gen: gen, searcher: v.Searcher}
	str, rt, err := r.resolve(ctx, mcb)
	if err != nil {
		return "", err
	}
	slog.Debug("interview: solve stream opened", "session", sess.ID, "route", rt)
	var sb strings.Builder
	if err := forwardTexts(str, func(s string) bool {
		sb.WriteString(s)
		return true
	}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Reconstruct turns a raw solution into the increments sent to clients:
// the summary's first sentence in small chunks, the Separator when an answer
// follows, then the sanitized answer in larger chunks. Each increment ends
// with a newline. When nothing can be reconstructed the raw text is emitted
// as is.
func (v *Vision) Reconstruct(raw string) iter.Seq[string] {
	return func(yield func(string) bool) {
		summary, answer := SplitDocument(raw)
		summary = firstSentence(summary)
		answer = Sanitize(answer)
		if summary == "" && answer == "" {
			if strings.TrimSpace(raw) != "" {
				yield(raw)
			}
			return
		}
		for c := range Chunks(summary, v.chunkSize(v.SummaryChunkSize, DefaultSummaryChunkSize)) {
			if !yield(c + "\n") {
				return
			}
		}
		if answer == "" {
			return
		}
		if !yield(Separator + "\n") {
			return
		}
		for c := range Chunks(answer, v.chunkSize(v.AnswerChunkSize, DefaultAnswerChunkSize)) {
			if !yield(c + "\n") {
				return
			}
		}
	}
}

func (v *Vision) chunkSize(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}

func (v *Vision) defaultLanguage() string {
	if v.DefaultLanguage != "" {
		return v.DefaultLanguage
	}
	return DefaultLanguage
}

var (
	languageLineRe = regexp.MustCompile(`(?im)^[ \t*_-]*language[ \t*_]*:[ \t]*["'\x60]?([A-Za-z0-9+#.]+)`)
	sentenceEndRe  = regexp.MustCompile(`[.!?](?:\s|$)`)
)

func parseProblem(reply, defaultLanguage string) Problem {
	reply = strings.TrimSpace(reply)

	p := problemFromJSON(reply)
	if p.Text == "" {
		p = problemFromText(reply)
	}
	p.Text = strings.TrimSpace(p.Text)
	p.Language = strings.ToLower(strings.TrimSpace(p.Language))
	if p.Language == "" {
		p.Language = defaultLanguage
	}
	return p
}

// problemFromJSON decodes the first brace-delimited object in reply that
// carries a problem statement. Prose or a code fence around it is ignored.
func problemFromJSON(reply string) Problem {
	for i := 0; i < len(reply); {
		off := strings.IndexByte(reply[i:], '{')
		if off < 0 {
			break
		}
		start := i + off
		obj := jsonObjectAt(reply, start)
		var raw struct {
			Problem  string `json:"problem"`
			Text     string `json:"text"`
			Language string `json:"language"`
		}
		if err := genx.UnmarshalJSON([]byte(obj), &raw); err == nil {
			text := raw.Problem
			if strings.TrimSpace(text) == "" {
				text = raw.Text
			}
			if strings.TrimSpace(text) != "" {
				return Problem{Text: text, Language: raw.Language}
			}
		}
		i = start + 1
	}
	return Problem{}
}

// problemFromText reads a "language: x" line and takes the rest of reply as
// the problem statement.
func problemFromText(reply string) Problem {
	loc := languageLineRe.FindStringSubmatchIndex(reply)
	if loc == nil {
		return Problem{Text: reply}
	}
	lang := reply[loc[2]:loc[3]]
	end := len(reply)
	if nl := strings.IndexByte(reply[loc[0]:], '\n'); nl >= 0 {
		end = loc[0] + nl + 1
	}
	return Problem{Text: reply[:loc[0]] + reply[end:], Language: lang}
}

// firstSentence returns s up to its first sentence terminator, with line
// breaks folded into spaces.
func firstSentence(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if loc := sentenceEndRe.FindStringIndex(s); loc != nil {
		return s[:loc[0]+1]
	}
	return s
}

// decodeImage accepts raw base64 or a data URL and sniffs the MIME type
// when the payload does not carry one.
func decodeImage(payload string) (string, []byte, error) {
	payload = strings.TrimSpace(payload)
	var mimeType string
	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found {
			return "", nil, fmt.Errorf("%w: malformed data url", ErrBadImage)
		}
		mimeType, _, _ = strings.Cut(header, ";")
		payload = data
	}
	if payload == "" {
		return "", nil, ErrEmptyInput
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrBadImage, err)
		}
	}
	if len(data) == 0 {
		return "", nil, ErrEmptyInput
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return mimeType, data, nil
}
