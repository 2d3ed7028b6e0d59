package interview

import (
	"context"
	"log/slog"
	"strings"

	"github.com/interviewai/backend/pkg/genx"
	"github.com/interviewai/backend/pkg/search"
)

// DefaultAnswerParams are the sampling parameters for spoken answers.
var DefaultAnswerParams = genx.ModelParams{
	Temperature: 0.3,
	MaxTokens:   220,
}

// Answerer streams answers to spoken interview questions.
type Answerer struct {
	Generator genx.Generator

	// Searcher backs the web_search tool. A nil Searcher fails turns that
	// ask for a search.
	Searcher search.Searcher

	// Params overrides DefaultAnswerParams.
	Params *genx.ModelParams
}

// Stream starts a turn for question. Nothing is sent upstream until the
// turn's Deltas are ranged over. On successful completion the trimmed answer
// is appended to sess's memory.
func (a *Answerer) Stream(ctx context.Context, sess *Session, question string) *Turn {
	question = strings.TrimSpace(question)
	if question == "" {
		return failedTurn(ErrEmptyInput)
	}
	params := a.Params
	if params == nil {
		p := DefaultAnswerParams
		params = &p
	}
	r := &resolver{gen: a.Generator, searcher: a.Searcher}

	run := func(yield func(string) bool) error {
		mcb := &genx.ModelContextBuilder{Params: params}
		mcb.UserText("", BuildPrompt(sess, question))

		str, rt, err := r.resolve(ctx, mcb)
		if err != nil {
			return err
		}
		slog.Debug("interview: answer stream opened", "session", sess.ID, "route", rt)
		return forwardTexts(str, yield)
	}
	finalize := func(full string) string {
		answer := strings.TrimSpace(full)
		sess.AddMemory(question, answer)
		return answer
	}
	return newTurn(run, finalize)
}

// forwardTexts passes the stream's text deltas to yield. Stream failures are
// reported as generate errors.
func forwardTexts(str genx.Stream, yield func(string) bool) error {
	for s, err := range genx.Texts(str) {
		if err != nil {
			return &UpstreamError{Op: "generate", Err: err}
		}
		if !yield(s) {
			return nil
		}
	}
	return nil
}
