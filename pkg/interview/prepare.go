package interview

import (
	"context"
	"iter"
	"strings"

	"github.com/interviewai/backend/pkg/genx"
)

var (
	// DefaultSummarizeParams are used for resume and job description
	// summaries.
	DefaultSummarizeParams = genx.ModelParams{Temperature: 0.2, MaxTokens: 300}

	// DefaultQuestionParams are used to restate a question in one sentence.
	DefaultQuestionParams = genx.ModelParams{Temperature: 0.2, MaxTokens: 120}
)

// QuestionChunkSize is the target size of restated-question chunks.
const QuestionChunkSize = 60

// SessionInput is the raw material for a new session.
type SessionInput struct {
	Company           string `json:"company"`
	Role              string `json:"role"`
	ResumeText        string `json:"resume_text"`
	JDText            string `json:"jd_text"`
	ExtraInstructions string `json:"extra_instructions"`
}

// Preparer turns raw documents into session context.
type Preparer struct {
	Generator genx.Generator
}

// NewSession summarizes the resume and job description in in and returns a
// fresh session.
func (p *Preparer) NewSession(ctx context.Context, in SessionInput) (*Session, error) {
	resume, err := p.SummarizeResume(ctx, in.ResumeText)
	if err != nil {
		return nil, err
	}
	jd, err := p.SummarizeJD(ctx, in.JDText)
	if err != nil {
		return nil, err
	}
	s := NewSession(in.Company, in.Role)
	s.ResumeSummary = resume
	s.JDSummary = jd
	s.ExtraInstructions = strings.TrimSpace(in.ExtraInstructions)
	return s, nil
}

func (p *Preparer) SummarizeResume(ctx context.Context, text string) (string, error) {
	return p.summarize(ctx, "Summarize this resume for tailoring interview answers.", text)
}

func (p *Preparer) SummarizeJD(ctx context.Context, text string) (string, error) {
	return p.summarize(ctx, "Summarize this job description for tailoring interview answers.", text)
}

// summarize returns "" without calling the model when text is blank.
func (p *Preparer) summarize(ctx context.Context, purpose, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return p.complete(ctx, DefaultSummarizeParams, buildSummarizePrompt(purpose, text))
}

// SummarizeQuestion restates question as one short sentence, yielded in
// word-aligned chunks.
func (p *Preparer) SummarizeQuestion(ctx context.Context, question string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		question = strings.TrimSpace(question)
		if question == "" {
			return
		}
		summary, err := p.complete(ctx, DefaultQuestionParams, buildQuestionPrompt(question))
		if err != nil {
			yield("", err)
			return
		}
		for c := range WordChunks(summary, QuestionChunkSize) {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (p *Preparer) complete(ctx context.Context, params genx.ModelParams, prompt string) (string, error) {
	mcb := &genx.ModelContextBuilder{Params: &params}
	mcb.UserText("", prompt)
	comp, err := p.Generator.Complete(ctx, mcb.Build())
	if err != nil {
		return "", &UpstreamError{Op: "generate", Err: err}
	}
	return strings.TrimSpace(comp.Content), nil
}
