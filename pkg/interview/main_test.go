package interview

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/interviewai/backend/pkg/genx"
	"github.com/interviewai/backend/pkg/search"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedStream is the text a fake GenerateStream call produces, optionally
// failing after the text.
type scriptedStream struct {
	texts []string
	err   error
}

type fakeCall struct {
	stream bool
	mctx   genx.ModelContext
}

// fakeGen replays scripted results in call order.
type fakeGen struct {
	mu        sync.Mutex
	completes []*genx.Completion
	errs      []error
	streams   []scriptedStream
	calls     []fakeCall
}

func (g *fakeGen) Complete(_ context.Context, mctx genx.ModelContext) (*genx.Completion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, fakeCall{mctx: mctx})
	var err error
	if len(g.errs) > 0 {
		err, g.errs = g.errs[0], g.errs[1:]
	}
	if err != nil {
		return nil, err
	}
	if len(g.completes) == 0 {
		return &genx.Completion{}, nil
	}
	c := g.completes[0]
	g.completes = g.completes[1:]
	return c, nil
}

func (g *fakeGen) GenerateStream(_ context.Context, mctx genx.ModelContext) (genx.Stream, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, fakeCall{stream: true, mctx: mctx})
	if len(g.streams) == 0 {
		return nil, errors.New("fakeGen: no scripted stream")
	}
	s := g.streams[0]
	g.streams = g.streams[1:]

	sb := genx.NewStreamBuilder(len(s.texts) + 1)
	for _, t := range s.texts {
		sb.Add(&genx.MessageChunk{Role: genx.RoleModel, Part: genx.Text(t)})
	}
	if s.err != nil {
		sb.Unexpected(genx.Usage{}, s.err)
	} else {
		sb.Done(genx.Usage{})
	}
	return sb.Stream(), nil
}

func (g *fakeGen) recorded() []fakeCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.calls)
}

// fakeSearch records queries and returns a fixed document.
type fakeSearch struct {
	queries []string
	err     error
}

func (f *fakeSearch) searcher() search.Searcher {
	return search.Func(func(_ context.Context, q string) (json.RawMessage, error) {
		f.queries = append(f.queries, q)
		if f.err != nil {
			return nil, f.err
		}
		return json.RawMessage(`{"answer":"December 2024","results":[]}`), nil
	})
}

func collectTurn(t *testing.T, turn *Turn) ([]string, error) {
	t.Helper()
	var got []string
	for s, err := range turn.Deltas() {
		if err != nil {
			return got, err
		}
		got = append(got, s)
	}
	return got, nil
}
