// Package search provides the web search capability offered to the model as
// the web_search tool.
//
// A Searcher returns an opaque JSON document that is injected verbatim as the
// tool result of the follow-up generation call. Tavily is the production
// backend; Func adapts a plain function for tests and alternative backends.
package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// Searcher runs one web search.
type Searcher interface {
	Search(ctx context.Context, query string) (json.RawMessage, error)
}

// Func adapts a function to Searcher.
type Func func(ctx context.Context, query string) (json.RawMessage, error)

func (f Func) Search(ctx context.Context, query string) (json.RawMessage, error) {
	return f(ctx, query)
}

// JQExpr is a jq expression parsed once at configuration time and used to
// project raw search responses into the compact document the model sees.
type JQExpr struct {
	Expr  string
	Query *gojq.Query
}

// ParseJQ parses expr. An empty expression yields an identity projection.
func ParseJQ(expr string) (*JQExpr, error) {
	e := &JQExpr{Expr: expr}
	if expr == "" {
		return e, nil
	}
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	e.Query = q
	return e, nil
}

// MustParseJQ is ParseJQ for package-level expressions.
func MustParseJQ(expr string) *JQExpr {
	e, err := ParseJQ(expr)
	if err != nil {
		panic(err)
	}
	return e
}

// UnmarshalYAML implements yaml.InterfaceUnmarshaler.
func (e *JQExpr) UnmarshalYAML(unmarshal func(any) error) error {
	var expr string
	if err := unmarshal(&expr); err != nil {
		return err
	}
	parsed, err := ParseJQ(expr)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler.
func (e JQExpr) MarshalYAML() (any, error) {
	return e.Expr, nil
}

// Run applies the expression to input and returns the first result as JSON.
func (e *JQExpr) Run(input any) (json.RawMessage, error) {
	if e == nil || e.Query == nil {
		return json.Marshal(input)
	}
	iter := e.Query.Run(input)
	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("jq expression returned no result")
	}
	if err, ok := v.(error); ok {
		return nil, fmt.Errorf("jq error: %w", err)
	}
	result, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jq result: %w", err)
	}
	return result, nil
}
