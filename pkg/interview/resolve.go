package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/interviewai/backend/pkg/genx"
	"github.com/interviewai/backend/pkg/search"
)

const webSearchToolName = "web_search"

type searchArgs struct {
	Query string `json:"query" jsonschema:"the search query, phrased for a web search engine"`
}

var webSearchTool = genx.MustNewFuncTool[searchArgs](
	webSearchToolName,
	"Search the web for facts that may be newer than your training data, such as release dates, versions or recent events.",
)

// route is how a turn reached its streamed generation.
type route int

const (
	// routeDirect streams without a search.
	routeDirect route = iota
	// routeTool follows a structured tool call.
	routeTool
	// routeRecovered follows a tool call recovered from text.
	routeRecovered
)

func (r route) String() string {
	switch r {
	case routeDirect:
		return "direct"
	case routeTool:
		return "tool"
	case routeRecovered:
		return "recovered"
	default:
		return fmt.Sprintf("route(%d)", int(r))
	}
}

// resolver runs the probe call that decides whether a turn needs a web
// search, and opens the streamed generation that produces the answer.
type resolver struct {
	gen      genx.Generator
	searcher search.Searcher
}

// resolve offers web_search on a blocking probe call built from mcb, then
// streams the answer. The returned route reports which path was taken.
func (r *resolver) resolve(ctx context.Context, mcb *genx.ModelContextBuilder) (genx.Stream, route, error) {
	probe := cloneBuilder(mcb)
	probe.AddTool(webSearchTool)

	comp, err := r.gen.Complete(ctx, probe.Build())
	if err != nil {
		query, ok := ExtractQuery(err.Error())
		if !ok {
			return nil, routeDirect, &UpstreamError{Op: "generate", Err: err}
		}
		slog.Info("interview: recovered query from rejected tool call", "query", query)
		return r.continueWithSearch(ctx, mcb, routeRecovered, "", query)
	}

	if comp.HasToolCalls() {
		call := comp.ToolCalls[0]
		if query := queryFromCall(call); query != "" {
			return r.continueWithSearch(ctx, mcb, routeTool, call.ID, query)
		}
		slog.Warn("interview: tool call without a usable query", "call", genx.InspectMessage(&genx.Message{Role: genx.RoleModel, Payload: call}))
	} else if query, ok := ExtractQuery(comp.Content); ok {
		slog.Info("interview: recovered query from content", "query", query)
		return r.continueWithSearch(ctx, mcb, routeRecovered, "", query)
	}

	str, err := r.gen.GenerateStream(ctx, mcb.Build())
	if err != nil {
		return nil, routeDirect, &UpstreamError{Op: "generate", Err: err}
	}
	return str, routeDirect, nil
}

func queryFromCall(call *genx.ToolCall) string {
	if call == nil || call.FuncCall == nil || call.FuncCall.Name != webSearchToolName {
		return ""
	}
	var args searchArgs
	if err := call.FuncCall.DecodeArguments(&args); err == nil && args.Query != "" {
		return args.Query
	}
	if q, ok := ExtractQuery("<function=" + webSearchToolName + call.FuncCall.Arguments + "</function>"); ok {
		return q
	}
	return ""
}

// continueWithSearch runs the search, records the call and its result in the
// conversation, and streams the answer without offering tools again.
func (r *resolver) continueWithSearch(ctx context.Context, mcb *genx.ModelContextBuilder, rt route, callID, query string) (genx.Stream, route, error) {
	if r.searcher == nil {
		return nil, rt, &UpstreamError{Op: "search", Err: errors.New("no search backend configured")}
	}
	result, err := r.searcher.Search(ctx, query)
	if err != nil {
		return nil, rt, &UpstreamError{Op: "search", Err: err}
	}
	if callID == "" {
		callID = genx.NewToolCallID()
	}
	args, err := json.Marshal(searchArgs{Query: query})
	if err != nil {
		return nil, rt, err
	}

	cont := cloneBuilder(mcb)
	cont.AddToolCall(&genx.ToolCall{ID: callID, FuncCall: webSearchTool.NewFuncCall(string(args))})
	cont.AddToolResult(&genx.ToolResult{ID: callID, Result: string(result)})

	str, err := r.gen.GenerateStream(ctx, cont.Build())
	if err != nil {
		return nil, rt, &UpstreamError{Op: "generate", Err: err}
	}
	return str, rt, nil
}

func cloneBuilder(mcb *genx.ModelContextBuilder) *genx.ModelContextBuilder {
	return &genx.ModelContextBuilder{
		Prompts:  slices.Clone(mcb.Prompts),
		Messages: slices.Clone(mcb.Messages),
		Tools:    slices.Clone(mcb.Tools),
		Params:   mcb.Params,
	}
}
