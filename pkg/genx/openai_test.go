package genx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func newTestOpenAI(t *testing.T, h http.HandlerFunc) *OpenAIGenerator {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client := openai.NewClient(
		option.WithAPIKey("test"),
		option.WithBaseURL(srv.URL+"/v1/"),
		option.WithMaxRetries(0),
	)
	return &OpenAIGenerator{Client: &client, Model: "llama-test"}
}

func decodeRequest(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode body %s: %v", b, err)
	}
	return m
}

func TestOpenAIGenerator_CompleteToolCall(t *testing.T) {
	var req map[string]any
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		req = decodeRequest(t, r)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "cmpl-1", "object": "chat.completion", "created": 1, "model": "llama-test",
			"choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
				"role": "assistant", "content": "",
				"tool_calls": [{"id": "call_a", "type": "function",
					"function": {"name": "web_search", "arguments": "{\"query\":\"react 19\"}"}}]
			}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`)
	})

	mcb := &ModelContextBuilder{}
	mcb.AddPrompt(&Prompt{Text: "system"})
	mcb.UserText("", "when is react 19?")
	mcb.AddTool(MustNewFuncTool[struct {
		Query string `json:"query"`
	}]("web_search", "Search the web"))

	got, err := g.Complete(context.Background(), mcb.Build())
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if !got.HasToolCalls() || got.ToolCalls[0].FuncCall.Name != "web_search" {
		t.Fatalf("ToolCalls = %#v", got.ToolCalls)
	}
	if got.ToolCalls[0].ID != "call_a" || got.ToolCalls[0].FuncCall.Arguments != `{"query":"react 19"}` {
		t.Errorf("tool call = %+v", got.ToolCalls[0].FuncCall)
	}
	if got.Usage.PromptTokenCount != 10 {
		t.Errorf("PromptTokenCount = %d, want 10", got.Usage.PromptTokenCount)
	}
	if req["tool_choice"] != "auto" {
		t.Errorf("tool_choice = %v, want auto", req["tool_choice"])
	}
	msgs, _ := req["messages"].([]any)
	if len(msgs) != 2 || msgs[0].(map[string]any)["role"] != "system" {
		t.Errorf("messages = %v", req["messages"])
	}
}

func TestOpenAIGenerator_CompleteErrorCarriesBody(t *testing.T) {
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"Failed to call a function.","type":"invalid_request_error","code":"tool_use_failed","failed_generation":"<function=web_search{\"query\": \"react 19 release date\"}</function>"}}`)
	})

	mcb := &ModelContextBuilder{}
	mcb.UserText("", "q")
	_, err := g.Complete(context.Background(), mcb.Build())
	if err == nil {
		t.Fatal("Complete should fail")
	}
	if !strings.Contains(err.Error(), "web_search") {
		t.Errorf("error text should carry the failed generation, got: %v", err)
	}
}

func TestOpenAIGenerator_GenerateStream(t *testing.T) {
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if req["stream"] != true {
			t.Errorf("stream = %v, want true", req["stream"])
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, s := range []string{"Hel", "lo", " world"} {
			fmt.Fprintf(w, "data: {\"id\":\"c\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", s)
		}
		io.WriteString(w, "data: {\"id\":\"c\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	})

	mcb := &ModelContextBuilder{}
	mcb.UserText("", "say hello")
	str, err := g.GenerateStream(context.Background(), mcb.Build())
	if err != nil {
		t.Fatalf("GenerateStream error: %v", err)
	}
	got, err := Collect(str)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("Collect = %q, want %q", got, "Hello world")
	}
}

func TestOpenAIGenerator_ImageMessage(t *testing.T) {
	var req map[string]any
	g := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		req = decodeRequest(t, r)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`)
	})

	mcb := &ModelContextBuilder{}
	mcb.UserBlob("", "extract", "image/png", []byte("png"))
	got, err := g.Complete(context.Background(), mcb.Build())
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got.Content != "ok" || got.HasToolCalls() {
		t.Errorf("Completion = %+v", got)
	}
	if _, ok := req["tool_choice"]; ok {
		t.Error("tool_choice should be omitted without tools")
	}
	msg := req["messages"].([]any)[0].(map[string]any)
	parts, ok := msg["content"].([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("content parts = %v", msg["content"])
	}
	img := parts[1].(map[string]any)["image_url"].(map[string]any)
	if !strings.HasPrefix(img["url"].(string), "data:image/png;base64,") {
		t.Errorf("image url = %v", img["url"])
	}
}

func TestOpenAIGenerator_ConvMessageErrors(t *testing.T) {
	g := &OpenAIGenerator{}
	if _, err := g.convMessage(&Message{Role: RoleTool, Payload: Contents{Text("x")}}); err == nil {
		t.Error("tool-role content should be rejected")
	}
	if _, err := g.convMessage(&Message{Role: RoleUser, Payload: Contents{}}); err == nil {
		t.Error("empty user message should be rejected")
	}
	if _, err := g.convMessage(&Message{Role: RoleUser, Payload: Contents{&Blob{MIMEType: "audio/wav"}}}); err == nil {
		t.Error("audio blob should be rejected")
	}
}
