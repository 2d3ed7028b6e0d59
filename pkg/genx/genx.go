package genx

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/goccy/go-yaml"
)

type Stream interface {
	Next() (*MessageChunk, error)
	Close() error
	CloseWithError(error) error
}

type ModelParams struct {
	MaxTokens        int     `json:"max_tokens,omitzero" yaml:"max_tokens,omitempty"`
	FrequencyPenalty float32 `json:"frequency_penalty,omitzero" yaml:"frequency_penalty,omitempty"`
	Temperature      float32 `json:"temperature,omitzero" yaml:"temperature,omitempty"`
	TopP             float32 `json:"top_p,omitzero" yaml:"top_p,omitempty"`
	PresencePenalty  float32 `json:"presence_penalty,omitzero" yaml:"presence_penalty,omitempty"`
	TopK             float32 `json:"top_k,omitzero" yaml:"top_k,omitempty"`
}

type Prompt struct {
	Name string
	Text string
}

type Tool interface {
	isTool()
}

type ModelContext interface {
	Prompts() iter.Seq[*Prompt]
	Messages() iter.Seq[*Message]
	Tools() iter.Seq[Tool]

	Params() *ModelParams
}

// Completion is the result of a single non-streamed generation call.
type Completion struct {
	Content   string
	ToolCalls []*ToolCall
	Usage     Usage
}

// HasToolCalls reports whether the model asked for at least one function.
func (c *Completion) HasToolCalls() bool {
	return c != nil && len(c.ToolCalls) > 0
}

type Generator interface {
	// Complete issues one blocking call. Tools in mctx are offered with
	// automatic tool choice.
	Complete(context.Context, ModelContext) (*Completion, error)

	// GenerateStream issues one streamed call. The returned Stream is fed by
	// a goroutine owned by the generator.
	GenerateStream(context.Context, ModelContext) (Stream, error)
}

type Usage struct {
	// Number of tokens in the prompt, including cached content.
	PromptTokenCount int64

	// Number of tokens in the cached part of the prompt.
	CachedContentTokenCount int64

	// Number of tokens generated.
	GeneratedTokenCount int64
}

func (u Usage) String() string {
	b, _ := yaml.Marshal(map[string]map[string]any{
		"Usage": {
			"Prompt":    u.PromptTokenCount,
			"Cached":    u.CachedContentTokenCount,
			"Generated": u.GeneratedTokenCount,
		},
	})
	return string(b)
}

// InspectMessage renders msg for debug logs. Blob payloads are summarized by
// MIME type and size.
func InspectMessage(msg *Message) string {
	if msg == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "### %s\n", msg.Role)
	if msg.Name != "" {
		fmt.Fprintln(&sb, msg.Name)
	}
	switch p := msg.Payload.(type) {
	case Contents:
		for _, part := range p {
			switch pt := part.(type) {
			case Text:
				fmt.Fprintln(&sb, pt)
			case *Blob:
				if pt != nil {
					fmt.Fprintf(&sb, "%s [%d]\n", pt.MIMEType, len(pt.Data))
				}
			}
		}
	case *ToolCall:
		fmt.Fprintf(&sb, "[%s]\n", p.ID)
		if p.FuncCall != nil {
			fmt.Fprintf(&sb, "%s(%s)\n", p.FuncCall.Name, p.FuncCall.Arguments)
		}
	case *ToolResult:
		fmt.Fprintf(&sb, "[%s]\n", p.ID)
		fmt.Fprintln(&sb, p.Result)
	}
	return sb.String()
}
