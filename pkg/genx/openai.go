package genx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/packages/ssestream"
)

var _ Generator = (*OpenAIGenerator)(nil)

const (
	oaiFinishReasonStop          string = "stop"
	oaiFinishReasonToolCalls     string = "tool_calls"
	oaiFinishReasonLength        string = "length"
	oaiFinishReasonFunctionCall  string = "function_call"
	oaiFinishReasonContentFilter string = "content_filter"
)

// OpenAIGenerator implements Generator against an OpenAI-compatible chat
// completions API. Groq is reached by pointing the client at
// https://api.groq.com/openai/v1.
type OpenAIGenerator struct {
	Client *openai.Client `json:"-"`

	Model string `json:"model"`

	// Params applies when the model context carries none.
	Params *ModelParams `json:"params,omitzero"`

	// UseDeveloperRole sends prompts as developer messages instead of
	// system messages. Groq only accepts system.
	UseDeveloperRole bool `json:"use_developer_role,omitzero"`

	ExtraFields map[string]any `json:"extra_fields,omitzero"`
}

func (g *OpenAIGenerator) Complete(ctx context.Context, mctx ModelContext) (*Completion, error) {
	params, err := g.chatCompletion(mctx)
	if err != nil {
		return nil, err
	}
	if len(params.Tools) > 0 {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: param.NewOpt("auto"),
		}
	}
	resp, err := g.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("genx/openai: no choices")
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, Blocked(oaiConvUsage(&resp.Usage), choice.Message.Refusal)
	}
	out := &Completion{
		Content: choice.Message.Content,
		Usage:   oaiConvUsage(&resp.Usage),
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, &ToolCall{
			ID: tc.ID,
			FuncCall: &FuncCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out, nil
}

func (g *OpenAIGenerator) GenerateStream(ctx context.Context, mctx ModelContext) (Stream, error) {
	params, err := g.chatCompletion(mctx)
	if err != nil {
		return nil, err
	}
	sb := NewStreamBuilder(32)
	go func() {
		if err := (&oaiPuller{}).pull(sb, g.Client.Chat.Completions.NewStreaming(ctx, params)); err != nil {
			sb.Abort(err)
		}
	}()
	return sb.Stream(), nil
}

func (g *OpenAIGenerator) chatCompletion(mctx ModelContext) (openai.ChatCompletionNewParams, error) {
	msgs, err := g.convModelContext(mctx)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	params := openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    g.Model,
	}
	mp := g.Params
	if p := mctx.Params(); p != nil {
		mp = p
	}
	if mp != nil {
		if mp.FrequencyPenalty > 0 {
			params.FrequencyPenalty = param.NewOpt(float64(mp.FrequencyPenalty))
		}
		if mp.MaxTokens > 0 {
			params.MaxCompletionTokens = param.NewOpt(int64(mp.MaxTokens))
		}
		if mp.Temperature > 0 {
			params.Temperature = param.NewOpt(float64(mp.Temperature))
		}
		if mp.TopP > 0 {
			params.TopP = param.NewOpt(float64(mp.TopP))
		}
		if mp.PresencePenalty > 0 {
			params.PresencePenalty = param.NewOpt(float64(mp.PresencePenalty))
		}
	}
	for tool := range mctx.Tools() {
		switch tool := tool.(type) {
		case *FuncTool:
			params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        tool.Name,
					Description: param.NewOpt(tool.Description),
					Parameters:  oaiConvSchema(tool.Argument),
				},
			})
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("unexpected tool type: %T", tool)
		}
	}
	if len(g.ExtraFields) > 0 {
		params.SetExtraFields(g.ExtraFields)
	}
	return params, nil
}

type oaiPuller struct {
	runningTool *openai.ChatCompletionChunkChoiceDeltaToolCall
}

func (p *oaiPuller) commitTool(sb *StreamBuilder) error {
	if p.runningTool == nil {
		return nil
	}

	defer func() { p.runningTool = nil }()

	return sb.Add(&MessageChunk{
		Role: RoleModel,
		ToolCall: &ToolCall{
			ID: p.runningTool.ID,
			FuncCall: &FuncCall{
				Name:      p.runningTool.Function.Name,
				Arguments: p.runningTool.Function.Arguments,
			},
		},
	})
}

func (p *oaiPuller) pull(sb *StreamBuilder, stream *ssestream.Stream[openai.ChatCompletionChunk]) error {
	defer stream.Close()

	var (
		index    int64
		selected bool
		usage    Usage
	)
	for stream.Next() {
		chunk := stream.Current()
		if chunk.Usage.TotalTokens > 0 {
			usage = oaiConvUsage(&chunk.Usage)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		var sel *openai.ChatCompletionChunkChoice
		if !selected {
			selected = true
			index = chunk.Choices[0].Index
			sel = &chunk.Choices[0]
		} else {
			for i := range chunk.Choices {
				if chunk.Choices[i].Index == index {
					sel = &chunk.Choices[i]
					break
				}
			}
			if sel == nil {
				continue
			}
		}
		if s := sel.Delta.Content; s != "" {
			if err := sb.Add(&MessageChunk{
				Role: RoleModel,
				Part: Text(s),
			}); err != nil {
				return err
			}
		}
		for _, t := range sel.Delta.ToolCalls {
			switch {
			case p.runningTool == nil:
				if t.ID != "" {
					tc := t
					p.runningTool = &tc
				}
			case t.ID == "" || t.ID == p.runningTool.ID:
				p.runningTool.Function.Name += t.Function.Name
				p.runningTool.Function.Arguments += t.Function.Arguments
			default:
				if err := p.commitTool(sb); err != nil {
					return err
				}
				tc := t
				p.runningTool = &tc
			}
		}
		switch sel.FinishReason {
		case oaiFinishReasonFunctionCall,
			oaiFinishReasonToolCalls:
			if err := p.commitTool(sb); err != nil {
				return err
			}
			return sb.Done(usage)
		case oaiFinishReasonStop:
			return sb.Done(usage)
		case oaiFinishReasonLength:
			return sb.Truncated(usage)
		case oaiFinishReasonContentFilter:
			return sb.Blocked(usage, sel.Delta.Refusal)
		}
		if s := sel.Delta.Refusal; s != "" {
			return sb.Blocked(usage, s)
		}
	}
	if err := stream.Err(); err != nil {
		return err
	}
	// Some compatible servers close the stream without a finish reason.
	return sb.Done(usage)
}

func (g *OpenAIGenerator) convModelContext(mctx ModelContext) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := []openai.ChatCompletionMessageParamUnion{}
	for p := range mctx.Prompts() {
		out = append(out, g.convPrompt(p))
	}
	for msg := range mctx.Messages() {
		mp, err := g.convMessage(msg)
		if err != nil {
			return nil, err
		}
		out = append(out, mp)
	}
	if len(out) == 0 {
		return nil, errors.New("genx/openai: empty model context")
	}
	return out, nil
}

func (g *OpenAIGenerator) convPrompt(p *Prompt) openai.ChatCompletionMessageParamUnion {
	if g.UseDeveloperRole {
		mp := openai.ChatCompletionMessageParamUnion{
			OfDeveloper: &openai.ChatCompletionDeveloperMessageParam{
				Content: openai.ChatCompletionDeveloperMessageParamContentUnion{
					OfString: param.NewOpt(p.Text),
				},
			},
		}
		if p.Name != "" {
			mp.OfDeveloper.Name = param.NewOpt(p.Name)
		}
		return mp
	}
	mp := openai.ChatCompletionMessageParamUnion{
		OfSystem: &openai.ChatCompletionSystemMessageParam{
			Content: openai.ChatCompletionSystemMessageParamContentUnion{
				OfString: param.NewOpt(p.Text),
			},
		},
	}
	if p.Name != "" {
		mp.OfSystem.Name = param.NewOpt(p.Name)
	}
	return mp
}

func (g *OpenAIGenerator) convMessage(msg *Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch t := msg.Payload.(type) {
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf(
			"unexpected message type: %T, message must be a content, tool call, or tool result",
			t,
		)
	case Contents:
		switch msg.Role {
		default:
			return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf(
				"unexpected content message role: %s, a content message must be a user or model message",
				msg.Role,
			)
		case RoleUser:
			return g.convUserMessage(msg.Name, t)
		case RoleModel:
			return g.convModelMessage(msg.Name, t)
		}
	case *ToolCall:
		if t.FuncCall == nil {
			return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("tool call %s has no function", t.ID)
		}
		return openai.ChatCompletionMessageParamUnion{
			OfAssistant: &openai.ChatCompletionAssistantMessageParam{
				ToolCalls: []openai.ChatCompletionMessageToolCallParam{
					{
						ID: t.ID,
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      t.FuncCall.Name,
							Arguments: t.FuncCall.Arguments,
						},
					},
				},
			},
		}, nil
	case *ToolResult:
		return openai.ToolMessage(t.Result, t.ID), nil
	}
}

func (g *OpenAIGenerator) convModelMessage(name string, contents Contents) (openai.ChatCompletionMessageParamUnion, error) {
	var text strings.Builder
	for _, c := range contents {
		switch v := c.(type) {
		case Text:
			text.WriteString(string(v))
		case *Blob:
			return openai.ChatCompletionMessageParamUnion{}, errors.New("model message must contain text only")
		}
	}
	if text.Len() == 0 {
		return openai.ChatCompletionMessageParamUnion{}, errors.New("model message must contain text")
	}
	mp := openai.ChatCompletionMessageParamUnion{
		OfAssistant: &openai.ChatCompletionAssistantMessageParam{
			Content: openai.ChatCompletionAssistantMessageParamContentUnion{
				OfString: param.NewOpt(text.String()),
			},
		},
	}
	if name != "" {
		mp.OfAssistant.Name = param.NewOpt(name)
	}
	return mp, nil
}

func (g *OpenAIGenerator) convUserMessage(name string, contents Contents) (openai.ChatCompletionMessageParamUnion, error) {
	var (
		text   strings.Builder
		images []openai.ChatCompletionContentPartUnionParam
	)
	for _, c := range contents {
		switch v := c.(type) {
		case Text:
			text.WriteString(string(v))
		case *Blob:
			if !strings.HasPrefix(v.MIMEType, "image/") {
				return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported blob type: %s", v.MIMEType)
			}
			images = append(images, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: "data:" + v.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(v.Data),
			}))
		}
	}

	mp := openai.ChatCompletionUserMessageParam{}
	switch {
	case len(images) == 0:
		if text.Len() == 0 {
			return openai.ChatCompletionMessageParamUnion{}, errors.New("user message must contain text")
		}
		mp.Content = openai.ChatCompletionUserMessageParamContentUnion{
			OfString: param.NewOpt(text.String()),
		}
	default:
		var parts []openai.ChatCompletionContentPartUnionParam
		if text.Len() > 0 {
			parts = append(parts, openai.TextContentPart(text.String()))
		}
		parts = append(parts, images...)
		mp.Content = openai.ChatCompletionUserMessageParamContentUnion{
			OfArrayOfContentParts: parts,
		}
	}
	if name != "" {
		mp.Name = param.NewOpt(name)
	}
	return openai.ChatCompletionMessageParamUnion{OfUser: &mp}, nil
}

func oaiConvSchema(s *jsonschema.Schema) openai.FunctionParameters {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var m openai.FunctionParameters
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

func oaiConvUsage(usage *openai.CompletionUsage) Usage {
	return Usage{
		PromptTokenCount:    usage.PromptTokens,
		GeneratedTokenCount: usage.CompletionTokens,
	}
}
