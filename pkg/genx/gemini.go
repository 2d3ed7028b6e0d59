package genx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"
)

var _ Generator = (*GeminiGenerator)(nil)

// GeminiGenerator implements Generator using Google Gemini API.
type GeminiGenerator struct {
	Client *genai.Client `json:"-"`

	Params *ModelParams `json:"params,omitzero"`

	// Model should not start with "models/"
	Model string `json:"model"`
}

func (g *GeminiGenerator) Complete(ctx context.Context, mctx ModelContext) (*Completion, error) {
	cfg, contents, err := g.convModelContext(mctx)
	if err != nil {
		return nil, err
	}
	if len(cfg.Tools) > 0 {
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		}
	}
	resp, err := g.Client.Models.GenerateContent(ctx, g.Model, contents, cfg)
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			err = apiErr.Unwrap()
		}
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("genx/gemini: no candidates")
	}
	t := resp.Candidates[0]
	usage := geminiConvUsage(resp.UsageMetadata)
	switch t.FinishReason {
	case genai.FinishReasonStop, genai.FinishReasonMaxTokens, genai.FinishReasonUnspecified, "":
	case genai.FinishReasonSafety:
		return nil, Blocked(usage, "blocked by safety filter")
	default:
		return nil, fmt.Errorf("genx/gemini: unexpected finish reason: %s", t.FinishReason)
	}
	out := &Completion{Usage: usage}
	if t.Content == nil {
		return out, nil
	}
	var sb strings.Builder
	for _, p := range t.Content.Parts {
		switch {
		case p.Text != "":
			sb.WriteString(p.Text)
		case p.FunctionCall != nil:
			b, _ := json.Marshal(p.FunctionCall.Args)
			id := p.FunctionCall.ID
			if id == "" {
				id = p.FunctionCall.Name
			}
			out.ToolCalls = append(out.ToolCalls, &ToolCall{
				ID: id,
				FuncCall: &FuncCall{
					Name:      p.FunctionCall.Name,
					Arguments: string(b),
				},
			})
		}
	}
	out.Content = sb.String()
	return out, nil
}

func (g *GeminiGenerator) GenerateStream(ctx context.Context, mctx ModelContext) (Stream, error) {
	cfg, contents, err := g.convModelContext(mctx)
	if err != nil {
		return nil, err
	}
	sb := NewStreamBuilder(32)
	go func() {
		if err := geminiPull(sb, g.Client.Models.GenerateContentStream(ctx, g.Model, contents, cfg)); err != nil {
			sb.Abort(err)
		}
	}()
	return sb.Stream(), nil
}

func geminiPull(builder *StreamBuilder, itr iter.Seq2[*genai.GenerateContentResponse, error]) error {
	var usage Usage
	for chunk, err := range itr {
		if err != nil {
			return err
		}
		if chunk.UsageMetadata != nil {
			usage = geminiConvUsage(chunk.UsageMetadata)
		}
		if len(chunk.Candidates) == 0 {
			continue
		}
		sel := chunk.Candidates[0]

		var (
			sb     strings.Builder
			chunks []*MessageChunk
		)
		if sel.Content != nil {
			for _, p := range sel.Content.Parts {
				switch {
				case p.Text != "":
					sb.WriteString(p.Text)
				case p.FunctionCall != nil:
					b, _ := json.Marshal(p.FunctionCall.Args)
					chunks = append(chunks, &MessageChunk{
						Role: RoleModel,
						ToolCall: &ToolCall{
							ID: p.FunctionCall.Name,
							FuncCall: &FuncCall{
								Name:      p.FunctionCall.Name,
								Arguments: string(b),
							},
						},
					})
				}
			}
		}
		if sb.Len() > 0 {
			chunks = append([]*MessageChunk{{Role: RoleModel, Part: Text(sb.String())}}, chunks...)
		}
		if err := builder.Add(chunks...); err != nil {
			return err
		}
		switch sel.FinishReason {
		default:
			return builder.Unexpected(usage, fmt.Errorf("unexpected finish reason: %s", sel.FinishReason))
		case genai.FinishReasonUnspecified, "":
			// continue
		case genai.FinishReasonStop:
			return builder.Done(usage)
		case genai.FinishReasonMaxTokens:
			return builder.Truncated(usage)
		case genai.FinishReasonSafety:
			var cats []string
			for _, sr := range sel.SafetyRatings {
				if sr.Blocked {
					cats = append(cats, string(sr.Category))
				}
			}
			return builder.Blocked(usage, "blocked by "+strings.Join(cats, ", "))
		}
	}
	return builder.Done(usage)
}

func geminiConvMessage(last *genai.Content, msg *Message) (*genai.Content, error) {
	var (
		role  string
		parts []*genai.Part
	)
	switch t := msg.Payload.(type) {
	default:
		return nil, fmt.Errorf("unexpected message type: %T", t)
	case Contents:
		switch msg.Role {
		default:
			return nil, fmt.Errorf("mismatched role and type: role=%s, type=%T", msg.Role, msg.Payload)
		case RoleUser:
			role = "user"
		case RoleModel:
			role = "model"
		}
		for _, c := range t {
			switch v := c.(type) {
			case Text:
				parts = append(parts, genai.NewPartFromText(string(v)))
			case *Blob:
				parts = append(parts, genai.NewPartFromBytes(v.Data, v.MIMEType))
			}
		}
	case *ToolCall:
		role = "model"
		var args map[string]any
		if err := UnmarshalJSON([]byte(t.FuncCall.Arguments), &args); err != nil {
			args = map[string]any{"text": t.FuncCall.Arguments}
		}
		parts = append(parts, genai.NewPartFromFunctionCall(t.FuncCall.Name, args))
	case *ToolResult:
		role = "user"
		var result map[string]any
		if err := json.Unmarshal([]byte(t.Result), &result); err != nil {
			result = map[string]any{"result": t.Result}
		}
		parts = append(parts, genai.NewPartFromFunctionResponse(toolNameFromID(last, t.ID), result))
	}
	if last == nil || last.Role != role {
		return &genai.Content{Role: role, Parts: parts}, nil
	}
	last.Parts = append(last.Parts, parts...)
	return nil, nil
}

// toolNameFromID resolves the function name a tool result answers. Gemini
// matches responses to calls by name, not by id.
func toolNameFromID(last *genai.Content, id string) string {
	if last == nil {
		return id
	}
	for _, p := range last.Parts {
		if p.FunctionCall != nil {
			return p.FunctionCall.Name
		}
	}
	return id
}

func (g *GeminiGenerator) convModelContext(mctx ModelContext) (*genai.GenerateContentConfig, []*genai.Content, error) {
	cfg := genai.GenerateContentConfig{}
	var prompts []*genai.Part
	for p := range mctx.Prompts() {
		prompts = append(prompts, genai.NewPartFromText(p.Text))
	}
	if len(prompts) > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: prompts}
	}
	mp := g.Params
	if p := mctx.Params(); p != nil {
		mp = p
	}
	if mp != nil {
		if mp.MaxTokens > 0 {
			cfg.MaxOutputTokens = int32(mp.MaxTokens)
		}
		if mp.Temperature > 0 {
			cfg.Temperature = genai.Ptr(mp.Temperature)
		}
		if mp.TopP > 0 {
			cfg.TopP = genai.Ptr(mp.TopP)
		}
		if mp.TopK > 0 {
			cfg.TopK = genai.Ptr(mp.TopK)
		}
	}

	for t := range mctx.Tools() {
		switch t := t.(type) {
		case *FuncTool:
			cfg.Tools = append(cfg.Tools, &genai.Tool{
				FunctionDeclarations: []*genai.FunctionDeclaration{
					{
						Name:        t.Name,
						Description: t.Description,
						Parameters:  geminiConvSchema(t.Argument),
					},
				},
			})
		default:
			return nil, nil, fmt.Errorf("unexpected tool type: %T", t)
		}
	}

	var (
		contents []*genai.Content
		last     *genai.Content
	)
	for msg := range mctx.Messages() {
		c, err := geminiConvMessage(last, msg)
		if err != nil {
			return nil, nil, err
		}
		if c != nil {
			contents = append(contents, c)
			last = c
		}
	}
	if len(contents) == 0 {
		return nil, nil, errors.New("genx/gemini: no contents")
	}
	return &cfg, contents, nil
}

func geminiConvSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	enums := make([]string, 0, len(schema.Enum))
	for _, v := range schema.Enum {
		enums = append(enums, fmt.Sprintf("%v", v))
	}

	gs := genai.Schema{
		Format:      schema.Format,
		Description: schema.Description,
		Enum:        enums,
		Items:       geminiConvSchema(schema.Items),
		Required:    schema.Required,
	}
	if n := len(schema.Properties); n > 0 {
		gs.Properties = make(map[string]*genai.Schema, n)
		for k, prop := range schema.Properties {
			gs.Properties[k] = geminiConvSchema(prop)
		}
	}
	switch schema.Type {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	return &gs
}

func geminiConvUsage(usage *genai.GenerateContentResponseUsageMetadata) Usage {
	if usage == nil {
		return Usage{}
	}
	return Usage{
		PromptTokenCount:        int64(usage.PromptTokenCount),
		CachedContentTokenCount: int64(usage.CachedContentTokenCount),
		GeneratedTokenCount:     int64(usage.CandidatesTokenCount),
	}
}
