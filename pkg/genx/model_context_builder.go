package genx

import (
	"iter"
	"slices"
)

var _ ModelContext = (*modelContext)(nil)

type ModelContextBuilder struct {
	Prompts  []*Prompt
	Messages []*Message

	Tools []Tool

	Params *ModelParams
}

func (mcb *ModelContextBuilder) Build() ModelContext {
	return &modelContext{
		prompts:  slices.Clone(mcb.Prompts),
		messages: slices.Clone(mcb.Messages),
		tools:    slices.Clone(mcb.Tools),
		params:   mcb.Params,
	}
}

// AddPrompt appends a system prompt. Consecutive prompts with the same name
// are merged with a newline.
func (mcb *ModelContextBuilder) AddPrompt(prompt *Prompt) {
	if n := len(mcb.Prompts); n > 0 && mcb.Prompts[n-1].Name == prompt.Name {
		p := mcb.Prompts[n-1]
		if p.Text != "" {
			p.Text += "\n" + prompt.Text
		} else {
			p.Text = prompt.Text
		}
		return
	}
	mcb.Prompts = append(mcb.Prompts, prompt)
}

func (mcb *ModelContextBuilder) AddMessage(msg *Message) {
	mcb.Messages = append(mcb.Messages, msg)
}

func (mcb *ModelContextBuilder) UserText(name, text string) {
	mcb.AddMessage(&Message{Role: RoleUser, Name: name, Payload: Contents{Text(text)}})
}

// UserBlob appends a user message holding an optional text part followed by
// a binary part such as an image.
func (mcb *ModelContextBuilder) UserBlob(name, text, mimeType string, data []byte) {
	var contents Contents
	if text != "" {
		contents = append(contents, Text(text))
	}
	contents = append(contents, &Blob{MIMEType: mimeType, Data: data})
	mcb.AddMessage(&Message{Role: RoleUser, Name: name, Payload: contents})
}

func (mcb *ModelContextBuilder) AddToolCall(call *ToolCall) {
	mcb.AddMessage(&Message{Role: RoleModel, Payload: call})
}

func (mcb *ModelContextBuilder) AddToolResult(result *ToolResult) {
	mcb.AddMessage(&Message{Role: RoleTool, Payload: result})
}

func (mcb *ModelContextBuilder) AddTool(tool Tool) {
	mcb.Tools = append(mcb.Tools, tool)
}

type modelContext struct {
	prompts  []*Prompt
	messages []*Message
	tools    []Tool
	params   *ModelParams
}

func (mc *modelContext) Prompts() iter.Seq[*Prompt] {
	return slices.Values(mc.prompts)
}

func (mc *modelContext) Messages() iter.Seq[*Message] {
	return slices.Values(mc.messages)
}

func (mc *modelContext) Tools() iter.Seq[Tool] {
	return slices.Values(mc.tools)
}

func (mc *modelContext) Params() *ModelParams {
	return mc.params
}
