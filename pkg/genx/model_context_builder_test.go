package genx

import (
	"slices"
	"testing"
)

func TestModelContextBuilder_MergesSameNamePrompts(t *testing.T) {
	mcb := &ModelContextBuilder{}
	mcb.AddPrompt(&Prompt{Text: "line one"})
	mcb.AddPrompt(&Prompt{Text: "line two"})
	mcb.AddPrompt(&Prompt{Name: "other", Text: "line three"})

	prompts := slices.Collect(mcb.Build().Prompts())
	if len(prompts) != 2 {
		t.Fatalf("len(prompts) = %d, want 2", len(prompts))
	}
	if prompts[0].Text != "line one\nline two" {
		t.Errorf("merged prompt = %q", prompts[0].Text)
	}
}

func TestModelContextBuilder_Messages(t *testing.T) {
	mcb := &ModelContextBuilder{Params: &ModelParams{Temperature: 0.3}}
	mcb.UserText("", "question")
	mcb.UserBlob("", "look", "image/png", []byte{1, 2, 3})
	mcb.AddToolCall(&ToolCall{ID: "call_1", FuncCall: &FuncCall{Name: "web_search", Arguments: `{"query":"q"}`}})
	mcb.AddToolResult(&ToolResult{ID: "call_1", Result: "[]"})
	mcb.AddTool(MustNewFuncTool[struct{ Query string }]("web_search", "search"))

	mctx := mcb.Build()
	msgs := slices.Collect(mctx.Messages())
	if len(msgs) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(msgs))
	}
	if c, ok := msgs[1].Payload.(Contents); !ok || len(c) != 2 {
		t.Errorf("blob message payload = %#v, want text + blob", msgs[1].Payload)
	}
	if msgs[2].Role != RoleModel || msgs[3].Role != RoleTool {
		t.Errorf("tool roles = %s, %s", msgs[2].Role, msgs[3].Role)
	}
	if n := len(slices.Collect(mctx.Tools())); n != 1 {
		t.Errorf("len(tools) = %d, want 1", n)
	}
	if mctx.Params().Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", mctx.Params().Temperature)
	}
}

func TestModelContextBuilder_BuildIsSnapshot(t *testing.T) {
	mcb := &ModelContextBuilder{}
	mcb.UserText("", "one")
	mctx := mcb.Build()
	mcb.UserText("", "two")

	if n := len(slices.Collect(mctx.Messages())); n != 1 {
		t.Errorf("snapshot messages = %d, want 1", n)
	}
}

func TestInspectMessage(t *testing.T) {
	s := InspectMessage(&Message{Role: RoleUser, Payload: Contents{Text("hi"), &Blob{MIMEType: "image/png", Data: []byte{1}}}})
	if s != "### user\nhi\nimage/png [1]\n" {
		t.Errorf("InspectMessage = %q", s)
	}
	if InspectMessage(nil) != "" {
		t.Error("InspectMessage(nil) should be empty")
	}
}

func TestMessageChunk_Clone(t *testing.T) {
	orig := &MessageChunk{
		Role:     RoleModel,
		Part:     &Blob{MIMEType: "image/png", Data: []byte{1, 2}},
		ToolCall: &ToolCall{ID: "x", FuncCall: &FuncCall{Name: "f"}},
	}
	c := orig.Clone()
	c.Part.(*Blob).Data[0] = 9
	c.ToolCall.FuncCall.Name = "g"
	if orig.Part.(*Blob).Data[0] != 1 || orig.ToolCall.FuncCall.Name != "f" {
		t.Error("Clone should not share blob data or function call")
	}
}
