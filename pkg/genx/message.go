package genx

import (
	"slices"
)

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

var (
	_ Payload = (*Contents)(nil)
	_ Payload = (*ToolCall)(nil)
	_ Payload = (*ToolResult)(nil)

	_ Part = (*Blob)(nil)
	_ Part = (*Text)(nil)
)

type MessageChunk struct {
	Role     Role
	Name     string
	Part     Part
	ToolCall *ToolCall
}

func (c *MessageChunk) Clone() *MessageChunk {
	chk := &MessageChunk{
		Role: c.Role,
		Name: c.Name,
	}
	if c.Part != nil {
		chk.Part = c.Part.clone()
	}
	if c.ToolCall != nil {
		t := *c.ToolCall
		if t.FuncCall != nil {
			fc := *t.FuncCall
			t.FuncCall = &fc
		}
		chk.ToolCall = &t
	}
	return chk
}

type Message struct {
	Role    Role
	Name    string
	Payload Payload
}

// UserText returns a user message holding a single text part.
func UserText(text string) *Message {
	return &Message{Role: RoleUser, Payload: Contents{Text(text)}}
}

type Role string

func (r Role) String() string {
	return string(r)
}

type Payload interface {
	isPayload()
}

type FuncCall struct {
	Name      string
	Arguments string
}

type ToolCall struct {
	ID       string
	FuncCall *FuncCall
}

func (*ToolCall) isPayload() {}

type ToolResult struct {
	ID     string
	Result string
}

func (*ToolResult) isPayload() {}

type Contents []Part

func (Contents) isPayload() {}

type Part interface {
	isPart()
	clone() Part
}

type Blob struct {
	MIMEType string
	Data     []byte
}

func (b *Blob) clone() Part {
	return &Blob{
		MIMEType: b.MIMEType,
		Data:     slices.Clone(b.Data),
	}
}

func (*Blob) isPart() {}

type Text string

func (t Text) clone() Part {
	return t
}

func (Text) isPart() {}
