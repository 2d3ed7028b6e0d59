package genx

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

var _ Tool = (*FuncTool)(nil)

// FuncTool is a function the model may ask to call. Argument is the JSON
// schema of the single object argument.
type FuncTool struct {
	Name        string
	Description string
	Argument    *jsonschema.Schema
}

func (*FuncTool) isTool() {}

// NewFuncCall builds a call of this tool with raw JSON arguments.
func (tool *FuncTool) NewFuncCall(args string) *FuncCall {
	return &FuncCall{
		Name:      tool.Name,
		Arguments: args,
	}
}

// NewFuncTool derives the argument schema from ArgType.
func NewFuncTool[ArgType any](name, description string) (*FuncTool, error) {
	arg, err := jsonschema.For[ArgType](nil)
	if err != nil {
		return nil, fmt.Errorf("genx: schema for tool %s: %w", name, err)
	}
	return &FuncTool{
		Name:        name,
		Description: description,
		Argument:    arg,
	}, nil
}

func MustNewFuncTool[ArgType any](name, description string) *FuncTool {
	tool, err := NewFuncTool[ArgType](name, description)
	if err != nil {
		panic(err)
	}
	return tool
}

// DecodeArguments unmarshals the call's arguments into v, repairing
// malformed JSON when possible.
func (f *FuncCall) DecodeArguments(v any) error {
	if f == nil {
		return fmt.Errorf("genx: nil function call")
	}
	if err := UnmarshalJSON([]byte(f.Arguments), v); err != nil {
		return fmt.Errorf("genx: decode %s arguments %q: %w", f.Name, f.Arguments, err)
	}
	return nil
}
