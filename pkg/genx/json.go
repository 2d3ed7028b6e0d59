package genx

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
)

// UnmarshalJSON unmarshals data into v. When data is not valid JSON (single
// quotes, trailing commas, missing braces as models tend to emit) it is
// repaired with jsonrepair and decoded again.
func UnmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return err
	}
	fixed, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return errors.Join(err, rerr)
	}
	return json.Unmarshal([]byte(fixed), v)
}

// NewToolCallID returns an identifier for a tool call the model did not
// assign one to.
func NewToolCallID() string {
	return "call_" + uuid.NewString()[:8]
}
