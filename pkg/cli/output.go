package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// Format selects how command results are encoded.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format flag value. Empty means FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want text, json or yaml)", s)
}

// Texter is implemented by results with a human-readable form.
type Texter interface {
	Text() string
}

// Write encodes v to w. FormatText uses v's Text method when it has one and
// falls back to YAML otherwise.
func Write(w io.Writer, v any, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		return writeYAML(w, v)
	case FormatText, "":
		switch t := v.(type) {
		case Texter:
			_, err := io.WriteString(w, t.Text()+"\n")
			return err
		case string:
			_, err := io.WriteString(w, t+"\n")
			return err
		}
		return writeYAML(w, v)
	}
	return fmt.Errorf("unsupported output format %q", f)
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}
