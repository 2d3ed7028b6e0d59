package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type versionInfo struct {
	Version string `json:"version" yaml:"version"`
}

func (v versionInfo) Text() string { return "interviewai " + v.Version }

func TestWrite(t *testing.T) {
	v := versionInfo{Version: "v1.2.0"}
	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "interviewai v1.2.0\n"},
		{"", "interviewai v1.2.0\n"},
		{FormatYAML, "version: v1.2.0\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := Write(&buf, v, tt.format); err != nil {
			t.Fatalf("Write(%q) error: %v", tt.format, err)
		}
		if buf.String() != tt.want {
			t.Errorf("Write(%q) = %q, want %q", tt.format, buf.String(), tt.want)
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, v, FormatJSON); err != nil {
		t.Fatal(err)
	}
	var got versionInfo
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil || got != v {
		t.Errorf("json round trip = %+v, %v", got, err)
	}

	buf.Reset()
	Write(&buf, map[string]int{"count": 42}, FormatText)
	if !strings.Contains(buf.String(), "count: 42") {
		t.Errorf("text fallback should be YAML, got %q", buf.String())
	}
	if err := Write(&buf, v, "xml"); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("ParseFormat(\"\") = %q, %v", f, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %q, %v", f, err)
	}
	if _, err := ParseFormat("table"); err == nil {
		t.Error("ParseFormat(table) should fail")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{999 * time.Millisecond, "999ms"},
		{1500 * time.Millisecond, "1.5s"},
		{59 * time.Second, "59.0s"},
		{90 * time.Second, "1m30.0s"},
		{125500 * time.Millisecond, "2m5.5s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderer_Solution(t *testing.T) {
	r := NewRenderer(60)
	out := r.Solution("Two Sum: use a hash map.", "## Intuition\nStore complements.\n```go\nm := map[int]int{}\n```")
	for _, want := range []string{"Summary", "Two Sum: use a hash map.", "Intuition", "Store complements.", "m := map[int]int{}", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("Solution output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "## Intuition") {
		t.Error("heading markers should be stripped")
	}

	if got := r.Solution("", "answer only"); got != "answer only" {
		t.Errorf("answer-only Solution = %q", got)
	}
}

func TestRenderer_FooterAndError(t *testing.T) {
	r := NewRenderer(0)
	if got := r.Footer("answered", 1500*time.Millisecond); !strings.Contains(got, "[answered in 1.5s]") {
		t.Errorf("Footer = %q", got)
	}
	if got := r.Error(errors.New("boom")); !strings.Contains(got, "boom") {
		t.Errorf("Error = %q", got)
	}
}
