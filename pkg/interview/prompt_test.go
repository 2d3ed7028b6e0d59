package interview

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	s := NewSession("Acme", "Backend Engineer")
	s.JDSummary = "- Go services"
	s.ResumeSummary = "- 5 years of Go"

	p := BuildPrompt(s, "Tell me about yourself")
	for _, want := range []string{
		"You are my private interview answer generator.",
		"- Company: Acme",
		"- Role: Backend Engineer",
		"- Go services",
		"- 5 years of Go",
		"Extra Instructions from me:\nNone",
		"New Interviewer Question:\n\"Tell me about yourself\"",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "Conversation Memory") {
		t.Error("memory block should be omitted when memory is empty")
	}

	s.ExtraInstructions = "Keep it short."
	s.AddMemory("Why Go?", "Simplicity.")
	s.AddMemory("Why Acme?", "The mission.")
	p = BuildPrompt(s, "Next")
	if !strings.Contains(p, "Keep it short.") {
		t.Error("prompt missing extra instructions")
	}
	first := strings.Index(p, "Q: Why Go?\nA: Simplicity.")
	second := strings.Index(p, "Q: Why Acme?\nA: The mission.")
	if first < 0 || second < first {
		t.Errorf("memory pairs missing or out of order:\n%s", p)
	}
	if strings.Index(p, "Conversation Memory") > strings.Index(p, "New Interviewer Question") {
		t.Error("memory should precede the question")
	}
}

func TestBuildSummarizePromptTruncates(t *testing.T) {
	p := buildSummarizePrompt("purpose", strings.Repeat("é", maxSummarizeInput+10))
	if n := strings.Count(p, "é"); n != maxSummarizeInput {
		t.Errorf("summarize input has %d characters, want %d", n, maxSummarizeInput)
	}
}

func TestBuildSolvePrompt(t *testing.T) {
	s := NewSession("Acme", "SRE")
	s.JDSummary = "Runs the payments platform."
	s.ResumeSummary = "Five years of Go."
	s.ExtraInstructions = "Prefer iterative code."
	p := buildSolvePrompt(s, "Two Sum", "go")
	for _, want := range []string{
		"Two Sum", "Write the solution in go.", Separator, "## Complexity Analysis", "```go",
		"Runs the payments platform.", "Five years of Go.", "Prefer iterative code.",
		"Close the Implementation code block with ``` before the Complexity Analysis heading.",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("solve prompt missing %q", want)
		}
	}
}
