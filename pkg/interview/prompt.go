package interview

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed prompts/*.gotmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.gotmpl"))

// maxSummarizeInput caps the resume or job description text sent for
// summarization, in characters.
const maxSummarizeInput = 8000

func render(name string, data any) string {
	var sb strings.Builder
	if err := prompts.ExecuteTemplate(&sb, name, data); err != nil {
		// Templates are embedded and only read exported fields of local
		// types, so a failure here is a programming error.
		panic(err)
	}
	return sb.String()
}

// BuildPrompt renders the answer prompt for question: the fixed answering
// rules, the session context, the conversation memory (omitted when empty)
// and the question itself.
func BuildPrompt(s *Session, question string) string {
	return render("answer.gotmpl", struct {
		Session  *Session
		Memory   []QAPair
		Question string
	}{s, s.Memory(), question})
}

func buildSolvePrompt(s *Session, problem, language string) string {
	return render("solve.gotmpl", struct {
		Session   *Session
		Problem   string
		Language  string
		Separator string
	}{s, problem, language, Separator})
}

func buildExtractPrompt() string {
	return render("extract.gotmpl", nil)
}

func buildSummarizePrompt(purpose, text string) string {
	if r := []rune(text); len(r) > maxSummarizeInput {
		text = string(r[:maxSummarizeInput])
	}
	return render("summarize.gotmpl", struct{ Purpose, Text string }{purpose, text})
}

func buildQuestionPrompt(question string) string {
	return render("question.gotmpl", struct{ Question string }{question})
}
