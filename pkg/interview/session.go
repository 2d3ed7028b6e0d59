package interview

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// MaxMemory is the number of question/answer pairs a Session remembers.
const MaxMemory = 5

const (
	DefaultCompany = "Unknown Company"
	DefaultRole    = "Candidate"
)

// QAPair is one answered question.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Session is the per-interview context. It is not safe for concurrent use;
// the caller serializes turns.
type Session struct {
	ID                string
	Company           string
	Role              string
	JDSummary         string
	ResumeSummary     string
	ExtraInstructions string

	memory []QAPair
}

// NewSession returns a session with default company and role applied to
// blank values.
func NewSession(company, role string) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Company: strings.TrimSpace(company),
		Role:    strings.TrimSpace(role),
	}
	if s.Company == "" {
		s.Company = DefaultCompany
	}
	if s.Role == "" {
		s.Role = DefaultRole
	}
	return s
}

// AddMemory appends a pair and evicts the oldest beyond MaxMemory.
func (s *Session) AddMemory(question, answer string) {
	s.memory = append(s.memory, QAPair{Question: question, Answer: answer})
	if n := len(s.memory); n > MaxMemory {
		s.memory = slices.Clone(s.memory[n-MaxMemory:])
	}
}

// Memory returns a copy of the remembered pairs, oldest first.
func (s *Session) Memory() []QAPair {
	return slices.Clone(s.memory)
}

// ResetMemory forgets all previous answers.
func (s *Session) ResetMemory() {
	s.memory = nil
}
