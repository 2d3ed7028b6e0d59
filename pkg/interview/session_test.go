package interview

import (
	"fmt"
	"testing"
)

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession("  ", "")
	if s.Company != DefaultCompany || s.Role != DefaultRole {
		t.Errorf("defaults = %q, %q", s.Company, s.Role)
	}
	if s.ID == "" {
		t.Error("session ID should be set")
	}
	s = NewSession(" Acme ", "SRE")
	if s.Company != "Acme" || s.Role != "SRE" {
		t.Errorf("session = %q, %q", s.Company, s.Role)
	}
}

func TestSession_AddMemoryEvictsOldest(t *testing.T) {
	s := NewSession("", "")
	for i := range 7 {
		s.AddMemory(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}
	mem := s.Memory()
	if len(mem) != MaxMemory {
		t.Fatalf("len(memory) = %d, want %d", len(mem), MaxMemory)
	}
	if mem[0].Question != "q2" || mem[4].Answer != "a6" {
		t.Errorf("memory = %v", mem)
	}

	mem[0].Question = "changed"
	if s.Memory()[0].Question != "q2" {
		t.Error("Memory should return a copy")
	}

	s.ResetMemory()
	if len(s.Memory()) != 0 {
		t.Error("ResetMemory should clear memory")
	}
}
