package secret

import (
	"io"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	s, err := Generate(GeneratedLength)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer s.Wipe()

	if s.Len() != GeneratedLength {
		t.Errorf("expected length %d, got %d", GeneratedLength, s.Len())
	}
	for _, b := range s.Bytes() {
		if !strings.ContainsRune(charset, rune(b)) {
			t.Errorf("generated byte %q outside charset", b)
		}
	}
}

func TestGenerateUnique(t *testing.T) {
	a, err := Generate(GeneratedLength)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer a.Wipe()
	b, err := Generate(GeneratedLength)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	defer b.Wipe()

	if string(a.Bytes()) == string(b.Bytes()) {
		t.Error("two generated secrets are identical")
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if _, err := Generate(0); err == nil {
		t.Error("expected error for zero length")
	}
	if _, err := Generate(-1); err == nil {
		t.Error("expected error for negative length")
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(nil); err != ErrEmpty {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestReader(t *testing.T) {
	s, err := New([]byte("hunter2"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Wipe()

	got, err := io.ReadAll(s.Reader())
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "hunter2" {
		t.Errorf("reader yielded %q", got)
	}
}

func TestWipeZeroes(t *testing.T) {
	buf := []byte("sensitive")
	s, err := New(buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s.Wipe()

	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
	if s.Bytes() != nil {
		t.Error("Bytes should be nil after Wipe")
	}
	// Double wipe must not panic.
	s.Wipe()
}

func TestEstimateStrength(t *testing.T) {
	tests := []struct {
		password string
		want     Strength
	}{
		{"short", StrengthWeak},
		{"eightchr", StrengthFair},
		{"fourteen-chars", StrengthGood},
		{"twenty-characters-xx", StrengthStrong},
	}
	for _, tt := range tests {
		if got := EstimateStrength(tt.password); got != tt.want {
			t.Errorf("EstimateStrength(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}
