package promocode

import (
	"strings"
	"testing"
)

func TestGenerateLength(t *testing.T) {
	for _, length := range []int{1, 8, 16, 32} {
		code, err := Generate(length)
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != length {
			t.Errorf("length %d: got %q (%d chars)", length, code, len(code))
		}
	}
}

func TestGenerateDefaultsLength(t *testing.T) {
	for _, length := range []int{0, -5} {
		code, err := Generate(length)
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != DefaultLength {
			t.Errorf("length %d: expected default %d chars, got %q", length, DefaultLength, code)
		}
	}
}

func TestGenerateAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Generate(DefaultLength)
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range code {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
	}
}

func TestGenerateNotConstant(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := Generate(DefaultLength)
		if err != nil {
			t.Fatal(err)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("expected distinct codes across generations")
	}
}
