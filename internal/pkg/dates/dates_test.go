package dates

import (
	"testing"
	"time"
)

func TestParseEndOfDay(t *testing.T) {
	got, err := Parse("31.12.2026")
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2026, 12, 31, 23, 59, 59, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"", "2026-12-31", "31/12/2026", "32.01.2026", "foo"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"01.01.2026", true},
		{"29.02.2024", true},
		{"31.13.2026", false},
		{"1.1.2026", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Valid(tt.input); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// End-of-day must hold on every calendar day, including DST transitions
// where a flat 24h offset lands on 22:59 or 00:59.
func TestParseAlwaysEndOfDay(t *testing.T) {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	for day.Year() == 2026 {
		s := day.Format(InputLayout)
		got, err := Parse(s)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if got.Format(InputLayout) != s {
			t.Errorf("%s: parsed onto %s", s, got.Format(InputLayout))
		}
		if got.Format("15:04:05") != "23:59:59" {
			t.Errorf("%s: end of day is %s", s, got.Format("15:04:05"))
		}
		day = day.AddDate(0, 0, 1)
	}
}

func TestFormat(t *testing.T) {
	ts := time.Date(2026, 3, 7, 9, 5, 0, 0, time.Local)
	if got := Format(ts); got != "07.03.2026 09:05" {
		t.Errorf("got %q", got)
	}
}
