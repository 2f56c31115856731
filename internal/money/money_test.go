package money

import (
	"errors"
	"testing"
)

func TestParseMinor(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"61.20", 6120},
		{"0.85", 85},
		{"120", 12000},
		{"-5.50", -550},
		{"7.5", 750},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if err != nil {
			t.Fatalf("ParseMinor(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseMinorRejectsGarbage(t *testing.T) {
	if _, err := ParseMinor("abc"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ParseMinor("1.999"); !errors.Is(err, ErrTooManyDecimals) {
		t.Fatalf("expected ErrTooManyDecimals, got %v", err)
	}
}

func TestFormatMinor(t *testing.T) {
	if got := FormatMinor(6120); got != "61.20" {
		t.Fatalf("FormatMinor(6120) = %q", got)
	}
	if got := FormatMinor(-550); got != "-5.50" {
		t.Fatalf("FormatMinor(-550) = %q", got)
	}
	if got := FormatMinor(5); got != "0.05" {
		t.Fatalf("FormatMinor(5) = %q", got)
	}
}
