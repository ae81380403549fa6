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
		{input: "100", want: 10000},
		{input: "100.5", want: 10050},
		{input: "100.50", want: 10050},
		{input: "0.05", want: 5},
		{input: ".5", want: 50},
		{input: "-12.34", want: -1234},
		{input: "+7", want: 700},
		{input: "  250  ", want: 25000},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if err != nil {
			t.Fatalf("ParseMinor(%q) failed: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseMinorRejectsBadInput(t *testing.T) {
	for _, input := range []string{"", "abc", "1.2.3", "1,50", "1.x"} {
		if _, err := ParseMinor(input); err == nil {
			t.Fatalf("ParseMinor(%q) accepted bad input", input)
		}
	}
	if _, err := ParseMinor("1.234"); !errors.Is(err, ErrTooManyDecimals) {
		t.Fatalf("expected ErrTooManyDecimals, got %v", err)
	}
}

func TestFormatMinor(t *testing.T) {
	cases := []struct {
		value int64
		want  string
	}{
		{value: 10000, want: "100.00"},
		{value: 10050, want: "100.50"},
		{value: 5, want: "0.05"},
		{value: 0, want: "0.00"},
		{value: -1234, want: "-12.34"},
	}
	for _, tc := range cases {
		if got := FormatMinor(tc.value); got != tc.want {
			t.Fatalf("FormatMinor(%d) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
