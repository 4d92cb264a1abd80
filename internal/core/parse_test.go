package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCoefficient(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"5,974%", "0.05974", true},
		{"5.974%", "0.05974", true},
		{"11,937%", "0.11937", true},
		{"100%", "1", true},
		{"0%", "0", true},
		{" 2,63% ", "0.0263", true},
		{"7.287", "0.07287", true}, // bare number, no percent sign
		{"abc", "0", false},
		{"", "0", false},
		{"-5%", "0", false},
		{"150%", "0", false},
	}
	for i, tc := range cases {
		got, warns := ParseCoefficient(tc.in)
		want, _ := decimal.NewFromString(tc.want)
		if !got.Equal(want) {
			t.Fatalf("case %d (%q): got %s, want %s", i, tc.in, got, want)
		}
		if tc.ok && len(warns) != 0 {
			t.Fatalf("case %d (%q): unexpected warnings %v", i, tc.in, warns)
		}
		if !tc.ok && len(warns) == 0 {
			t.Fatalf("case %d (%q): expected a warning", i, tc.in)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"100", "100", true},
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{"0", "0", true},
		{"abc", "0", false},
		{"", "0", false},
		{"-5", "0", false},
	}
	for i, tc := range cases {
		got, warns := ParseAmount(tc.in)
		want, _ := decimal.NewFromString(tc.want)
		if !got.Equal(want) {
			t.Fatalf("case %d (%q): got %s, want %s", i, tc.in, got, want)
		}
		if tc.ok && len(warns) != 0 {
			t.Fatalf("case %d (%q): unexpected warnings %v", i, tc.in, warns)
		}
		if !tc.ok && len(warns) == 0 {
			t.Fatalf("case %d (%q): expected a warning", i, tc.in)
		}
	}
}
