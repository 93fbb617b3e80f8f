package eval

import (
	"math"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"lowercase passthrough", "starbucks", "starbucks"},
		{"mixed case", "StarBucks", "starbucks"},
		{"punctuation stripped", "STARBUCKS #123", "starbucks 123"},
		{"whitespace collapsed", "  Hello,   WORLD!  ", "hello world"},
		{"unicode letters kept", "Café Nürnberg", "café nürnberg"},
		{"only punctuation", "!!!", ""},
		{"underscore kept", "POS_TERMINAL", "pos_terminal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "2024-01-15", "2024-01-15"},
		{"day first slash", "15/01/2024", "2024-01-15"},
		{"month first slash", "01/15/2024", "2024-01-15"},
		{"iso slash", "2024/01/15", "2024-01-15"},
		{"day first dash", "15-01-2024", "2024-01-15"},
		{"abbreviated month name", "15 Jan 2024", "2024-01-15"},
		{"full month name", "15 January 2024", "2024-01-15"},
		{"surrounding whitespace", "  2024-01-15  ", "2024-01-15"},
		{"unparseable passes through", "not a date", "not a date"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(tt.input); got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDateDayFirstPrecedence(t *testing.T) {
	// 03/04/2024 is ambiguous; the day-first layout must win.
	if got := NormalizeDate("03/04/2024"); got != "2024-04-03" {
		t.Errorf("NormalizeDate(03/04/2024) = %q, want 2024-04-03", got)
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{"float passthrough", 42.5, 42.5, true},
		{"int passthrough", 42, 42.0, true},
		{"currency symbol and commas", "$1,234.56", 1234.56, true},
		{"pound sign", "£12.50", 12.50, true},
		{"negative string", "-5.25", -5.25, true},
		{"whitespace around number", " 19.99 ", 19.99, true},
		{"empty string", "", 0, false},
		{"garbage string", "abc", 0, false},
		{"nil", nil, 0, false},
		{"unsupported type", []string{"x"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeAmount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeAmount(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NormalizeAmount(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
