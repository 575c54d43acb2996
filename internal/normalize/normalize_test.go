package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "store number and state code stripped",
			input: "SHELL OIL #1234 FL",
			want:  "SHELL OIL",
		},
		{
			name:  "lower case with ragged whitespace",
			input: "  shell oil #1234 FL  ",
			want:  "SHELL OIL",
		},
		{
			name:  "pos debit prefix",
			input: "POS DEBIT STARBUCKS STORE 4521 SEATTLE WA",
			want:  "STARBUCKS STORE 4521 SEATTLE",
		},
		{
			name:  "compound prefix strips whole not partially",
			input: "POS DEBIT PURCHASE TRADER JOES",
			want:  "TRADER JOES",
		},
		{
			name:  "stacked processor prefixes",
			input: "CHECKCARD POS DEBIT HOME DEPOT",
			want:  "HOME DEPOT",
		},
		{
			name:  "square prefix",
			input: "SQ *BLUE BOTTLE COFFEE",
			want:  "BLUE BOTTLE COFFEE",
		},
		{
			name:  "paypal prefix",
			input: "PAYPAL *SPOTIFY",
			want:  "SPOTIFY",
		},
		{
			name:  "zip and country tokens",
			input: "DELTA AIR LINES ATLANTA GA 30320 US",
			want:  "DELTA AIR LINES ATLANTA",
		},
		{
			name:  "card reference code",
			input: "NETFLIX.COM XXXXX1234",
			want:  "NETFLIX.COM",
		},
		{
			name:  "trailing digit run",
			input: "COMCAST 8005551212",
			want:  "COMCAST",
		},
		{
			name:  "bare prefix is left alone",
			input: "POS",
			want:  "POS",
		},
		{
			name:  "single noise token survives",
			input: "FL",
			want:  "FL",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "interior whitespace collapsed",
			input: "SHELL   OIL    #1234",
			want:  "SHELL OIL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			assert.Equal(t, tt.want, got)

			// Clean must be a fixpoint of itself.
			assert.Equal(t, got, Clean(got), "Clean is not idempotent for %q", tt.input)
		})
	}
}

func TestExtractVendor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "caps at three tokens",
			input: "DELTA AIR LINES ATLANTA INTERNATIONAL",
			want:  "DELTA AIR LINES",
		},
		{
			name:  "short description kept whole",
			input: "SHELL OIL #1234 FL",
			want:  "SHELL OIL",
		},
		{
			name:  "single token",
			input: "NETFLIX.COM XXXXX1234",
			want:  "NETFLIX.COM",
		},
		{
			name:  "empty description",
			input: "   ",
			want:  "",
		},
		{
			name:  "prefix stripped before extraction",
			input: "POS DEBIT WHOLE FOODS MARKET 123 AUSTIN TX",
			want:  "WHOLE FOODS MARKET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVendor(tt.input))
		})
	}
}
