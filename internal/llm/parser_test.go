package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResults(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []Result
		wantErr bool
	}{
		{
			name: "plain json array",
			raw:  `[{"id":"t1","category":"CAR_TRUCK_EXPENSES","vendor":"SHELL","confidence":0.9}]`,
			want: []Result{{ID: "t1", Category: "CAR_TRUCK_EXPENSES", Vendor: "SHELL", Confidence: 0.9}},
		},
		{
			name: "markdown fenced",
			raw:  "```json\n[{\"id\":\"t1\",\"category\":\"UTILITIES\",\"confidence\":0.8}]\n```",
			want: []Result{{ID: "t1", Category: "UTILITIES", Confidence: 0.8}},
		},
		{
			name: "surrounding prose",
			raw:  "Here are the classifications:\n[{\"id\":\"t1\",\"category\":\"TRAVEL\",\"confidence\":0.7}]\nLet me know if you need more.",
			want: []Result{{ID: "t1", Category: "TRAVEL", Confidence: 0.7}},
		},
		{
			name: "confidence clamped to [0,1]",
			raw:  `[{"id":"a","category":"SUPPLIES","confidence":1.4},{"id":"b","category":"SUPPLIES","confidence":-0.2}]`,
			want: []Result{
				{ID: "a", Category: "SUPPLIES", Confidence: 1},
				{ID: "b", Category: "SUPPLIES", Confidence: 0},
			},
		},
		{
			name: "results without ids are dropped",
			raw:  `[{"category":"SUPPLIES","confidence":0.9},{"id":"t2","category":"SUPPLIES","confidence":0.9}]`,
			want: []Result{{ID: "t2", Category: "SUPPLIES", Confidence: 0.9}},
		},
		{
			name: "empty array",
			raw:  `[]`,
			want: []Result{},
		},
		{
			name:    "empty response",
			raw:     "   ",
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "I could not classify these transactions.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResults(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "already clean",
			raw:  `[{"id":"x"}]`,
			want: `[{"id":"x"}]`,
		},
		{
			name: "fence without language tag",
			raw:  "```\n[1,2]\n```",
			want: "[1,2]",
		},
		{
			name: "fence with language tag",
			raw:  "```json\n[1,2]\n```",
			want: "[1,2]",
		},
		{
			name: "array embedded in prose",
			raw:  "sure: [1,2] done",
			want: "[1,2]",
		},
		{
			name: "no array at all",
			raw:  "nothing here",
			want: "nothing here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.raw))
		})
	}
}
