package exports

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var value any
	require.NoError(t, json.Unmarshal([]byte(raw), &value))
	return value
}

func TestExtractAnnotations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			name: "scalar answer",
			raw:  `[{"task": "T0", "task_label": "Transcribe", "value": "OAK"}]`,
			want: map[string]any{"T0": "OAK"},
		},
		{
			name: "single element list collapses to the element",
			raw:  `[{"task": "T1", "value": ["Yes"]}]`,
			want: map[string]any{"T1": "Yes"},
		},
		{
			name: "empty list collapses to empty string",
			raw:  `[{"task": "T1", "value": []}]`,
			want: map[string]any{"T1": ""},
		},
		{
			name: "null answer collapses to empty string",
			raw:  `[{"task": "T2", "value": null}]`,
			want: map[string]any{"T2": ""},
		},
		{
			name: "multi element list survives",
			raw:  `[{"task": "T3", "value": ["a", "b"]}]`,
			want: map[string]any{"T3": []any{"a", "b"}},
		},
		{
			name: "entries without a task key are skipped",
			raw:  `[{"value": "stray"}, {"task": "T0", "value": "kept"}]`,
			want: map[string]any{"T0": "kept"},
		},
		{
			name: "not a list",
			raw:  `{"task": "T0"}`,
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAnnotations(decode(t, tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlattenValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"plain string", "OAK", "OAK"},
		{"nil", nil, ""},
		{"number", float64(3), "3"},
		{"list of strings", []any{"a", "b"}, "a|b"},
		{"list skips empty elements", []any{"a", "", "b"}, "a|b"},
		{
			"detail list",
			decode(t, `[{"details": [{"value": "first"}, {"value": "second"}]}]`),
			"first|second",
		},
		{
			"detail with list value joins with comma",
			decode(t, `[{"details": [{"value": ["a", "b"]}]}]`),
			"a,b",
		},
		{
			"object without details flattens its value field",
			decode(t, `{"value": "inner"}`),
			"inner",
		},
		{
			"embedded JSON in a string cell",
			`[{"details": [{"value": "nested"}]}]`,
			"nested",
		},
		{"bracketed string that is not JSON stays as is", "[sic]", "[sic]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenValue(tt.value))
		})
	}
}
