package exports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortenColumn(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{
			name:   "distinct at one character",
			values: []string{"alpha", "beta", "gamma"},
			want:   []string{"a", "b", "g"},
		},
		{
			name:   "shared prefix needs more characters",
			values: []string{"aaxq", "aayr"},
			want:   []string{"aax", "aay"},
		},
		{
			name:   "repeated values shorten together",
			values: []string{"alice", "bob", "alice"},
			want:   []string{"a", "b", "a"},
		},
		{
			name:   "empty string stays a distinct value",
			values: []string{"", "alice"},
			want:   []string{"", "a"},
		},
		{
			name:   "single distinct value shortens to one character",
			values: []string{"alice", "alice"},
			want:   []string{"a", "a"},
		},
		{
			name:   "empty input",
			values: []string{},
			want:   []string{},
		},
		{
			name:   "one value a prefix of another keeps both apart",
			values: []string{"ab", "abc"},
			want:   []string{"ab", "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortenColumn(tt.values))
		})
	}
}
