package exports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactor(t *testing.T) {
	r := NewRedactor()

	digest := r.Redact("alice")
	assert.Len(t, digest, 64, "hex encoded SHA-256")
	assert.NotEqual(t, "alice", digest)

	assert.Equal(t, digest, r.Redact("alice"), "digests are stable")
	assert.NotEqual(t, digest, r.Redact("bob"))
	assert.Empty(t, r.Redact(""))
}
