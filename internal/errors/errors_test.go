package errors

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	err := Newf("failed to parse %s", "classifications.csv").
		Component("exports").
		Category(CategoryFileParsing).
		Context("rows", 12).
		Build()

	assert.Equal(t, "failed to parse classifications.csv", err.Error())
	assert.Equal(t, "exports", err.Component)
	assert.Equal(t, "file-parsing", err.GetCategory())
	assert.Equal(t, 12, err.GetContext()["rows"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestErrorBuilderDefaults(t *testing.T) {
	err := New(stderrors.New("boom")).Build()
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Nil(t, err.GetContext())
}

func TestEnhancedErrorUnwrap(t *testing.T) {
	sentinel := stderrors.New("underlying")
	err := Newf("wrapped: %w", sentinel).
		Category(CategoryDownload).
		Build()

	assert.True(t, Is(err, sentinel))

	var enhanced *EnhancedError
	require.True(t, As(error(err), &enhanced))
	assert.Equal(t, CategoryDownload, enhanced.Category)
}

func TestEnhancedErrorIsMatchesCategory(t *testing.T) {
	a := Newf("one").Category(CategoryDisambiguation).Build()
	b := Newf("completely different").Category(CategoryDisambiguation).Build()
	c := Newf("other").Category(CategoryNetwork).Build()

	assert.True(t, stderrors.Is(a, b), "same category matches")
	assert.False(t, stderrors.Is(a, c))
}

func TestGetContextIsCopy(t *testing.T) {
	err := Newf("x").Context("key", "value").Build()

	ctx := err.GetContext()
	ctx["key"] = "mutated"
	assert.Equal(t, "value", err.GetContext()["key"])
}

func TestFileAndNetworkContext(t *testing.T) {
	err := Newf("x").
		FileContext("/tmp/a.csv", 42).
		NetworkContext("https://host/a.jpg", 5*time.Second).
		Build()

	ctx := err.GetContext()
	assert.Equal(t, "/tmp/a.csv", ctx["file_path"])
	assert.Equal(t, int64(42), ctx["file_size"])
	assert.Equal(t, "https://host/a.jpg", ctx["url"])
	assert.Equal(t, 5.0, ctx["timeout_seconds"])

	// empty values add nothing
	bare := Newf("y").FileContext("", 0).NetworkContext("", 0).Build()
	assert.Nil(t, bare.GetContext())
}
