package exports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCommentsDerivesBoardsAndDiscussions(t *testing.T) {
	comments, boards, discussions, err := LoadComments(testPaths().Comments)
	require.NoError(t, err)

	require.Len(t, comments, 3)
	assert.Equal(t, int64(1), comments[0].ID)
	assert.Equal(t, "Subject", comments[0].FocusType)
	assert.Equal(t, int64(9001), comments[0].FocusID)
	assert.Equal(t, "alice", comments[0].UserLogin)
	assert.False(t, comments[0].CreatedAt.IsZero())

	// the board and discussion columns repeat on every comment row and
	// come back deduplicated, sorted by ID
	require.Len(t, boards, 2)
	assert.Equal(t, Board{ID: 10, Title: "Notes", Description: "General notes"}, boards[0])
	assert.Equal(t, Board{ID: 11, Title: "Help", Description: "Questions and answers"}, boards[1])

	require.Len(t, discussions, 2)
	assert.Equal(t, Discussion{ID: 100, Title: "Subject 9001"}, discussions[0])
	assert.Equal(t, Discussion{ID: 101, Title: "Zooming"}, discussions[1])
}

func TestLoadTagsJoinsComments(t *testing.T) {
	comments, _, _, err := LoadComments(testPaths().Comments)
	require.NoError(t, err)

	tags, err := LoadTags(testPaths().Tags, comments)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	joined := tags[0]
	assert.Equal(t, "oak", joined.Name)
	assert.Equal(t, "Interesting #oak here", joined.CommentBody)
	assert.Equal(t, int64(9001), joined.CommentFocusID)
	assert.Equal(t, "Subject", joined.CommentFocusType)

	// a tag whose comment is not in the export keeps zero join fields
	orphan := tags[1]
	assert.Equal(t, "ash", orphan.Name)
	assert.Empty(t, orphan.CommentBody)
	assert.Zero(t, orphan.CommentFocusID)
}

func TestDecodeJSONExportLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.json")
	lines := `{"comment_id": 1, "board_id": 10, "comment_body": "first"}
{"comment_id": 2, "board_id": 10, "comment_body": "second"}

{"comment_id": 3, "board_id": 11, "comment_body": "third"}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))

	comments, boards, _, err := LoadComments(path)
	require.NoError(t, err)
	assert.Len(t, comments, 3)
	assert.Len(t, boards, 2)
	assert.Equal(t, "second", comments[1].Body)
}

func TestDecodeJSONExportEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.json")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o644))

	tags, err := LoadTags(path, nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}
