package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskColumns(t *testing.T) {
	p := testProject()
	assert.Equal(t, []string{"T0", "T1"}, p.TaskColumns())
}

func TestAnnotationsFlattened(t *testing.T) {
	p := testProject()

	flat := p.AnnotationsFlattened()
	require.Len(t, flat, 4)

	first := flat[0]
	assert.Equal(t, int64(1), first.ClassificationID)
	assert.Equal(t, int64(1), first.WorkflowID)
	assert.Equal(t, "1.1", first.WorkflowVersion)
	assert.Equal(t, "71", first.SubjectIDs)
	assert.Equal(t, map[string]string{"T0": "Yes", "T1": ""}, first.Tasks,
		"tasks the row never answered fill as empty strings")

	last := flat[3]
	assert.Equal(t, map[string]string{"T0": "Yes", "T1": "a|b"}, last.Tasks,
		"list answers flatten to pipe-joined strings")
}
