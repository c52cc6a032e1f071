package artifact

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFailed(t *testing.T) {
	a := NewFailed(1, 2, errors.New("disk full"))

	assert.Equal(t, StatusError, a.Status())
	assert.Equal(t, ErrorSentinel, a.Filename())
	assert.Equal(t, ErrorSentinel, a.Filepath())
	assert.Equal(t, "disk full", a.ErrorMessage())
	assert.True(t, a.Failed())
	assert.False(t, a.HasFile())

	assert.Equal(t, "unknown error", NewFailed(1, 2, nil).ErrorMessage())
}

func TestNewGenerated(t *testing.T) {
	a := NewGenerated(1, 2, "x.py", "/out/x.py")

	assert.Equal(t, StatusGenerated, a.Status())
	assert.True(t, a.HasFile())
	assert.Empty(t, a.ErrorMessage())
	assert.Equal(t, int64(9), a.WithID(9).ID())
	assert.Equal(t, int64(0), a.ID())
}

func TestBatchResult(t *testing.T) {
	b := BatchResult{Items: []Item{
		{Phase: PhaseRecorded, Artifact: NewGenerated(1, 1, "a.py", "/o/a.py")},
		{Phase: PhaseFailed, Artifact: NewFailed(1, 2, errors.New("boom"))},
		{Phase: PhaseRecorded, Artifact: NewGenerated(1, 3, "c.py", "/o/c.py")},
	}}

	assert.Equal(t, 2, b.Succeeded())
	assert.Equal(t, 1, b.Failed())
	assert.Equal(t, []string{"a.py", "c.py"}, b.Files())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "written", PhaseWritten.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}
