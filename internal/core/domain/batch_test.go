package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchResult_Record_Success(t *testing.T) {
	r := &BatchResult{Operation: BatchDelete}

	r.Record("a.pdf", nil)
	r.Record("b.pdf", nil)

	assert.Equal(t, 2, r.Succeeded)
	assert.Equal(t, 0, r.Failed)
	require.Len(t, r.Targets, 2)
	assert.True(t, r.Targets[0].Success)
	assert.Empty(t, r.Targets[0].Reason)
}

func TestBatchResult_Record_Failure(t *testing.T) {
	r := &BatchResult{Operation: BatchUnindex}

	r.Record("a.pdf", errors.New("chunk store timeout"))

	assert.Equal(t, 0, r.Succeeded)
	assert.Equal(t, 1, r.Failed)
	require.Len(t, r.Targets, 1)
	assert.False(t, r.Targets[0].Success)
	assert.Equal(t, "chunk store timeout", r.Targets[0].Reason)
}

func TestBatchResult_PartialFailure_AllSucceeded(t *testing.T) {
	r := &BatchResult{}
	r.Record("a.pdf", nil)

	assert.NoError(t, r.PartialFailure())
}

func TestBatchResult_PartialFailure_NamesFailedTargets(t *testing.T) {
	r := &BatchResult{}
	r.Record("a.pdf", nil)
	r.Record("b.pdf", errors.New("boom"))
	r.Record("c.pdf", nil)

	err := r.PartialFailure()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialBatchFailure)
	assert.Contains(t, err.Error(), "b.pdf")
	assert.Contains(t, err.Error(), "1 of 3")
}
