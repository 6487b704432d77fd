package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// mockBatchRunner implements driving.BatchRunner for testing.
type mockBatchRunner struct {
	op      domain.BatchOperation
	targets []string
	result  *domain.BatchResult
	err     error
}

func (m *mockBatchRunner) Execute(
	_ context.Context,
	op domain.BatchOperation,
	targets []string,
) (*domain.BatchResult, error) {
	m.op = op
	m.targets = targets
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	result := &domain.BatchResult{Operation: op, StartedAt: time.Now()}
	for _, name := range targets {
		result.Record(name, nil)
	}
	result.FinishedAt = time.Now()
	return result, nil
}

func TestRmCmd_Use(t *testing.T) {
	assert.Equal(t, "rm <file>...", rmCmd.Use)
}

func TestRmCmd_ServiceNotConfigured(t *testing.T) {
	oldBatch := batchRunner
	batchRunner = nil
	defer func() { batchRunner = oldBatch }()

	_, err := execute(t, "rm", "a.pdf")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch service not configured")
}

func TestRmCmd_RefusesWithoutTerminal(t *testing.T) {
	// Test processes have no TTY on stdin, so the confirmation path
	// must refuse instead of blocking on a prompt.
	oldBatch := batchRunner
	mock := &mockBatchRunner{}
	batchRunner = mock
	defer func() { batchRunner = oldBatch }()

	_, err := execute(t, "rm", "a.pdf")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
	assert.Empty(t, mock.targets, "nothing must be deleted without confirmation")
}

func TestRmCmd_YesSkipsConfirmation(t *testing.T) {
	oldBatch := batchRunner
	mock := &mockBatchRunner{}
	batchRunner = mock
	defer func() {
		batchRunner = oldBatch
		rmYes = false
	}()

	out, err := execute(t, "rm", "--yes", "a.pdf", "b.pdf")

	assert.NoError(t, err)
	assert.Equal(t, domain.BatchDelete, mock.op)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, mock.targets)
	assert.Contains(t, out, "2 succeeded, 0 failed")
}

func TestRmCmd_UnindexFlag(t *testing.T) {
	oldBatch := batchRunner
	mock := &mockBatchRunner{}
	batchRunner = mock
	defer func() {
		batchRunner = oldBatch
		rmYes = false
		rmUnindex = false
	}()

	_, err := execute(t, "rm", "--yes", "--unindex", "a.pdf")

	assert.NoError(t, err)
	assert.Equal(t, domain.BatchUnindex, mock.op)
}

func TestRmCmd_ReportsPartialFailure(t *testing.T) {
	result := &domain.BatchResult{Operation: domain.BatchDelete}
	result.Record("a.pdf", nil)
	result.Record("b.pdf", assert.AnError)

	oldBatch := batchRunner
	batchRunner = &mockBatchRunner{result: result}
	defer func() {
		batchRunner = oldBatch
		rmYes = false
	}()

	out, err := execute(t, "rm", "--yes", "a.pdf", "b.pdf")

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPartialBatchFailure)
	assert.Contains(t, out, "a.pdf: done")
	assert.Contains(t, out, "b.pdf: FAILED")
	assert.Contains(t, out, "1 succeeded, 1 failed")
}
