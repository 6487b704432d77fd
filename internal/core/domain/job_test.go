package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobPending.Terminal())
	assert.False(t, JobProcessing.Terminal())
	assert.True(t, JobCompleted.Terminal())
	assert.True(t, JobFailed.Terminal())
}

func TestPendingJobSet_AddAndContains(t *testing.T) {
	set := NewPendingJobSet()
	now := time.Now()

	set.Add("a.pdf", now)
	set.Add("b.pdf", now.Add(time.Second))

	assert.True(t, set.Contains("a.pdf"))
	assert.True(t, set.Contains("b.pdf"))
	assert.False(t, set.Contains("c.pdf"))
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, set.PollingFiles)
}

func TestPendingJobSet_AddExisting_UpdatesTimeOnly(t *testing.T) {
	set := NewPendingJobSet()
	t1 := time.Now()
	t2 := t1.Add(time.Minute)

	set.Add("a.pdf", t1)
	set.Add("a.pdf", t2)

	assert.Equal(t, 1, set.Len())
	assert.Equal(t, t2, set.RequestTimes["a.pdf"])
}

func TestPendingJobSet_Remove(t *testing.T) {
	set := NewPendingJobSet()
	now := time.Now()
	set.Add("a.pdf", now)
	set.Add("b.pdf", now)
	set.Add("c.pdf", now)

	set.Remove("b.pdf")

	assert.Equal(t, []string{"a.pdf", "c.pdf"}, set.PollingFiles)
	assert.False(t, set.Contains("b.pdf"))
	_, exists := set.RequestTimes["b.pdf"]
	assert.False(t, exists)
}

func TestPendingJobSet_Remove_Absent(t *testing.T) {
	set := NewPendingJobSet()
	set.Add("a.pdf", time.Now())

	set.Remove("missing.pdf")

	assert.Equal(t, 1, set.Len())
}

func TestPendingJobSet_AddToZeroValue(t *testing.T) {
	// A zero-value set (e.g. decoded from an empty store) must accept Add.
	var set PendingJobSet
	set.Add("a.pdf", time.Now())
	assert.True(t, set.Contains("a.pdf"))
}

func TestPendingJobSet_Clone_Isolated(t *testing.T) {
	set := NewPendingJobSet()
	now := time.Now()
	set.Add("a.pdf", now)

	clone := set.Clone()
	clone.Add("b.pdf", now)
	clone.Remove("a.pdf")

	require.Equal(t, 1, set.Len())
	assert.True(t, set.Contains("a.pdf"))
	assert.False(t, set.Contains("b.pdf"))
}
