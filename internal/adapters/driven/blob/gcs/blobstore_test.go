package gcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	assert.Equal(t, "tenant-1/Report.pdf", objectName("tenant-1", "Report.pdf"))
}

func TestObjectPrefix(t *testing.T) {
	assert.Equal(t, "tenant-1/", objectPrefix("tenant-1"))
}
