package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agribharat/agribharat-api/internal/observability"
)

type countingCloser struct{ closed int }

func (c *countingCloser) Close() error {
	c.closed++
	return nil
}

func TestFinishClosesLogOnBothPaths(t *testing.T) {
	ok := &countingCloser{}
	assert.Equal(t, 0, finish(nil, ok))
	assert.Equal(t, 1, ok.closed)

	failed := &countingCloser{}
	assert.Equal(t, 1, finish(errors.New("listen tcp :8080: address already in use"), failed))
	assert.Equal(t, 1, failed.closed)
}

func TestFinishFlushesFatalErrorToLogFile(t *testing.T) {
	t.Cleanup(func() { _, _ = observability.Init(observability.LogOptions{}) })

	dir := t.TempDir()
	closer, err := observability.Init(observability.LogOptions{Dir: dir, Level: "info"})
	require.NoError(t, err)

	assert.Equal(t, 1, finish(errors.New("firestore unavailable"), closer))

	data, err := os.ReadFile(filepath.Join(dir, "agribharat.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "firestore unavailable")
}
