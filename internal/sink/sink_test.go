package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileCreatesBaseDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := NewLocalFile(dir)

	w, err := s.Create("events")
	require.NoError(t, err)
	_, err = w.Write([]byte(`{"a":1}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	content, err := os.ReadFile(filepath.Join(dir, "events.ndjson"))
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(content))
}

func TestMemoryCollectsLinesInOrder(t *testing.T) {
	m := NewMemory()
	w, err := m.Create("events")
	require.NoError(t, err)
	_, _ = w.Write([]byte(`{"a":1}` + "\n"))
	_, _ = w.Write([]byte(`{"a":2}` + "\n"))

	lines := m.Lines("events")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"a":1}`, lines[0])
	assert.Equal(t, `{"a":2}`, lines[1])
}

func TestMemoryTablesAndMissing(t *testing.T) {
	m := NewMemory()
	_, _ = m.Create("events")
	assert.Equal(t, []string{"events"}, m.Tables())
	assert.Nil(t, m.Lines("missing"))
}
