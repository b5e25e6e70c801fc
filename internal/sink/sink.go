// Package sink provides concrete create_output collaborators for the
// relationalizer (spec §6): a local-file sink for the CLI, and an in-memory
// sink for library callers and tests.
//
// Grounded on this lineage's pattern of abstracting a resource provider
// behind one small interface with multiple concrete backings (cf.
// internal/postgres.DesiredStateProvider's embedded-vs-external split); here
// the relationalizer depends only on relationalizer.OutputFactory, so either
// backing plugs in without it knowing which is in use.
package sink

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// LocalFile is an OutputFactory-compatible sink writing each table to
// <BaseDir>/<table>.ndjson, creating BaseDir if it does not already exist.
type LocalFile struct {
	BaseDir string
}

// NewLocalFile constructs a LocalFile sink rooted at baseDir.
func NewLocalFile(baseDir string) *LocalFile {
	return &LocalFile{BaseDir: baseDir}
}

// Create implements relationalizer.OutputFactory.
func (l *LocalFile) Create(tableName string) (io.WriteCloser, error) {
	if err := os.MkdirAll(l.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("sink: creating base directory %q: %w", l.BaseDir, err)
	}
	path := filepath.Join(l.BaseDir, tableName+".ndjson")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("sink: creating output file %q: %w", path, err)
	}
	return f, nil
}

// Memory is an in-process OutputFactory-compatible sink that retains rows
// per table in insertion order, for library callers and tests that want to
// avoid touching disk.
type Memory struct {
	mu      sync.Mutex
	buffers map[string]*memoryBuffer
}

// NewMemory constructs an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{buffers: make(map[string]*memoryBuffer)}
}

// Create implements relationalizer.OutputFactory.
func (m *Memory) Create(tableName string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := &memoryBuffer{}
	m.buffers[tableName] = buf
	return buf, nil
}

// Tables returns the names of every table written to so far.
func (m *Memory) Tables() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.buffers))
	for name := range m.buffers {
		out = append(out, name)
	}
	return out
}

// Lines returns the newline-delimited-JSON rows written to table, one
// element per row, in write order. Returns nil if the table was never
// written to.
func (m *Memory) Lines(table string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.buffers[table]
	if !ok {
		return nil
	}
	content := buf.buf.String()
	if content == "" {
		return nil
	}
	var lines []string
	for _, line := range bytes.Split([]byte(content), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		lines = append(lines, string(line))
	}
	return lines
}

type memoryBuffer struct {
	buf bytes.Buffer
}

func (b *memoryBuffer) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

func (b *memoryBuffer) Close() error {
	return nil
}
