// Package ingest provides the streaming newline-delimited-JSON document
// reader that feeds the relationalizer (pass one) and, over its emitted flat
// rows, the schema (pass two).
//
// Grounded on this lineage's streaming-reader conventions and on
// goccy/go-json's encoding/json-compatible Decoder, used here instead of
// the standard library per DESIGN.md (the pack reaches for goccy/go-json as
// a drop-in, higher-throughput substitute in several of its manifests).
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/goccy/go-json"
)

// Reader decodes a stream of newline-delimited JSON objects into
// map[string]any documents, preserving integer-vs-float numeric shape via
// json.Number so the lattice can classify int/bigint/float correctly.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	err     error
}

// New wraps r as a Reader. The underlying scanner's buffer grows to
// accommodate documents up to 16MiB; a longer line stops iteration with a
// scanning error, reported by Err.
func New(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Reader{scanner: scanner}
}

// Documents returns an iterator over decoded documents. Iteration stops on
// the first decode error or a non-object top-level value; callers retrieve
// it via Err after the range loop ends.
func (r *Reader) Documents() iter.Seq[map[string]any] {
	return r.DocumentsContext(context.Background())
}

// DocumentsContext is Documents with cancellation: iteration also stops,
// recording ctx.Err(), once ctx is done. ctx is checked once per line, after
// the scanner has returned that line; a read that is blocked inside the
// underlying io.Reader is not interrupted.
func (r *Reader) DocumentsContext(ctx context.Context) iter.Seq[map[string]any] {
	return func(yield func(map[string]any) bool) {
		for r.scanner.Scan() {
			if err := ctx.Err(); err != nil {
				r.err = err
				return
			}
			r.line++
			line := bytes.TrimSpace(r.scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			dec := json.NewDecoder(bytes.NewReader(line))
			dec.UseNumber()
			var doc map[string]any
			if err := dec.Decode(&doc); err != nil {
				r.err = fmt.Errorf("ingest: line %d: %w", r.line, err)
				return
			}
			if !yield(doc) {
				return
			}
		}
		if err := r.scanner.Err(); err != nil {
			r.err = fmt.Errorf("ingest: scanning input: %w", err)
		}
	}
}

// Err returns the error, if any, that stopped the most recent Documents
// iteration.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll drains Documents into a slice, for callers (and tests) that don't
// need streaming. Returns the first decode error, if any.
func (r *Reader) ReadAll() ([]map[string]any, error) {
	var docs []map[string]any
	for doc := range r.Documents() {
		docs = append(docs, doc)
	}
	return docs, r.Err()
}
