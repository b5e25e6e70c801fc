package relationalize

import (
	"fmt"
	"io"
	"os"

	"github.com/relationalize/relationalize/internal/ingest"
	"github.com/relationalize/relationalize/internal/relationalizer"
	"github.com/relationalize/relationalize/internal/schema"
	"github.com/relationalize/relationalize/internal/sink"
)

func openOrStdin(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("relationalize: opening %q: %w", path, err)
	}
	return f, nil
}

// FlattenFile is a convenience function that reads newline-delimited JSON
// documents from inPath and writes one NDJSON file per table to outDir,
// named rootTable (and rootTable_<path> for subtables).
func FlattenFile(rootTable, inPath, outDir string) error {
	f, err := openOrStdin(inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	docs, err := ingest.New(f).ReadAll()
	if err != nil {
		return fmt.Errorf("relationalize: reading %q: %w", inPath, err)
	}

	rel := relationalizer.New(rootTable,
		relationalizer.WithOutputFactory(sink.NewLocalFile(outDir).Create),
	)
	defer rel.Close()

	if err := rel.Relationalize(docs); err != nil {
		return err
	}
	return rel.Close()
}

// InferSchema is a convenience function that reads a table's flattened
// NDJSON rows from inPath and returns the inferred Schema.
func InferSchema(inPath string, opts ...schema.Option) (*Schema, error) {
	f, err := openOrStdin(inPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := schema.New(opts...)
	reader := ingest.New(f)
	for doc := range reader.Documents() {
		s.ReadObject(doc)
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("relationalize: reading %q: %w", inPath, err)
	}
	return s, nil
}
