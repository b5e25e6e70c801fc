// Package flatten implements the `relationalize flatten` subcommand: read
// newline-delimited JSON documents and write the relationalized tables to a
// directory of NDJSON files, one per table.
//
// Grounded on this lineage's pattern of one subcommand package per verb,
// each owning its own flags and a Run function that does the real work so
// it can be exercised directly from tests without going through Cobra.
package flatten

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relationalize/relationalize/cmd/util"
	"github.com/relationalize/relationalize/internal/ingest"
	"github.com/relationalize/relationalize/internal/logger"
	"github.com/relationalize/relationalize/internal/relationalizer"
	"github.com/relationalize/relationalize/internal/sink"
)

var (
	name             string
	inPath           string
	outDir           string
	stringifyArrays  bool
	stringifyObjects bool
)

var Cmd = &cobra.Command{
	Use:   "flatten",
	Short: "Flatten newline-delimited JSON documents into relational tables",
	Long: `flatten reads newline-delimited JSON documents from --in (or stdin
when --in is "-" or omitted) and writes one NDJSON file per table to
--out-dir: <name>.ndjson for the root documents, and <name>_<path>.ndjson
for each array encountered at any nesting depth.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(name, inPath, outDir, stringifyArrays, stringifyObjects)
	},
}

func init() {
	Cmd.Flags().StringVar(&name, "name", "", "Name of the root table (required)")
	Cmd.Flags().StringVar(&inPath, "in", "-", `Input file, or "-" for stdin`)
	Cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory to write table files into")
	Cmd.Flags().BoolVar(&stringifyArrays, "stringify-arrays", false, "Render arrays as JSON strings instead of subtables")
	Cmd.Flags().BoolVar(&stringifyObjects, "stringify-objects", false, "Render nested objects as JSON strings instead of flattening them")
	_ = Cmd.MarkFlagRequired("name")
}

// Run performs the flatten operation outside of Cobra's flag parsing, so it
// can be called directly from tests.
func Run(tableName, in, outDir string, stringifyArrays, stringifyObjects bool) error {
	r, err := util.OpenInput(in)
	if err != nil {
		return err
	}
	defer r.Close()

	docs, err := ingest.New(r).ReadAll()
	if err != nil {
		return fmt.Errorf("flatten: reading input: %w", err)
	}

	rel := relationalizer.New(tableName,
		relationalizer.WithStringifyArrays(stringifyArrays),
		relationalizer.WithStringifyObjects(stringifyObjects),
		relationalizer.WithOutputFactory(sink.NewLocalFile(outDir).Create),
		relationalizer.WithLogger(logger.Get()),
	)
	defer rel.Close()

	if err := rel.Relationalize(docs); err != nil {
		return fmt.Errorf("flatten: %w", err)
	}
	return nil
}
