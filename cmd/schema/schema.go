// Package schema implements the `relationalize schema` subcommand: infer a
// polymorphic schema from a table's flattened NDJSON rows and emit CREATE
// TABLE DDL for the configured SQL dialect.
package schema

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relationalize/relationalize/cmd/util"
	"github.com/relationalize/relationalize/internal/ingest"
	"github.com/relationalize/relationalize/internal/logger"
	rschema "github.com/relationalize/relationalize/internal/schema"
	"github.com/relationalize/relationalize/internal/sourcedialect"
	"github.com/relationalize/relationalize/internal/sqldialect"
)

var (
	inPath            string
	table             string
	sqlDialectName    string
	sourceDialectName string
	schemaName        string
	unqualified       bool
	dropNulls         bool
	dropSpecialChars  bool
	dropDuplicates    bool
)

var Cmd = &cobra.Command{
	Use:   "schema",
	Short: "Infer a SQL schema from flattened rows and emit DDL",
	Long: `schema reads a table's flattened NDJSON rows from --in (a file, a
directory containing <table>.ndjson, or "-" for stdin), infers a
polymorphic column-type schema across every row, applies any requested
hygiene passes, and prints the serialized schema JSON followed by the
resulting CREATE TABLE statement.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(Options{
			In:               inPath,
			Table:            table,
			SQLDialect:       sqlDialectName,
			SourceDialect:    sourceDialectName,
			SchemaName:       schemaName,
			Unqualified:      unqualified,
			DropNulls:        dropNulls,
			DropSpecialChars: dropSpecialChars,
			DropDuplicates:   dropDuplicates,
		}, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&inPath, "in", "-", "Input NDJSON file or directory (required unless stdin)")
	Cmd.Flags().StringVar(&table, "table", "", "Table name; when --in is a directory, selects <table>.ndjson (required)")
	Cmd.Flags().StringVar(&sqlDialectName, "sql-dialect", string(sqldialect.Postgres), "Target SQL dialect: postgres or flink")
	Cmd.Flags().StringVar(&sourceDialectName, "source-dialect", "mongo", "Source document dialect: mongo")
	Cmd.Flags().StringVar(&schemaName, "schema-name", "public", "Schema name to qualify the table with")
	Cmd.Flags().BoolVar(&unqualified, "unqualified", false, "Emit DDL without a schema qualifier")
	Cmd.Flags().BoolVar(&dropNulls, "drop-nulls", false, "Drop columns whose every observed value was null")
	Cmd.Flags().BoolVar(&dropSpecialChars, "drop-special-chars", false, "Drop columns whose name contains characters outside [A-Za-z0-9 _-]")
	Cmd.Flags().BoolVar(&dropDuplicates, "drop-duplicates", false, "Drop case-insensitive duplicate column names, keeping the first")
	_ = Cmd.MarkFlagRequired("table")
}

// Options mirrors the subcommand's flags for direct, Cobra-free invocation.
type Options struct {
	In               string
	Table            string
	SQLDialect       string
	SourceDialect    string
	SchemaName       string
	Unqualified      bool
	DropNulls        bool
	DropSpecialChars bool
	DropDuplicates   bool
}

// Run infers the schema and writes the serialized schema JSON, then the
// resulting DDL, to w.
func Run(opts Options, w io.Writer) error {
	r, err := openTableInput(opts.In, opts.Table)
	if err != nil {
		return err
	}
	defer r.Close()

	srcDialect, err := sourceDialectByName(opts.SourceDialect)
	if err != nil {
		return err
	}
	sqlDialect, err := sqldialect.ByName(sqldialect.Name(opts.SQLDialect))
	if err != nil {
		return err
	}

	s := rschema.New(
		rschema.WithSourceDialect(srcDialect),
		rschema.WithSQLDialect(sqlDialect),
		rschema.WithLogger(logger.Get()),
	)

	reader := ingest.New(r)
	for doc := range reader.Documents() {
		s.ReadObject(doc)
	}
	if err := reader.Err(); err != nil {
		return fmt.Errorf("schema: reading rows: %w", err)
	}

	if opts.DropNulls {
		s.DropNullColumns()
	}
	if opts.DropSpecialChars {
		s.DropSpecialCharColumns()
	}
	if opts.DropDuplicates {
		s.DropDuplicateColumns()
	}

	serialized, err := s.Serialize()
	if err != nil {
		return fmt.Errorf("schema: serializing: %w", err)
	}
	if _, err := fmt.Fprintln(w, serialized); err != nil {
		return err
	}

	ddl := s.GenerateDDL(opts.Table, rschema.DDLOptions{
		SchemaName:      opts.SchemaName,
		SchemaQualified: !opts.Unqualified,
	})
	_, err = fmt.Fprintln(w, ddl)
	return err
}

func openTableInput(in, table string) (io.ReadCloser, error) {
	if in == "-" || in == "" {
		return util.OpenInput(in)
	}

	info, err := os.Stat(in)
	if err != nil {
		return nil, fmt.Errorf("schema: opening input %q: %w", in, err)
	}
	path := in
	if info.IsDir() {
		path = filepath.Join(in, table+".ndjson")
	}
	return util.OpenInput(path)
}

func sourceDialectByName(n string) (sourcedialect.Dialect, error) {
	switch n {
	case "mongo", "":
		return sourcedialect.Mongo{}, nil
	default:
		return nil, fmt.Errorf("schema: unknown source dialect %q", n)
	}
}
