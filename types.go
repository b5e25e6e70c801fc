// Package relationalize re-exports the library's core types for external
// callers who want to flatten documents and infer schemas without reaching
// into internal packages directly.
package relationalize

import (
	"github.com/relationalize/relationalize/internal/lattice"
	"github.com/relationalize/relationalize/internal/relationalizer"
	"github.com/relationalize/relationalize/internal/schema"
	"github.com/relationalize/relationalize/internal/sourcedialect"
	"github.com/relationalize/relationalize/internal/sqldialect"
)

// Re-export important types for external consumption

// ColumnType is the inferred type of a schema column: a base type, a choice
// among several base types, or unsupported.
type ColumnType = lattice.ColumnType

// BaseType is one member of the type lattice (bool, int, bigint, float,
// str, datetime, datetime_tz, none).
type BaseType = lattice.BaseType

// Schema accumulates observed column types across a stream of flat rows and
// emits DDL.
type Schema = schema.Schema

// Column is one schema entry: its inferred type and primary-key status.
type Column = schema.Column

// DDLOptions configures Schema.GenerateDDL.
type DDLOptions = schema.DDLOptions

// Relationalizer flattens nested documents into relational tables.
type Relationalizer = relationalizer.Relationalizer

// OutputFactory lazily creates the writer for a table the first time a row
// is written to it.
type OutputFactory = relationalizer.OutputFactory

// OnObjectWrite is invoked after each row is written to a table.
type OnObjectWrite = relationalizer.OnObjectWrite

// SQLDialect renders DDL for a target SQL engine family.
type SQLDialect = sqldialect.Dialect

// SourceDialect identifies a source document's primary-key field.
type SourceDialect = sourcedialect.Dialect
