// Package sqldialect maps lattice column types to concrete SQL column type
// tokens and formats CREATE TABLE DDL, per spec §4.8. Two dialects ship:
// Postgres-family and Flink-SQL-family. New dialects are added by
// implementing the Dialect interface.
//
// Grounded on original_source/relationalize/sql_dialects.py, adapted to a Go
// interface in the style of this repository's pluggable provider interfaces
// (cf. internal/postgres.DesiredStateProvider in the teacher lineage).
package sqldialect

import (
	"fmt"
	"strings"

	"github.com/relationalize/relationalize/internal/lattice"
)

// columnSeparator joins column definitions inside a CREATE TABLE statement.
const columnSeparator = "\n    , "

// Dialect supplies everything needed to render DDL for one SQL engine
// family: a lattice-type-to-column-type mapping, a column-definition
// renderer (which owns identifier quoting and primary-key syntax), and two
// CREATE TABLE templates (schema-qualified and unqualified).
type Dialect interface {
	// ColumnType returns the dialect's concrete type token for a base
	// lattice type.
	ColumnType(t lattice.BaseType) string

	// Column renders one column definition, e.g. `"id" INT PRIMARY KEY`.
	Column(name, columnType string, isPrimary bool) string

	// CreateTable renders a full CREATE TABLE statement. When
	// schemaQualified is false, schema is ignored.
	CreateTable(schemaName, table string, columns []string, schemaQualified bool) string
}

// joinColumns joins column definitions with columnSeparator; each dialect's
// CreateTable substitutes the result into its own template. Shared by both
// shipped dialects.
func joinColumns(columns []string) string {
	return strings.Join(columns, columnSeparator)
}

// Name identifies a shipped dialect by token, for CLI flag parsing.
type Name string

const (
	Postgres Name = "postgres"
	Flink    Name = "flink"
)

// ByName resolves a dialect token to its implementation.
func ByName(n Name) (Dialect, error) {
	switch n {
	case Postgres, "":
		return NewPostgres(), nil
	case Flink:
		return NewFlink(), nil
	default:
		return nil, fmt.Errorf("sqldialect: unknown dialect %q", n)
	}
}
