package sqldialect

import (
	"fmt"
	"strings"

	"github.com/relationalize/relationalize/internal/lattice"
)

const postgresPrimaryKeyClause = "PRIMARY KEY"

var postgresColumnTypes = map[lattice.BaseType]string{
	lattice.None:       "BOOLEAN",
	lattice.Bool:       "BOOLEAN",
	lattice.Int:        "INT",
	lattice.BigInt:     "BIGINT",
	lattice.Float:      "FLOAT",
	lattice.Str:        "TEXT",
	lattice.Datetime:   "TIMESTAMP",
	lattice.DatetimeTZ: "TIMESTAMPTZ",
}

// PostgresDialect implements the Postgres-family SQL dialect: double-quoted
// identifiers (embedded quotes doubled), `PRIMARY KEY`, and the mapping in
// spec §4.8.
type PostgresDialect struct{}

// NewPostgres constructs the Postgres-family dialect.
func NewPostgres() *PostgresDialect {
	return &PostgresDialect{}
}

// ColumnType implements Dialect.
func (PostgresDialect) ColumnType(t lattice.BaseType) string {
	return postgresColumnTypes[t]
}

// Column implements Dialect.
func (PostgresDialect) Column(name, columnType string, isPrimary bool) string {
	quoted := `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	if isPrimary {
		return fmt.Sprintf("%s %s %s", quoted, columnType, postgresPrimaryKeyClause)
	}
	return fmt.Sprintf("%s %s", quoted, columnType)
}

// CreateTable implements Dialect.
func (PostgresDialect) CreateTable(schemaName, table string, columns []string, schemaQualified bool) string {
	body := joinColumns(columns)
	if schemaQualified {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS \"%s\".\"%s\" (\n    %s\n);", schemaName, table, body)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS \"%s\" (\n    %s\n);", table, body)
}
