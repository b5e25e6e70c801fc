package sqldialect

import (
	"fmt"
	"strings"

	"github.com/relationalize/relationalize/internal/lattice"
)

const flinkPrimaryKeyClause = "PRIMARY KEY NOT ENFORCED"

var flinkColumnTypes = map[lattice.BaseType]string{
	lattice.None:       "BOOLEAN",
	lattice.Bool:       "BOOLEAN",
	lattice.Int:        "INT",
	lattice.BigInt:     "BIGINT",
	lattice.Float:      "FLOAT",
	lattice.Str:        "STRING",
	lattice.Datetime:   "TIMESTAMP",
	lattice.DatetimeTZ: "TIMESTAMP_LTZ",
}

// FlinkDialect implements the Flink-SQL-family dialect: backtick-quoted
// identifiers, schema-qualified names rendered as a single backticked
// composite, and `PRIMARY KEY NOT ENFORCED` (Flink does not own the data).
type FlinkDialect struct{}

// NewFlink constructs the Flink-SQL-family dialect.
func NewFlink() *FlinkDialect {
	return &FlinkDialect{}
}

// ColumnType implements Dialect.
func (FlinkDialect) ColumnType(t lattice.BaseType) string {
	return flinkColumnTypes[t]
}

// Column implements Dialect.
func (FlinkDialect) Column(name, columnType string, isPrimary bool) string {
	quoted := "`" + strings.ReplaceAll(name, "`", "``") + "`"
	if isPrimary {
		return fmt.Sprintf("%s %s %s", quoted, columnType, flinkPrimaryKeyClause)
	}
	return fmt.Sprintf("%s %s", quoted, columnType)
}

// CreateTable implements Dialect.
func (FlinkDialect) CreateTable(schemaName, table string, columns []string, schemaQualified bool) string {
	body := joinColumns(columns)
	if schemaQualified {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s.%s` (\n    %s\n);", schemaName, table, body)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (\n    %s\n);", table, body)
}
