package sqldialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relationalize/relationalize/internal/lattice"
)

func TestByName(t *testing.T) {
	d, err := ByName(Postgres)
	require.NoError(t, err)
	assert.IsType(t, &PostgresDialect{}, d)

	d, err = ByName(Flink)
	require.NoError(t, err)
	assert.IsType(t, &FlinkDialect{}, d)

	d, err = ByName("")
	require.NoError(t, err)
	assert.IsType(t, &PostgresDialect{}, d)

	_, err = ByName("oracle")
	assert.Error(t, err)
}

func TestPostgresColumnQuoting(t *testing.T) {
	d := NewPostgres()
	assert.Equal(t, `"id" INT PRIMARY KEY`, d.Column("id", "INT", true))
	assert.Equal(t, `"na""me" TEXT`, d.Column(`na"me`, "TEXT", false))
}

func TestPostgresCreateTable(t *testing.T) {
	d := NewPostgres()
	ddl := d.CreateTable("public", "events", []string{`"id" INT PRIMARY KEY`, `"name" TEXT`}, true)
	assert.Contains(t, ddl, `CREATE TABLE IF NOT EXISTS "public"."events"`)

	ddl = d.CreateTable("public", "events", []string{`"id" INT PRIMARY KEY`}, false)
	assert.Contains(t, ddl, `CREATE TABLE IF NOT EXISTS "events"`)
	assert.NotContains(t, ddl, `"public"`)
}

func TestFlinkColumnQuoting(t *testing.T) {
	d := NewFlink()
	assert.Equal(t, "`id` INT PRIMARY KEY NOT ENFORCED", d.Column("id", "INT", true))
}

func TestFlinkCreateTableQualified(t *testing.T) {
	d := NewFlink()
	ddl := d.CreateTable("public", "events", []string{"`id` INT"}, true)
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS `public.events`")
}

func TestColumnTypeMappings(t *testing.T) {
	pg := NewPostgres()
	assert.Equal(t, "TIMESTAMPTZ", pg.ColumnType(lattice.DatetimeTZ))
	assert.Equal(t, "BIGINT", pg.ColumnType(lattice.BigInt))

	flink := NewFlink()
	assert.Equal(t, "TIMESTAMP_LTZ", flink.ColumnType(lattice.DatetimeTZ))
	assert.Equal(t, "STRING", flink.ColumnType(lattice.Str))
}
