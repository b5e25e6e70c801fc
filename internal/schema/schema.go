// Package schema implements the polymorphic schema inference engine: it
// accumulates observed (field -> type) pairs across a stream of flat rows,
// merges divergent types into a choice, generalizes int->float, tracks
// primary-key annotation, projects rows against the inferred schema, and
// emits DDL through a pluggable sqldialect.Dialect.
//
// Grounded on original_source/relationalize/schema.py; the ordered-map
// behavior needed for reproducible DDL/serialization ordering follows the
// pattern this lineage uses for its own ordered schema structures (e.g.
// internal/ir's Columns []*Column slices rather than bare maps).
package schema

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/relationalize/relationalize/internal/lattice"
	"github.com/relationalize/relationalize/internal/logger"
	"github.com/relationalize/relationalize/internal/sourcedialect"
	"github.com/relationalize/relationalize/internal/sqldialect"
)

// allowedColumnChars is the default set of non-alphanumeric characters
// tolerated by DropSpecialCharColumns.
var allowedColumnChars = map[rune]bool{' ': true, '-': true, '_': true}

// Column is one schema entry: its inferred type and whether it has been
// identified as the source document's primary key.
type Column struct {
	Type      lattice.ColumnType `json:"type"`
	IsPrimary bool               `json:"is_primary"`
}

// Schema is an ordered mapping field_name -> Column. Field insertion order
// is preserved (independent of Go's unordered map iteration) so DDL and
// serialization are reproducible.
type Schema struct {
	fields        map[string]*Column
	order         []string
	sourceDialect sourcedialect.Dialect
	sqlDialect    sqldialect.Dialect
	logger        *slog.Logger
}

// Option configures a Schema at construction time.
type Option func(*Schema)

// WithSourceDialect overrides the default Mongo source dialect.
func WithSourceDialect(d sourcedialect.Dialect) Option {
	return func(s *Schema) { s.sourceDialect = d }
}

// WithSQLDialect overrides the default Postgres target dialect.
func WithSQLDialect(d sqldialect.Dialect) Option {
	return func(s *Schema) { s.sqlDialect = d }
}

// WithLogger overrides the package-global logger for this Schema instance.
func WithLogger(l *slog.Logger) Option {
	return func(s *Schema) { s.logger = l }
}

// New creates an empty Schema with the default Mongo source dialect and
// Postgres target dialect, unless overridden by opts.
func New(opts ...Option) *Schema {
	s := &Schema{
		fields:        make(map[string]*Column),
		sourceDialect: sourcedialect.Default,
		sqlDialect:    sqldialect.NewPostgres(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Fields returns a copy of the schema entries keyed by field name, for
// callers that need to inspect the accumulated schema directly (e.g. tests).
// The returned map does not carry the insertion order.
func (s *Schema) Fields() map[string]Column {
	out := make(map[string]Column, len(s.order))
	for _, k := range s.order {
		out[k] = *s.fields[k]
	}
	return out
}

// Len reports the number of fields currently in the schema.
func (s *Schema) Len() int {
	return len(s.order)
}

func (s *Schema) insert(key string, col *Column) {
	if _, exists := s.fields[key]; !exists {
		s.order = append(s.order, key)
	}
	s.fields[key] = col
}

// ReadObject reads a flat row and merges its observed types into the
// schema, per the nine-rule table in spec §4.3.
func (s *Schema) ReadObject(record map[string]any) {
	for key, value := range record {
		s.readWriteKey(key, value)
	}
}

func (s *Schema) readWriteKey(key string, value any) {
	valueType := lattice.Classify(value)

	if valueType.IsUnsupported() {
		s.logger.Warn("dropping key with unsupported value type",
			"key", key, "value", value, "type", valueType.String())
		return
	}

	existing, ok := s.fields[key]
	if !ok {
		s.insert(key, &Column{
			Type:      valueType,
			IsPrimary: s.sourceDialect.IsPrimaryKey(key),
		})
		return
	}

	if existing.Type.String() == valueType.String() {
		return
	}
	if existing.Type.IsNone() {
		existing.Type = valueType
		return
	}
	if valueType.IsNone() {
		return
	}
	existing.Type = lattice.Merge(existing.Type, valueType)
}

// Merge combines the schemas in order, the first taken as the base; each
// subsequent schema's entries are inserted or type-unioned with the
// accumulated result. is_primary is inherited from the first occurrence.
func Merge(schemas ...*Schema) *Schema {
	out := New()
	if len(schemas) > 0 {
		out.sourceDialect = schemas[0].sourceDialect
		out.sqlDialect = schemas[0].sqlDialect
		out.logger = schemas[0].logger
	}
	for _, sch := range schemas {
		for _, key := range sch.order {
			col := sch.fields[key]
			existing, ok := out.fields[key]
			if !ok {
				merged := *col
				out.insert(key, &merged)
				continue
			}
			if existing.Type.String() == col.Type.String() && existing.IsPrimary == col.IsPrimary {
				continue
			}
			existing.Type = lattice.Merge(existing.Type, col.Type)
		}
	}
	return out
}

// ConvertObject projects a single flat row against the schema: choice
// columns are split into "<key>_<type>" sub-columns named after the
// runtime type of the value actually present; non-choice columns pass
// through unchanged; null values bypass splitting; fields absent from
// either side are omitted. Chooses between schema-keyed and row-keyed
// iteration to keep cost O(min(|schema|, |row|)).
func (s *Schema) ConvertObject(record map[string]any) (map[string]any, error) {
	if s.Len() > len(record) {
		return s.convertByRecord(record)
	}
	return s.convertBySchema(record)
}

func (s *Schema) convertBySchema(record map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s.order))
	for _, key := range s.order {
		value, present := record[key]
		if !present {
			continue
		}
		if err := s.projectField(out, key, value, s.fields[key].Type); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Schema) convertByRecord(record map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(record))
	for key, value := range record {
		col, present := s.fields[key]
		if !present {
			continue
		}
		if err := s.projectField(out, key, value, col.Type); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Schema) projectField(out map[string]any, key string, value any, declared lattice.ColumnType) error {
	if value == nil {
		out[key] = nil
		return nil
	}
	if !declared.IsChoice() {
		out[key] = value
		return nil
	}
	actual := lattice.Classify(value)
	if !declared.Contains(actual.BaseType()) {
		return fmt.Errorf(
			"schema: value of type %s for key %q is not a member of declared choice %s",
			actual.String(), key, declared.String(),
		)
	}
	out[fmt.Sprintf("%s_%s", key, actual.BaseType())] = value
	return nil
}

// GenerateOutputColumns returns the full, sorted, duplicate-free list of
// columns that ConvertObject will materialize for this schema.
func (s *Schema) GenerateOutputColumns() []string {
	var columns []string
	for _, key := range s.order {
		col := s.fields[key]
		if !col.Type.IsChoice() {
			columns = append(columns, key)
			continue
		}
		for _, member := range col.Type.Members() {
			if member == lattice.None {
				continue
			}
			columns = append(columns, fmt.Sprintf("%s_%s", key, member))
		}
	}
	sort.Strings(columns)
	return columns
}

// DDLOptions configures GenerateDDL.
type DDLOptions struct {
	SchemaName      string // defaults to "public"
	SchemaQualified bool   // defaults to true; zero-value callers should use DefaultDDLOptions
}

// DefaultDDLOptions returns the spec-mandated defaults for GenerateDDL.
func DefaultDDLOptions() DDLOptions {
	return DDLOptions{SchemaName: "public", SchemaQualified: true}
}

// GenerateDDL renders a CREATE TABLE statement for this schema through the
// configured SQL dialect, breaking choice columns into one sub-column per
// member and logging the advisories described in spec §4.7.
func (s *Schema) GenerateDDL(table string, opts DDLOptions) string {
	if opts.SchemaName == "" {
		opts.SchemaName = "public"
	}

	var columns []string
	var primaryKeyColumns []string
	var noneColumns []string
	var multiTypeColumns []string

	for _, key := range s.order {
		col := s.fields[key]
		valueType := col.Type

		if valueType.Contains(lattice.BigInt) {
			s.logger.Debug("column has bigint-range values", "table", table, "column", key)
		}
		if col.IsPrimary {
			primaryKeyColumns = append(primaryKeyColumns, key)
		}

		if !valueType.IsChoice() {
			columns = append(columns, s.sqlDialect.Column(
				key, s.sqlDialect.ColumnType(valueType.BaseType()), col.IsPrimary,
			))
			if valueType.IsNone() {
				noneColumns = append(noneColumns, key)
			}
			continue
		}

		multiTypeColumns = append(multiTypeColumns, fmt.Sprintf("%s (%s)", key, valueType.String()))
		if col.IsPrimary {
			s.logger.Warn("primary key column has multiple types; every sub-column is marked primary",
				"table", table, "column", key, "type", valueType.String())
		}
		for _, member := range valueType.Members() {
			if member == lattice.None {
				continue
			}
			columns = append(columns, s.sqlDialect.Column(
				fmt.Sprintf("%s_%s", key, member), s.sqlDialect.ColumnType(member), col.IsPrimary,
			))
		}
	}
	sort.Strings(columns)

	switch len(primaryKeyColumns) {
	case 1:
	case 0:
		s.logger.Info("table is missing a primary key column", "table", table)
	default:
		s.logger.Warn("table has multiple primary key columns", "table", table, "columns", primaryKeyColumns)
	}
	if len(noneColumns) > 0 {
		s.logger.Info("table has all-null columns defaulted to BOOLEAN", "table", table, "columns", noneColumns)
	}
	if len(multiTypeColumns) > 0 {
		s.logger.Info("table has multi-type columns", "table", table, "columns", multiTypeColumns)
	}

	return s.sqlDialect.CreateTable(opts.SchemaName, table, columns, opts.SchemaQualified)
}

// DropNullColumns removes entries whose type is `none`, returning the count removed.
func (s *Schema) DropNullColumns() int {
	return s.dropWhere(func(key string, col *Column) bool {
		return col.Type.IsNone()
	})
}

// DropSpecialCharColumns removes entries whose name contains a character
// outside [A-Za-z0-9] plus allowed (defaulting to space, hyphen, underscore
// when allowed is empty), returning the count removed.
func (s *Schema) DropSpecialCharColumns(allowed ...rune) int {
	allow := allowedColumnChars
	if len(allowed) > 0 {
		allow = make(map[rune]bool, len(allowed))
		for _, r := range allowed {
			allow[r] = true
		}
	}
	return s.dropWhere(func(key string, _ *Column) bool {
		for _, r := range key {
			if isAlnum(r) || allow[r] {
				continue
			}
			return true
		}
		return false
	})
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// DropDuplicateColumns retains the first of each case-insensitive
// equivalence class of column names, returning the count removed.
func (s *Schema) DropDuplicateColumns() int {
	seen := make(map[string]bool, len(s.order))
	return s.dropWhere(func(key string, _ *Column) bool {
		lower := strings.ToLower(key)
		if seen[lower] {
			return true
		}
		seen[lower] = true
		return false
	})
}

func (s *Schema) dropWhere(drop func(key string, col *Column) bool) int {
	var kept []string
	removed := 0
	for _, key := range s.order {
		if drop(key, s.fields[key]) {
			delete(s.fields, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	s.order = kept
	return removed
}

// orderedColumn is the JSON shape of one serialized schema entry.
type orderedColumn struct {
	Type      lattice.ColumnType `json:"type"`
	IsPrimary bool               `json:"is_primary"`
}

// Serialize emits the schema as `{field: {type, is_primary}}` JSON, in
// field insertion order.
func (s *Schema) Serialize() (string, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range s.order {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return "", fmt.Errorf("schema: serialize key %q: %w", key, err)
		}
		col := s.fields[key]
		valJSON, err := json.Marshal(orderedColumn{Type: col.Type, IsPrimary: col.IsPrimary})
		if err != nil {
			return "", fmt.Errorf("schema: serialize column %q: %w", key, err)
		}
		b.Write(keyJSON)
		b.WriteByte(':')
		b.Write(valJSON)
	}
	b.WriteByte('}')
	return b.String(), nil
}

// Deserialize inverts Serialize, preserving the field order found in the
// input JSON object.
func Deserialize(content string, opts ...Option) (*Schema, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("schema: deserialize: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("schema: deserialize: expected object, got %v", tok)
	}

	s := New(opts...)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("schema: deserialize: reading key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("schema: deserialize: expected string key, got %v", keyTok)
		}
		var col orderedColumn
		if err := dec.Decode(&col); err != nil {
			return nil, fmt.Errorf("schema: deserialize: column %q: %w", key, err)
		}
		s.insert(key, &Column{Type: col.Type, IsPrimary: col.IsPrimary})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("schema: deserialize: closing object: %w", err)
	}
	return s, nil
}
