package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relationalize/relationalize/internal/lattice"
	"github.com/relationalize/relationalize/internal/sourcedialect"
)

func TestReadObjectTracksPrimaryKey(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"_id": "abc", "name": "alice"})
	fields := s.Fields()
	assert.True(t, fields["_id"].IsPrimary)
	assert.False(t, fields["name"].IsPrimary)
}

func TestReadObjectDropsUnsupported(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"weird": []int{1, 2}})
	assert.Equal(t, 0, s.Len())
}

func TestReadObjectNoneThenValueReplaces(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"x": nil})
	s.ReadObject(map[string]any{"x": "hello"})
	assert.Equal(t, lattice.Base(lattice.Str), s.Fields()["x"].Type)
}

func TestReadObjectValueThenNoneKeeps(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"x": "hello"})
	s.ReadObject(map[string]any{"x": nil})
	assert.Equal(t, lattice.Base(lattice.Str), s.Fields()["x"].Type)
}

func TestReadObjectDivergentTypesFormChoice(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"x": "hello"})
	s.ReadObject(map[string]any{"x": true})
	assert.True(t, s.Fields()["x"].Type.IsChoice())
}

func TestReadObjectIntThenFloatGeneralizes(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"x": 3})
	s.ReadObject(map[string]any{"x": 3.5})
	assert.Equal(t, lattice.Base(lattice.Float), s.Fields()["x"].Type)
}

func TestConvertObjectSplitsChoiceColumns(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"x": "hello"})
	s.ReadObject(map[string]any{"x": true})

	row, err := s.ConvertObject(map[string]any{"x": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", row["x_str"])

	row, err = s.ConvertObject(map[string]any{"x": true})
	require.NoError(t, err)
	assert.Equal(t, true, row["x_bool"])
}

func TestConvertObjectNullBypassesSplit(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"x": "hello"})
	s.ReadObject(map[string]any{"x": true})

	row, err := s.ConvertObject(map[string]any{"x": nil})
	require.NoError(t, err)
	assert.Nil(t, row["x"])
}

func TestConvertObjectRejectsUndeclaredMember(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"x": "hello"})
	s.ReadObject(map[string]any{"x": true})

	_, err := s.ConvertObject(map[string]any{"x": 5})
	assert.Error(t, err)
}

func TestGenerateOutputColumnsExpandsChoice(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"x": "hello", "y": 1})
	s.ReadObject(map[string]any{"x": true})
	assert.Equal(t, []string{"x_bool", "x_str", "y"}, s.GenerateOutputColumns())
}

func TestMergeUnionsAcrossSchemas(t *testing.T) {
	a := New()
	a.ReadObject(map[string]any{"x": "hello"})
	b := New()
	b.ReadObject(map[string]any{"x": true, "y": 1})

	merged := Merge(a, b)
	assert.True(t, merged.Fields()["x"].Type.IsChoice())
	assert.Equal(t, lattice.Base(lattice.Int), merged.Fields()["y"].Type)
}

func TestDropNullColumns(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"x": nil, "y": 1})
	assert.Equal(t, 1, s.DropNullColumns())
	assert.Equal(t, 1, s.Len())
	_, ok := s.Fields()["x"]
	assert.False(t, ok)
}

func TestDropSpecialCharColumns(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"good_name": 1, "bad name!": 2, "ok-name": 3})
	assert.Equal(t, 1, s.DropSpecialCharColumns())
	_, ok := s.Fields()["bad name!"]
	assert.False(t, ok)
}

func TestDropDuplicateColumnsCaseInsensitive(t *testing.T) {
	s := New()
	s.insert("Name", &Column{Type: lattice.Base(lattice.Str)})
	s.insert("name", &Column{Type: lattice.Base(lattice.Str)})
	assert.Equal(t, 1, s.DropDuplicateColumns())
	assert.Equal(t, 1, s.Len())
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"_id": "a", "x": "hello"})
	s.ReadObject(map[string]any{"x": true})

	content, err := s.Serialize()
	require.NoError(t, err)

	out, err := Deserialize(content)
	require.NoError(t, err)
	if diff := cmp.Diff(s.Fields(), out.Fields(), cmp.AllowUnexported(lattice.ColumnType{})); diff != "" {
		t.Errorf("deserialized schema does not match original (-want +got):\n%s", diff)
	}
}

func TestGenerateDDLPostgres(t *testing.T) {
	s := New()
	s.ReadObject(map[string]any{"_id": "a", "count": 1})
	ddl := s.GenerateDDL("events", DefaultDDLOptions())
	assert.Contains(t, ddl, `CREATE TABLE IF NOT EXISTS "public"."events"`)
	assert.Contains(t, ddl, `"_id" TEXT`)
	assert.Contains(t, ddl, `"count" INT`)
}

func TestWithSourceDialectOverride(t *testing.T) {
	s := New(WithSourceDialect(sourcedialect.Mongo{}))
	s.ReadObject(map[string]any{"_id": "a"})
	assert.True(t, s.Fields()["_id"].IsPrimary)
}
