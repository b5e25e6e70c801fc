package lattice

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyScalars(t *testing.T) {
	assert.Equal(t, Base(None), Classify(nil))
	assert.Equal(t, Base(Bool), Classify(true))
	assert.Equal(t, Base(Str), Classify("hello"))
	assert.Equal(t, Base(Int), Classify(json.Number("42")))
	assert.Equal(t, Base(BigInt), Classify(json.Number("9999999999")))
	assert.Equal(t, Base(Float), Classify(json.Number("3.14")))
	assert.Equal(t, Base(Int), Classify(json.Number("3.0")))
	assert.True(t, Classify([]int{1}).IsUnsupported())
}

func TestClassifyIntBoundary(t *testing.T) {
	min, max := ParseInt32Bounds()
	assert.Equal(t, Base(Int), ClassifyInt(min))
	assert.Equal(t, Base(Int), ClassifyInt(max))
	assert.Equal(t, Base(BigInt), ClassifyInt(min-1))
	assert.Equal(t, Base(BigInt), ClassifyInt(max+1))
}

func TestClassifyStringDatetime(t *testing.T) {
	cases := []struct {
		value string
		want  BaseType
	}{
		{"2017-07-09 00:00:00", DatetimeTZ},
		{"2017-07-09T00:00:00", DatetimeTZ},
		{"2017-07-09T00:00:00Z", DatetimeTZ},
		{"2017-07-09T00:00:00+07:00", DatetimeTZ},
		{"2017-07-09T00:00:00.123456Z", DatetimeTZ},
		{"not a date", Str},
		{"2017-07-09", Str},
	}
	for _, c := range cases {
		assert.Equal(t, Base(c.want), ClassifyString(c.value), c.value)
	}
}

func TestMergeEqualTypes(t *testing.T) {
	assert.Equal(t, Base(Str), Merge(Base(Str), Base(Str)))
}

func TestMergeWithNone(t *testing.T) {
	assert.Equal(t, Base(Str), Merge(Base(None), Base(Str)))
	assert.Equal(t, Base(Str), Merge(Base(Str), Base(None)))
}

func TestMergeIntFloatGeneralizes(t *testing.T) {
	assert.Equal(t, Base(Float), Merge(Base(Int), Base(Float)))
	assert.Equal(t, Base(Float), Merge(Base(Float), Base(Int)))
}

func TestMergeFormsChoice(t *testing.T) {
	merged := Merge(Base(Str), Base(Bool))
	require.True(t, merged.IsChoice())
	assert.Equal(t, []BaseType{Bool, Str}, merged.Members())
	assert.Equal(t, "c-bool-str", merged.String())
}

func TestMergeExtendsChoice(t *testing.T) {
	choice := Merge(Base(Str), Base(Bool))
	merged := Merge(choice, Base(Int))
	assert.Equal(t, []BaseType{Bool, Int, Str}, merged.Members())
}

func TestMergePanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() {
		Merge(Unsupported("[]int"), Base(Str))
	})
}

func TestStringRoundTrip(t *testing.T) {
	cases := []ColumnType{
		Base(Str),
		Base(BigInt),
		Merge(Base(Str), Base(Bool)),
		Unsupported("[]int"),
	}
	for _, c := range cases {
		assert.Equal(t, c, Parse(c.String()))
	}
}

func TestJSONRoundTrip(t *testing.T) {
	c := Merge(Base(Str), Base(Int))
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `"c-int-str"`, string(b))

	var out ColumnType
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, c, out)
}
