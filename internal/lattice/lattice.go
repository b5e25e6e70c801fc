// Package lattice defines the scalar type lattice used by schema inference:
// the set of base column types, the choice (tagged-union) type formed when a
// field is observed with more than one base type, and the classification
// rules that turn a raw decoded value into a ColumnType.
//
// Grounded on original_source/relationalize/types.py: the base type set, the
// int/bigint split at 32-bit signed bounds, and the datetime recognition
// gate are carried over unchanged; the tagged-union representation replaces
// the source's bare string literals with a small Go type so the choice arm
// can be manipulated without re-parsing its string form mid-algorithm.
package lattice

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// BaseType enumerates the scalar types this lattice supports.
type BaseType string

const (
	None       BaseType = "none"
	Bool       BaseType = "bool"
	Int        BaseType = "int"
	BigInt     BaseType = "bigint"
	Float      BaseType = "float"
	Str        BaseType = "str"
	Datetime   BaseType = "datetime"
	DatetimeTZ BaseType = "datetime_tz"
)

const (
	choiceSequence    = "c-"
	choiceDelimiter   = "-"
	unsupportedPrefix = "unsupported:"
	minInt32          = -2147483648
	maxInt32          = 2147483647
)

// ColumnType is the tagged variant described in spec §3.2: a base type, a
// choice of two-or-more base types, or an unsupported marker. The zero value
// is not meaningful; construct via Base, Choice, or Unsupported.
type ColumnType struct {
	base        BaseType   // set when len(choice) == 0 and unsupported == ""
	choice      []BaseType // sorted, unique, len >= 2, never contains None
	unsupported string     // full "unsupported:<description>" token, set when non-empty
}

// Base constructs a non-choice, non-unsupported ColumnType.
func Base(t BaseType) ColumnType {
	return ColumnType{base: t}
}

// Unsupported constructs the unsupported marker for a given Go type description.
func Unsupported(description string) ColumnType {
	return ColumnType{unsupported: unsupportedPrefix + description}
}

// IsUnsupported reports whether this type is the unsupported marker.
func (c ColumnType) IsUnsupported() bool {
	return c.unsupported != ""
}

// IsChoice reports whether this type is a multi-member choice.
func (c ColumnType) IsChoice() bool {
	return len(c.choice) >= 2
}

// IsNone reports whether this type is exactly the `none` base type.
func (c ColumnType) IsNone() bool {
	return !c.IsChoice() && !c.IsUnsupported() && c.base == None
}

// BaseType returns the base type, valid only when !IsChoice() && !IsUnsupported().
func (c ColumnType) BaseType() BaseType {
	return c.base
}

// Members returns the sorted, unique set of base types in a choice. For a
// non-choice type it returns a single-element slice containing the base.
func (c ColumnType) Members() []BaseType {
	if c.IsChoice() {
		out := make([]BaseType, len(c.choice))
		copy(out, c.choice)
		return out
	}
	return []BaseType{c.base}
}

// Contains reports whether t is a member of this type (choice or not).
func (c ColumnType) Contains(t BaseType) bool {
	if c.IsChoice() {
		for _, m := range c.choice {
			if m == t {
				return true
			}
		}
		return false
	}
	return c.base == t
}

// String renders the ColumnType per the wire encoding in spec §3.2.
func (c ColumnType) String() string {
	if c.IsUnsupported() {
		return c.unsupported
	}
	if c.IsChoice() {
		parts := make([]string, len(c.choice))
		for i, m := range c.choice {
			parts[i] = string(m)
		}
		return choiceSequence + strings.Join(parts, choiceDelimiter)
	}
	return string(c.base)
}

// Parse inverts String, reconstructing a ColumnType from its wire token.
func Parse(s string) ColumnType {
	if strings.HasPrefix(s, unsupportedPrefix) {
		return ColumnType{unsupported: s}
	}
	if strings.HasPrefix(s, choiceSequence) {
		parts := strings.Split(s[len(choiceSequence):], choiceDelimiter)
		members := make([]BaseType, 0, len(parts))
		for _, p := range parts {
			members = append(members, BaseType(p))
		}
		return newChoice(members)
	}
	return ColumnType{base: BaseType(s)}
}

// MarshalJSON renders the ColumnType as its wire string token.
func (c ColumnType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses the ColumnType from its wire string token.
func (c *ColumnType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = Parse(s)
	return nil
}

// newChoice builds a choice ColumnType from a member list, sorting, dropping
// duplicates and `none`, and collapsing to a single base type when only one
// member remains (per spec §4.3 rule 6).
func newChoice(members []BaseType) ColumnType {
	seen := make(map[BaseType]bool, len(members))
	var kept []BaseType
	for _, m := range members {
		if m == None || seen[m] {
			continue
		}
		seen[m] = true
		kept = append(kept, m)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })
	if len(kept) == 0 {
		return ColumnType{base: None}
	}
	if len(kept) == 1 {
		return ColumnType{base: kept[0]}
	}
	return ColumnType{choice: kept}
}

// Merge combines two ColumnTypes per spec §4.3's merge table. Neither input
// may be unsupported; callers filter those out before merging.
func Merge(a, b ColumnType) ColumnType {
	if a.IsUnsupported() || b.IsUnsupported() {
		panic("lattice: cannot merge unsupported column types")
	}
	if a.String() == b.String() {
		return a
	}
	if a.IsNone() {
		return b
	}
	if b.IsNone() {
		return a
	}
	if !a.IsChoice() && !b.IsChoice() {
		if a.base == Int && b.base == Float {
			return ColumnType{base: Float}
		}
		if a.base == Float && b.base == Int {
			return a
		}
	}
	members := append(append([]BaseType{}, a.Members()...), b.Members()...)
	return newChoice(members)
}

// datetimeGate matches the cheap prefix check that gates the more expensive
// layout parsing below.
var datetimeGate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`)

// datetimeLayouts are tried in order; any match classifies the string as
// datetime_tz. A format without an offset is intentionally on this list
// (spec §9): "2017-07-09 00:00:00" still classifies as datetime_tz.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05.999999Z0700",
	"2006-01-02 15:04:05.999999Z07:00",
	"2006-01-02T15:04:05.999999Z0700",
	"2006-01-02T15:04:05.999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ClassifyString classifies a string scalar: datetime_tz if it matches the
// gate and one of the accepted layouts, str otherwise.
func ClassifyString(s string) ColumnType {
	if !datetimeGate.MatchString(s) {
		return ColumnType{base: Str}
	}
	candidate := s
	if strings.HasSuffix(candidate, "Z") {
		candidate = candidate[:len(candidate)-1]
	}
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, candidate); err == nil {
			return ColumnType{base: DatetimeTZ}
		}
	}
	return ColumnType{base: Str}
}

// ClassifyInt classifies an integer value by the 32-bit signed split.
func ClassifyInt(v int64) ColumnType {
	if v < minInt32 || v > maxInt32 {
		return ColumnType{base: BigInt}
	}
	return ColumnType{base: Int}
}

// ClassifyFloat classifies a float64: integral values fall back to the int
// classification (and may still become bigint), non-integral values are float.
func ClassifyFloat(v float64) ColumnType {
	if v == float64(int64(v)) {
		return ClassifyInt(int64(v))
	}
	return ColumnType{base: Float}
}

// Classify classifies an arbitrary decoded JSON value per spec §4.2. It
// accepts json.Number (as decoded with UseNumber) alongside native bool,
// string, nil and numeric Go types so callers that hand-construct values in
// tests need not go through JSON decoding.
func Classify(v any) ColumnType {
	switch t := v.(type) {
	case nil:
		return ColumnType{base: None}
	case bool:
		return ColumnType{base: Bool}
	case string:
		return ClassifyString(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return ClassifyInt(i)
		}
		f, err := t.Float64()
		if err != nil {
			return Unsupported(fmt.Sprintf("%T", v))
		}
		return ClassifyFloat(f)
	case int:
		return ClassifyInt(int64(t))
	case int64:
		return ClassifyInt(t)
	case float64:
		return ClassifyFloat(t)
	default:
		return Unsupported(fmt.Sprintf("%T", v))
	}
}

// ParseInt32Bounds exposes the integer split bounds for tests and tooling.
func ParseInt32Bounds() (min, max int64) {
	return minInt32, maxInt32
}
