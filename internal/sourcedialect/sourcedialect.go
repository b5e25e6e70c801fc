// Package sourcedialect abstracts the originating document ecosystem's
// conventions for recognizing a natural primary key field.
//
// Grounded on original_source/relationalize/nosql_dialects.py.
package sourcedialect

// Dialect decides whether a given field name is the document's natural
// primary key. It is consulted once per field, at first observation.
type Dialect interface {
	IsPrimaryKey(key string) bool
}

// Mongo implements the MongoDB convention: the `_id` field is primary.
type Mongo struct{}

const mongoPrimaryKeyField = "_id"

// IsPrimaryKey reports whether key is the Mongo primary key field name.
func (Mongo) IsPrimaryKey(key string) bool {
	return key == mongoPrimaryKeyField
}

// Default is the dialect used when a caller does not select one explicitly.
var Default Dialect = Mongo{}
