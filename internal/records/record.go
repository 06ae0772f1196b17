// Package records parses provider flat files and prepares records for import:
// header skipping, delimiter splitting, key-set joins, and fixed-size batching.
package records

import "slices"

// RawRecord maps a schema field name to its raw string value.
type RawRecord map[string]string

// Schema is an ordered list of field names for one entity type.
type Schema struct {
	Name   string
	Fields []string
}

// NewSchema returns a Schema over a copy of fields.
func NewSchema(name string, fields ...string) Schema {
	return Schema{Name: name, Fields: slices.Clone(fields)}
}

// Width is the number of fields a line must carry.
func (s Schema) Width() int {
	return len(s.Fields)
}

// Has reports whether field is part of the schema.
func (s Schema) Has(field string) bool {
	return slices.Contains(s.Fields, field)
}
