// Package schema resolves integration configuration into a complete entity
// definition, filling gaps from the built-in Kore entity presets.
package schema

import (
	"fmt"
	"sort"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/cdosync/internal/config"
	"github.com/dbsmedya/cdosync/internal/records"
)

// Column maps a source field to an import column and its CDO field id.
type Column struct {
	Source  string
	Name    string
	FieldID int
}

// Definition is everything the pipeline needs to know about one entity.
type Definition struct {
	Name            string
	Entity          string
	Label           string
	FileMarker      string
	CustomObjectID  int
	KeyField        string // source field joined against contact emails
	IdentifierField string // import column used as the upsert key
	Schema          records.Schema
	// Columns is keyed by import column name, in import order.
	Columns      *orderedmap.OrderedMap[string, Column]
	LinkContacts bool
	LinkColumn   string
	Prune        bool
}

// Entities returns the preset entity names in sorted order.
func Entities() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve merges an integration's configuration over its entity preset.
func Resolve(name string, ic config.IntegrationConfig) (*Definition, error) {
	def := &Definition{
		Name:         name,
		Entity:       ic.Entity,
		Label:        name,
		LinkContacts: ic.LinkContacts.Enabled,
		Prune:        ic.Prune.Enabled,
	}

	var columns []Column
	if ic.Entity != "" {
		p, ok := presets[ic.Entity]
		if !ok {
			return nil, fmt.Errorf("integration %s: unknown entity %q", name, ic.Entity)
		}
		def.Label = p.label
		def.FileMarker = p.fileMarker
		def.CustomObjectID = p.customObjectID
		def.KeyField = p.keyField
		def.IdentifierField = p.identifierField
		def.LinkColumn = p.linkColumn
		columns = p.columns
	}

	if ic.FileMarker != "" {
		def.FileMarker = ic.FileMarker
	}
	if ic.CustomObjectID > 0 {
		def.CustomObjectID = ic.CustomObjectID
	}
	if ic.KeyField != "" {
		def.KeyField = ic.KeyField
	}
	if ic.IdentifierField != "" {
		def.IdentifierField = ic.IdentifierField
	}
	if ic.LinkContacts.SourceField != "" {
		def.LinkColumn = ic.LinkContacts.SourceField
	}
	if len(ic.Mapping) > 0 {
		columns = make([]Column, 0, len(ic.Mapping))
		for _, m := range ic.Mapping {
			columns = append(columns, Column{Source: m.Source, Name: m.Column, FieldID: m.FieldID})
		}
	}

	def.Columns = orderedmap.NewOrderedMap[string, Column]()
	for _, c := range columns {
		if !def.Columns.Set(c.Name, c) {
			return nil, fmt.Errorf("integration %s: duplicate import column %q", name, c.Name)
		}
	}

	fields := ic.Fields
	if len(fields) == 0 {
		fields = make([]string, 0, len(columns))
		for _, c := range columns {
			fields = append(fields, c.Source)
		}
	}
	def.Schema = records.NewSchema(def.Label, fields...)

	if err := def.check(); err != nil {
		return nil, fmt.Errorf("integration %s: %w", name, err)
	}
	return def, nil
}

func (d *Definition) check() error {
	if d.FileMarker == "" {
		return fmt.Errorf("file marker is empty")
	}
	if d.CustomObjectID <= 0 {
		return fmt.Errorf("custom object id is not set")
	}
	if !d.Schema.Has(d.KeyField) {
		return fmt.Errorf("key field %q is not in the schema", d.KeyField)
	}
	if _, ok := d.Columns.Get(d.IdentifierField); !ok {
		return fmt.Errorf("identifier column %q is not mapped", d.IdentifierField)
	}
	for el := d.Columns.Front(); el != nil; el = el.Next() {
		if !d.Schema.Has(el.Value.Source) {
			return fmt.Errorf("column %q maps unknown field %q", el.Key, el.Value.Source)
		}
	}
	if d.LinkContacts {
		if _, ok := d.Columns.Get(d.LinkColumn); !ok {
			return fmt.Errorf("contact link column %q is not mapped", d.LinkColumn)
		}
	}
	return nil
}

// ColumnFor returns the first column fed by source field.
func (d *Definition) ColumnFor(source string) (Column, bool) {
	for el := d.Columns.Front(); el != nil; el = el.Next() {
		if el.Value.Source == source {
			return el.Value, true
		}
	}
	return Column{}, false
}

// Identifier returns the upsert key column.
func (d *Definition) Identifier() Column {
	c, _ := d.Columns.Get(d.IdentifierField)
	return c
}

// Row projects a parsed record onto the import columns.
func (d *Definition) Row(r records.RawRecord) map[string]string {
	row := make(map[string]string, d.Columns.Len())
	for el := d.Columns.Front(); el != nil; el = el.Next() {
		row[el.Key] = r[el.Value.Source]
	}
	return row
}
