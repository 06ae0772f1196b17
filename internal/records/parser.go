package records

import (
	"iter"
	"strings"
)

// Delimiter separates fields on a line.
const Delimiter = "|"

// Parser turns delimited lines into RawRecords for one schema.
type Parser struct {
	schema Schema
}

// NewParser creates a Parser for schema.
func NewParser(schema Schema) *Parser {
	return &Parser{schema: schema}
}

// Schema returns the parser's schema.
func (p *Parser) Schema() Schema {
	return p.schema
}

// Parse lazily converts lines to records. The first line is always a header
// and is discarded. Lines with fewer fields than the schema are dropped
// without error; extra fields are ignored. The last schema field has a
// trailing newline removed.
func (p *Parser) Parse(lines iter.Seq[string]) iter.Seq[RawRecord] {
	return func(yield func(RawRecord) bool) {
		header := true
		for line := range lines {
			if header {
				header = false
				continue
			}
			record, ok := p.ParseLine(line)
			if !ok {
				continue
			}
			if !yield(record) {
				return
			}
		}
	}
}

// ParseLine converts a single data line. It reports false when the line is
// too short for the schema.
func (p *Parser) ParseLine(line string) (RawRecord, bool) {
	width := p.schema.Width()
	if width == 0 {
		return nil, false
	}

	tokens := strings.SplitN(line, Delimiter, width+1)
	if len(tokens) < width {
		return nil, false
	}

	record := make(RawRecord, width)
	for i, field := range p.schema.Fields {
		value := tokens[i]
		if i == width-1 {
			value = strings.TrimSuffix(value, "\n")
		}
		record[field] = value
	}
	return record, true
}
