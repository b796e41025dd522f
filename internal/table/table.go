// Package table converts the tabular payloads returned by the CyREST
// services into typed, indexed tables. Each column is parsed by the
// function its schema entry names; columns without a schema entry keep
// their string form.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the typed representation of a cell value.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Strings
)

// Value is one typed table cell.
type Value struct {
	kind Kind
	str  string
	num  int
	flt  float64
	list []string
}

// Kind returns the value's typed representation.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string form of a String value.
func (v Value) Str() string { return v.str }

// Int returns the parsed integer of an Int value.
func (v Value) Int() int { return v.num }

// Float returns the parsed float of a Float value.
func (v Value) Float() float64 { return v.flt }

// Strings returns the element list of a Strings value.
func (v Value) Strings() []string { return v.list }

// Format renders the typed value back to its serialized form. Parsed ints
// and floats reproduce their numeric value exactly.
func (v Value) Format() string {
	switch v.kind {
	case Int:
		return strconv.Itoa(v.num)
	case Float:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case Strings:
		return strings.Join(v.list, ",")
	default:
		return v.str
	}
}

// ParseFunc converts one serialized cell into a typed value.
type ParseFunc func(string) (Value, error)

// Column pairs a column name with its cell parser.
type Column struct {
	Name  string
	Parse ParseFunc
}

// Schema is the ordered list of typed columns expected in a response.
type Schema []Column

func (s Schema) find(name string) ParseFunc {
	for _, col := range s {
		if col.Name == name {
			return col.Parse
		}
	}
	return nil
}

// Names returns the schema's column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, col := range s {
		names[i] = col.Name
	}
	return names
}

// ParseString is the identity parser.
func ParseString(s string) (Value, error) {
	return Value{kind: String, str: s}, nil
}

// ParseInt parses a base-10 integer cell.
func ParseInt(s string) (Value, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Value{}, fmt.Errorf("not an integer: %q", s)
	}
	return Value{kind: Int, num: n}, nil
}

// ParseFloat parses a float cell.
func ParseFloat(s string) (Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Value{}, fmt.Errorf("not a number: %q", s)
	}
	return Value{kind: Float, flt: f}, nil
}

// ParseCommaList splits a comma-separated cell into its elements.
func ParseCommaList(s string) (Value, error) {
	if s == "" {
		return Value{kind: Strings}, nil
	}
	parts := strings.Split(s, ",")
	list := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return Value{kind: Strings, list: list}, nil
}

// Row is one parsed table row.
type Row []Value

// Table is a parsed, typed tabular response. If an index column was
// requested, rows are addressable by that column's formatted value.
type Table struct {
	Columns  []string
	Rows     []Row
	indexCol int
	index    map[string]int
}

// ParseError reports a cell whose parser rejected the payload value.
type ParseError struct {
	Column string
	Row    int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("table parse error in column %q, row %d: %v", e.Column, e.Row, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse builds a typed table from the serialized headers and rows. Columns
// not named by the schema use the identity parser. A nil header list means
// the service reported no data; the result is then an empty table whose
// columns are exactly the schema's names, so downstream code sees a stable
// shape. indexColumn may be empty for an unindexed table.
func Parse(headers []string, rows [][]string, schema Schema, indexColumn string) (*Table, error) {
	if headers == nil {
		headers = schema.Names()
		rows = nil
	}

	parsers := make([]ParseFunc, len(headers))
	for i, name := range headers {
		if p := schema.find(name); p != nil {
			parsers[i] = p
		} else {
			parsers[i] = ParseString
		}
	}

	t := &Table{
		Columns:  append([]string(nil), headers...),
		indexCol: -1,
	}
	if indexColumn != "" {
		if pos, ok := t.Col(indexColumn); ok {
			t.indexCol = pos
			t.index = make(map[string]int, len(rows))
		}
	}

	for r, raw := range rows {
		if len(raw) != len(headers) {
			return nil, &ParseError{
				Column: "",
				Row:    r,
				Err:    fmt.Errorf("expected %d cells, got %d", len(headers), len(raw)),
			}
		}
		row := make(Row, len(raw))
		for c, cell := range raw {
			v, err := parsers[c](cell)
			if err != nil {
				return nil, &ParseError{Column: headers[c], Row: r, Err: err}
			}
			row[c] = v
		}
		if t.index != nil {
			t.index[row[t.indexCol].Format()] = len(t.Rows)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// Col returns the position of the named column.
func (t *Table) Col(name string) (int, bool) {
	for i, col := range t.Columns {
		if col == name {
			return i, true
		}
	}
	return 0, false
}

// Lookup returns the row whose index-column value formats to key.
func (t *Table) Lookup(key string) (Row, bool) {
	if t.index == nil {
		return nil, false
	}
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return t.Rows[i], true
}

// LookupInt looks up a row by an integer index value.
func (t *Table) LookupInt(key int) (Row, bool) {
	return t.Lookup(strconv.Itoa(key))
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
