package workbook

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/straye-as/quotation-api/internal/domain"
)

// YesToken is the only cell value decoded as boolean true
const YesToken = "Yes"

const noToken = "No"

// Kind is the storage type of a column
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindJSON
	KindDate
	KindTimestamp
)

// Column is one named, typed column of an entity schema
type Column struct {
	Name string
	Kind Kind
}

// Row gives header-name access to the cells of one stored row
type Row struct {
	index map[string]int
	cells []string
}

// NewRow binds cells to header. Cells beyond the header are ignored and
// missing cells read as empty.
func NewRow(header, cells []string) Row {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return Row{index: index, cells: cells}
}

// String returns the raw cell text, empty when the column or cell is absent
func (r Row) String(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Float parses the cell as a number, 0 when missing or unparseable
func (r Row) Float(name string) float64 {
	v, err := strconv.ParseFloat(r.String(name), 64)
	if err != nil {
		return 0
	}
	return v
}

// Int parses the cell as a number and truncates it
func (r Row) Int(name string) int {
	return int(r.Float(name))
}

// Bool is true only when the cell equals YesToken
func (r Row) Bool(name string) bool {
	return r.String(name) == YesToken
}

// Strings parses a JSON list. Missing, null or unparseable cells yield an
// empty non-nil list so records always serialize as [].
func (r Row) Strings(name string) []string {
	var out []string
	if err := json.Unmarshal([]byte(r.String(name)), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// StringMap parses a JSON object, an empty non-nil map when missing, null or
// unparseable
func (r Row) StringMap(name string) map[string]string {
	var out map[string]string
	if err := json.Unmarshal([]byte(r.String(name)), &out); err != nil || out == nil {
		return map[string]string{}
	}
	return out
}

// Date returns the cell as a calendar date, empty when not YYYY-MM-DD
func (r Row) Date(name string) domain.Date {
	d := domain.Date(r.String(name))
	if _, ok := d.Time(); !ok {
		return ""
	}
	return d
}

// Time parses an RFC 3339 timestamp, zero time on failure
func (r Row) Time(name string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.String(name))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Cell encoders, the inverse of the Row accessors

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatBool(v bool) string {
	if v {
		return YesToken
	}
	return noToken
}

func formatStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func formatStringMap(v map[string]string) string {
	if len(v) == 0 {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Codec maps records of one entity to rows under a fixed column schema
type Codec[T any] struct {
	table   string
	columns []Column
	id      func(T) string
	encode  func(T) []string
	decode  func(Row) T
}

// Table returns the table name the codec reads and writes
func (c Codec[T]) Table() string {
	return c.table
}

// Columns returns the canonical column schema
func (c Codec[T]) Columns() []Column {
	return c.columns
}

// Header returns the canonical header row
func (c Codec[T]) Header() []string {
	return columnNames(c.columns)
}

// ID returns the record identifier
func (c Codec[T]) ID(rec T) string {
	return c.id(rec)
}

// Encode emits the record's cells in canonical column order
func (c Codec[T]) Encode(rec T) []string {
	return c.encode(rec)
}

// Decode reads a record from cells aligned to header
func (c Codec[T]) Decode(header, cells []string) T {
	return c.decode(NewRow(header, cells))
}

// Read decodes every row of the codec's table in stored order.
// An absent table reads as empty.
func (c Codec[T]) Read(wb *Workbook) []T {
	t, ok := wb.Table(c.table)
	if !ok {
		return nil
	}
	records := make([]T, 0, len(t.Rows))
	row := NewRow(t.Header, nil)
	for _, cells := range t.Rows {
		row.cells = cells
		records = append(records, c.decode(row))
	}
	return records
}

// Write replaces the codec's table with records encoded under the canonical header
func (c Codec[T]) Write(wb *Workbook, records []T) {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, c.encode(rec))
	}
	wb.Put(&Table{Name: c.table, Header: c.Header(), Rows: rows})
}

func columnNames(columns []Column) []string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	return names
}
