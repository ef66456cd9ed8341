package workbook

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

const docCreator = "quotation-api"

// Marshal serializes the workbook as an xlsx document. Tables are written in
// canonical sheet order and number columns are stored as numeric cells.
func Marshal(wb *Workbook) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, name := range TableNames {
		t, ok := wb.Table(name)
		if !ok {
			continue
		}
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", name, err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if err := writeTable(f, t); err != nil {
			return nil, err
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:  docCreator,
		Title:    "Quotations",
		Revision: strconv.FormatInt(wb.revision, 10),
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, t *Table) error {
	kinds := make(map[string]Kind)
	for _, col := range Columns(t.Name) {
		kinds[col.Name] = col.Kind
	}

	header := make([]interface{}, len(t.Header))
	for i, name := range t.Header {
		header[i] = name
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", t.Name, err)
	}

	for r, cells := range t.Rows {
		values := make([]interface{}, len(cells))
		for i, cell := range cells {
			if utf8.RuneCountInString(cell) > excelize.TotalCellChars {
				return cellTooLong(t, i)
			}
			values[i] = cell
			if i < len(t.Header) && kinds[t.Header[i]] == KindNumber {
				if v, err := strconv.ParseFloat(cell, 64); err == nil {
					values[i] = v
				}
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Name, axis, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", t.Name, r+1, err)
		}
	}
	return nil
}

// cellTooLong reports a cell excelize would truncate on write
func cellTooLong(t *Table, col int) error {
	field := t.Name
	if col < len(t.Header) {
		field = t.Header[col]
	}
	return &domain.ValidationError{
		Message: fmt.Sprintf("%s value too long", t.Name),
		Fields:  map[string]string{field: fmt.Sprintf("must be at most %d characters", excelize.TotalCellChars)},
	}
}

// Unmarshal parses an xlsx document. Only sheets named after a known table are
// read; absent tables stay absent so callers can tell what an upload lacked.
func Unmarshal(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := newEmpty()
	for _, sheet := range f.GetSheetList() {
		if Columns(sheet) == nil {
			continue
		}
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		wb.Put(readTable(sheet, rows))
	}

	if props, err := f.GetDocProps(); err == nil {
		if rev, err := strconv.ParseInt(props.Revision, 10, 64); err == nil {
			wb.revision = rev
		}
	}
	return wb, nil
}

func readTable(name string, rows [][]string) *Table {
	t := &Table{Name: name}
	if len(rows) == 0 || isBlank(rows[0]) {
		t.Header = Header(name)
		return t
	}
	t.Header = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		t.Header[i] = strings.TrimSpace(h)
	}
	for _, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Encode serializes the workbook to the text-safe form held by a value store
func Encode(wb *Workbook) (string, error) {
	data, err := Marshal(wb)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a value produced by Encode
func Decode(value string) (*Workbook, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("failed to decode workbook value: %w", err)
	}
	return Unmarshal(data)
}
