// Package csvrow reads header-keyed CSV files into rows of column/value pairs.
package csvrow

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Row maps a header column name to the raw cell value of one data line.
type Row map[string]string

// Get returns the cell for column, or "" when the column is absent.
func (r Row) Get(column string) string {
	return r[column]
}

// Has reports whether the cell for column is non-empty.
func (r Row) Has(column string) bool {
	return r[column] != ""
}

// IsTrue reports whether the cell holds the literal "true" in any case.
func (r Row) IsTrue(column string) bool {
	return strings.EqualFold(r[column], "true")
}

// IsFalse reports whether the cell holds the literal "false" in any case.
func (r Row) IsFalse(column string) bool {
	return strings.EqualFold(r[column], "false")
}

// Lower returns the lowercased cell value.
func (r Row) Lower(column string) string {
	return strings.ToLower(r[column])
}

// Record is a Row together with the 1-based file line it started on.
type Record struct {
	Line int
	Row  Row
}

// Read parses UTF-8 CSV from r. A leading byte-order mark is dropped, the
// first record is the header, and every later record becomes one Row in
// input order. Short records leave trailing columns empty; extra cells
// beyond the header are ignored.
func Read(r io.Reader) ([]Record, error) {
	dec := transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var records []Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		row := make(Row, len(header))
		for i, col := range header {
			if i < len(fields) {
				row[col] = fields[i]
			} else {
				row[col] = ""
			}
		}
		records = append(records, Record{Line: line, Row: row})
	}
	return records, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
