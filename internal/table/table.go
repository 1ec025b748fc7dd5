package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// utf8BOM is the byte-order mark Excel prepends to (and expects in) CSV
// exports of the registry data.
const utf8BOM = "\ufeff"

// Row is one record of the table, keyed by column name.
type Row map[string]string

// ReadAll reads the whole input table into memory and returns the header in
// file order plus one Row per data record. A leading UTF-8 BOM is stripped;
// short records are padded to the header length.
func ReadAll(path string) ([]string, []Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	var rows []Row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// Columns returns the output column order: the input header first, then any
// of extra not already present, in extra's order. Computed once per run and
// used for every written row.
func Columns(header, extra []string) []string {
	out := make([]string, len(header), len(header)+len(extra))
	copy(out, header)

	seen := make(map[string]bool, len(out))
	for _, col := range out {
		seen[col] = true
	}
	for _, col := range extra {
		if !seen[col] {
			out = append(out, col)
			seen[col] = true
		}
	}
	return out
}
