package table

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Writer emits rows in a fixed column order, forcing every row to disk
// before the next one is processed so a killed run still leaves a valid,
// readable prefix of the output.
type Writer struct {
	f       *os.File
	csv     *csv.Writer
	columns []string
}

// NewWriter creates the output file, writes the BOM and the header row, and
// syncs them.
func NewWriter(path string, columns []string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output table: %w", err)
	}
	if _, err := f.WriteString(utf8BOM); err != nil {
		f.Close()
		return nil, fmt.Errorf("write byte-order mark: %w", err)
	}

	w := &Writer{f: f, csv: csv.NewWriter(f), columns: columns}
	if err := w.writeRecord(columns); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return w, nil
}

// WriteRow encodes row in the writer's column order, absent cells as empty
// strings, and makes the record durable.
func (w *Writer) WriteRow(row Row) error {
	rec := make([]string, len(w.columns))
	for i, col := range w.columns {
		rec[i] = row[col]
	}
	if err := w.writeRecord(rec); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	return nil
}

func (w *Writer) writeRecord(rec []string) error {
	if err := w.csv.Write(rec); err != nil {
		return err
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	return w.f.Sync()
}

// Close flushes any buffered state and closes the file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
