package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVRenderer writes a Table as RFC 4180 CSV. The title is omitted; the footer becomes a trailing row.
type CSVRenderer struct{}

// NewCSVRenderer builds a CSV renderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// ContentType implements Renderer.
func (CSVRenderer) ContentType() string { return "text/csv" }

// Extension implements Renderer.
func (CSVRenderer) Extension() string { return "csv" }

// Render implements Renderer.
func (CSVRenderer) Render(table Table) ([]byte, error) {
	if err := table.validate(); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(table.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	if table.Footer != "" {
		footer := make([]string, len(table.Columns))
		footer[0] = table.Footer
		if err := w.Write(footer); err != nil {
			return nil, fmt.Errorf("write csv footer: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
