package export

import "fmt"

// Table is an ordered tabular document ready to be rendered.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
	// Footer is printed under the table, e.g. a weighted average line.
	Footer string
}

// Renderer turns a Table into a downloadable document.
type Renderer interface {
	Render(table Table) ([]byte, error)
	ContentType() string
	Extension() string
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", t.Title)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}
