// Package output renders command results as aligned tables or JSON.
// Result rendering is the one place fmt writes to stdout directly.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes rows under fixed headers through a tabwriter. Headers go
// out at construction; Render flushes the aligned result.
type Table struct {
	w *tabwriter.Writer
}

// NewTableTo creates a table on w.
func NewTableTo(w io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		fmt.Fprintln(t.w, strings.Join(headers, "\t"))
		underline := make([]string, len(headers))
		for i, h := range headers {
			underline[i] = strings.Repeat("-", len(h))
		}
		fmt.Fprintln(t.w, strings.Join(underline, "\t"))
	}
	return t
}

// Row appends one row.
func (t *Table) Row(cells ...string) *Table {
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
	return t
}

// Render flushes the buffered table.
func (t *Table) Render() error {
	return t.w.Flush()
}
