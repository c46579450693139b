package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/roach88/asksql/internal/warehouse"
)

const maxTextRows = 50

// writeRows renders a result set as an aligned table, truncated to
// maxTextRows rows.
func writeRows(w io.Writer, rs *warehouse.ResultSet) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rs.Columns, "\t"))

	for i, row := range rs.Rows {
		if i == maxTextRows {
			break
		}
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()

	switch n := rs.Len(); {
	case n == 0:
		fmt.Fprint(w, "(no rows)")
	case n > maxTextRows:
		fmt.Fprintf(w, "(%d rows, first %d shown)", n, maxTextRows)
	case n == 1:
		fmt.Fprint(w, "(1 row)")
	default:
		fmt.Fprintf(w, "(%d rows)", n)
	}
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case float64:
		return fmt.Sprintf("%.4g", x)
	default:
		return fmt.Sprint(x)
	}
}
