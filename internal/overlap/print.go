package overlap

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
)

// Output formats accepted by Print.
const (
	FormatText = "text"
	FormatHTML = "html"
)

// FormatError reports an unsupported overlap rendering format.
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized overlap print format: %q", e.Format)
}

// ValidateFormat rejects output formats Print does not support.
func ValidateFormat(format string) error {
	if format != FormatText && format != FormatHTML {
		return &FormatError{Format: format}
	}
	return nil
}

// Print renders the overlap table. A positive cutoff first restricts the
// records to FDR <= cutoff. The gene lists are omitted from the printed
// columns. The format is validated and the output fully assembled before
// anything is written, so a rejected format leaves no partial output.
func Print(w io.Writer, t *Table, cutoff float64, format string) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	if cutoff > 0 {
		t = t.FilterFDR(cutoff)
	}

	var buf bytes.Buffer
	switch format {
	case FormatText:
		printText(&buf, t)
	case FormatHTML:
		printHTML(&buf, t, cutoff)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func printText(buf *bytes.Buffer, t *Table) {
	fmt.Fprintf(buf, "%s Module\t%s Module\tp-value\tFDR\n", t.CohortA, t.CohortB)
	for _, r := range t.Records {
		fmt.Fprintf(buf, "%d\t%d\t%s\t%s\n",
			r.ModuleA, r.ModuleB, formatFloat(r.P), formatFloat(r.FDR))
	}
}

func printHTML(buf *bytes.Buffer, t *Table, cutoff float64) {
	buf.WriteString("<h4>Module Overlap")
	if cutoff > 0 {
		fmt.Fprintf(buf,
			"<span style=\"font-size:normal;font-weight:normal;\"> (FDR &le; %s)</span>",
			formatFloat(cutoff))
	}
	buf.WriteString("</h4>\n<table>\n<tr>")
	fmt.Fprintf(buf, "<th>%s Module</th><th>%s Module</th><th>p-value</th><th>FDR</th>",
		html.EscapeString(t.CohortA), html.EscapeString(t.CohortB))
	buf.WriteString("</tr>\n")
	for _, r := range t.Records {
		fmt.Fprintf(buf, "<tr><td>%d</td><td>%d</td><td>%s</td><td>%s</td></tr>\n",
			r.ModuleA, r.ModuleB, formatFloat(r.P), formatFloat(r.FDR))
	}
	buf.WriteString("</table>\n")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
