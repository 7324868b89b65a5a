package librarian

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/term"
)

const (
	columnPadding = 2
	ellipsis      = "…"
)

// TerminalWidth returns the width of the terminal attached to f, or 0 when f
// isn't a terminal (output is then never truncated).
func TerminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

// writeTable prints rows under headers as aligned columns. When width is set,
// cells are shortened so that a full row fits on one line.
func writeTable(w io.Writer, width int, headers []string, rows [][]string) error {
	limit := 0
	if width > 0 && len(headers) > 0 {
		limit = (width - columnPadding*(len(headers)-1)) / len(headers)
		if limit < 4 {
			limit = 4
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, columnPadding, ' ', 0)
	write := func(cells []string) error {
		for i, cell := range cells {
			cells[i] = truncate(cell, limit)
		}
		_, err := fmt.Fprintln(tw, strings.Join(cells, "\t"))
		return err
	}

	if err := write(append([]string(nil), headers...)); err != nil {
		return errors.WithStack(err)
	}
	for _, row := range rows {
		if err := write(row); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(tw.Flush())
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + ellipsis
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.WithStack(enc.Encode(v))
}
