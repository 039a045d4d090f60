package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printer renders human output, colouring status labels only on terminals.
type printer struct {
	out      io.Writer
	colorize bool
	now      time.Time
}

func newPrinter(cmd *cobra.Command) printer {
	out := cmd.OutOrStdout()
	return printer{out: out, colorize: shouldColorize(out), now: time.Now()}
}

func shouldColorize(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p printer) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p printer) printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

func (p printer) field(label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(p.out, "  %-14s %s\n", label+":", value)
}

// status renders a workflow or comment status as a title-cased, coloured label.
func (p printer) status(value string) string {
	label := titleLabel(value)
	if !p.colorize {
		return label
	}
	if colors, ok := statusColors[value]; ok {
		return colors.Sprint(label)
	}
	return label
}

func (p printer) priority(value string) string {
	label := titleLabel(value)
	if !p.colorize {
		return label
	}
	switch value {
	case "critical":
		return text.Colors{text.FgRed, text.Bold}.Sprint(label)
	case "important":
		return text.Colors{text.FgYellow}.Sprint(label)
	default:
		return label
	}
}

// relative renders an API timestamp as "3 minutes ago".
func (p printer) relative(value string) string {
	if value == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return humanize.RelTime(t, p.now, "ago", "from now")
}

var statusColors = map[string]text.Colors{
	"open":              {text.FgYellow},
	"resolved":          {text.FgGreen},
	"pending":           {text.FgBlue},
	"viewed":            {text.FgCyan},
	"commented":         {text.FgCyan},
	"approved":          {text.FgGreen, text.Bold},
	"rejected":          {text.FgRed, text.Bold},
	"changes_requested": {text.FgYellow, text.Bold},
}

var titleCaser = cases.Title(language.English)

// titleLabel turns snake_case identifiers into display labels.
func titleLabel(value string) string {
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n || n < 2 {
		return s
	}
	return string(runes[:n-1]) + "…"
}
