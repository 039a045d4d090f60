package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// column describes one table column. Cells wider than wrap runes are soft
// wrapped onto extra lines; zero leaves the cell as is.
type column struct {
	title string
	align columnAlignment
	wrap  int
}

// listTable renders the video, comment and session listings. The footer
// carries a one-line summary spanning all columns.
type listTable struct {
	columns []column
	rows    [][]string
	footer  string
}

func newListTable(columns ...column) *listTable {
	return &listTable{columns: columns}
}

func (t *listTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *listTable) summary(footer string) {
	t.footer = footer
}

func (t *listTable) render() string {
	width := len(t.columns)
	if width == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, width)
	for i, col := range t.columns {
		header[i] = col.title
	}
	tw.AppendHeader(header)

	for _, row := range t.rows {
		r := make(table.Row, width)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	if t.footer != "" {
		footer := make(table.Row, width)
		for i := range footer {
			footer[i] = t.footer
		}
		tw.AppendFooter(footer, table.RowConfig{AutoMerge: true, AutoMergeAlign: text.AlignLeft})
		tw.Style().Format.Footer = text.FormatDefault
	}

	configs := make([]table.ColumnConfig, 0, width)
	for i, col := range t.columns {
		cfg := table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		}
		if col.align == alignRight {
			cfg.Align = text.AlignRight
		}
		if col.wrap > 0 {
			cfg.WidthMax = col.wrap
			cfg.WidthMaxEnforcer = text.WrapSoft
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
