package main

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. Numeric columns are right aligned.
type column struct {
	title   string
	numeric bool
}

// listTable wraps a go-pretty writer for the CLI's list views. When numbered
// is set a leading "#" column counts rows from 1.
type listTable struct {
	tw       table.Writer
	numbered bool
	width    int
	rows     int
}

func newListTable(numbered bool, columns ...column) *listTable {
	if numbered {
		columns = append([]column{{title: "#", numeric: true}}, columns...)
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, col := range columns {
		header = append(header, col.title)
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)
	return &listTable{tw: tw, numbered: numbered, width: len(columns)}
}

// add appends a row. Missing cells render empty and extra cells are dropped.
func (t *listTable) add(cells ...string) {
	t.rows++
	row := make(table.Row, 0, t.width)
	if t.numbered {
		row = append(row, strconv.Itoa(t.rows))
	}
	for _, cell := range cells {
		if len(row) == t.width {
			break
		}
		row = append(row, cell)
	}
	for len(row) < t.width {
		row = append(row, "")
	}
	t.tw.AppendRow(row)
}

func (t *listTable) String() string { return t.tw.Render() }

// shikimoriCell renders a Shikimori id, or "-" when there is none.
func shikimoriCell(id int64) string {
	if id <= 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}

// relativeTime renders t as "3 days ago", or "unknown" for the zero time.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.Time(t)
}
