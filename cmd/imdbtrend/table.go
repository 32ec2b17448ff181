package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/John-Robertt/imdbtrend/internal/domain"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	// 表头保持原文（默认会转成大写）。
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderSummary 渲染每个条目一行的结果表，末尾附计数行。
func renderSummary(rr domain.RunReport) string {
	headers := []string{"#", "IMDb ID", "Title", "Status", "Genres", "Cast", "Poster"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(rr.Items)+1)
	for _, it := range rr.Items {
		id := it.IMDbID
		if id == "" {
			id = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(it.Index + 1),
			id,
			truncate(it.Title, 40),
			it.Status,
			strconv.Itoa(it.Genres),
			strconv.Itoa(it.Cast),
			it.Poster,
		})
	}
	s := rr.Summary
	rows = append(rows, []string{
		"",
		"",
		"total=" + strconv.Itoa(s.Items),
		"ok=" + strconv.Itoa(s.OK) + " partial=" + strconv.Itoa(s.Partial) + " no-id=" + strconv.Itoa(s.Unidentified),
		strconv.Itoa(s.WithGenres),
		strconv.Itoa(s.WithCast),
		"saved=" + strconv.Itoa(s.PostersSaved) + " remote=" + strconv.Itoa(s.PostersRemote),
	})
	return renderTable(headers, rows, aligns)
}
