package main

import (
	"fmt"
	"strings"

	"darkroom/internal/api"
)

// renderStatus formats the snapshot as a table for terminals or key: value
// lines for scripts.
func renderStatus(status *api.StatusResponse, useTable bool) string {
	if status == nil {
		return ""
	}

	rows := [][]string{
		{"Run status", status.RunStatus},
		{"Total", formatCount(status.Total)},
		{"Processed", formatCount(status.Processed)},
		{"Pending", formatCount(status.Pending)},
		{"In flight", formatCount(status.Claimed)},
		{"Errors", formatCount(status.Errors)},
	}
	if status.StartedAt != "" {
		rows = append(rows, []string{"Started", status.StartedAt})
	}
	if status.LastUpdatedAt != "" {
		rows = append(rows, []string{"Last update", status.LastUpdatedAt})
	}
	if status.CompletedAt != "" {
		rows = append(rows, []string{"Completed", status.CompletedAt})
	}
	rows = append(rows, []string{
		"Run config",
		fmt.Sprintf("batch %d, concurrency %d, quality %d, max width %d",
			status.Config.BatchSize, status.Config.Concurrency,
			status.Config.Quality, status.Config.MaxWidth),
	})

	if useTable {
		return renderTable([]column{{header: "Field"}, {header: "Value"}}, rows)
	}

	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToLower(strings.ReplaceAll(row[0], " ", "_")), row[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderErrors formats the error list.
func renderErrors(list *api.ErrorListResponse, useTable bool) string {
	if list == nil || len(list.Errors) == 0 {
		return "no failed photos"
	}

	if useTable {
		rows := make([][]string, 0, len(list.Errors))
		for _, item := range list.Errors {
			rows = append(rows, []string{
				fmt.Sprintf("%d", item.ID),
				item.SourceRef,
				item.ErrorMessage,
				item.UpdatedAt,
			})
		}
		header := renderTable(
			[]column{
				{header: "ID", numeric: true},
				{header: "Source"},
				{header: "Error"},
				{header: "Updated"},
			},
			rows,
		)
		return header + "\n" + fmt.Sprintf("%s failed photos", formatCount(list.Total))
	}

	var b strings.Builder
	for _, item := range list.Errors {
		fmt.Fprintf(&b, "%d\t%s\t%s\n", item.ID, item.SourceRef, item.ErrorMessage)
	}
	fmt.Fprintf(&b, "total: %d", list.Total)
	return b.String()
}
