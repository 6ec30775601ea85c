package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/annoflow/annoflow/internal/model"
)

// WriteWorkbook renders a summary as an XLSX workbook for people who
// want the numbers in a spreadsheet rather than the dashboard. Rows
// are emitted in sorted order so repeated exports line up in diffs.
func WriteWorkbook(path string, summary *model.ProjectSummary) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := writeOverviewSheet(book, summary); err != nil {
		return err
	}
	if err := writeDocumentsSheet(book, summary); err != nil {
		return err
	}
	if err := writeTypesSheet(book, summary); err != nil {
		return err
	}

	if err := book.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeOverviewSheet(book *excelize.File, summary *model.ProjectSummary) error {
	const sheet = "Overview"
	if _, err := book.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Project", summary.ProjectName},
		{"Tags", joinTags(summary.ProjectTags)},
		{"Report ID", summary.ReportID},
		{"Created", summary.Created},
		{"Aggregation", summary.AggregationMode},
		{"Documents", summary.Progress.TotalDocuments},
		{"Finished", summary.Progress.FinishedDocuments},
		{"Percent complete", summary.Progress.PercentComplete},
		{"Skipped records", summary.SkippedRecords},
	}
	if summary.Progress.Available {
		rows = append(rows, []any{"Estimated remaining (h)", summary.Progress.EstimatedRemainingSeconds / 3600})
	} else {
		rows = append(rows, []any{"Estimated remaining (h)", "insufficient data"})
	}

	return writeRows(book, sheet, rows)
}

func writeDocumentsSheet(book *excelize.File, summary *model.ProjectSummary) error {
	const sheet = "Documents"
	if _, err := book.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]any{{"State", "Documents", "Tokens"}}
	for _, state := range model.DocumentStates {
		rows = append(rows, []any{
			state.Label(),
			summary.DocCategories[string(state)],
			summary.TokenCategories[string(state)],
		})
	}
	return writeRows(book, sheet, rows)
}

func writeTypesSheet(book *excelize.File, summary *model.ProjectSummary) error {
	const sheet = "Types"
	if _, err := book.NewSheet(sheet); err != nil {
		return err
	}

	names := make([]string, 0, len(summary.TypeCounts))
	for name := range summary.TypeCounts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		left, right := summary.TypeCounts[names[i]], summary.TypeCounts[names[j]]
		if left.Total != right.Total {
			return left.Total > right.Total
		}
		return names[i] < names[j]
	})

	rows := [][]any{{"Type", "Total"}}
	for _, state := range model.DocumentStates {
		rows[0] = append(rows[0], state.Label())
	}
	for _, name := range names {
		entry := summary.TypeCounts[name]
		row := []any{name, entry.Total}
		for _, state := range model.DocumentStates {
			row = append(row, entry.TotalByStatus[string(state)])
		}
		rows = append(rows, row)
	}
	return writeRows(book, sheet, rows)
}

func writeRows(book *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func joinTags(tags []string) string {
	out := ""
	for i, tag := range tags {
		if i > 0 {
			out += ", "
		}
		out += tag
	}
	return out
}
