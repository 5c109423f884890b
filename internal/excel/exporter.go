package excel

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/vocab/pkg/models"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Vocabulary"

var header = []string{"English", "Translation", "Examples", "Difficulty", "Group"}

func record(w models.Word) []string {
	return []string{w.English, w.Translation, w.ExampleText(), string(w.Difficulty), w.GroupName()}
}

// Export writes words to an xlsx or csv file in the layout Import reads
func Export(ctx context.Context, path string, words []models.Word) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return exportExcel(ctx, path, words)
	case ".csv":
		return exportCSV(ctx, path, words)
	}
	return errors.Wrapf(ErrUnsupportedFormat, "%q", path)
}

func exportExcel(ctx context.Context, path string, words []models.Word) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return errors.Wrap(err, "failed to name sheet")
	}

	rows := [][]string{header}
	for _, w := range words {
		rows = append(rows, record(w))
	}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(exportSheet, cellName, &values); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+1)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, "failed to save workbook")
	}
	return nil
}

func exportCSV(ctx context.Context, path string, words []models.Word) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create CSV file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(record(w)); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "failed to write CSV file")
	}
	return file.Close()
}
