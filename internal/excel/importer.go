package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/example/vocab/internal/wordstore"
	"github.com/example/vocab/pkg/models"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are not xlsx, csv or txt
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Importer is the part of the word store used by imports
type Importer interface {
	// ImportWord stores a complete row, reporting whether it was new
	ImportWord(ctx context.Context, word models.Word) (bool, error)
	// AddWord looks up the translation of a bare word
	AddWord(ctx context.Context, english, group string) (*models.Word, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the xlsx, csv or txt file
	EnglishColumn     string // Column with the English word
	TranslationColumn string // Column with the Hebrew translation
	ExamplesColumn    string // Column with example sentences
	DifficultyColumn  string // Column with the difficulty
	GroupColumn       string // Column with the group
	SheetName         string // Sheet to import, the first sheet when empty
	StartRow          int    // The row to start importing from (1-based index)
	Group             string // Group for rows that carry none
}

// DefaultImportConfig returns the default import configuration. It matches
// the layout written by Export.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		EnglishColumn:     "A",
		TranslationColumn: "B",
		ExamplesColumn:    "C",
		DifficultyColumn:  "D",
		GroupColumn:       "E",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Import reads words from an xlsx, csv or txt file. Spreadsheet rows are
// stored as they are; txt files hold one word per line and every word is
// translated through the store.
func Import(ctx context.Context, config ImportConfig, store Importer) (*ImportResult, error) {
	switch strings.ToLower(filepath.Ext(config.FilePath)) {
	case ".xlsx", ".xlsm":
		rows, err := readExcel(config)
		if err != nil {
			return nil, err
		}
		return importRows(ctx, rows, config, store)
	case ".csv":
		rows, err := readCSV(config.FilePath)
		if err != nil {
			return nil, err
		}
		return importRows(ctx, rows, config, store)
	case ".txt":
		return importText(ctx, config, store)
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", config.FilePath)
}

func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rows")
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "error reading CSV")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func importRows(ctx context.Context, rows [][]string, config ImportConfig, store Importer) (*ImportResult, error) {
	result := &ImportResult{Errors: make([]string, 0)}
	currentGroup := config.Group

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rowNum := i + 1
		if rowNum < config.StartRow || isBlank(row) {
			continue
		}

		// A row with only a first cell names the group of the rows below it
		if header, ok := groupHeader(row); ok {
			currentGroup = header
			continue
		}

		result.TotalProcessed++
		word, err := rowToWord(row, config, currentGroup)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		created, err := store.ImportWord(ctx, word)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

func rowToWord(row []string, config ImportConfig, group string) (models.Word, error) {
	english := cleanWord(cell(row, config.EnglishColumn))
	translation := strings.TrimSpace(cell(row, config.TranslationColumn))
	if english == "" {
		return models.Word{}, errors.New("word cannot be empty")
	}
	if translation == "" {
		return models.Word{}, errors.New("translation cannot be empty")
	}

	difficulty := models.DifficultyNew
	if raw := strings.TrimSpace(cell(row, config.DifficultyColumn)); raw != "" {
		parsed, err := models.ParseDifficulty(raw)
		if err != nil {
			return models.Word{}, err
		}
		difficulty = parsed
	}

	if g := strings.TrimSpace(cell(row, config.GroupColumn)); g != "" {
		group = g
	}

	return models.Word{
		English:     english,
		Translation: translation,
		Examples:    models.NullString(cell(row, config.ExamplesColumn)),
		Difficulty:  difficulty,
		Group:       models.NullString(group),
	}, nil
}

func importText(ctx context.Context, config ImportConfig, store Importer) (*ImportResult, error) {
	data, err := os.ReadFile(config.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open word list")
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, line := range strings.Split(string(data), "\n") {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		word := removeSymbols(line)
		if word == "" {
			continue
		}

		result.TotalProcessed++
		if _, err := store.AddWord(ctx, word, config.Group); err != nil {
			if errors.Is(err, wordstore.ErrAlreadyExists) {
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: %v", i+1, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func groupHeader(row []string) (string, bool) {
	first := strings.Trim(strings.TrimSpace(row[0]), "\"")
	if first == "" {
		return "", false
	}
	for _, c := range row[1:] {
		if strings.TrimSpace(c) != "" {
			return "", false
		}
	}
	return first, true
}

// cleanWord drops extra information in parentheses, "go (went, gone)" -> "go"
func cleanWord(word string) string {
	indexOpenParen := strings.Index(word, "(")
	if indexOpenParen > 0 {
		return strings.TrimSpace(word[:indexOpenParen])
	}
	return strings.TrimSpace(word)
}

// removeSymbols trims everything but ASCII letters from both ends
func removeSymbols(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return r > unicode.MaxASCII || !unicode.IsLetter(r)
	})
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
