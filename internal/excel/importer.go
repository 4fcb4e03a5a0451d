package excel

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/wordsrs/pkg/models"
)

// ItemWriter stores imported items. It returns how many were actually added;
// items already present are not counted.
type ItemWriter interface {
	CreateItems(ctx context.Context, items []models.LearningItem) (int, error)
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath            string // Path to the .xlsx, .csv or .json file
	SheetName           string // Name of the sheet to import (xlsx only)
	TermColumn          string // Column with the term
	TranslationColumn   string // Column with the translation
	LevelColumn         string // Column with the level tag, optional
	PronunciationColumn string // Column with the pronunciation, optional
	StartRow            int    // The row to start importing from (1-based index)
	DefaultLevel        int    // Level used when the cell is empty or not a number
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:           "Sheet1",
		TermColumn:          "A",
		TranslationColumn:   "B",
		LevelColumn:         "C",
		PronunciationColumn: "D",
		StartRow:            2, // By default, start from the second row (skip header)
		DefaultLevel:        models.MinLevel,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	Created        int      `json:"created"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors,omitempty"`
}

// record is one vocabulary row, whatever the source format.
type record struct {
	Term          string      `json:"term"`
	Translation   string      `json:"translation"`
	Level         interface{} `json:"level"`
	Pronunciation string      `json:"pronunciation"`
}

// ImportItems reads vocabulary from a file and stores it through w.
// The format is chosen by file extension.
func ImportItems(ctx context.Context, config ImportConfig, w ItemWriter) (*ImportResult, error) {
	if config.DefaultLevel == 0 {
		config.DefaultLevel = models.MinLevel
	}

	var (
		records []record
		rowNums []int
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(config.FilePath)); ext {
	case ".xlsx", ".xlsm":
		records, rowNums, err = readExcel(config)
	case ".csv":
		records, rowNums, err = readCSV(config)
	case ".json":
		records, rowNums, err = readJSON(config)
	default:
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	items := make([]models.LearningItem, 0, len(records))
	seen := make(map[string]bool, len(records))

	for i, rec := range records {
		result.TotalProcessed++

		item, err := toItem(rec, config.DefaultLevel)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNums[i], err))
			continue
		}

		key := fmt.Sprintf("%d|%s", item.LevelTag, strings.ToLower(item.Term))
		if seen[key] {
			result.Skipped++
			continue
		}
		seen[key] = true
		items = append(items, item)
	}

	if len(items) == 0 {
		return result, nil
	}
	created, err := w.CreateItems(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to store items: %w", err)
	}
	result.Created = created
	result.Skipped += len(items) - created
	return result, nil
}

func toItem(rec record, defaultLevel int) (models.LearningItem, error) {
	term := cleanWord(rec.Term)
	translation := strings.TrimSpace(rec.Translation)

	if term == "" {
		return models.LearningItem{}, errors.New("term cannot be empty")
	}
	if translation == "" {
		return models.LearningItem{}, errors.New("translation cannot be empty")
	}

	level := parseLevel(rec.Level, defaultLevel)
	item := models.NewLearningItem(term, translation, level)
	item.Pronunciation = strings.TrimSpace(rec.Pronunciation)
	return item, nil
}

// readExcel reads rows from an Excel workbook
func readExcel(config ImportConfig) ([]record, []int, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}

	cols, err := resolveColumns(config)
	if err != nil {
		return nil, nil, err
	}

	var records []record
	var rowNums []int
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 || isBlank(row) {
			continue
		}
		records = append(records, cols.record(row))
		rowNums = append(rowNums, i+1)
	}
	return records, rowNums, nil
}

// readCSV reads rows from a CSV file using the same column letters as Excel
func readCSV(config ImportConfig) ([]record, []int, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	cols, err := resolveColumns(config)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var records []record
	var rowNums []int
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++

		if rowNum < config.StartRow || isBlank(row) {
			continue
		}
		records = append(records, cols.record(row))
		rowNums = append(rowNums, rowNum)
	}
	return records, rowNums, nil
}

// readJSON reads an array of {term, translation, level, pronunciation} objects
func readJSON(config ImportConfig) ([]record, []int, error) {
	data, err := os.ReadFile(config.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open JSON file: %w", err)
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON file: %w", err)
	}
	rowNums := make([]int, len(records))
	for i := range rowNums {
		rowNums[i] = i + 1
	}
	return records, rowNums, nil
}

// columns holds zero-based column indexes; -1 means not imported.
type columns struct {
	term, translation, level, pronunciation int
}

func resolveColumns(config ImportConfig) (columns, error) {
	var c columns
	for _, col := range []struct {
		name     string
		letter   string
		required bool
		dst      *int
	}{
		{"term", config.TermColumn, true, &c.term},
		{"translation", config.TranslationColumn, true, &c.translation},
		{"level", config.LevelColumn, false, &c.level},
		{"pronunciation", config.PronunciationColumn, false, &c.pronunciation},
	} {
		if col.letter == "" {
			if col.required {
				return columns{}, fmt.Errorf("%s column is required", col.name)
			}
			*col.dst = -1
			continue
		}
		n, err := excelize.ColumnNameToNumber(col.letter)
		if err != nil {
			return columns{}, fmt.Errorf("invalid %s column: %w", col.name, err)
		}
		*col.dst = n - 1
	}
	return c, nil
}

func (c columns) record(row []string) record {
	cell := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return row[idx]
	}
	return record{
		Term:          cell(c.term),
		Translation:   cell(c.translation),
		Level:         cell(c.level),
		Pronunciation: cell(c.pronunciation),
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cleanWord drops trailing notes in parentheses, e.g. "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// parseLevel accepts a number or numeric string, clamped into the level range.
// Anything else yields def.
func parseLevel(v interface{}, def int) int {
	var n int
	switch x := v.(type) {
	case float64:
		n = int(x)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return def
		}
		n = parsed
	default:
		return def
	}
	return min(max(n, models.MinLevel), models.MaxLevel)
}
