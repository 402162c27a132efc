package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// assignmentPrefixLen bounds the assignment-derived directory and file names.
const assignmentPrefixLen = 20

// numericColumns are persisted as number cells; everything else stays text so
// identifiers keep their leading zeros.
var numericColumns = map[string]struct{}{
	ColScore:           {},
	ColSecondsLate:     {},
	ColRubricScoreDiff: {},
	ColAnnotationWords: {},
	ColCommentWords:    {},
	ColTotalWords:      {},
}

// Store owns report persistence: loading an existing workbook and writing the
// whole table back after every append.
type Store struct {
	logger zerolog.Logger
}

// NewStore constructs a report store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{logger: logger.With().Str("component", "report_store").Logger()}
}

// ReportPath derives the report location for a course/assignment pair:
// one directory per course code, one nested directory per assignment name
// prefix, spaces replaced with underscores.
func ReportPath(outputDir, courseCode, assignmentName string) (dir, path string) {
	prefix := assignmentPrefix(assignmentName)
	dir = filepath.Join(outputDir, courseCode, prefix)
	path = filepath.Join(dir, prefix+"_moderation_report.xlsx")
	return dir, path
}

// SiblingPath returns a path alongside the report with the trailing
// "moderation_report.xlsx" replaced, used for plots, the anonymization map and
// the summary document.
func SiblingPath(reportPath, name string) string {
	return filepath.Join(filepath.Dir(reportPath),
		strings.TrimSuffix(filepath.Base(reportPath), "moderation_report.xlsx")+name)
}

func assignmentPrefix(name string) string {
	runes := []rune(name)
	if len(runes) > assignmentPrefixLen {
		runes = runes[:assignmentPrefixLen]
	}
	return strings.ReplaceAll(string(runes), " ", "_")
}

// Exists reports whether a report file is already present at path.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads the whole workbook into a table. The first row is the header
// schema; short rows are padded with empty cells.
func (s *Store) Load(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read report sheet: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("report %s has no header row", path)
	}

	table := NewTable(rows[0])
	for _, cells := range rows[1:] {
		row := make(Row, len(table.Headers))
		for i, header := range table.Headers {
			if i < len(cells) {
				row[header] = cells[i]
			} else {
				row[header] = ""
			}
		}
		table.Append(row)
	}

	s.logger.Debug().Int("rows", len(table.Rows)).Str("path", path).Msg("loaded report")

	return table, nil
}

// Save writes the full table to path, header row first. The file on disk is
// replaced atomically from the caller's point of view: a failed save leaves
// the previous contents untouched only if the write itself never starts, so
// callers persist after every successful append rather than batching.
func (s *Store) Save(path string, table *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for col, header := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for i, row := range table.Rows {
		for col, header := range table.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(header, row[header])); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}

	return nil
}

func cellValue(header, value string) interface{} {
	numeric := false
	if _, ok := numericColumns[header]; ok {
		numeric = true
	}
	if strings.HasPrefix(header, ScorePrefix) {
		numeric = true
	}

	if numeric && value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}

	return value
}
