// Package spreadsheet reads the URL input sheet and writes the metrics
// output sheet in .xlsx or .csv form.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/amosWeiskopf/articlemetrics/internal/models"
)

// Format is a tabular file format
type Format string

const (
	XLSX Format = "xlsx"
	CSV  Format = "csv"
)

// Required input columns
const (
	ColumnID  = "URL_ID"
	ColumnURL = "URL"
)

// ResultsSheet is the sheet name of .xlsx output
const ResultsSheet = "Results"

var (
	// ErrMissingColumn is returned when the input lacks URL_ID or URL
	ErrMissingColumn = errors.New("missing required column")

	// ErrUnsupportedFormat is returned for file types other than xlsx/csv
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

// FormatFromPath infers the format from a file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case XLSX, CSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ReadInput reads the input rows from an .xlsx or .csv file
func ReadInput(path string) ([]models.InputRow, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return ReadInputFrom(f, format)
}

// ReadInputFrom reads input rows in file order. Rows with a blank URL are
// skipped; processing numbers count the rows that are kept.
func ReadInputFrom(r io.Reader, format Format) ([]models.InputRow, error) {
	var records [][]string
	var err error

	switch format {
	case XLSX:
		records, err = readXLSX(r)
	case CSV:
		records, err = readCSV(r)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	return parseRecords(records)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func parseRecords(records [][]string) ([]models.InputRow, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s, %s (empty input)", ErrMissingColumn, ColumnID, ColumnURL)
	}

	idCol, urlCol := -1, -1
	for i, name := range records[0] {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case ColumnID:
			idCol = i
		case ColumnURL:
			urlCol = i
		}
	}

	var missing []string
	if idCol < 0 {
		missing = append(missing, ColumnID)
	}
	if urlCol < 0 {
		missing = append(missing, ColumnURL)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	rows := make([]models.InputRow, 0, len(records)-1)
	for _, record := range records[1:] {
		url := strings.TrimSpace(cell(record, urlCol))
		if url == "" {
			continue
		}
		rows = append(rows, models.InputRow{
			ProcessingNo: len(rows) + 1,
			ID:           strings.TrimSpace(cell(record, idCol)),
			URL:          url,
		})
	}
	return rows, nil
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// metricColumns lists the metric headers in output order
var metricColumns = []string{
	"POSITIVE SCORE",
	"NEGATIVE SCORE",
	"POLARITY SCORE",
	"SUBJECTIVITY SCORE",
	"AVG SENTENCE LENGTH",
	"PERCENTAGE OF COMPLEX WORDS",
	"FOG INDEX",
	"AVG NUMBER OF WORDS PER SENTENCE",
	"COMPLEX WORD COUNT",
	"WORD COUNT",
	"SYLLABLE PER WORD",
	"PERSONAL PRONOUNS",
	"AVG WORD LENGTH",
	"SENTENCE COUNT",
}

// Header returns the output column names. The Error column is present
// only when withErrors is set.
func Header(withErrors bool) []string {
	header := append([]string{"Processing No", ColumnID, ColumnURL, "Title"}, metricColumns...)
	if withErrors {
		header = append(header, "Error")
	}
	return header
}

// Record returns the cells of one output row
func Record(row models.MetricsRow, withErrors bool) []interface{} {
	m := row.Metrics
	record := []interface{}{
		row.ProcessingNo, row.ID, row.URL, row.Title,
		m.PositiveScore,
		m.NegativeScore,
		m.PolarityScore,
		m.SubjectivityScore,
		m.AverageSentenceLength,
		m.PercentageComplexWords,
		m.FogIndex,
		m.AverageWordsPerSentence,
		m.ComplexWordCount,
		m.WordCount,
		m.SyllablesPerWord,
		m.PersonalPronouns,
		m.AverageWordLength,
		m.SentenceCount,
	}
	if withErrors {
		record = append(record, row.Error)
	}
	return record
}

// HasErrors reports whether any row records a failure
func HasErrors(rows []models.MetricsRow) bool {
	for _, row := range rows {
		if row.Failed() {
			return true
		}
	}
	return false
}

// WriteResults writes the result rows to w
func WriteResults(w io.Writer, format Format, rows []models.MetricsRow) error {
	switch format {
	case XLSX:
		return writeXLSX(w, rows)
	case CSV:
		return writeCSV(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteResultsFile writes the result rows to path, choosing the format
// from its extension
func WriteResultsFile(path string, rows []models.MetricsRow) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteResults(f, format, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeXLSX(w io.Writer, rows []models.MetricsRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	withErrors := HasErrors(rows)
	header := Header(withErrors)
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(ResultsSheet, "A1", &cells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		record := Record(row, withErrors)
		if err := f.SetSheetRow(ResultsSheet, axis, &record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, rows []models.MetricsRow) error {
	withErrors := HasErrors(rows)
	cw := csv.NewWriter(w)

	if err := cw.Write(Header(withErrors)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := Record(row, withErrors)
		cells := make([]string, len(record))
		for i, v := range record {
			cells[i] = formatCell(v)
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
