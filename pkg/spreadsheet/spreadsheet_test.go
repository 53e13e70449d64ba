package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amosWeiskopf/articlemetrics/internal/models"
)

func TestReadInputCSV(t *testing.T) {
	input := "\ufeffURL,URL_ID,Notes\n" +
		"https://example.com/a,blackassign0001,first\n" +
		" , blackassign0002,blank url\n" +
		"https://example.com/c , blackassign0003\n"

	rows, err := ReadInputFrom(strings.NewReader(input), CSV)
	require.NoError(t, err)

	assert.Equal(t, []models.InputRow{
		{ProcessingNo: 1, ID: "blackassign0001", URL: "https://example.com/a"},
		{ProcessingNo: 2, ID: "blackassign0003", URL: "https://example.com/c"},
	}, rows)
}

func TestReadInputXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"URL_ID", "URL"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{123, "https://example.com/x"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"abc", "https://example.com/y"}))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	rows, err := ReadInputFrom(&buf, XLSX)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "123", rows[0].ID)
	assert.Equal(t, "https://example.com/x", rows[0].URL)
	assert.Equal(t, 2, rows[1].ProcessingNo)
}

func TestReadInputMissingColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no URL_ID", input: "URL\nhttps://example.com\n"},
		{name: "no URL", input: "URL_ID,Link\n1,https://example.com\n"},
		{name: "empty", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadInputFrom(strings.NewReader(tt.input), CSV)
			assert.ErrorIs(t, err, ErrMissingColumn)
			assert.Nil(t, rows)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	format, err := FormatFromPath("Input.XLSX")
	require.NoError(t, err)
	assert.Equal(t, XLSX, format)

	format, err = FormatFromPath("/tmp/out.csv")
	require.NoError(t, err)
	assert.Equal(t, CSV, format)

	_, err = FormatFromPath("input.ods")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadInput("input.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func sampleRows() []models.MetricsRow {
	return []models.MetricsRow{
		{
			ProcessingNo: 1,
			ID:           "a1",
			URL:          "https://example.com/a",
			Title:        "A",
			Metrics: models.Metrics{
				PositiveScore: 3,
				NegativeScore: 1,
				PolarityScore: 0.5,
				WordCount:     40,
				FogIndex:      12.25,
			},
		},
	}
}

func TestWriteResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, CSV, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, Header(false), records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "a1", records[1][1])
	assert.Equal(t, "3", records[1][4])
	assert.Equal(t, "0.5", records[1][6])
	assert.Equal(t, "12.25", records[1][10])
}

func TestWriteResultsErrorColumn(t *testing.T) {
	rows := append(sampleRows(), models.MetricsRow{
		ProcessingNo: 2,
		ID:           "b2",
		URL:          "https://example.com/b",
		Error:        "render timeout",
	})

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, CSV, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	header := records[0]
	assert.Equal(t, "Error", header[len(header)-1])
	assert.Equal(t, "", records[1][len(header)-1])
	assert.Equal(t, "render timeout", records[2][len(header)-1])
}

func TestWriteResultsFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Output_Data_Structure.xlsx")
	require.NoError(t, WriteResultsFile(path, sampleRows()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ResultsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ResultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Header(false), rows[0])
	assert.Equal(t, "https://example.com/a", rows[1][2])
}

func TestWriteResultsUnsupported(t *testing.T) {
	err := WriteResults(&bytes.Buffer{}, Format("ods"), sampleRows())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
