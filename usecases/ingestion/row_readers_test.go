package ingestion

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/offerlookup/offer-backend/models"
)

func readAll(t *testing.T, reader RowReader) []models.RawRow {
	t.Helper()
	var rows []models.RawRow
	for {
		row, err := reader.Next()
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestCsvRowReader(t *testing.T) {
	content := "\xef\xbb\xbfpropertyAddress, propertyCity,offerAmount\n" +
		"12 Main St,Austin,1000\n" +
		"\n" +
		"\"4, Oak Ave\",Dallas\n"

	reader, err := NewRowReader(models.FileTypeCsv, strings.NewReader(content))
	require.NoError(t, err)
	defer reader.Close()

	rows := readAll(t, reader)
	assert.Equal(t, []models.RawRow{
		{"propertyAddress": "12 Main St", "propertyCity": "Austin", "offerAmount": "1000"},
		{"propertyAddress": "4, Oak Ave", "propertyCity": "Dallas", "offerAmount": ""},
	}, rows)
}

func TestCsvRowReader_emptyFile(t *testing.T) {
	_, err := NewRowReader(models.FileTypeCsv, strings.NewReader(""))
	assert.ErrorIs(t, err, models.ErrMissingHeader)
}

func TestCsvRowReader_malformedFile(t *testing.T) {
	reader, err := NewRowReader(models.FileTypeCsv, strings.NewReader("propertyAddress,offerAmount\n\"12 Main St,1000\n"))
	require.NoError(t, err)

	_, err = reader.Next()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestNewRowReader_unsupportedType(t *testing.T) {
	_, err := NewRowReader(models.FileType("pdf"), strings.NewReader("whatever"))
	assert.ErrorIs(t, err, models.ErrUnsupportedFileType)
	assert.ErrorIs(t, err, models.BadParameterError)
}

func buildWorkbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	file := excelize.NewFile()
	defer file.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow("Sheet1", cell, &row))
	}
	buffer, err := file.WriteToBuffer()
	require.NoError(t, err)
	return buffer
}

func TestXlsxRowReader(t *testing.T) {
	workbook := buildWorkbook(t,
		[]any{"propertyAddress", "propertyZip", "offerAmount"},
		[]any{"12 Main St", "78701", 1500},
		[]any{},
		[]any{"4 Oak Ave", "75201-1234"},
	)

	reader, err := NewRowReader(models.FileTypeXlsx, workbook)
	require.NoError(t, err)
	defer reader.Close()

	rows := readAll(t, reader)
	assert.Equal(t, []models.RawRow{
		{"propertyAddress": "12 Main St", "propertyZip": "78701", "offerAmount": "1500"},
		{"propertyAddress": "4 Oak Ave", "propertyZip": "75201-1234", "offerAmount": ""},
	}, rows)
}

func TestXlsxRowReader_emptyWorksheet(t *testing.T) {
	_, err := NewRowReader(models.FileTypeXlsx, buildWorkbook(t))
	assert.ErrorIs(t, err, models.ErrMissingHeader)
}

func TestXlsxRowReader_blankFirstRow(t *testing.T) {
	file := excelize.NewFile()
	defer file.Close()
	require.NoError(t, file.SetSheetRow("Sheet1", "A2", &[]any{"propertyAddress", "offerAmount"}))
	require.NoError(t, file.SetSheetRow("Sheet1", "A3", &[]any{"12 Main St", 1500}))
	workbook, err := file.WriteToBuffer()
	require.NoError(t, err)

	_, err = NewRowReader(models.FileTypeXlsx, workbook)
	assert.ErrorIs(t, err, models.ErrMissingHeader)
}

func TestXlsxRowReader_notAWorkbook(t *testing.T) {
	_, err := NewRowReader(models.FileTypeXlsx, strings.NewReader("\xd0\xcf\x11\xe0 legacy binary"))
	assert.Error(t, err)
}
