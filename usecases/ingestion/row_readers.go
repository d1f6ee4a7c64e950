package ingestion

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/offerlookup/offer-backend/models"
	"github.com/offerlookup/offer-backend/pure_utils"
)

// RowReader yields the data rows of an uploaded file, one at a time. Next returns io.EOF once the
// file is exhausted.
type RowReader interface {
	Next() (models.RawRow, error)
	Close() error
}

func NewRowReader(fileType models.FileType, r io.Reader) (RowReader, error) {
	switch fileType {
	case models.FileTypeCsv:
		return newCsvRowReader(r)
	case models.FileTypeXlsx:
		return newXlsxRowReader(r)
	default:
		return nil, errors.Wrapf(models.ErrUnsupportedFileType, "file type %q", fileType)
	}
}

type csvRowReader struct {
	reader *csv.Reader
	header []string
}

func newCsvRowReader(r io.Reader) (*csvRowReader, error) {
	reader := csv.NewReader(pure_utils.NewReaderWithoutBom(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, models.ErrMissingHeader
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read csv header")
	}

	return &csvRowReader{reader: reader, header: trimHeader(header)}, nil
}

func (c *csvRowReader) Next() (models.RawRow, error) {
	record, err := c.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "malformed csv file")
	}
	return zipRow(c.header, record), nil
}

func (c *csvRowReader) Close() error {
	return nil
}

type xlsxRowReader struct {
	file   *excelize.File
	rows   *excelize.Rows
	header []string
}

// newXlsxRowReader reads the first worksheet only. Its first row is the header.
func newXlsxRowReader(r io.Reader) (*xlsxRowReader, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not open spreadsheet")
	}

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		file.Close()
		return nil, models.ErrNoWorksheet
	}

	rows, err := file.Rows(sheets[0])
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "could not read worksheet %s", sheets[0])
	}

	reader := &xlsxRowReader{file: file, rows: rows}
	header, err := reader.firstRow()
	if err != nil {
		reader.Close()
		return nil, err
	}
	reader.header = trimHeader(header)
	return reader, nil
}

// firstRow reads row 1, the header. A blank row 1 is a missing header.
func (x *xlsxRowReader) firstRow() ([]string, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, errors.Wrap(err, "could not iterate worksheet rows")
		}
		return nil, models.ErrMissingHeader
	}
	columns, err := x.rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "malformed worksheet header")
	}
	if isEmptyRow(columns) {
		return nil, models.ErrMissingHeader
	}
	return columns, nil
}

func (x *xlsxRowReader) nextNonEmpty() ([]string, error) {
	for x.rows.Next() {
		columns, err := x.rows.Columns()
		if err != nil {
			return nil, errors.Wrap(err, "malformed worksheet row")
		}
		if !isEmptyRow(columns) {
			return columns, nil
		}
	}
	if err := x.rows.Error(); err != nil {
		return nil, errors.Wrap(err, "could not iterate worksheet rows")
	}
	return nil, io.EOF
}

func (x *xlsxRowReader) Next() (models.RawRow, error) {
	columns, err := x.nextNonEmpty()
	if err != nil {
		return nil, err
	}
	return zipRow(x.header, columns), nil
}

func (x *xlsxRowReader) Close() error {
	err := x.rows.Close()
	return errors.CombineErrors(err, x.file.Close())
}

func trimHeader(header []string) []string {
	trimmed := make([]string, len(header))
	for i, h := range header {
		trimmed[i] = strings.TrimSpace(h)
	}
	return trimmed
}

// zipRow pairs cells with header names by position. Cells past the header, and cells under an
// empty header name, are ignored.
func zipRow(header, cells []string) models.RawRow {
	row := make(models.RawRow, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if i < len(cells) {
			row[name] = cells[i]
		} else {
			row[name] = ""
		}
	}
	return row
}

func isEmptyRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
