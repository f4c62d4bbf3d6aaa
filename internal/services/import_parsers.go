package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Accepted upload media types
const (
	MimeCSV  = "text/csv"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// sheet is a parsed spreadsheet: the header row plus each data row with its spreadsheet row number
type sheet struct {
	header []string
	rows   []sheetRow
}

type sheetRow struct {
	number int
	cells  []string
}

// parser reads an upload into a sheet
type parser struct {
	format string
	parse  func(r io.Reader) (*sheet, error)
}

// parserFor picks the parser for a declared media type
func parserFor(contentType string) (*parser, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}

	switch strings.ToLower(mediaType) {
	case MimeCSV:
		return &parser{format: "csv", parse: parseCSV}, nil
	case MimeXLSX:
		return &parser{format: "xlsx", parse: parseXLSX}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, contentType)
	}
}

// parseCSV streams records one at a time; the first record is the header
func parseCSV(r io.Reader) (*sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	out := &sheet{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}

		if out.header == nil {
			if len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], "\ufeff")
			}
			out.header = record
			continue
		}
		if isBlank(record) {
			continue
		}
		// rows are numbered by the file line they start on
		line, _ := reader.FieldPos(0)
		out.rows = append(out.rows, sheetRow{number: line, cells: record})
	}

	return out, nil
}

// parseXLSX loads the workbook and reads the first sheet
func parseXLSX(r io.Reader) (*sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &sheet{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	out := &sheet{}
	for i, row := range rows {
		if out.header == nil {
			if isBlank(row) {
				continue
			}
			out.header = row
			continue
		}
		if isBlank(row) {
			continue
		}
		out.rows = append(out.rows, sheetRow{number: i + 1, cells: row})
	}

	return out, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Canonical column names understood by the importer
const (
	colSeats        = "seats"
	colDeparture    = "departure"
	colArrival      = "arrival"
	colPhone        = "phone"
	colEmail        = "email"
	colPaymentID    = "paymentid"
	colTicketNumber = "ticketnumber"
	colDate         = "date"
	colTime         = "time"
)

var columnAliases = map[string]string{
	"seat":        colSeats,
	"from":        colDeparture,
	"to":          colArrival,
	"mobile":      colPhone,
	"contact":     colPhone,
	"mail":        colEmail,
	"payment":     colPaymentID,
	"ticket":      colTicketNumber,
	"ticketno":    colTicketNumber,
	"bookingdate": colDate,
	"bookingtime": colTime,
}

// normalizeColumn folds case and drops separators so "Payment ID", "payment_id" and "paymentId" match
func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
	if canonical, ok := columnAliases[name]; ok {
		return canonical
	}
	return name
}

// columnIndex maps canonical column names to their position; the first occurrence wins
func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeColumn(h)
		if _, exists := index[key]; !exists && key != "" {
			index[key] = i
		}
	}
	return index
}

// cell returns the trimmed value of column in row, or "" when absent
func cell(row []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
