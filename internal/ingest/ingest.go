package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"outreach-gateway/pkg/models"

	"github.com/xuri/excelize/v2"
)

// Format selects the decoder for an uploaded file.
type Format string

const (
	FormatCSV         Format = "csv"
	FormatSpreadsheet Format = "spreadsheet"
)

// Error reports a file that could not be decoded. Ingestion is all or
// nothing: a malformed stream fails the whole call.
type Error struct {
	Cause string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest: %s: %v", e.Cause, e.Err)
	}
	return "ingest: " + e.Cause
}

func (e *Error) Unwrap() error { return e.Err }

// DetectFormat maps a filename extension to a decoder format.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xls":
		return FormatSpreadsheet, nil
	default:
		return "", &Error{Cause: fmt.Sprintf("unsupported file format %q, supported formats: .csv, .xlsx, .xls", filepath.Ext(filename))}
	}
}

// File decodes an uploaded tabular file into raw records using the first
// row as field names. Keys and string values are trimmed; values that trim
// to the empty string are omitted from the record entirely.
func File(data []byte, format Format) ([]models.RawRecord, error) {
	switch format {
	case FormatCSV:
		return decodeCSV(data)
	case FormatSpreadsheet:
		return decodeSpreadsheet(data)
	default:
		return nil, &Error{Cause: fmt.Sprintf("unknown format %q", format)}
	}
}

func decodeCSV(data []byte) ([]models.RawRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &Error{Cause: "failed to parse CSV file", Err: err}
	}
	if len(rows) == 0 {
		return nil, &Error{Cause: "CSV file is empty"}
	}
	return rowsToRecords(rows), nil
}

func decodeSpreadsheet(data []byte) ([]models.RawRecord, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Cause: "failed to open spreadsheet", Err: err}
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, &Error{Cause: "spreadsheet has no sheets"}
	}

	// First sheet only, by convention.
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, &Error{Cause: "failed to read spreadsheet rows", Err: err}
	}
	if len(rows) == 0 {
		return nil, &Error{Cause: "spreadsheet is empty"}
	}
	return rowsToRecords(rows), nil
}

func rowsToRecords(rows [][]string) []models.RawRecord {
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := models.RawRecord{}
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			record[header[i]] = value
		}
		records = append(records, record)
	}
	return records
}
