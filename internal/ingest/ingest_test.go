package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	format, err := DetectFormat("contacts.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = DetectFormat("Contacts.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatSpreadsheet, format)

	format, err = DetectFormat("legacy.xls")
	require.NoError(t, err)
	assert.Equal(t, FormatSpreadsheet, format)

	_, err = DetectFormat("notes.txt")
	assert.Error(t, err)
}

func TestFileDecodesCSV(t *testing.T) {
	data := []byte("Email,Full Name,Company\na@b.com,Jane Doe,Acme\nc@d.com,John Smith,Globex\n")

	records, err := File(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a@b.com", records[0]["Email"])
	assert.Equal(t, "Jane Doe", records[0]["Full Name"])
	assert.Equal(t, "Globex", records[1]["Company"])
}

func TestFileOmitsEmptyValues(t *testing.T) {
	data := []byte("Email,Full Name,Company\na@b.com,  ,Acme\n")

	records, err := File(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, present := records[0]["Full Name"]
	assert.False(t, present, "whitespace-only cell must be omitted entirely")
	assert.Equal(t, "a@b.com", records[0]["Email"])
}

func TestFileTrimsHeadersAndValues(t *testing.T) {
	data := []byte(" Email , Name \n  a@b.com  ,  Jane  \n")

	records, err := File(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a@b.com", records[0]["Email"])
	assert.Equal(t, "Jane", records[0]["Name"])
}

func TestFileRejectsEmptyCSV(t *testing.T) {
	_, err := File([]byte(""), FormatCSV)
	assert.Error(t, err)
}

func TestFileRejectsMalformedCSV(t *testing.T) {
	_, err := File([]byte("a,b\n\"unterminated\n"), FormatCSV)
	require.Error(t, err)

	var ingestErr *Error
	assert.ErrorAs(t, err, &ingestErr)
}

func TestFileDecodesSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Email"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Name"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "a@b.com"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "Jane Doe"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	records, err := File(buf.Bytes(), FormatSpreadsheet)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a@b.com", records[0]["Email"])
	assert.Equal(t, "Jane Doe", records[0]["Name"])
}

func TestFileRejectsGarbageSpreadsheet(t *testing.T) {
	_, err := File([]byte("definitely not a zip archive"), FormatSpreadsheet)
	assert.Error(t, err)
}

func TestFileSkipsCellsBeyondHeader(t *testing.T) {
	data := []byte("Email\na@b.com,extra,cells\n")

	records, err := File(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Len(t, records[0], 1)
}
