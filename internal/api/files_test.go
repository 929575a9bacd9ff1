package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"outreach-gateway/internal/apollo"
	"outreach-gateway/internal/config"
	pkgmodels "outreach-gateway/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFileHandler() *FileHandler {
	cfg := &config.Config{MaxUploadSize: 1 << 20}
	return NewFileHandler(apollo.NewClient(cfg, zerolog.Nop()), cfg, zerolog.Nop())
}

func uploadFile(t *testing.T, handler gin.HandlerFunc, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	router := gin.New()
	router.POST("/x", handler)

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadNormalizesCSV(t *testing.T) {
	h := testFileHandler()
	csvData := []byte("Email,Full Name,Company\nana@acme.com,Ana Silva,Acme\n,,\n")

	w := uploadFile(t, h.Upload, "/x", "contacts.csv", csvData)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			TotalRows     int                 `json:"totalRows"`
			ValidContacts int                 `json:"validContacts"`
			Contacts      []pkgmodels.Contact `json:"contacts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Data.TotalRows)
	assert.Equal(t, 1, resp.Data.ValidContacts)
	require.Len(t, resp.Data.Contacts, 1)
	assert.Equal(t, "ana@acme.com", resp.Data.Contacts[0].Email)
	assert.Equal(t, "Ana", resp.Data.Contacts[0].FirstName)
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	h := testFileHandler()

	w := uploadFile(t, h.Upload, "/x", "notes.txt", []byte("whatever"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported file format")
}

func TestUploadRequiresFile(t *testing.T) {
	h := testFileHandler()

	router := gin.New()
	router.POST("/x", h.Upload)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No file uploaded")
}

func TestUploadAcceptsMappingOverrides(t *testing.T) {
	h := testFileHandler()
	csvData := []byte("work_address,full_name\nana@acme.com,Ana Silva\n")

	w := uploadFile(t, h.Upload, "/x?map_email=work_address", "contacts.csv", csvData)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Contacts []pkgmodels.Contact `json:"contacts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Contacts, 1)
	assert.Equal(t, "ana@acme.com", resp.Data.Contacts[0].Email)
}

func TestPreviewReturnsColumnsAndSuggestions(t *testing.T) {
	h := testFileHandler()
	csvData := []byte("Work Email,Given Name\nana@acme.com,Ana\n")

	w := uploadFile(t, h.Preview, "/x", "contacts.csv", csvData)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalRows        int                 `json:"totalRows"`
			Columns          []string            `json:"columns"`
			Preview          []map[string]string `json:"preview"`
			SuggestedMapping map[string]string   `json:"suggestedMapping"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.TotalRows)
	assert.Contains(t, resp.Data.Columns, "Work Email")
	assert.Equal(t, "Work Email", resp.Data.SuggestedMapping["email"])
	require.Len(t, resp.Data.Preview, 1)
}

func TestExportCSV(t *testing.T) {
	h := testFileHandler()

	w := postJSON(h.Export, ExportRequest{
		Contacts: []pkgmodels.Contact{
			{FirstName: "Ana", LastName: "Silva", Email: "ana@acme.com", Company: "Acme"},
		},
		Format:   "csv",
		Filename: "export-test",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "export-test.csv")
	assert.Contains(t, w.Body.String(), "ana@acme.com")
	assert.Contains(t, w.Body.String(), "Ana Silva")
}

func TestExportRejectsEmptyAndUnknownFormat(t *testing.T) {
	h := testFileHandler()

	w := postJSON(h.Export, ExportRequest{Format: "csv"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(h.Export, ExportRequest{
		Contacts: []pkgmodels.Contact{{Email: "a@b.com"}},
		Format:   "pdf",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessAndEnrichRequiresApolloKey(t *testing.T) {
	h := testFileHandler()
	csvData := []byte("Email,Full Name\nana@acme.com,Ana Silva\n")

	w := uploadFile(t, h.ProcessAndEnrich, "/x", "contacts.csv", csvData)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Apollo API key")
}
