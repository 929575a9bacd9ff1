package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"time"

	"outreach-gateway/internal/apollo"
	"outreach-gateway/internal/config"
	"outreach-gateway/internal/contacts"
	"outreach-gateway/internal/ingest"
	pkgmodels "outreach-gateway/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Pause between Apollo bulk-match chunks to stay inside rate limits.
const enrichChunkPause = 2 * time.Second

type FileHandler struct {
	Apollo *apollo.Client
	Config *config.Config
	Log    zerolog.Logger
}

func NewFileHandler(apolloClient *apollo.Client, cfg *config.Config, log zerolog.Logger) *FileHandler {
	return &FileHandler{Apollo: apolloClient, Config: cfg, Log: log}
}

func (h *FileHandler) readContactFile(c *gin.Context) ([]pkgmodels.RawRecord, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No file uploaded"})
		return nil, false
	}
	defer func() {
		file.Close()
		if c.Request.MultipartForm != nil {
			c.Request.MultipartForm.RemoveAll()
		}
	}()

	format, err := ingest.DetectFormat(header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return nil, false
	}

	data, err := readUpload(file, h.Config.MaxUploadSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return nil, false
	}

	records, err := ingest.File(data, format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return nil, false
	}
	return records, true
}

// Upload ingests a contact file and returns the normalized contacts.
func (h *FileHandler) Upload(c *gin.Context) {
	records, ok := h.readContactFile(c)
	if !ok {
		return
	}

	overrides := mappingFromQuery(c)
	normalized := contacts.Normalize(records, overrides)

	h.Log.Info().
		Int("rows", len(records)).
		Int("contacts", len(normalized)).
		Msg("contact file processed")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalRows":     len(records),
			"validContacts": len(normalized),
			"skippedRows":   len(records) - len(normalized),
			"contacts":      normalized,
			"columns":       columnNames(records),
		},
	})
}

// Preview returns the raw rows and a suggested column mapping without
// normalizing anything.
func (h *FileHandler) Preview(c *gin.Context) {
	records, ok := h.readContactFile(c)
	if !ok {
		return
	}

	const previewLimit = 5
	preview := records
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}

	columns := columnNames(records)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalRows":        len(records),
			"columns":          columns,
			"preview":          preview,
			"suggestedMapping": contacts.Suggest(columns),
		},
	})
}

// ProcessAndEnrich ingests a contact file, normalizes it, and enriches the
// result through Apollo in bulk-match chunks. Chunks that fail upstream are
// skipped; the matching contacts pass through un-enriched.
func (h *FileHandler) ProcessAndEnrich(c *gin.Context) {
	records, ok := h.readContactFile(c)
	if !ok {
		return
	}

	normalized := contacts.Normalize(records, mappingFromQuery(c))
	if len(normalized) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No valid contacts found in file"})
		return
	}

	if !h.Apollo.Configured() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Apollo API key is not configured"})
		return
	}

	details := apollo.DetailsFromContacts(normalized)
	enriched := make([]apollo.PersonResult, 0, len(details))
	var creditsConsumed float64
	for start := 0; start < len(details); start += apollo.MaxBulkEnrich {
		if start > 0 {
			time.Sleep(enrichChunkPause)
		}
		end := start + apollo.MaxBulkEnrich
		if end > len(details) {
			end = len(details)
		}
		result, err := h.Apollo.EnrichPeopleBulk(details[start:end], apollo.EnrichOptions{})
		if err != nil {
			h.Log.Warn().Err(err).
				Int("chunkStart", start).
				Msg("bulk enrichment chunk failed")
			continue
		}
		enriched = append(enriched, result.Matches...)
		creditsConsumed += result.CreditsConsumed
	}

	enrichedContacts := make([]pkgmodels.Contact, 0, len(enriched))
	for _, person := range enriched {
		enrichedContacts = append(enrichedContacts, apollo.ContactFromPerson(person))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalRows":        len(records),
			"validContacts":    len(normalized),
			"enrichable":       len(details),
			"enriched":         len(enrichedContacts),
			"contacts":         normalized,
			"enrichedContacts": enrichedContacts,
			"creditsConsumed":  creditsConsumed,
		},
	})
}

type ExportRequest struct {
	Contacts []pkgmodels.Contact `json:"contacts"`
	Format   string              `json:"format"`
	Filename string              `json:"filename"`
}

var exportHeader = []string{
	"First Name", "Last Name", "Full Name", "Email", "Title", "Company",
	"Domain", "LinkedIn URL", "Phone", "City", "State", "Country", "Industry",
}

func exportRow(contact pkgmodels.Contact) []string {
	return []string{
		contact.FirstName, contact.LastName, contact.DisplayName(),
		contact.Email, contact.Title, contact.Company, contact.Domain,
		contact.LinkedinURL, contact.Phone, contact.City, contact.State,
		contact.Country, contact.Industry,
	}
}

// Export writes the given contacts back out as a downloadable CSV or XLSX.
func (h *FileHandler) Export(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if len(req.Contacts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No contacts to export"})
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = "contacts"
	}

	switch req.Format {
	case "", "csv":
		var buf bytes.Buffer
		writer := csv.NewWriter(&buf)
		writer.Write(exportHeader)
		for _, contact := range req.Contacts {
			writer.Write(exportRow(contact))
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())

	case "xlsx":
		file := excelize.NewFile()
		defer file.Close()
		sheet := file.GetSheetName(0)
		for col, name := range exportHeader {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			file.SetCellValue(sheet, cell, name)
		}
		for rowIdx, contact := range req.Contacts {
			for col, value := range exportRow(contact) {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
				file.SetCellValue(sheet, cell, value)
			}
		}
		var buf bytes.Buffer
		if err := file.Write(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unsupported export format, use csv or xlsx"})
	}
}

// MappingGuide documents the accepted column names per contact field.
func (h *FileHandler) MappingGuide(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"supportedFormats": []string{".csv", ".xlsx", ".xls"},
			"fieldMapping":     contacts.DefaultMapping(),
			"requiredFields":   "Each contact needs an email address, a full name, or both a first and last name",
			"notes": []string{
				"Column matching is case-insensitive and tolerates partial matches",
				"Pass mapping overrides as query parameters, e.g. ?map_email=E-Mail",
				"Empty cells are ignored",
			},
		},
	})
}

// mappingFromQuery builds per-field mapping overrides from the optional
// "mapping" form field (JSON object of field -> column) and from map_<field>
// query parameters. Query parameters win.
func mappingFromQuery(c *gin.Context) contacts.Mapping {
	overrides := contacts.Mapping{}
	if raw := c.PostForm("mapping"); raw != "" {
		var fields map[string]string
		if err := json.Unmarshal([]byte(raw), &fields); err == nil {
			for field, column := range fields {
				if column != "" {
					overrides[field] = []string{column}
				}
			}
		}
	}
	for field := range contacts.DefaultMapping() {
		if value := c.Query("map_" + field); value != "" {
			overrides[field] = []string{value}
		}
	}
	return overrides
}

func columnNames(records []pkgmodels.RawRecord) []string {
	seen := make(map[string]bool)
	columns := make([]string, 0)
	for _, record := range records {
		for col := range record {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

// readUpload drains a multipart file while enforcing the size ceiling.
func readUpload(file multipart.File, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("file exceeds the maximum upload size of %s bytes", strconv.FormatInt(maxSize, 10))
	}
	return data, nil
}
