package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"outreach-gateway/internal/config"
	"outreach-gateway/internal/ingest"
	"outreach-gateway/internal/mailer"
	"outreach-gateway/internal/models"
	"outreach-gateway/internal/personalize"
	"outreach-gateway/internal/secrets"
	"outreach-gateway/internal/store"
	pkgmodels "outreach-gateway/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	defaultBulkDelay = 1000 * time.Millisecond
	csvBulkDelay     = 2000 * time.Millisecond
)

type EmailHandler struct {
	Transport  *mailer.SMTPTransport
	Dispatcher *mailer.Dispatcher
	Logs       *store.LogStore
	Settings   *store.SettingsStore
	Box        *secrets.Box
	Config     *config.Config
	Log        zerolog.Logger
}

func NewEmailHandler(transport *mailer.SMTPTransport, dispatcher *mailer.Dispatcher, logs *store.LogStore, settings *store.SettingsStore, box *secrets.Box, cfg *config.Config, log zerolog.Logger) *EmailHandler {
	return &EmailHandler{
		Transport:  transport,
		Dispatcher: dispatcher,
		Logs:       logs,
		Settings:   settings,
		Box:        box,
		Config:     cfg,
		Log:        log,
	}
}

// SendEmail sends a single message.
func (h *EmailHandler) SendEmail(c *gin.Context) {
	var msg pkgmodels.OutboundMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if msg.To == "" || msg.Subject == "" || (msg.Text == "" && msg.HTML == "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required fields: to, subject, and content (text or html)",
		})
		return
	}

	messageID, err := h.Transport.Send(msg)
	h.appendLog("single", pkgmodels.DispatchOutcome{
		To:        msg.To,
		Subject:   msg.Subject,
		Success:   err == nil,
		MessageID: messageID,
		Error:     errString(err),
	}, msg.ContactName, msg.ContactCompany)

	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, mailer.ErrNotConfigured) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error(), "to": msg.To, "subject": msg.Subject})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Email sent successfully",
		"messageId": messageID,
		"to":        msg.To,
		"subject":   msg.Subject,
	})
}

type BulkSendRequest struct {
	Emails  []pkgmodels.OutboundMessage `json:"emails"`
	DelayMs *int                        `json:"delayMs"`
}

// SendBulk sends a prebuilt list of messages with a shared delay.
func (h *EmailHandler) SendBulk(c *gin.Context) {
	var req BulkSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if len(req.Emails) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No emails provided"})
		return
	}

	// Validate everything before any send is attempted.
	for i, msg := range req.Emails {
		if msg.To == "" || msg.Subject == "" || (msg.Text == "" && msg.HTML == "") {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   fmt.Sprintf("Email %d is missing required fields: to, subject, and content", i+1),
			})
			return
		}
	}

	if !h.Transport.Configured() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": mailer.ErrNotConfigured.Error()})
		return
	}

	summary := h.Dispatcher.DispatchAll(req.Emails, delayOrDefault(req.DelayMs, defaultBulkDelay))
	for _, outcome := range summary.Results {
		msg := req.Emails[outcome.Index]
		h.appendLog("bulk", outcome, msg.ContactName, msg.ContactCompany)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Bulk email sending completed",
		"totalSent":    summary.TotalSent,
		"successCount": summary.SuccessCount,
		"failureCount": summary.FailureCount,
		"results":      summary.Results,
	})
}

type PersonalizedBulkRequest struct {
	Template   string              `json:"template"`
	Subject    string              `json:"subject"`
	Contacts   []pkgmodels.Contact `json:"contacts"`
	CustomData map[string]string   `json:"customData"`
	DelayMs    *int                `json:"delayMs"`
	From       string              `json:"from"`
	ReplyTo    string              `json:"replyTo"`
}

// SendPersonalizedBulk renders the template per contact and dispatches the
// batch. Contacts that cannot produce a deliverable message are dropped,
// never fatal to the batch.
func (h *EmailHandler) SendPersonalizedBulk(c *gin.Context) {
	var req PersonalizedBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if req.Template == "" || req.Subject == "" || len(req.Contacts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Template, subject, and contacts are required",
		})
		return
	}

	if !h.Transport.Configured() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": mailer.ErrNotConfigured.Error()})
		return
	}

	messages := make([]pkgmodels.OutboundMessage, 0, len(req.Contacts))
	for _, contact := range req.Contacts {
		if contact.Email == "" {
			continue
		}
		company := contact.CompanyData()
		body := personalize.Render(req.Template, contact.Person(), company, req.CustomData)
		messages = append(messages, pkgmodels.OutboundMessage{
			To:             contact.Email,
			Subject:        personalize.Render(req.Subject, contact.Person(), company, req.CustomData),
			Text:           body,
			HTML:           strings.ReplaceAll(body, "\n", "<br>"),
			From:           req.From,
			ReplyTo:        req.ReplyTo,
			ContactName:    contact.DisplayName(),
			ContactCompany: company.Name,
		})
	}

	if len(messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "No valid emails could be generated from the provided contacts",
		})
		return
	}

	summary := h.Dispatcher.DispatchAll(messages, delayOrDefault(req.DelayMs, defaultBulkDelay))

	results := make([]gin.H, 0, len(summary.Results))
	for _, outcome := range summary.Results {
		msg := messages[outcome.Index]
		h.appendLog("personalized", outcome, msg.ContactName, msg.ContactCompany)
		results = append(results, gin.H{
			"index":          outcome.Index,
			"to":             outcome.To,
			"subject":        outcome.Subject,
			"success":        outcome.Success,
			"messageId":      outcome.MessageID,
			"error":          outcome.Error,
			"contactName":    msg.ContactName,
			"contactCompany": msg.ContactCompany,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Personalized bulk email sending completed",
		"totalContacts": len(req.Contacts),
		"validEmails":   len(messages),
		"totalSent":     summary.TotalSent,
		"successCount":  summary.SuccessCount,
		"failureCount":  summary.FailureCount,
		"results":       results,
	})
}

type PreviewRequest struct {
	Template   string            `json:"template"`
	Subject    string            `json:"subject"`
	Contact    pkgmodels.Contact `json:"contact"`
	CustomData map[string]string `json:"customData"`
}

// PreviewPersonalized renders one contact without sending anything.
func (h *EmailHandler) PreviewPersonalized(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if req.Template == "" || req.Subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Template, subject, and contact are required",
		})
		return
	}

	company := req.Contact.CompanyData()
	subject := personalize.Render(req.Subject, req.Contact.Person(), company, req.CustomData)
	body := personalize.Render(req.Template, req.Contact.Person(), company, req.CustomData)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"preview": gin.H{
			"to":      req.Contact.Email,
			"subject": subject,
			"body":    body,
			"html":    strings.ReplaceAll(body, "\n", "<br>"),
			"personData": gin.H{
				"firstName": req.Contact.FirstName,
				"lastName":  req.Contact.LastName,
				"fullName":  req.Contact.DisplayName(),
				"title":     req.Contact.Title,
				"email":     req.Contact.Email,
				"company":   company.Name,
			},
		},
	})
}

type TestEmailRequest struct {
	TestEmail string `json:"testEmail"`
}

// TestEmail sends a canned message to verify the configuration end to end.
func (h *EmailHandler) TestEmail(c *gin.Context) {
	var req TestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TestEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Test email address is required"})
		return
	}

	msg := pkgmodels.OutboundMessage{
		To:      req.TestEmail,
		Subject: "Outreach Gateway Email Service Test",
		Text:    "This is a test email from the outreach gateway. If you received this, your email configuration is working correctly!",
		HTML: "<h2>Outreach Gateway Email Service Test</h2>" +
			"<p>This is a test email from the outreach gateway.</p>" +
			"<p>If you received this, your email configuration is working correctly!</p>" +
			"<p><strong>Test sent at:</strong> " + time.Now().UTC().Format(time.RFC3339) + "</p>",
	}

	messageID, err := h.Transport.Send(msg)
	h.appendLog("single", pkgmodels.DispatchOutcome{
		To:        msg.To,
		Subject:   msg.Subject,
		Success:   err == nil,
		MessageID: messageID,
		Error:     errString(err),
	}, "", "")

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "to": req.TestEmail})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Test email sent successfully",
		"to":        req.TestEmail,
		"messageId": messageID,
	})
}

// ValidateConfig verifies the transport configuration without sending.
func (h *EmailHandler) ValidateConfig(c *gin.Context) {
	if err := h.Transport.Verify(); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email configuration is valid"})
}

// BulkSendCSV ingests an uploaded CSV and dispatches one message per row
// using the simple {name}/{company}/{email} substitution.
func (h *EmailHandler) BulkSendCSV(c *gin.Context) {
	subject := c.PostForm("subject")
	template := c.PostForm("template")

	file, _, err := c.Request.FormFile("csvFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "CSV file is required"})
		return
	}
	// Release the upload on every exit path.
	defer func() {
		file.Close()
		if c.Request.MultipartForm != nil {
			c.Request.MultipartForm.RemoveAll()
		}
	}()

	if subject == "" || template == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Subject and template are required"})
		return
	}

	data, err := readUpload(file, h.Config.MaxUploadSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	records, err := ingest.File(data, ingest.FormatCSV)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Error parsing CSV file"})
		return
	}

	type csvContact struct {
		email, name, company string
	}
	contacts := make([]csvContact, 0, len(records))
	for _, row := range records {
		email := firstValue(row, "email", "Email", "email_address", "Email Address", "to")
		if email == "" {
			continue
		}
		name := firstValue(row, "name", "Name", "first_name", "First Name")
		if name == "" {
			name = "Sir/Madam"
		}
		contacts = append(contacts, csvContact{
			email:   strings.TrimSpace(email),
			name:    strings.TrimSpace(name),
			company: strings.TrimSpace(firstValue(row, "company", "Company", "organization", "Organization")),
		})
	}

	if len(contacts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No valid email addresses found in CSV file"})
		return
	}

	if !h.Transport.Configured() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": mailer.ErrNotConfigured.Error()})
		return
	}

	messages := make([]pkgmodels.OutboundMessage, 0, len(contacts))
	for _, contact := range contacts {
		bodyReplacer := strings.NewReplacer(
			"{name}", contact.name,
			"{company}", contact.company,
			"{email}", contact.email,
		)
		// Subjects only substitute name and company; {email} stays verbatim.
		subjectReplacer := strings.NewReplacer(
			"{name}", contact.name,
			"{company}", contact.company,
		)
		body := bodyReplacer.Replace(template)
		messages = append(messages, pkgmodels.OutboundMessage{
			To:             contact.email,
			Subject:        subjectReplacer.Replace(subject),
			Text:           body,
			HTML:           strings.ReplaceAll(body, "\n", "<br>"),
			ContactName:    contact.name,
			ContactCompany: contact.company,
		})
	}

	summary := h.Dispatcher.DispatchAll(messages, csvBulkDelay)
	for _, outcome := range summary.Results {
		msg := messages[outcome.Index]
		h.appendLog("csv", outcome, msg.ContactName, msg.ContactCompany)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Bulk email sending completed",
		"totalContacts": len(contacts),
		"totalSent":     summary.SuccessCount,
		"failureCount":  summary.FailureCount,
		"results":       summary.Results,
	})
}

// GetSMTPConfig returns the stored transport settings without the password.
func (h *EmailHandler) GetSMTPConfig(c *gin.Context) {
	setting, err := h.Settings.Read()
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"success": true, "config": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "config": setting})
}

// SaveSMTPConfig overwrites the stored transport settings and reconfigures
// the live transport handle.
func (h *EmailHandler) SaveSMTPConfig(c *gin.Context) {
	var settings mailer.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.Transport.Reconfigure(settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	sealed, err := h.Box.Seal(settings.Pass)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	err = h.Settings.Overwrite(&models.SMTPSetting{
		Host:    settings.Host,
		Port:    settings.Port,
		Secure:  settings.Secure,
		User:    settings.User,
		Pass:    sealed,
		From:    settings.From,
		ReplyTo: settings.ReplyTo,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save configuration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "SMTP configuration saved"})
}

// TemplateGuide returns the supported placeholder reference.
func (h *EmailHandler) TemplateGuide(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"supportedFormats": []string{
				"{{variable}} - Curly braces format",
				"[Variable_Name] - Square brackets format (recommended)",
			},
			"personPlaceholders": []string{
				"{{firstName}} or [First_Name]",
				"{{lastName}} or [Last_Name]",
				"{{fullName}} or [Full_Name]",
				"{{title}} or [Title]",
				"{{email}} or [Email]",
				"{{linkedinUrl}} or [LinkedIn_URL]",
				"{{location}} or [Location]",
				"{{city}} or [City]",
				"{{state}} or [State]",
				"{{country}} or [Country]",
			},
			"companyPlaceholders": []string{
				"{{companyName}} or [Company_Name]",
				"{{companyDomain}} or [Company_Domain]",
				"{{companyWebsite}} or [Company_Website]",
				"{{companyIndustry}} or [Company_Industry]",
				"{{companyEmployeeCount}} or [Company_Employee_Count]",
				"{{companyLocation}} or [Company_Location]",
				"{{companyPhone}} or [Company_Phone]",
			},
			"customPlaceholders": []string{
				"[Event_Name] - Name of your event",
				"[Organization_Name] - Your organization name",
				"[Sender_Name] - Name of the person sending",
				"[Contact_Information] - Your contact details",
			},
			"exampleTemplate": "Subject: Partnership Opportunity with {{companyName}}\n\n" +
				"Hi {{firstName}},\n\n" +
				"I hope this email finds you well. I came across {{companyName}} and was impressed by your work in {{companyIndustry}}.\n\n" +
				"As {{title}} at {{companyName}}, you might be interested in a partnership opportunity that could benefit your team.\n\n" +
				"Best regards,\n[Sender_Name]",
		},
	})
}

func (h *EmailHandler) appendLog(logType string, outcome pkgmodels.DispatchOutcome, contactName, contactCompany string) {
	entry := &models.EmailLog{
		Type:           logType,
		Recipient:      outcome.To,
		Subject:        outcome.Subject,
		Success:        outcome.Success,
		MessageID:      outcome.MessageID,
		Error:          outcome.Error,
		ContactName:    contactName,
		ContactCompany: contactCompany,
		BatchIndex:     outcome.Index,
	}
	if err := h.Logs.Append(entry); err != nil {
		h.Log.Error().Err(err).Str("to", outcome.To).Msg("failed to append email log")
	}
}

func delayOrDefault(delayMs *int, fallback time.Duration) time.Duration {
	if delayMs == nil {
		return fallback
	}
	if *delayMs < 0 {
		return 0
	}
	return time.Duration(*delayMs) * time.Millisecond
}

func firstValue(record pkgmodels.RawRecord, keys ...string) string {
	for _, key := range keys {
		if value, ok := record[key]; ok && value != "" {
			return value
		}
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
