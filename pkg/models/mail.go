package models

// Attachment is an optional file attached to an outbound message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Content     []byte `json:"content"`
}

// OutboundMessage is a fully resolved email ready for the mail transport.
type OutboundMessage struct {
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	Text        string       `json:"text,omitempty"`
	HTML        string       `json:"html,omitempty"`
	From        string       `json:"from,omitempty"`
	ReplyTo     string       `json:"replyTo,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`

	// Carried through to the dispatch log; not part of the wire message.
	ContactName    string `json:"contactName,omitempty"`
	ContactCompany string `json:"contactCompany,omitempty"`
}

// DispatchOutcome is the per-message result of one dispatch attempt.
// Index matches the position of the message in the submitted batch.
type DispatchOutcome struct {
	Index     int    `json:"index"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DispatchSummary aggregates a whole batch run.
type DispatchSummary struct {
	TotalSent    int               `json:"totalSent"`
	SuccessCount int               `json:"successCount"`
	FailureCount int               `json:"failureCount"`
	Results      []DispatchOutcome `json:"results"`
}
