package models

import (
	"time"
)

// User is an account that can store its own SMTP configuration.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	SMTPConfig   string    `gorm:"type:text" json:"-"` // JSON, password sealed
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// SMTPSetting holds the shared transport configuration. A single row is
// overwritten on save; the password column is sealed with AES-GCM.
type SMTPSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Host      string    `gorm:"type:varchar(255)" json:"host"`
	Port      int       `json:"port"`
	Secure    bool      `json:"secure"`
	User      string    `gorm:"type:varchar(255)" json:"user"`
	Pass      string    `gorm:"type:text" json:"-"`
	From      string    `gorm:"type:varchar(255)" json:"from"`
	ReplyTo   string    `gorm:"type:varchar(255)" json:"reply_to"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SMTPSetting) TableName() string {
	return "smtp_settings"
}

// EmailTemplate is a reusable message template, upserted by ID.
type EmailTemplate struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Subject   string    `gorm:"type:text" json:"subject"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EmailTemplate) TableName() string {
	return "email_templates"
}

// EmailLog is one dispatch attempt. Rows are append-only; nothing updates
// or deletes them.
type EmailLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Type           string    `gorm:"type:varchar(20)" json:"type"` // single, bulk, personalized, csv
	Recipient      string    `gorm:"type:varchar(255)" json:"recipient"`
	Subject        string    `gorm:"type:text" json:"subject"`
	Success        bool      `json:"success"`
	MessageID      string    `gorm:"type:varchar(255)" json:"message_id"`
	Error          string    `gorm:"type:text" json:"error"`
	ContactName    string    `gorm:"type:varchar(255)" json:"contact_name"`
	ContactCompany string    `gorm:"type:varchar(255)" json:"contact_company"`
	BatchIndex     int       `json:"batch_index"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (EmailLog) TableName() string {
	return "email_logs"
}
