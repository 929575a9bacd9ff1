package store

import (
	"errors"

	"outreach-gateway/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("store: record not found")

// TemplateStore persists reusable email templates. Save upserts by ID;
// there is no delete operation.
type TemplateStore struct {
	db *gorm.DB
}

func NewTemplateStore(db *gorm.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

func (s *TemplateStore) List() ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	if err := s.db.Order("created_at").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (s *TemplateStore) Get(id string) (*models.EmailTemplate, error) {
	var tmpl models.EmailTemplate
	err := s.db.First(&tmpl, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (s *TemplateStore) Save(tmpl *models.EmailTemplate) error {
	return s.db.Save(tmpl).Error
}

// LogStore is the append-only dispatch history. Entries are never updated
// or removed; List returns them oldest-first. Unbounded growth is accepted
// at the volumes this service targets.
type LogStore struct {
	db *gorm.DB
}

func NewLogStore(db *gorm.DB) *LogStore {
	return &LogStore{db: db}
}

func (s *LogStore) Append(entry *models.EmailLog) error {
	return s.db.Create(entry).Error
}

func (s *LogStore) List() ([]models.EmailLog, error) {
	var logs []models.EmailLog
	if err := s.db.Order("id").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// UserStore persists accounts and their per-user SMTP configuration.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Create(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *UserStore) Update(user *models.User) error {
	return s.db.Save(user).Error
}

// SettingsStore holds the shared SMTP transport settings as a single row
// that Overwrite replaces wholesale.
type SettingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Read() (*models.SMTPSetting, error) {
	var setting models.SMTPSetting
	err := s.db.First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (s *SettingsStore) Overwrite(setting *models.SMTPSetting) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.SMTPSetting{}).Error; err != nil {
			return err
		}
		setting.ID = 0
		return tx.Create(setting).Error
	})
}
