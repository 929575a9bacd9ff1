package models

import "strings"

// RawRecord is one row of an uploaded file, keyed by whatever column labels
// the source used. No fixed schema.
type RawRecord map[string]string

// Contact is the canonical contact shape produced by normalization. Every
// field is optional; a contact is only kept when it has an email, a full
// name, or both first and last names.
type Contact struct {
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	FullName    string    `json:"fullName,omitempty"`
	Email       string    `json:"email,omitempty"`
	Title       string    `json:"title,omitempty"`
	Company     string    `json:"company,omitempty"`
	Domain      string    `json:"domain,omitempty"`
	LinkedinURL string    `json:"linkedinUrl,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	Country     string    `json:"country,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	CompanyInfo *Company  `json:"companyInfo,omitempty"`
	Original    RawRecord `json:"originalData,omitempty"`
}

// Person is the person-side view consumed by the template engine.
type Person struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	FullName    string `json:"fullName,omitempty"`
	Title       string `json:"title,omitempty"`
	Email       string `json:"email,omitempty"`
	LinkedinURL string `json:"linkedinUrl,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Company is the company-side view consumed by the template engine and
// produced by organization enrichment.
type Company struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	Domain        string `json:"domain,omitempty"`
	Website       string `json:"website,omitempty"`
	Industry      string `json:"industry,omitempty"`
	EmployeeCount int    `json:"employeeCount,omitempty"`
	LinkedinURL   string `json:"linkedinUrl,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	Country       string `json:"country,omitempty"`
	Phone         string `json:"phone,omitempty"`
	FoundedYear   int    `json:"foundedYear,omitempty"`
}

// Person projects the contact onto the template engine's person view.
func (c Contact) Person() Person {
	return Person{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		FullName:    c.FullName,
		Title:       c.Title,
		Email:       c.Email,
		LinkedinURL: c.LinkedinURL,
		City:        c.City,
		State:       c.State,
		Country:     c.Country,
	}
}

// CompanyData returns the attached company record when present, otherwise a
// company view assembled from the contact's flat fields.
func (c Contact) CompanyData() Company {
	if c.CompanyInfo != nil {
		return *c.CompanyInfo
	}
	return Company{
		Name:     c.Company,
		Domain:   c.Domain,
		Industry: c.Industry,
		Phone:    c.Phone,
	}
}

// DisplayName is the best human-readable name available for log entries.
func (c Contact) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
