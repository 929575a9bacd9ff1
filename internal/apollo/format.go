package apollo

import (
	"outreach-gateway/pkg/models"
)

// Raw API shapes. Only the fields the gateway consumes are decoded.

type apiPerson struct {
	ID               string          `json:"id"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Name             string          `json:"name"`
	Title            string          `json:"title"`
	Email            string          `json:"email"`
	EmailStatus      string          `json:"email_status"`
	LinkedinURL      string          `json:"linkedin_url"`
	PhotoURL         string          `json:"photo_url"`
	Headline         string          `json:"headline"`
	City             string          `json:"city"`
	State            string          `json:"state"`
	Country          string          `json:"country"`
	Departments      []string        `json:"departments"`
	Seniority        string          `json:"seniority"`
	IsLikelyToEngage bool            `json:"is_likely_to_engage"`
	Organization     apiOrganization `json:"organization"`
}

type apiOrganization struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	PrimaryDomain         string `json:"primary_domain"`
	WebsiteURL            string `json:"website_url"`
	Industry              string `json:"industry"`
	EstimatedNumEmployees int    `json:"estimated_num_employees"`
	LinkedinURL           string `json:"linkedin_url"`
	City                  string `json:"city"`
	State                 string `json:"state"`
	Country               string `json:"country"`
	Phone                 string `json:"phone"`
	FoundedYear           int    `json:"founded_year"`
}

type apiPagination struct {
	Page         int `json:"page"`
	PerPage      int `json:"per_page"`
	TotalEntries int `json:"total_entries"`
	TotalPages   int `json:"total_pages"`
}

type peopleSearchResponse struct {
	People      []apiPerson   `json:"people"`
	Pagination  apiPagination `json:"pagination"`
	CreditsUsed int           `json:"credits_used"`
	RequestID   string        `json:"request_id"`
}

type organizationSearchResponse struct {
	Organizations []apiOrganization `json:"organizations"`
	Pagination    apiPagination     `json:"pagination"`
}

// Transformed, user-facing shapes.

type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

type PersonResult struct {
	ID               string         `json:"id"`
	FirstName        string         `json:"firstName,omitempty"`
	LastName         string         `json:"lastName,omitempty"`
	FullName         string         `json:"fullName,omitempty"`
	Title            string         `json:"title,omitempty"`
	Email            string         `json:"email,omitempty"`
	EmailStatus      string         `json:"emailStatus,omitempty"`
	LinkedinURL      string         `json:"linkedinUrl,omitempty"`
	PhotoURL         string         `json:"photoUrl,omitempty"`
	Headline         string         `json:"headline,omitempty"`
	Location         Location       `json:"location"`
	Company          models.Company `json:"company"`
	Departments      []string       `json:"departments"`
	Seniority        string         `json:"seniority,omitempty"`
	IsLikelyToEngage bool           `json:"isLikelyToEngage"`
}

type Pagination struct {
	Page         int `json:"page"`
	PerPage      int `json:"perPage"`
	TotalEntries int `json:"totalEntries"`
	TotalPages   int `json:"totalPages"`
}

type PeopleSearchResult struct {
	People      []PersonResult `json:"people"`
	Pagination  Pagination     `json:"pagination"`
	CreditsUsed int            `json:"creditsUsed"`
	RequestID   string         `json:"requestId,omitempty"`
}

type OrganizationSearchResult struct {
	Organizations []models.Company `json:"organizations"`
	Pagination    Pagination       `json:"pagination"`
}

type EnrichPersonResult struct {
	Person          *PersonResult `json:"person,omitempty"`
	CreditsConsumed float64       `json:"creditsConsumed"`
}

type BulkEnrichResult struct {
	Matches         []PersonResult `json:"matches"`
	TotalRequested  int            `json:"totalRequested"`
	UniqueEnriched  int            `json:"uniqueEnriched"`
	MissingRecords  int            `json:"missingRecords"`
	CreditsConsumed float64        `json:"creditsConsumed"`
}

type EnrichOrganizationResult struct {
	Company         *models.Company `json:"company,omitempty"`
	CreditsConsumed float64         `json:"creditsConsumed"`
}

type BulkOrganizationResult struct {
	Companies       []models.Company `json:"companies"`
	TotalRequested  int              `json:"totalRequested"`
	CreditsConsumed float64          `json:"creditsConsumed"`
}

func transformPerson(p apiPerson) PersonResult {
	return PersonResult{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		FullName:    p.Name,
		Title:       p.Title,
		Email:       p.Email,
		EmailStatus: p.EmailStatus,
		LinkedinURL: p.LinkedinURL,
		PhotoURL:    p.PhotoURL,
		Headline:    p.Headline,
		Location: Location{
			City:    p.City,
			State:   p.State,
			Country: p.Country,
		},
		Company:          transformOrganization(p.Organization),
		Departments:      p.Departments,
		Seniority:        p.Seniority,
		IsLikelyToEngage: p.IsLikelyToEngage,
	}
}

func transformOrganization(org apiOrganization) models.Company {
	return models.Company{
		ID:            org.ID,
		Name:          org.Name,
		Domain:        org.PrimaryDomain,
		Website:       org.WebsiteURL,
		Industry:      org.Industry,
		EmployeeCount: org.EstimatedNumEmployees,
		LinkedinURL:   org.LinkedinURL,
		City:          org.City,
		State:         org.State,
		Country:       org.Country,
		Phone:         org.Phone,
		FoundedYear:   org.FoundedYear,
	}
}

func transformOrganizations(orgs []apiOrganization) []models.Company {
	companies := make([]models.Company, 0, len(orgs))
	for _, org := range orgs {
		companies = append(companies, transformOrganization(org))
	}
	return companies
}

// ContactFromPerson flattens an enriched person into the canonical contact
// shape so it can feed the personalization pipeline directly.
func ContactFromPerson(p PersonResult) models.Contact {
	company := p.Company
	return models.Contact{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		FullName:    p.FullName,
		Email:       p.Email,
		Title:       p.Title,
		Company:     company.Name,
		Domain:      company.Domain,
		LinkedinURL: p.LinkedinURL,
		City:        p.Location.City,
		State:       p.Location.State,
		Country:     p.Location.Country,
		Industry:    company.Industry,
		CompanyInfo: &company,
	}
}

// DetailsFromContacts converts normalized contacts into enrichment inputs,
// keeping only rows with enough identity for a match: a name plus an
// email, organization, or domain.
func DetailsFromContacts(contacts []models.Contact) []PersonDetails {
	details := make([]PersonDetails, 0, len(contacts))
	for _, c := range contacts {
		d := PersonDetails{
			FirstName:        c.FirstName,
			LastName:         c.LastName,
			Name:             c.FullName,
			Email:            c.Email,
			OrganizationName: c.Company,
			Domain:           c.Domain,
			LinkedinURL:      c.LinkedinURL,
		}
		if d.FirstName == "" && d.Name == "" {
			continue
		}
		if d.Email == "" && d.OrganizationName == "" && d.Domain == "" {
			continue
		}
		details = append(details, d)
	}
	return details
}
