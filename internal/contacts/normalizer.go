package contacts

import (
	"regexp"
	"sort"
	"strings"

	"outreach-gateway/pkg/models"
)

// Mapping relates each canonical contact field to the raw column names
// accepted for it, in priority order.
type Mapping map[string][]string

// DefaultMapping is the built-in synonym table. Callers can override single
// fields with Merge.
func DefaultMapping() Mapping {
	return Mapping{
		"firstName":   {"first_name", "firstname", "first name", "fname", "given_name"},
		"lastName":    {"last_name", "lastname", "last name", "lname", "family_name", "surname"},
		"fullName":    {"name", "full_name", "fullname", "full name", "contact_name"},
		"email":       {"email", "email_address", "contact_email", "e-mail", "emailaddress"},
		"title":       {"title", "job_title", "position", "role", "designation"},
		"company":     {"company", "company_name", "organization", "employer", "org"},
		"domain":      {"domain", "company_domain", "website", "company_website"},
		"linkedinUrl": {"linkedin", "linkedin_url", "linkedin_profile", "li_url"},
		"phone":       {"phone", "phone_number", "contact_number", "mobile", "telephone"},
		"city":        {"city", "location_city", "town"},
		"state":       {"state", "province", "region", "location_state"},
		"country":     {"country", "location_country"},
		"industry":    {"industry", "sector", "business_type"},
	}
}

// Merge returns a copy of m with the override entries replacing whole
// fields. The override wins per field, not per synonym.
func (m Mapping) Merge(overrides Mapping) Mapping {
	merged := make(Mapping, len(m)+len(overrides))
	for field, synonyms := range m {
		merged[field] = synonyms
	}
	for field, synonyms := range overrides {
		merged[field] = synonyms
	}
	return merged
}

var domainPrefix = regexp.MustCompile(`^(https?://)?(www\.)?`)

// Normalize maps heterogeneous raw records onto the canonical contact
// shape. Records that end up without an email, a full name, or a first and
// last name pair are dropped. The function is deterministic and makes no
// external calls.
func Normalize(records []models.RawRecord, overrides Mapping) []models.Contact {
	mapping := DefaultMapping().Merge(overrides)

	contacts := make([]models.Contact, 0, len(records))
	for _, record := range records {
		c := extract(record, mapping)
		c.Original = record

		// Derive whichever name representation is missing.
		if c.FullName == "" && (c.FirstName != "" || c.LastName != "") {
			c.FullName = strings.TrimSpace(c.FirstName + " " + c.LastName)
		}
		if c.FullName != "" && (c.FirstName == "" || c.LastName == "") {
			parts := strings.Fields(c.FullName)
			if len(parts) >= 2 {
				if c.FirstName == "" {
					c.FirstName = parts[0]
				}
				if c.LastName == "" {
					c.LastName = strings.Join(parts[1:], " ")
				}
			}
		}

		if c.Email != "" {
			c.Email = strings.ToLower(strings.TrimSpace(c.Email))
		}
		if c.Domain != "" {
			c.Domain = CleanDomain(c.Domain)
		}

		if c.Email == "" && c.FullName == "" && (c.FirstName == "" || c.LastName == "") {
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts
}

// CleanDomain strips any protocol and www prefix plus a trailing slash and
// lower-cases the rest.
func CleanDomain(domain string) string {
	d := strings.TrimSpace(domain)
	d = domainPrefix.ReplaceAllString(d, "")
	d = strings.TrimSuffix(d, "/")
	return strings.ToLower(strings.TrimSpace(d))
}

func extract(record models.RawRecord, mapping Mapping) models.Contact {
	var c models.Contact
	fields := []struct {
		name string
		dst  *string
	}{
		{"firstName", &c.FirstName},
		{"lastName", &c.LastName},
		{"fullName", &c.FullName},
		{"email", &c.Email},
		{"title", &c.Title},
		{"company", &c.Company},
		{"domain", &c.Domain},
		{"linkedinUrl", &c.LinkedinURL},
		{"phone", &c.Phone},
		{"city", &c.City},
		{"state", &c.State},
		{"country", &c.Country},
		{"industry", &c.Industry},
	}

	// Column names sorted once so matching is stable regardless of map
	// iteration order.
	columns := make([]string, 0, len(record))
	for col := range record {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	for _, f := range fields {
		if value, ok := match(record, columns, mapping[f.name]); ok {
			*f.dst = value
		}
	}
	return c
}

// match scans the synonym list in order and returns the value of the first
// column whose lower-cased name equals the synonym or contains it (or is
// contained by it). Synonym order wins over column order.
func match(record models.RawRecord, columns []string, synonyms []string) (string, bool) {
	for _, synonym := range synonyms {
		syn := strings.ToLower(synonym)
		for _, col := range columns {
			name := strings.ToLower(col)
			if name == syn || strings.Contains(name, syn) || strings.Contains(syn, name) {
				return record[col], true
			}
		}
	}
	return "", false
}

// Suggest proposes a column mapping for an uploaded file's header set,
// using looser per-field keyword rules than the full synonym table.
func Suggest(columns []string) map[string]string {
	rules := []struct {
		field    string
		keywords []string
	}{
		{"firstName", []string{"first", "fname", "given"}},
		{"lastName", []string{"last", "lname", "family", "surname"}},
		{"fullName", []string{"name", "contact"}},
		{"email", []string{"email", "mail"}},
		{"title", []string{"title", "job", "position", "role"}},
		{"company", []string{"company", "org", "employer"}},
		{"domain", []string{"domain", "website"}},
		{"linkedinUrl", []string{"linkedin", "li_"}},
		{"phone", []string{"phone", "mobile", "tel"}},
		{"city", []string{"city", "town"}},
		{"state", []string{"state", "province", "region"}},
		{"country", []string{"country"}},
		{"industry", []string{"industry", "sector"}},
	}

	suggestions := make(map[string]string)
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			found := ""
			for _, col := range columns {
				lower := strings.ToLower(col)
				if strings.Contains(lower, keyword) || strings.Contains(keyword, lower) {
					found = col
					break
				}
			}
			if found != "" {
				suggestions[rule.field] = found
				break
			}
		}
	}
	return suggestions
}
