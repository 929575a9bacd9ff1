package personalize

import (
	"sort"
	"strconv"
	"strings"

	"outreach-gateway/pkg/models"
)

// binding pairs one field name with its bracket synonym and the value to
// substitute.
type binding struct {
	name    string
	bracket string
	value   string
}

// Render substitutes every recognized placeholder in tmpl with data from
// the person, company, and custom maps, merged into one combined mapping
// (person, then company, then custom — a custom key that collides with a
// built-in field replaces its value). Two syntaxes are honored at the same
// time: {{fieldName}} and the bracket synonyms like [First_Name] (the
// bracket keys are a fixed table, not a case transform). Each entry is
// applied as a literal global replacement; placeholders with no entry are
// left verbatim. There is no nesting, no conditionals, and no escape for
// literal braces or brackets that collide with a recognized key.
//
// Render is pure and safe for concurrent use.
func Render(tmpl string, person models.Person, company models.Company, custom map[string]string) string {
	fullName := person.FullName
	if fullName == "" {
		fullName = strings.TrimSpace(person.FirstName + " " + person.LastName)
	}

	employeeCount := ""
	if company.EmployeeCount > 0 {
		employeeCount = strconv.Itoa(company.EmployeeCount)
	}

	entries := []binding{
		{"firstName", "[First_Name]", person.FirstName},
		{"lastName", "[Last_Name]", person.LastName},
		{"fullName", "[Full_Name]", fullName},
		{"title", "[Title]", person.Title},
		{"email", "[Email]", person.Email},
		{"linkedinUrl", "[LinkedIn_URL]", person.LinkedinURL},
		{"location", "[Location]", joinLocation(person.City, person.State)},
		{"city", "[City]", person.City},
		{"state", "[State]", person.State},
		{"country", "[Country]", person.Country},

		{"companyName", "[Company_Name]", company.Name},
		{"companyDomain", "[Company_Domain]", company.Domain},
		{"companyWebsite", "[Company_Website]", company.Website},
		{"companyIndustry", "[Company_Industry]", company.Industry},
		{"companyEmployeeCount", "[Company_Employee_Count]", employeeCount},
		{"companyLocation", "[Company_Location]", joinLocation(company.City, company.State)},
		{"companyPhone", "[Company_Phone]", company.Phone},
	}

	// Merge custom keys into the same mapping before any replacement runs.
	// A colliding key overwrites the built-in value; new keys become
	// entries of their own, available under both syntaxes. Sorted so the
	// pass is deterministic.
	keys := make([]string, 0, len(custom))
	for k := range custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		merged := false
		for i := range entries {
			if entries[i].name == k {
				entries[i].value = custom[k]
				merged = true
				break
			}
		}
		if !merged {
			entries = append(entries, binding{k, "[" + k + "]", custom[k]})
		}
	}

	out := tmpl
	for _, e := range entries {
		out = strings.ReplaceAll(out, "{{"+e.name+"}}", e.value)
		out = strings.ReplaceAll(out, e.bracket, e.value)
	}

	return out
}

// joinLocation renders "City, State" without an orphan comma when either
// side is missing.
func joinLocation(city, state string) string {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	switch {
	case city == "":
		return state
	case state == "":
		return city
	default:
		return city + ", " + state
	}
}
