package personalize

import (
	"testing"

	"outreach-gateway/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderCurlyAndBracketSyntax(t *testing.T) {
	person := models.Person{FirstName: "Ana", LastName: "Silva"}
	company := models.Company{Name: "Acme"}

	out := Render("Hi {{firstName}}, welcome to [Company_Name]", person, company, nil)
	assert.Equal(t, "Hi Ana, welcome to Acme", out)
}

func TestRenderDerivesFullName(t *testing.T) {
	person := models.Person{FirstName: "Ana", LastName: "Silva"}

	out := Render("Dear {{fullName}}", person, models.Company{}, nil)
	assert.Equal(t, "Dear Ana Silva", out)

	person.FullName = "Dr. Ana Silva"
	out = Render("Dear [Full_Name]", person, models.Company{}, nil)
	assert.Equal(t, "Dear Dr. Ana Silva", out)
}

func TestRenderLeavesUnknownPlaceholdersVerbatim(t *testing.T) {
	tmpl := "Hello {{unknownField}} and [Not_A_Key]"
	out := Render(tmpl, models.Person{}, models.Company{}, nil)
	assert.Equal(t, tmpl, out)
}

func TestRenderIsIdempotentWithoutMatches(t *testing.T) {
	tmpl := "Plain text, no placeholders at all."
	once := Render(tmpl, models.Person{FirstName: "Ana"}, models.Company{}, nil)
	twice := Render(once, models.Person{FirstName: "Ana"}, models.Company{}, nil)
	assert.Equal(t, tmpl, once)
	assert.Equal(t, once, twice)
}

func TestRenderMissingValueSubstitutesEmpty(t *testing.T) {
	out := Render("Title: {{title}}.", models.Person{}, models.Company{}, nil)
	assert.Equal(t, "Title: .", out)
}

func TestRenderCustomDataBothSyntaxes(t *testing.T) {
	custom := map[string]string{
		"Event_Name":  "GopherCon",
		"Sender_Name": "Maria",
	}
	out := Render("Join {{Event_Name}}! Regards, [Sender_Name]", models.Person{}, models.Company{}, custom)
	assert.Equal(t, "Join GopherCon! Regards, Maria", out)
}

func TestRenderCustomKeyOverridesBuiltInField(t *testing.T) {
	person := models.Person{FirstName: "Ana"}
	custom := map[string]string{"firstName": "Dr. Silva"}

	out := Render("Hi {{firstName}}", person, models.Company{}, custom)
	assert.Equal(t, "Hi Dr. Silva", out)

	// The bracket synonym follows the overridden value too.
	out = Render("Hi [First_Name]", person, models.Company{}, custom)
	assert.Equal(t, "Hi Dr. Silva", out)
}

func TestRenderCustomKeyOverridesCompanyField(t *testing.T) {
	company := models.Company{Name: "Acme"}
	custom := map[string]string{"companyName": "Acme Holdings"}

	out := Render("Welcome to {{companyName}}", models.Person{}, company, custom)
	assert.Equal(t, "Welcome to Acme Holdings", out)
}

func TestRenderCompanyFields(t *testing.T) {
	company := models.Company{
		Name:          "Acme",
		Industry:      "Software",
		EmployeeCount: 250,
		City:          "Lisbon",
		State:         "Lisboa",
	}
	out := Render("{{companyName}} ({{companyIndustry}}, {{companyEmployeeCount}} people) in [Company_Location]",
		models.Person{}, company, nil)
	assert.Equal(t, "Acme (Software, 250 people) in Lisbon, Lisboa", out)
}

func TestRenderZeroEmployeeCountIsEmpty(t *testing.T) {
	out := Render("Count: {{companyEmployeeCount}}", models.Person{}, models.Company{}, nil)
	assert.Equal(t, "Count: ", out)
}

func TestRenderReplacesEveryOccurrence(t *testing.T) {
	out := Render("{{firstName}} {{firstName}} [First_Name]", models.Person{FirstName: "Ana"}, models.Company{}, nil)
	assert.Equal(t, "Ana Ana Ana", out)
}

func TestJoinLocation(t *testing.T) {
	assert.Equal(t, "Lisbon, Lisboa", joinLocation("Lisbon", "Lisboa"))
	assert.Equal(t, "Lisbon", joinLocation("Lisbon", ""))
	assert.Equal(t, "Lisboa", joinLocation("", "Lisboa"))
	assert.Equal(t, "", joinLocation("", ""))
}
