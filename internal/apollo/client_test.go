package apollo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"outreach-gateway/internal/config"
	"outreach-gateway/pkg/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&config.Config{
		ApolloAPIKey:  "test-key",
		ApolloBaseURL: server.URL,
	}, zerolog.Nop())
}

func TestSearchPeopleBuildsRequest(t *testing.T) {
	var captured map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mixed_people/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"people": []map[string]interface{}{
				{
					"id":         "p1",
					"first_name": "Ana",
					"last_name":  "Silva",
					"name":       "Ana Silva",
					"email":      "ana@acme.com",
					"organization": map[string]interface{}{
						"name":           "Acme",
						"primary_domain": "acme.com",
					},
				},
			},
			"pagination":   map[string]int{"page": 2, "per_page": 50, "total_entries": 120, "total_pages": 3},
			"credits_used": 1,
		})
	})

	result, err := client.SearchPeople(SearchPeopleParams{
		PersonTitles: []string{"CTO"},
		Page:         2,
		PerPage:      50,
	})
	require.NoError(t, err)

	assert.Equal(t, float64(2), captured["page"])
	assert.Equal(t, float64(50), captured["per_page"])
	assert.Equal(t, []interface{}{"CTO"}, captured["person_titles"])

	require.Len(t, result.People, 1)
	assert.Equal(t, "Ana Silva", result.People[0].FullName)
	assert.Equal(t, "acme.com", result.People[0].Company.Domain)
	assert.Equal(t, 3, result.Pagination.TotalPages)
}

func TestSearchPeopleCapsPerPage(t *testing.T) {
	var captured map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"people":[],"pagination":{}}`))
	})

	_, err := client.SearchPeople(SearchPeopleParams{PerPage: 500})
	require.NoError(t, err)
	assert.Equal(t, float64(100), captured["per_page"])
}

func TestSearchPeopleDefaults(t *testing.T) {
	var captured map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"people":[],"pagination":{}}`))
	})

	result, err := client.SearchPeople(SearchPeopleParams{})
	require.NoError(t, err)
	assert.Equal(t, float64(1), captured["page"])
	assert.Equal(t, float64(25), captured["per_page"])
	assert.Equal(t, 1, result.Pagination.Page)
	assert.Equal(t, 25, result.Pagination.PerPage)
}

func TestSendRequestSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"invalid filters"}`))
	})

	_, err := client.SearchPeople(SearchPeopleParams{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid filters")
}

func TestRequestsRequireAPIKey(t *testing.T) {
	client := NewClient(&config.Config{ApolloBaseURL: "http://unused"}, zerolog.Nop())
	assert.False(t, client.Configured())

	_, err := client.SearchPeople(SearchPeopleParams{})
	assert.Error(t, err)
}

func TestEnrichPersonNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/people/match", r.URL.Path)
		w.Write([]byte(`{"person":null,"credits_consumed":0.5}`))
	})

	result, err := client.EnrichPerson(PersonDetails{Email: "ana@acme.com"}, EnrichOptions{})
	require.NoError(t, err)
	assert.Nil(t, result.Person)
	assert.Equal(t, 0.5, result.CreditsConsumed)
}

func TestEnrichPeopleBulkEnforcesCeiling(t *testing.T) {
	client := NewClient(&config.Config{ApolloAPIKey: "k", ApolloBaseURL: "http://unused"}, zerolog.Nop())

	details := make([]PersonDetails, MaxBulkEnrich+1)
	_, err := client.EnrichPeopleBulk(details, EnrichOptions{})
	assert.Error(t, err)

	_, err = client.EnrichPeopleBulk(nil, EnrichOptions{})
	assert.Error(t, err)
}

func TestEnrichOrganizationEncodesDomain(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/enrich", r.URL.Path)
		assert.Equal(t, "acme.com", r.URL.Query().Get("domain"))
		w.Write([]byte(`{"organization":{"name":"Acme","primary_domain":"acme.com"},"credits_consumed":1}`))
	})

	result, err := client.EnrichOrganization("acme.com")
	require.NoError(t, err)
	require.NotNil(t, result.Company)
	assert.Equal(t, "Acme", result.Company.Name)
}

func TestEnrichOrganizationRequiresDomain(t *testing.T) {
	client := NewClient(&config.Config{ApolloAPIKey: "k"}, zerolog.Nop())
	_, err := client.EnrichOrganization("")
	assert.Error(t, err)
}

func TestDetailsFromContactsFiltersUnmatchable(t *testing.T) {
	// Kept rows need a name plus an email, organization, or domain.
	contacts := []models.Contact{
		{FirstName: "Ana", Email: "ana@acme.com"},
		{FullName: "Jo Ann", Company: "Globex"},
		{FirstName: "NoAnchor"},
		{Email: "anon@acme.com", Company: "Acme"},
		{FullName: "Dee Dom", Domain: "initech.com"},
	}

	details := DetailsFromContacts(contacts)
	require.Len(t, details, 3)
	assert.Equal(t, "ana@acme.com", details[0].Email)
	assert.Equal(t, "Globex", details[1].OrganizationName)
	assert.Equal(t, "initech.com", details[2].Domain)
}
