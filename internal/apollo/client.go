package apollo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"outreach-gateway/internal/config"

	"github.com/rs/zerolog"
)

// Client talks to the Apollo people-data API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		apiKey:  cfg.ApolloAPIKey,
		baseURL: cfg.ApolloBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// APIError carries the upstream status and body for failed calls.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apollo API error: %d - %s", e.StatusCode, e.Body)
}

func (c *Client) sendRequest(method, path string, body interface{}) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("apollo: API key is not configured")
	}

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("x-api-key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return respBody, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// SearchPeopleParams are the supported people-search filters.
type SearchPeopleParams struct {
	OrganizationNames              []string `json:"organizationNames,omitempty"`
	OrganizationDomain             string   `json:"organizationDomain,omitempty"`
	OrganizationIndustries         []string `json:"organizationIndustries,omitempty"`
	OrganizationNumEmployeesRanges []string `json:"organizationNumEmployeesRanges,omitempty"`
	OrganizationLocations          []string `json:"organizationLocations,omitempty"`
	PersonTitles                   []string `json:"personTitles,omitempty"`
	PersonSeniorities              []string `json:"personSeniorities,omitempty"`
	PersonDepartments              []string `json:"personDepartments,omitempty"`
	PersonLocations                []string `json:"personLocations,omitempty"`
	Q                              string   `json:"q,omitempty"`
	Page                           int      `json:"page,omitempty"`
	PerPage                        int      `json:"perPage,omitempty"`
	RevealPersonalEmails           bool     `json:"revealPersonalEmails,omitempty"`
	RevealPhoneNumber              bool     `json:"revealPhoneNumber,omitempty"`
}

type peopleSearchRequest struct {
	Page                           int      `json:"page"`
	PerPage                        int      `json:"per_page"`
	RevealPersonalEmails           bool     `json:"reveal_personal_emails"`
	RevealPhoneNumber              bool     `json:"reveal_phone_number"`
	OrganizationNames              []string `json:"organization_names,omitempty"`
	OrganizationDomain             string   `json:"organization_domain,omitempty"`
	OrganizationIndustries         []string `json:"organization_industries,omitempty"`
	OrganizationNumEmployeesRanges []string `json:"organization_num_employees_ranges,omitempty"`
	OrganizationLocations          []string `json:"organization_locations,omitempty"`
	PersonTitles                   []string `json:"person_titles,omitempty"`
	PersonSeniorities              []string `json:"person_seniorities,omitempty"`
	PersonDepartments              []string `json:"person_departments,omitempty"`
	PersonLocations                []string `json:"person_locations,omitempty"`
	Q                              string   `json:"q,omitempty"`
}

// SearchPeople runs a people search. PerPage is capped at the API's
// maximum of 100.
func (c *Client) SearchPeople(params SearchPeopleParams) (*PeopleSearchResult, error) {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	perPage := params.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	if perPage > 100 {
		perPage = 100
	}

	req := peopleSearchRequest{
		Page:                           page,
		PerPage:                        perPage,
		RevealPersonalEmails:           params.RevealPersonalEmails,
		RevealPhoneNumber:              params.RevealPhoneNumber,
		OrganizationNames:              params.OrganizationNames,
		OrganizationDomain:             params.OrganizationDomain,
		OrganizationIndustries:         params.OrganizationIndustries,
		OrganizationNumEmployeesRanges: params.OrganizationNumEmployeesRanges,
		OrganizationLocations:          params.OrganizationLocations,
		PersonTitles:                   params.PersonTitles,
		PersonSeniorities:              params.PersonSeniorities,
		PersonDepartments:              params.PersonDepartments,
		PersonLocations:                params.PersonLocations,
		Q:                              params.Q,
	}

	respBody, err := c.sendRequest("POST", "/mixed_people/search", req)
	if err != nil {
		return nil, err
	}

	var raw peopleSearchResponse
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("apollo: decode people search: %w", err)
	}

	result := &PeopleSearchResult{
		People: make([]PersonResult, 0, len(raw.People)),
		Pagination: Pagination{
			Page:         raw.Pagination.Page,
			PerPage:      raw.Pagination.PerPage,
			TotalEntries: raw.Pagination.TotalEntries,
			TotalPages:   raw.Pagination.TotalPages,
		},
		CreditsUsed: raw.CreditsUsed,
		RequestID:   raw.RequestID,
	}
	if result.Pagination.Page == 0 {
		result.Pagination.Page = page
	}
	if result.Pagination.PerPage == 0 {
		result.Pagination.PerPage = perPage
	}
	for _, p := range raw.People {
		result.People = append(result.People, transformPerson(p))
	}
	return result, nil
}

// SearchOrganizationsParams are the supported company-search filters.
type SearchOrganizationsParams struct {
	Q                              string   `json:"q,omitempty"`
	OrganizationNumEmployeesRanges []string `json:"organizationNumEmployeesRanges,omitempty"`
	OrganizationLocations          []string `json:"organizationLocations,omitempty"`
	OrganizationIndustries         []string `json:"organizationIndustries,omitempty"`
	Page                           int      `json:"page,omitempty"`
	PerPage                        int      `json:"perPage,omitempty"`
}

type organizationSearchRequest struct {
	Page                           int      `json:"page"`
	PerPage                        int      `json:"per_page"`
	Q                              string   `json:"q_organization_name,omitempty"`
	OrganizationNumEmployeesRanges []string `json:"organization_num_employees_ranges,omitempty"`
	OrganizationLocations          []string `json:"organization_locations,omitempty"`
	OrganizationIndustries         []string `json:"organization_industries,omitempty"`
}

// SearchOrganizations runs a company search.
func (c *Client) SearchOrganizations(params SearchOrganizationsParams) (*OrganizationSearchResult, error) {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	perPage := params.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	if perPage > 100 {
		perPage = 100
	}

	req := organizationSearchRequest{
		Page:                           page,
		PerPage:                        perPage,
		Q:                              params.Q,
		OrganizationNumEmployeesRanges: params.OrganizationNumEmployeesRanges,
		OrganizationLocations:          params.OrganizationLocations,
		OrganizationIndustries:         params.OrganizationIndustries,
	}

	respBody, err := c.sendRequest("POST", "/mixed_companies/search", req)
	if err != nil {
		return nil, err
	}

	var raw organizationSearchResponse
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("apollo: decode organization search: %w", err)
	}

	result := &OrganizationSearchResult{
		Organizations: transformOrganizations(raw.Organizations),
		Pagination: Pagination{
			Page:         raw.Pagination.Page,
			PerPage:      raw.Pagination.PerPage,
			TotalEntries: raw.Pagination.TotalEntries,
			TotalPages:   raw.Pagination.TotalPages,
		},
	}
	return result, nil
}

// PersonDetails identifies one person for enrichment. At least a name (or
// first/last pair) plus an email, organization, or domain should be set.
type PersonDetails struct {
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Name             string `json:"name,omitempty"`
	Email            string `json:"email,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	Domain           string `json:"domain,omitempty"`
	LinkedinURL      string `json:"linkedin_url,omitempty"`
}

// EnrichOptions control credit-consuming reveals.
type EnrichOptions struct {
	RevealPersonalEmails bool `json:"revealPersonalEmails,omitempty"`
	RevealPhoneNumber    bool `json:"revealPhoneNumber,omitempty"`
}

type enrichPersonRequest struct {
	PersonDetails
	RevealPersonalEmails bool `json:"reveal_personal_emails"`
	RevealPhoneNumber    bool `json:"reveal_phone_number"`
}

// EnrichPerson enriches a single person.
func (c *Client) EnrichPerson(details PersonDetails, opts EnrichOptions) (*EnrichPersonResult, error) {
	req := enrichPersonRequest{
		PersonDetails:        details,
		RevealPersonalEmails: opts.RevealPersonalEmails,
		RevealPhoneNumber:    opts.RevealPhoneNumber,
	}

	respBody, err := c.sendRequest("POST", "/people/match", req)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Person          *apiPerson `json:"person"`
		CreditsConsumed float64    `json:"credits_consumed"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("apollo: decode person match: %w", err)
	}
	if raw.Person == nil {
		return &EnrichPersonResult{CreditsConsumed: raw.CreditsConsumed}, nil
	}

	person := transformPerson(*raw.Person)
	return &EnrichPersonResult{Person: &person, CreditsConsumed: raw.CreditsConsumed}, nil
}

// MaxBulkEnrich is the API's per-call enrichment ceiling. Governing batch
// size is the caller's job; the generic dispatcher knows nothing of it.
const MaxBulkEnrich = 10

type bulkMatchRequest struct {
	Details              []PersonDetails `json:"details"`
	RevealPersonalEmails bool            `json:"reveal_personal_emails"`
	RevealPhoneNumber    bool            `json:"reveal_phone_number"`
}

// EnrichPeopleBulk enriches up to MaxBulkEnrich people in one call.
func (c *Client) EnrichPeopleBulk(details []PersonDetails, opts EnrichOptions) (*BulkEnrichResult, error) {
	if len(details) == 0 {
		return nil, fmt.Errorf("apollo: no people to enrich")
	}
	if len(details) > MaxBulkEnrich {
		return nil, fmt.Errorf("apollo: maximum %d people can be enriched in a single request", MaxBulkEnrich)
	}

	req := bulkMatchRequest{
		Details:              details,
		RevealPersonalEmails: opts.RevealPersonalEmails,
		RevealPhoneNumber:    opts.RevealPhoneNumber,
	}

	respBody, err := c.sendRequest("POST", "/people/bulk_match", req)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Matches                   []apiPerson `json:"matches"`
		TotalRequestedEnrichments int         `json:"total_requested_enrichments"`
		UniqueEnrichedRecords     int         `json:"unique_enriched_records"`
		MissingRecords            int         `json:"missing_records"`
		CreditsConsumed           float64     `json:"credits_consumed"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("apollo: decode bulk match: %w", err)
	}

	result := &BulkEnrichResult{
		Matches:         make([]PersonResult, 0, len(raw.Matches)),
		TotalRequested:  raw.TotalRequestedEnrichments,
		UniqueEnriched:  raw.UniqueEnrichedRecords,
		MissingRecords:  raw.MissingRecords,
		CreditsConsumed: raw.CreditsConsumed,
	}
	if result.TotalRequested == 0 {
		result.TotalRequested = len(details)
	}
	for _, p := range raw.Matches {
		result.Matches = append(result.Matches, transformPerson(p))
	}
	return result, nil
}

// EnrichOrganization enriches a single company by domain.
func (c *Client) EnrichOrganization(domain string) (*EnrichOrganizationResult, error) {
	if domain == "" {
		return nil, fmt.Errorf("apollo: domain is required")
	}

	respBody, err := c.sendRequest("GET", "/organizations/enrich?domain="+url.QueryEscape(domain), nil)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Organization    *apiOrganization `json:"organization"`
		CreditsConsumed float64          `json:"credits_consumed"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("apollo: decode organization enrich: %w", err)
	}

	result := &EnrichOrganizationResult{CreditsConsumed: raw.CreditsConsumed}
	if raw.Organization != nil {
		company := transformOrganization(*raw.Organization)
		result.Company = &company
	}
	return result, nil
}

// EnrichOrganizationsBulk enriches up to MaxBulkEnrich companies by domain.
func (c *Client) EnrichOrganizationsBulk(domains []string) (*BulkOrganizationResult, error) {
	if len(domains) == 0 {
		return nil, fmt.Errorf("apollo: no domains to enrich")
	}
	if len(domains) > MaxBulkEnrich {
		return nil, fmt.Errorf("apollo: maximum %d organizations can be enriched in a single request", MaxBulkEnrich)
	}

	respBody, err := c.sendRequest("POST", "/organizations/bulk_enrich", map[string][]string{"domains": domains})
	if err != nil {
		return nil, err
	}

	var raw struct {
		Organizations   []apiOrganization `json:"organizations"`
		CreditsConsumed float64           `json:"credits_consumed"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("apollo: decode organization bulk enrich: %w", err)
	}

	return &BulkOrganizationResult{
		Companies:       transformOrganizations(raw.Organizations),
		TotalRequested:  len(domains),
		CreditsConsumed: raw.CreditsConsumed,
	}, nil
}

// Usage describes what the configured key can do.
func (c *Client) Usage() map[string]interface{} {
	masked := "Not configured"
	if c.apiKey != "" {
		if len(c.apiKey) > 8 {
			masked = c.apiKey[:8] + "..."
		} else {
			masked = "..."
		}
	}
	return map[string]interface{}{
		"success":            c.apiKey != "",
		"message":            "Apollo API is configured and ready to use",
		"apiKey":             masked,
		"availableEndpoints": []string{"People Search", "Organization Search", "People Enrichment", "Organization Enrichment"},
		"limitations": []string{
			"Maximum 100 results per page",
			"Maximum 10 records per bulk enrichment call",
			"Rate limits apply based on your Apollo plan",
		},
	}
}
