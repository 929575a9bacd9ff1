package api

import (
	"errors"
	"net/http"

	"outreach-gateway/internal/apollo"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ApolloHandler struct {
	Client *apollo.Client
	Log    zerolog.Logger
}

func NewApolloHandler(client *apollo.Client, log zerolog.Logger) *ApolloHandler {
	return &ApolloHandler{Client: client, Log: log}
}

func (h *ApolloHandler) respondError(c *gin.Context, err error) {
	var apiErr *apollo.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

// SearchPeople handles POST /api/apollo/search-people.
func (h *ApolloHandler) SearchPeople(c *gin.Context) {
	var params apollo.SearchPeopleParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.Client.SearchPeople(params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// SearchOrganizations handles POST /api/apollo/search-organizations.
func (h *ApolloHandler) SearchOrganizations(c *gin.Context) {
	var params apollo.SearchOrganizationsParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.Client.SearchOrganizations(params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

type enrichPersonRequest struct {
	apollo.PersonDetails
	apollo.EnrichOptions
}

// EnrichPerson handles POST /api/apollo/enrich-person.
func (h *ApolloHandler) EnrichPerson(c *gin.Context) {
	var req enrichPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if req.FirstName == "" && req.Name == "" && req.Email == "" && req.LinkedinURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "At least a name, email, or LinkedIn URL is required",
		})
		return
	}

	result, err := h.Client.EnrichPerson(req.PersonDetails, req.EnrichOptions)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if result.Person == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success":         false,
			"error":           "No matching person found",
			"creditsConsumed": result.CreditsConsumed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

type bulkEnrichRequest struct {
	Details []apollo.PersonDetails `json:"details"`
	apollo.EnrichOptions
}

// EnrichPeopleBulk handles POST /api/apollo/enrich-people-bulk.
func (h *ApolloHandler) EnrichPeopleBulk(c *gin.Context) {
	var req bulkEnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.Client.EnrichPeopleBulk(req.Details, req.EnrichOptions)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

type enrichOrganizationRequest struct {
	Domain string `json:"domain"`
}

// EnrichOrganization handles POST /api/apollo/enrich-organization.
func (h *ApolloHandler) EnrichOrganization(c *gin.Context) {
	var req enrichOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.Client.EnrichOrganization(req.Domain)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if result.Company == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success":         false,
			"error":           "No matching organization found",
			"creditsConsumed": result.CreditsConsumed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

type bulkOrganizationRequest struct {
	Domains []string `json:"domains"`
}

// EnrichOrganizationsBulk handles POST /api/apollo/enrich-organizations-bulk.
func (h *ApolloHandler) EnrichOrganizationsBulk(c *gin.Context) {
	var req bulkOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.Client.EnrichOrganizationsBulk(req.Domains)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// Usage handles GET /api/apollo/usage.
func (h *ApolloHandler) Usage(c *gin.Context) {
	c.JSON(http.StatusOK, h.Client.Usage())
}
