/*
Copyright 2024 Leadgrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"net/http"
	"strconv"

	model2 "github.com/leadgrid/leadgrid/api/model"

	"github.com/gin-gonic/gin"
	"github.com/leadgrid/leadgrid/api/middleware"
	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/model"
)

// SubmitLead accepts a seeker's search request, fans it out to matching
// providers and returns the stored lead with its response fan-out counters.
//
// Responses:
// - 201 Created: Lead stored and responses dispatched.
// - 200 OK: No provider matched; lead stored as CANCELLED.
// - 400 Bad Request: Binding or validation failure.
func (a Api) SubmitLead(c *gin.Context) {
	var newLead model2.SubmitLead
	if err := c.ShouldBindJSON(&newLead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newLead.ValidateSubmitLead(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity required"})
		return
	}

	resp, err := a.leadgrid.SubmitLead(c.Request.Context(), newLead.ToLead(identity.IdentityID))
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	if resp.Status == model.LeadStatusCancelled {
		c.JSON(http.StatusOK, resp)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetLead returns a lead to the seeker who submitted it.
//
// Responses:
// - 200 OK: The caller's lead.
// - 403 Forbidden: Lead belongs to another seeker.
func (a Api) GetLead(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity required"})
		return
	}

	resp, err := a.leadgrid.GetLead(c.Request.Context(), id, identity.IdentityID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSeekerLeads lists the calling seeker's leads, newest first.
func (a Api) GetSeekerLeads(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity required"})
		return
	}

	limit, offset := paginationParams(c)
	resp, err := a.leadgrid.GetLeadsBySeeker(c.Request.Context(), identity.IdentityID, limit, offset)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetLeadResponses returns a lead's responses to its owning seeker, ordered
// by distance, closest first. Overdue pending responses are expired on the
// way out.
func (a Api) GetLeadResponses(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity required"})
		return
	}

	resp, err := a.leadgrid.GetLeadResponses(c.Request.Context(), id, identity.IdentityID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func paginationParams(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
