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

	model2 "github.com/leadgrid/leadgrid/api/model"

	"github.com/gin-gonic/gin"
	"github.com/leadgrid/leadgrid/internal/apierror"
)

// CreateIdentity registers a seeker or provider.
//
// Responses:
// - 201 Created: If the identity is successfully created.
// - 400 Bad Request: If there's an error in binding JSON or validating the role.
func (a Api) CreateIdentity(c *gin.Context) {
	var newIdentity model2.CreateIdentity
	if err := c.ShouldBindJSON(&newIdentity); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := newIdentity.ValidateCreateIdentity(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.leadgrid.CreateIdentity(c.Request.Context(), newIdentity.ToIdentity())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetIdentity(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.leadgrid.GetIdentity(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
