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

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/leadgrid/leadgrid"
	"github.com/leadgrid/leadgrid/model"
)

const (
	// IdentityHeader carries the caller's identity id on role-gated routes.
	IdentityHeader = "X-Identity-Id"

	// IdentityKey is the gin context key the resolved identity is stored under.
	IdentityKey = "identity"
)

// pathToRole maps URL path prefixes to the role required to call them.
// Paths not listed here accept any resolved identity.
var pathToRole = map[string]string{
	"leads":     model.RoleSeeker,
	"responses": model.RoleProvider,
}

// AuthMiddleware resolves the caller's identity from the X-Identity-Id header
// and enforces the role required by the route. Seekers submit and read leads;
// providers act on responses.
type AuthMiddleware struct {
	service *leadgrid.Leadgrid
}

// NewAuthMiddleware creates a new instance of AuthMiddleware.
func NewAuthMiddleware(service *leadgrid.Leadgrid) *AuthMiddleware {
	return &AuthMiddleware{service: service}
}

// getRequiredRole determines the role a path demands, or empty string when
// any identity may call it.
func getRequiredRole(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}

	if role, ok := pathToRole[parts[0]]; ok {
		return role
	}

	return ""
}

// Authenticate returns a middleware function that resolves and role-checks the
// caller for all routes that need one.
//
// Responses:
// - 401 Unauthorized: When the identity header is missing or unknown.
// - 403 Forbidden: When the identity's role does not match the route.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		requiredRole := getRequiredRole(c.Request.URL.Path)
		if requiredRole == "" {
			c.Next()
			return
		}

		identityID := c.GetHeader(IdentityHeader)
		if identityID == "" {
			c.JSON(401, gin.H{"error": "Identity required. Use X-Identity-Id header"})
			c.Abort()
			return
		}

		identity, err := m.service.GetIdentity(c.Request.Context(), identityID)
		if err != nil {
			c.JSON(401, gin.H{"error": "Unknown identity"})
			c.Abort()
			return
		}

		if identity.Role != requiredRole {
			c.JSON(403, gin.H{"error": "This route requires role " + requiredRole})
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// IdentityFromContext returns the identity the Authenticate middleware
// resolved for this request, or nil when the route was not role-gated.
func IdentityFromContext(c *gin.Context) *model.Identity {
	value, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, ok := value.(*model.Identity)
	if !ok {
		return nil
	}
	return identity
}
