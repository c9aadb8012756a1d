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
	"errors"
	"io"
	"net/http"

	model2 "github.com/leadgrid/leadgrid/api/model"

	"github.com/gin-gonic/gin"
	"github.com/leadgrid/leadgrid/api/middleware"
	"github.com/leadgrid/leadgrid/config"
	"github.com/leadgrid/leadgrid/internal/apierror"
)

// paymentKeyID exposes the gateway key id clients need to open the checkout.
func (a Api) paymentKeyID() string {
	conf, err := config.Fetch()
	if err != nil {
		return ""
	}
	return conf.Payment.KeyID
}

func (a Api) GetResponse(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.leadgrid.GetResponse(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProviderResponses lists the calling provider's responses, newest first.
func (a Api) GetProviderResponses(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity required"})
		return
	}

	limit, offset := paginationParams(c)
	resp, err := a.leadgrid.GetProviderResponses(c.Request.Context(), identity.IdentityID, limit, offset)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RejectResponse declines a pending response on behalf of the calling
// provider. Rejecting after the deadline expires the response instead and
// reports the conflict.
//
// Responses:
// - 200 OK: Response rejected.
// - 403 Forbidden: Caller does not own the response.
// - 409 Conflict: Response already resolved or expired.
func (a Api) RejectResponse(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	// Notes are optional, so an empty body is as good as {}.
	var body model2.RejectResponse
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity required"})
		return
	}

	resp, err := a.leadgrid.RejectResponse(c.Request.Context(), id, identity.IdentityID, body.Notes)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreatePaymentOrder opens the acceptance fee payment for a pending response.
// Calling it again while an order is open returns the same order.
//
// Responses:
// - 201 Created: Payment order opened (or the open one returned).
// - 403 Forbidden: Caller does not own the response.
// - 409 Conflict: Response already resolved, or fee already paid.
func (a Api) CreatePaymentOrder(c *gin.Context) {
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

	payment, err := a.leadgrid.CreatePaymentOrder(c.Request.Context(), id, identity.IdentityID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"payment_id": payment.PaymentID,
		"order_ref":  payment.OrderRef,
		"amount":     payment.Amount,
		"currency":   payment.Currency,
		"key_id":     a.paymentKeyID(),
	})
}

// VerifyPayment checks the gateway signature for a paid order and, when it
// holds, accepts the response and reveals the seeker's contact details.
//
// Responses:
// - 200 OK: Response accepted; body carries the response and unmasked lead.
// - 401 Unauthorized: Signature mismatch; the payment is marked FAILED.
// - 409 Conflict: Response resolved while the payment was in flight.
func (a Api) VerifyPayment(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var body model2.VerifyPayment
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := body.ValidateVerifyPayment(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity required"})
		return
	}

	result, err := a.leadgrid.VerifyAndAccept(c.Request.Context(), id, identity.IdentityID, body.OrderRef, body.PaymentRef, body.Signature)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
