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

package leadgrid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/leadgrid/leadgrid/config"
	"github.com/leadgrid/leadgrid/database"
	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/internal/notification"
	"github.com/leadgrid/leadgrid/internal/request"
	"github.com/leadgrid/leadgrid/model"
)

// AcceptResult is what a provider gets back after a verified acceptance: the
// accepted response and the lead with seeker contact revealed.
type AcceptResult struct {
	Response *model.Response    `json:"response"`
	Lead     *model.LeadSummary `json:"lead"`
}

// paymentOrderRequest is the body sent to the external payment provider when
// creating an acceptance-fee order.
type paymentOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// paymentOrderResponse is the provider's answer to an order creation.
type paymentOrderResponse struct {
	ID string `json:"id"`
}

// CreatePaymentOrder opens the acceptance-fee order for a response. The order
// is created at the external provider first, then recorded locally; the
// partial unique index on payments makes retries land on the existing active
// order instead of opening a second one.
func (l *Leadgrid) CreatePaymentOrder(ctx context.Context, responseID, providerID string) (*model.Payment, error) {
	ctx, span := tracer.Start(ctx, "Creating payment order")
	defer span.End()

	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	rsp, err := l.datasource.GetResponseByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if rsp.ProviderID != providerID {
		return nil, apierror.NewAPIError(apierror.ErrForbidden, "Response belongs to another provider", nil)
	}

	rsp = l.applyLazyExpiry(ctx, rsp)
	if rsp.State != model.ResponseStatePending {
		return nil, apierror.NewAPIError(apierror.ErrConflict,
			fmt.Sprintf("Response already %s", rsp.State), nil)
	}

	// Idempotency: a retried order creation returns the open order.
	existing, err := l.datasource.GetActivePaymentForResponse(ctx, responseID)
	if err == nil && existing != nil {
		if existing.State == model.PaymentStateSuccess {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "Payment already completed for this response", nil)
		}
		return existing, nil
	}
	if err != nil && !apierror.Is(err, apierror.ErrNotFound) {
		return nil, err
	}

	orderRef, err := l.createProviderOrder(cfg, responseID)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		PaymentID:  database.GenerateUUIDWithSuffix("pay"),
		ResponseID: responseID,
		ProviderID: providerID,
		OrderRef:   orderRef,
		Amount:     cfg.Payment.AcceptanceFee,
		Currency:   cfg.Payment.Currency,
		State:      model.PaymentStateCreated,
		CreatedAt:  time.Now(),
	}
	return l.datasource.CreatePayment(ctx, payment)
}

// createProviderOrder opens the order at the external payment provider.
func (l *Leadgrid) createProviderOrder(cfg *config.Configuration, responseID string) (string, error) {
	body, err := request.ToJsonReq(&paymentOrderRequest{
		Amount:   cfg.Payment.AcceptanceFee,
		Currency: cfg.Payment.Currency,
		Receipt:  responseID,
	})
	if err != nil {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "Failed to build payment order request", err)
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/orders", cfg.Payment.ProviderURL), body)
	if err != nil {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "Failed to build payment order request", err)
	}
	req.Header.Set("Authorization", request.BasicAuth(cfg.Payment.KeyID, cfg.Payment.KeySecret))

	var orderResponse paymentOrderResponse
	resp, err := request.Call(req, &orderResponse)
	if err != nil {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "Payment provider unreachable", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apierror.NewAPIError(apierror.ErrInternalServer,
			fmt.Sprintf("Payment provider returned status %d", resp.StatusCode), nil)
	}
	if orderResponse.ID == "" {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "Payment provider returned no order reference", nil)
	}
	return orderResponse.ID, nil
}

// VerifyAndAccept closes the acceptance flow: it checks the submitted order
// reference against the open order, verifies the payment provider's signature
// over the order and payment references, records the outcome, and applies the
// guarded accept transition. A valid payment whose response already resolved
// is an anomaly worth waking someone up for.
func (l *Leadgrid) VerifyAndAccept(ctx context.Context, responseID, providerID, orderRef, paymentRef, signature string) (*AcceptResult, error) {
	ctx, span := tracer.Start(ctx, "Verifying payment and accepting response")
	defer span.End()

	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	payment, err := l.datasource.GetActivePaymentForResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if payment.ProviderID != providerID {
		return nil, apierror.NewAPIError(apierror.ErrForbidden, "Payment belongs to another provider", nil)
	}
	if payment.State == model.PaymentStateSuccess {
		return nil, apierror.NewAPIError(apierror.ErrConflict, "Payment already verified", nil)
	}

	if orderRef != payment.OrderRef {
		if err := l.datasource.UpdatePaymentState(ctx, payment.PaymentID, model.PaymentStateFailed, paymentRef, signature); err != nil {
			logrus.Errorf("failed to record failed payment %s: %v", payment.PaymentID, err)
		}
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "Payment order reference does not match the open order", nil)
	}

	if !model.VerifyPaymentSignature(payment.OrderRef, paymentRef, cfg.Payment.KeySecret, signature) {
		if err := l.datasource.UpdatePaymentState(ctx, payment.PaymentID, model.PaymentStateFailed, paymentRef, signature); err != nil {
			logrus.Errorf("failed to record failed payment %s: %v", payment.PaymentID, err)
		}
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "Payment signature verification failed", nil)
	}

	if err := l.datasource.UpdatePaymentState(ctx, payment.PaymentID, model.PaymentStateSuccess, paymentRef, signature); err != nil {
		return nil, err
	}

	updated, err := l.transitionWithRetry(ctx, responseID, model.ResponseStateAccepted, "")
	if err != nil {
		if apierror.Is(err, apierror.ErrConflict) {
			// Money taken, lead gone. Surface the conflict to the caller and
			// flag the orphaned payment for manual follow-up.
			notification.NotifyError(fmt.Errorf(
				"payment %s succeeded but response %s could not be accepted: %v",
				payment.PaymentID, responseID, err))
		}
		return nil, err
	}

	l.notifyResponseResolved(ctx, updated)

	lead, err := l.datasource.GetLeadByID(ctx, updated.LeadID)
	if err != nil {
		return nil, err
	}
	return &AcceptResult{
		Response: updated,
		Lead:     l.leadSummary(ctx, lead, true),
	}, nil
}

// GetPayment retrieves a payment record by ID.
func (l *Leadgrid) GetPayment(ctx context.Context, id string) (*model.Payment, error) {
	return l.datasource.GetPaymentByID(ctx, id)
}
