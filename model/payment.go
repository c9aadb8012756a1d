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

package model

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	PaymentStateCreated = "CREATED"
	PaymentStatePending = "PENDING"
	PaymentStateSuccess = "SUCCESS"
	PaymentStateFailed  = "FAILED"
)

// Payment records one attempt to pay the acceptance micro-fee for a response.
// At most one non-failed payment may exist per response at a time.
type Payment struct {
	ID         int64     `json:"-"`
	PaymentID  string    `json:"payment_id"`
	ResponseID string    `json:"response_id"`
	ProviderID string    `json:"provider_id"`
	OrderRef   string    `json:"order_ref"`
	PaymentRef string    `json:"payment_ref,omitempty"`
	Signature  string    `json:"-"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
}

// SignPayment computes the expected gateway signature for an order/payment
// pair: hex HMAC-SHA256 over "orderRef|paymentRef" keyed with the shared
// secret.
func SignPayment(orderRef, paymentRef, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature compares a provider-supplied signature against the
// recomputed one in constant time.
func VerifyPaymentSignature(orderRef, paymentRef, secret, supplied string) bool {
	expected := SignPayment(orderRef, paymentRef, secret)
	return hmac.Equal([]byte(expected), []byte(supplied))
}
