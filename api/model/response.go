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

// RejectResponse is the request body for POST /responses/:id/reject.
type RejectResponse struct {
	Notes string `json:"notes"`
}

// VerifyPayment is the request body for POST /responses/:id/accept/verify.
// The signature is the gateway's HMAC over the order and payment references;
// the order reference must name the open order for the response.
type VerifyPayment struct {
	OrderRef   string `json:"order_ref"`
	PaymentRef string `json:"payment_ref"`
	Signature  string `json:"signature"`
}
