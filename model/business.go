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

import "time"

const (
	BusinessStatusPending  = "PENDING"
	BusinessStatusApproved = "APPROVED"
	BusinessStatusRejected = "REJECTED"
)

// Business is a provider's registered listing. Only approved businesses are
// eligible for lead fan-out; the KYC/approval lifecycle itself lives outside
// this engine.
type Business struct {
	ID           int64     `json:"-"`
	BusinessID   string    `json:"business_id"`
	ProviderID   string    `json:"provider_id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Street       string    `json:"street,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country,omitempty"`
	Longitude    float64   `json:"longitude"`
	Latitude     float64   `json:"latitude"`
	Status       string    `json:"status"`
	ListingCount int       `json:"listing_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// KeywordMatch is one registered keyword satisfying a match expression,
// bound to the business and provider that registered it.
type KeywordMatch struct {
	KeywordID  string `json:"keyword_id"`
	Keyword    string `json:"keyword"`
	BusinessID string `json:"business_id"`
	ProviderID string `json:"provider_id"`
}
