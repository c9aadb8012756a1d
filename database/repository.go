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

package database

import (
	"context"
	"time"

	"github.com/leadgrid/leadgrid/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	lead     // Interface for lead-related operations
	response // Interface for response-record operations
	payment  // Interface for payment-record operations
	business // Interface for business store operations
	keyword  // Interface for keyword store operations
	identity // Interface for identity-related operations
}

// lead defines methods for handling lead aggregates.
type lead interface {
	CreateLeadWithResponses(ctx context.Context, lead *model.Lead, responses []*model.Response) (*model.Lead, error) // Persists a lead and its fan-out batch atomically
	GetLeadByID(ctx context.Context, id string) (*model.Lead, error)                                                 // Retrieves a lead by ID
	GetLeadsBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]*model.Lead, error)                 // Retrieves a seeker's leads
	GetLeadResponses(ctx context.Context, leadID string) ([]*model.Response, error)                                  // Retrieves a lead's responses, nearest first
	GetAllLeads(ctx context.Context, limit, offset int) ([]*model.Lead, error)                                       // Pages through all leads for reindexing
}

// response defines methods for handling response records.
type response interface {
	GetResponseByID(ctx context.Context, id string) (*model.Response, error)                                     // Retrieves a response by ID
	GetResponsesByProvider(ctx context.Context, providerID string, limit, offset int) ([]*model.Response, error) // Retrieves a provider's responses
	TransitionResponse(ctx context.Context, responseID, target, notes string) (*model.Response, error)           // Applies a guarded pending-only transition and adjusts lead counters atomically
	GetDueResponses(ctx context.Context, before time.Time, limit int) ([]*model.Response, error)                 // Retrieves pending responses past their expiry window
	GetAllResponses(ctx context.Context, limit, offset int) ([]*model.Response, error)                           // Pages through all responses for reindexing
}

// payment defines methods for handling acceptance-fee payments.
type payment interface {
	CreatePayment(ctx context.Context, payment *model.Payment) (*model.Payment, error)  // Creates a payment record; conflicts when an active one exists
	GetPaymentByID(ctx context.Context, id string) (*model.Payment, error)              // Retrieves a payment by ID
	GetActivePaymentForResponse(ctx context.Context, responseID string) (*model.Payment, error) // Retrieves the non-failed payment for a response
	UpdatePaymentState(ctx context.Context, id, state, paymentRef, signature string) error      // Records the verification outcome
}

// business defines methods for the business store consumed by the geographic filter.
type business interface {
	CreateBusiness(ctx context.Context, business *model.Business) (*model.Business, error)                        // Creates a business listing
	GetBusinessByID(ctx context.Context, id string) (*model.Business, error)                                      // Retrieves a business by ID
	GetBusinessesWithinRadius(ctx context.Context, lat, lon float64, radiusMeters int) ([]*model.Business, error) // Retrieves approved businesses inside the radius
	UpdateBusinessStatus(ctx context.Context, id, status string) error                                            // Moves a business through its approval lifecycle
	GetAllBusinesses(ctx context.Context, limit, offset int) ([]*model.Business, error)                           // Pages through all businesses for reindexing
}

// keyword defines methods for the registered keyword store.
type keyword interface {
	FindMatchingKeywords(ctx context.Context, pattern string) ([]*model.KeywordMatch, error) // Retrieves keywords satisfying a match expression
	RegisterKeyword(ctx context.Context, keyword, businessID, providerID string) (*model.KeywordMatch, error)
	RemoveKeyword(ctx context.Context, keywordID string) error
}

// identity defines methods for resolving callers and seeker display fields.
type identity interface {
	CreateIdentity(ctx context.Context, identity *model.Identity) (*model.Identity, error)
	GetIdentityByID(ctx context.Context, id string) (*model.Identity, error)
	GetAllIdentities(ctx context.Context, limit, offset int) ([]*model.Identity, error) // Pages through all identities for reindexing
}
