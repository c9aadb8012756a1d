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
package mocks

import (
	"context"
	"time"

	"github.com/leadgrid/leadgrid/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Lead methods

func (m *MockDataSource) CreateLeadWithResponses(ctx context.Context, lead *model.Lead, responses []*model.Response) (*model.Lead, error) {
	args := m.Called(ctx, lead, responses)
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockDataSource) GetLeadByID(ctx context.Context, id string) (*model.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockDataSource) GetLeadsBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]*model.Lead, error) {
	args := m.Called(ctx, seekerID, limit, offset)
	return args.Get(0).([]*model.Lead), args.Error(1)
}

func (m *MockDataSource) GetLeadResponses(ctx context.Context, leadID string) ([]*model.Response, error) {
	args := m.Called(ctx, leadID)
	return args.Get(0).([]*model.Response), args.Error(1)
}

func (m *MockDataSource) GetAllLeads(ctx context.Context, limit, offset int) ([]*model.Lead, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*model.Lead), args.Error(1)
}

// Response methods

func (m *MockDataSource) GetResponseByID(ctx context.Context, id string) (*model.Response, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Response), args.Error(1)
}

func (m *MockDataSource) GetResponsesByProvider(ctx context.Context, providerID string, limit, offset int) ([]*model.Response, error) {
	args := m.Called(ctx, providerID, limit, offset)
	return args.Get(0).([]*model.Response), args.Error(1)
}

func (m *MockDataSource) TransitionResponse(ctx context.Context, responseID, target, notes string) (*model.Response, error) {
	args := m.Called(ctx, responseID, target, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Response), args.Error(1)
}

func (m *MockDataSource) GetDueResponses(ctx context.Context, before time.Time, limit int) ([]*model.Response, error) {
	args := m.Called(ctx, before, limit)
	return args.Get(0).([]*model.Response), args.Error(1)
}

func (m *MockDataSource) GetAllResponses(ctx context.Context, limit, offset int) ([]*model.Response, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*model.Response), args.Error(1)
}

// Payment methods

func (m *MockDataSource) CreatePayment(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	args := m.Called(ctx, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockDataSource) GetPaymentByID(ctx context.Context, id string) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockDataSource) GetActivePaymentForResponse(ctx context.Context, responseID string) (*model.Payment, error) {
	args := m.Called(ctx, responseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockDataSource) UpdatePaymentState(ctx context.Context, id, state, paymentRef, signature string) error {
	args := m.Called(ctx, id, state, paymentRef, signature)
	return args.Error(0)
}

// Business methods

func (m *MockDataSource) CreateBusiness(ctx context.Context, business *model.Business) (*model.Business, error) {
	args := m.Called(ctx, business)
	return args.Get(0).(*model.Business), args.Error(1)
}

func (m *MockDataSource) GetBusinessByID(ctx context.Context, id string) (*model.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Business), args.Error(1)
}

func (m *MockDataSource) GetBusinessesWithinRadius(ctx context.Context, lat, lon float64, radiusMeters int) ([]*model.Business, error) {
	args := m.Called(ctx, lat, lon, radiusMeters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Business), args.Error(1)
}

func (m *MockDataSource) UpdateBusinessStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDataSource) GetAllBusinesses(ctx context.Context, limit, offset int) ([]*model.Business, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*model.Business), args.Error(1)
}

// Keyword methods

func (m *MockDataSource) FindMatchingKeywords(ctx context.Context, pattern string) ([]*model.KeywordMatch, error) {
	args := m.Called(ctx, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.KeywordMatch), args.Error(1)
}

func (m *MockDataSource) RegisterKeyword(ctx context.Context, keyword, businessID, providerID string) (*model.KeywordMatch, error) {
	args := m.Called(ctx, keyword, businessID, providerID)
	return args.Get(0).(*model.KeywordMatch), args.Error(1)
}

func (m *MockDataSource) RemoveKeyword(ctx context.Context, keywordID string) error {
	args := m.Called(ctx, keywordID)
	return args.Error(0)
}

// Identity methods

func (m *MockDataSource) CreateIdentity(ctx context.Context, identity *model.Identity) (*model.Identity, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(*model.Identity), args.Error(1)
}

func (m *MockDataSource) GetIdentityByID(ctx context.Context, id string) (*model.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Identity), args.Error(1)
}

func (m *MockDataSource) GetAllIdentities(ctx context.Context, limit, offset int) ([]*model.Identity, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*model.Identity), args.Error(1)
}
