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

	"github.com/sirupsen/logrus"

	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/internal/search"
	"github.com/leadgrid/leadgrid/model"
)

// CreateBusiness registers a provider's business listing. New listings start
// pending and only enter the matching pool once approved.
func (l *Leadgrid) CreateBusiness(ctx context.Context, business *model.Business) (*model.Business, error) {
	if business.ProviderID == "" {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Provider ID is required", nil)
	}
	if business.Name == "" {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Business name is required", nil)
	}
	if business.Latitude < -90 || business.Latitude > 90 || business.Longitude < -180 || business.Longitude > 180 {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Business location is out of range", nil)
	}

	created, err := l.datasource.CreateBusiness(ctx, business)
	if err != nil {
		return nil, err
	}

	if err := l.queue.queueIndexData(created.BusinessID, search.CollectionBusinesses, created); err != nil {
		logrus.Errorf("failed to queue business for indexing: %v", err)
	}
	return created, nil
}

// GetBusiness retrieves a business listing by ID.
func (l *Leadgrid) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	return l.datasource.GetBusinessByID(ctx, id)
}

// UpdateBusinessStatus moves a listing through its approval lifecycle and
// refreshes the search index.
func (l *Leadgrid) UpdateBusinessStatus(ctx context.Context, id, status string) error {
	switch status {
	case model.BusinessStatusPending, model.BusinessStatusApproved, model.BusinessStatusRejected:
	default:
		return apierror.NewAPIError(apierror.ErrBadRequest, "Unknown business status", nil)
	}

	if err := l.datasource.UpdateBusinessStatus(ctx, id, status); err != nil {
		return err
	}

	business, err := l.datasource.GetBusinessByID(ctx, id)
	if err != nil {
		return nil
	}
	if err := l.queue.queueIndexData(business.BusinessID, search.CollectionBusinesses, business); err != nil {
		logrus.Errorf("failed to queue business for indexing: %v", err)
	}
	return nil
}

// RegisterKeyword binds a service keyword to a business so future leads can
// match it. The keyword must belong to the provider's own business.
func (l *Leadgrid) RegisterKeyword(ctx context.Context, keyword, businessID, providerID string) (*model.KeywordMatch, error) {
	if keyword == "" {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Keyword is required", nil)
	}

	business, err := l.datasource.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if business.ProviderID != providerID {
		return nil, apierror.NewAPIError(apierror.ErrForbidden, "Business belongs to another provider", nil)
	}

	return l.datasource.RegisterKeyword(ctx, keyword, businessID, providerID)
}

// RemoveKeyword unbinds a keyword from the matching pool.
func (l *Leadgrid) RemoveKeyword(ctx context.Context, keywordID string) error {
	return l.datasource.RemoveKeyword(ctx, keywordID)
}
