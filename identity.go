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

// CreateIdentity registers a seeker or provider and queues them for search
// indexing.
func (l *Leadgrid) CreateIdentity(ctx context.Context, identity *model.Identity) (*model.Identity, error) {
	if identity.Role != model.RoleSeeker && identity.Role != model.RoleProvider {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Role must be seeker or provider", nil)
	}

	created, err := l.datasource.CreateIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	if err := l.queue.queueIndexData(created.IdentityID, search.CollectionIdentities, created); err != nil {
		logrus.Errorf("failed to queue identity for indexing: %v", err)
	}
	return created, nil
}

// GetIdentity resolves an identity by ID.
func (l *Leadgrid) GetIdentity(ctx context.Context, id string) (*model.Identity, error) {
	return l.datasource.GetIdentityByID(ctx, id)
}
