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
	"database/sql"
	"fmt"
	"time"

	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/model"
)

// CreateIdentity persists a seeker or provider identity.
func (d Datasource) CreateIdentity(ctx context.Context, identity *model.Identity) (*model.Identity, error) {
	if identity.IdentityID == "" {
		identity.IdentityID = GenerateUUIDWithSuffix("idt")
	}
	identity.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO leadgrid.identities(identity_id,role,first_name,last_name,email_address,phone_number,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		identity.IdentityID, identity.Role, identity.FirstName, identity.LastName,
		identity.EmailAddress, identity.PhoneNumber, identity.CreatedAt,
	)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create identity", err)
	}
	return identity, nil
}

// GetIdentityByID resolves a caller id to its identity record. Reads go
// through the cache when one is wired; identities change rarely and every
// new-lead push re-reads the seeker's display fields.
func (d Datasource) GetIdentityByID(ctx context.Context, id string) (*model.Identity, error) {
	cacheKey := fmt.Sprintf("identity:%s", id)
	if d.Cache != nil {
		cached := &model.Identity{}
		if err := d.Cache.Get(ctx, cacheKey, cached); err == nil && cached.IdentityID != "" {
			return cached, nil
		}
	}

	identity := &model.Identity{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT identity_id, role, COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(email_address, ''), COALESCE(phone_number, ''), created_at
		FROM leadgrid.identities WHERE identity_id = $1`, id).
		Scan(&identity.IdentityID, &identity.Role, &identity.FirstName, &identity.LastName,
			&identity.EmailAddress, &identity.PhoneNumber, &identity.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Identity not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve identity", err)
	}

	if d.Cache != nil {
		_ = d.Cache.Set(ctx, cacheKey, identity, 5*time.Minute)
	}
	return identity, nil
}

// GetAllIdentities pages through every identity, oldest first. Used by reindexing.
func (d Datasource) GetAllIdentities(ctx context.Context, limit, offset int) ([]*model.Identity, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT identity_id, role, COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(email_address, ''), COALESCE(phone_number, ''), created_at
		FROM leadgrid.identities
		ORDER BY created_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve identities", err)
	}
	defer rows.Close()

	var identities []*model.Identity
	for rows.Next() {
		identity := &model.Identity{}
		if err := rows.Scan(&identity.IdentityID, &identity.Role, &identity.FirstName, &identity.LastName,
			&identity.EmailAddress, &identity.PhoneNumber, &identity.CreatedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan identity", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate identities", err)
	}
	return identities, nil
}
