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
	"time"

	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/model"
)

const businessColumns = `business_id, provider_id, name, COALESCE(phone, ''), COALESCE(email, ''),
	COALESCE(street, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(country, ''),
	longitude, latitude, status, listing_count, created_at`

// CreateBusiness persists a business listing. New listings start pending;
// approval happens through the KYC flow outside this engine.
func (d Datasource) CreateBusiness(ctx context.Context, business *model.Business) (*model.Business, error) {
	if business.BusinessID == "" {
		business.BusinessID = GenerateUUIDWithSuffix("biz")
	}
	if business.Status == "" {
		business.Status = model.BusinessStatusPending
	}
	business.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO leadgrid.businesses(business_id,provider_id,name,phone,email,street,city,state,country,longitude,latitude,status,listing_count,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		business.BusinessID, business.ProviderID, business.Name, business.Phone, business.Email,
		business.Street, business.City, business.State, business.Country,
		business.Longitude, business.Latitude, business.Status, business.ListingCount, business.CreatedAt,
	)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create business", err)
	}
	return business, nil
}

// GetBusinessByID retrieves a business listing by ID.
func (d Datasource) GetBusinessByID(ctx context.Context, id string) (*model.Business, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+businessColumns+` FROM leadgrid.businesses WHERE business_id = $1`, id)

	business, err := scanBusiness(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Business not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve business", err)
	}
	return business, nil
}

// GetBusinessesWithinRadius is the geographic filter: approved businesses
// whose location lies within radiusMeters of the center, by spherical
// distance. earth_distance rides the gist index created on connect.
func (d Datasource) GetBusinessesWithinRadius(ctx context.Context, lat, lon float64, radiusMeters int) ([]*model.Business, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+businessColumns+`
		FROM leadgrid.businesses
		WHERE status = 'APPROVED'
		  AND earth_box(ll_to_earth($1, $2), $3) @> ll_to_earth(latitude, longitude)
		  AND earth_distance(ll_to_earth($1, $2), ll_to_earth(latitude, longitude)) <= $3`,
		lat, lon, radiusMeters)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to query businesses within radius", err)
	}
	defer rows.Close()

	var businesses []*model.Business
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan business", err)
		}
		businesses = append(businesses, business)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate businesses", err)
	}
	return businesses, nil
}

// GetAllBusinesses pages through every business, oldest first. Used by reindexing.
func (d Datasource) GetAllBusinesses(ctx context.Context, limit, offset int) ([]*model.Business, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+businessColumns+` FROM leadgrid.businesses
		ORDER BY created_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve businesses", err)
	}
	defer rows.Close()

	var businesses []*model.Business
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan business", err)
		}
		businesses = append(businesses, business)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate businesses", err)
	}
	return businesses, nil
}

// UpdateBusinessStatus moves a listing through its approval lifecycle.
func (d Datasource) UpdateBusinessStatus(ctx context.Context, id, status string) error {
	res, err := d.Conn.ExecContext(ctx,
		`UPDATE leadgrid.businesses SET status = $2 WHERE business_id = $1`, id, status)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update business status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read update result", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Business not found", nil)
	}
	return nil
}

func scanBusiness(row rowScanner) (*model.Business, error) {
	business := &model.Business{}
	err := row.Scan(
		&business.BusinessID, &business.ProviderID, &business.Name, &business.Phone, &business.Email,
		&business.Street, &business.City, &business.State, &business.Country,
		&business.Longitude, &business.Latitude, &business.Status, &business.ListingCount, &business.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return business, nil
}
