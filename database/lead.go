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
	"encoding/json"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/model"
)

// CreateLeadWithResponses persists a lead and its fan-out batch as one unit.
// The lead row, every response row and the rollup counters commit together or
// not at all; a partially fanned-out lead must never be observable.
func (d Datasource) CreateLeadWithResponses(ctx context.Context, lead *model.Lead, responses []*model.Response) (*model.Lead, error) {
	ctx, span := otel.Tracer("lead.database").Start(ctx, "Saving lead fan-out batch to db")
	defer span.End()

	metaDataJSON, err := json.Marshal(lead.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	tx, err := d.Conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO leadgrid.leads(lead_id,seeker_id,search_text,description,longitude,latitude,address,city,state,country,radius_meters,matched_keywords,status,total_notified,total_accepted,total_rejected,total_pending,created_at,meta_data)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		lead.LeadID, lead.SeekerID, lead.SearchText, lead.Description, lead.Longitude, lead.Latitude,
		lead.Address, lead.City, lead.State, lead.Country, lead.RadiusMeters, pq.Array(lead.MatchedKeywords),
		lead.Status, lead.TotalNotified, lead.TotalAccepted, lead.TotalRejected, lead.TotalPending,
		lead.CreatedAt, metaDataJSON,
	)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code == "23505" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "Lead with this ID already exists", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create lead", err)
	}

	for _, rsp := range responses {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO leadgrid.responses(response_id,lead_id,provider_id,business_id,matched_keywords,distance_meters,state,expires_at,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			rsp.ResponseID, rsp.LeadID, rsp.ProviderID, rsp.BusinessID, pq.Array(rsp.MatchedKeywords),
			rsp.DistanceMeters, rsp.State, rsp.ExpiresAt, rsp.CreatedAt,
		)
		if err != nil {
			pqErr, ok := err.(*pq.Error)
			if ok && pqErr.Code == "23505" {
				return nil, apierror.NewAPIError(apierror.ErrConflict, "Duplicate response for provider on this lead", err)
			}
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create response record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit lead fan-out", err)
	}

	return lead, nil
}

// GetLeadByID retrieves a lead aggregate, counters included.
func (d Datasource) GetLeadByID(ctx context.Context, id string) (*model.Lead, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT lead_id, seeker_id, search_text, COALESCE(description, ''), longitude, latitude,
		       COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(country, ''),
		       radius_meters, matched_keywords, status,
		       total_notified, total_accepted, total_rejected, total_pending, version, created_at, meta_data
		FROM leadgrid.leads WHERE lead_id = $1`, id)

	lead, err := scanLead(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Lead not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve lead", err)
	}
	return lead, nil
}

// GetLeadsBySeeker lists a seeker's leads, newest first.
func (d Datasource) GetLeadsBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]*model.Lead, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT lead_id, seeker_id, search_text, COALESCE(description, ''), longitude, latitude,
		       COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(country, ''),
		       radius_meters, matched_keywords, status,
		       total_notified, total_accepted, total_rejected, total_pending, version, created_at, meta_data
		FROM leadgrid.leads WHERE seeker_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, seekerID, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve leads", err)
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan lead", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate leads", err)
	}
	return leads, nil
}

// GetLeadResponses returns a lead's responses for the seeker read path.
// Closest provider first; ties broken by the provider's listing count so more
// established providers surface earlier. The ordering is cosmetic.
func (d Datasource) GetLeadResponses(ctx context.Context, leadID string) ([]*model.Response, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT r.response_id, r.lead_id, r.provider_id, r.business_id, r.matched_keywords,
		       r.distance_meters, r.state, COALESCE(r.notes, ''), r.responded_at, r.expires_at, r.created_at
		FROM leadgrid.responses r
		JOIN leadgrid.businesses b ON r.business_id = b.business_id
		WHERE r.lead_id = $1
		ORDER BY r.distance_meters ASC, b.listing_count DESC`, leadID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve lead responses", err)
	}
	defer rows.Close()

	return scanResponses(rows)
}

// GetAllLeads pages through every lead, oldest first. Used by reindexing.
func (d Datasource) GetAllLeads(ctx context.Context, limit, offset int) ([]*model.Lead, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT lead_id, seeker_id, search_text, COALESCE(description, ''), longitude, latitude,
		       COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(country, ''),
		       radius_meters, matched_keywords, status,
		       total_notified, total_accepted, total_rejected, total_pending, version, created_at, meta_data
		FROM leadgrid.leads
		ORDER BY created_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve leads", err)
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan lead", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate leads", err)
	}
	return leads, nil
}

// rowScanner lets scanLead work over both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*model.Lead, error) {
	lead := &model.Lead{}
	var metaDataJSON []byte
	err := row.Scan(
		&lead.LeadID, &lead.SeekerID, &lead.SearchText, &lead.Description, &lead.Longitude, &lead.Latitude,
		&lead.Address, &lead.City, &lead.State, &lead.Country, &lead.RadiusMeters,
		pq.Array(&lead.MatchedKeywords), &lead.Status,
		&lead.TotalNotified, &lead.TotalAccepted, &lead.TotalRejected, &lead.TotalPending,
		&lead.Version, &lead.CreatedAt, &metaDataJSON,
	)
	if err != nil {
		return nil, err
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &lead.MetaData); err != nil {
			return nil, err
		}
	}
	return lead, nil
}
