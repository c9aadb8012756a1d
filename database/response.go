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

	"github.com/lib/pq"
	"github.com/wacul/ptr"
	"go.opentelemetry.io/otel"

	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/model"
)

const responseColumns = `response_id, lead_id, provider_id, business_id, matched_keywords,
	distance_meters, state, COALESCE(notes, ''), responded_at, expires_at, created_at`

// GetResponseByID retrieves a response record by ID.
func (d Datasource) GetResponseByID(ctx context.Context, id string) (*model.Response, error) {
	row := d.Conn.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM leadgrid.responses WHERE response_id = $1`, responseColumns), id)

	rsp, err := scanResponse(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Response not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve response", err)
	}
	return rsp, nil
}

// GetResponsesByProvider lists a provider's responses, newest first.
func (d Datasource) GetResponsesByProvider(ctx context.Context, providerID string, limit, offset int) ([]*model.Response, error) {
	rows, err := d.Conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM leadgrid.responses WHERE provider_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, responseColumns), providerID, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve provider responses", err)
	}
	defer rows.Close()

	return scanResponses(rows)
}

// GetDueResponses returns pending responses whose action window lapsed before
// the given time. Used by the periodic expiry sweep.
func (d Datasource) GetDueResponses(ctx context.Context, before time.Time, limit int) ([]*model.Response, error) {
	rows, err := d.Conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM leadgrid.responses
		WHERE state = 'PENDING' AND expires_at < $1
		ORDER BY expires_at ASC LIMIT $2`, responseColumns), before, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve due responses", err)
	}
	defer rows.Close()

	return scanResponses(rows)
}

// GetAllResponses pages through every response, oldest first. Used by reindexing.
func (d Datasource) GetAllResponses(ctx context.Context, limit, offset int) ([]*model.Response, error) {
	rows, err := d.Conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM leadgrid.responses
		ORDER BY created_at ASC LIMIT $1 OFFSET $2`, responseColumns), limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve responses", err)
	}
	defer rows.Close()

	return scanResponses(rows)
}

// TransitionResponse applies a pending-only state change and adjusts the
// owning lead's counters in the same transaction. The state guard in the
// UPDATE is what makes concurrent transitions safe: only the first caller to
// observe a pending row gets a rows-affected of one, every later caller gets
// the Conflict carrying the already-terminal state. Counter updates are
// single-statement increments against the lead row, never read-modify-write.
func (d Datasource) TransitionResponse(ctx context.Context, responseID, target, notes string) (*model.Response, error) {
	ctx, span := otel.Tracer("response.database").Start(ctx, "Applying response transition")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	row := tx.QueryRowContext(ctx, fmt.Sprintf(`
		UPDATE leadgrid.responses
		SET state = $2, notes = NULLIF($3, ''), responded_at = NOW()
		WHERE response_id = $1 AND state = 'PENDING'
		RETURNING %s`, responseColumns),
		responseID, target, notes,
	)

	rsp, err := scanResponse(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, d.responseConflict(ctx, responseID)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update response", err)
	}

	counterUpdate, err := leadCounterUpdate(target)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Unknown transition target", err)
	}

	res, err := tx.ExecContext(ctx, counterUpdate, rsp.LeadID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update lead counters", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read counter update result", err)
	}
	if affected == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Lead row missing for response", fmt.Errorf("lead %s not found", rsp.LeadID))
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit response transition", err)
	}
	return rsp, nil
}

// responseConflict distinguishes a missing response from one that already
// resolved, surfacing the terminal state so retried clients can re-fetch.
func (d Datasource) responseConflict(ctx context.Context, responseID string) error {
	var state string
	err := d.Conn.QueryRowContext(ctx,
		`SELECT state FROM leadgrid.responses WHERE response_id = $1`, responseID).Scan(&state)
	if err != nil {
		if err == sql.ErrNoRows {
			return apierror.NewAPIError(apierror.ErrNotFound, "Response not found", err)
		}
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to inspect response state", err)
	}
	return apierror.NewAPIError(apierror.ErrConflict,
		fmt.Sprintf("Response already %s", state), nil)
}

// leadCounterUpdate returns the single-statement counter adjustment for a
// transition target. Expiry counts as a rejection so the notified total keeps
// balancing against accepted + rejected + pending.
func leadCounterUpdate(target string) (string, error) {
	switch target {
	case model.ResponseStateAccepted:
		return `UPDATE leadgrid.leads
			SET total_accepted = total_accepted + 1,
			    total_pending = total_pending - 1,
			    status = CASE WHEN status = 'PENDING' THEN 'IN_PROGRESS' ELSE status END,
			    version = version + 1
			WHERE lead_id = $1`, nil
	case model.ResponseStateRejected:
		return `UPDATE leadgrid.leads
			SET total_rejected = total_rejected + 1,
			    total_pending = total_pending - 1,
			    version = version + 1
			WHERE lead_id = $1`, nil
	case model.ResponseStateExpired:
		return `UPDATE leadgrid.leads
			SET total_rejected = total_rejected + 1,
			    total_pending = total_pending - 1,
			    version = version + 1
			WHERE lead_id = $1`, nil
	default:
		return "", fmt.Errorf("no counter update for state %q", target)
	}
}

func scanResponse(row rowScanner) (*model.Response, error) {
	rsp := &model.Response{}
	var respondedAt sql.NullTime
	err := row.Scan(
		&rsp.ResponseID, &rsp.LeadID, &rsp.ProviderID, &rsp.BusinessID, pq.Array(&rsp.MatchedKeywords),
		&rsp.DistanceMeters, &rsp.State, &rsp.Notes, &respondedAt, &rsp.ExpiresAt, &rsp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if respondedAt.Valid {
		rsp.RespondedAt = ptr.Time(respondedAt.Time)
	}
	return rsp, nil
}

func scanResponses(rows *sql.Rows) ([]*model.Response, error) {
	var responses []*model.Response
	for rows.Next() {
		rsp, err := scanResponse(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan response", err)
		}
		responses = append(responses, rsp)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to iterate responses", err)
	}
	return responses, nil
}
