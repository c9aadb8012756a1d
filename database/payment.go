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

	"github.com/lib/pq"

	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/model"
)

const paymentColumns = `payment_id, response_id, provider_id, order_ref, COALESCE(payment_ref, ''),
	COALESCE(signature, ''), amount, currency, state, created_at`

// CreatePayment persists a new acceptance-fee payment. The partial unique
// index on (response_id) WHERE state != 'FAILED' enforces the one-active-
// payment-per-response rule at the store, so a duplicate order request
// surfaces as Conflict no matter how the callers race.
func (d Datasource) CreatePayment(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	_, err := d.Conn.ExecContext(ctx,
		`INSERT INTO leadgrid.payments(payment_id,response_id,provider_id,order_ref,amount,currency,state,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		payment.PaymentID, payment.ResponseID, payment.ProviderID, payment.OrderRef,
		payment.Amount, payment.Currency, payment.State, payment.CreatedAt,
	)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code == "23505" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "An active payment already exists for this response", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create payment", err)
	}
	return payment, nil
}

// GetPaymentByID retrieves a payment record by ID.
func (d Datasource) GetPaymentByID(ctx context.Context, id string) (*model.Payment, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM leadgrid.payments WHERE payment_id = $1`, id)

	payment, err := scanPayment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Payment not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payment", err)
	}
	return payment, nil
}

// GetActivePaymentForResponse retrieves the single non-failed payment linked
// to a response, if one exists.
func (d Datasource) GetActivePaymentForResponse(ctx context.Context, responseID string) (*model.Payment, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM leadgrid.payments
		WHERE response_id = $1 AND state != 'FAILED'`, responseID)

	payment, err := scanPayment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "No active payment for response", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payment", err)
	}
	return payment, nil
}

// UpdatePaymentState records the verification outcome alongside the external
// payment reference and supplied signature.
func (d Datasource) UpdatePaymentState(ctx context.Context, id, state, paymentRef, signature string) error {
	res, err := d.Conn.ExecContext(ctx, `
		UPDATE leadgrid.payments
		SET state = $2, payment_ref = NULLIF($3, ''), signature = NULLIF($4, '')
		WHERE payment_id = $1`,
		id, state, paymentRef, signature,
	)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update payment", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read payment update result", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Payment not found", nil)
	}
	return nil
}

func scanPayment(row rowScanner) (*model.Payment, error) {
	payment := &model.Payment{}
	err := row.Scan(
		&payment.PaymentID, &payment.ResponseID, &payment.ProviderID, &payment.OrderRef,
		&payment.PaymentRef, &payment.Signature, &payment.Amount, &payment.Currency,
		&payment.State, &payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return payment, nil
}
