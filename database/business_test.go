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
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/model"
)

var businessTestColumns = []string{
	"business_id", "provider_id", "name", "phone", "email",
	"street", "city", "state", "country", "longitude", "latitude",
	"status", "listing_count", "created_at",
}

func TestCreateBusiness_Defaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	business := &model.Business{
		ProviderID: "idt_provider",
		Name:       gofakeit.Company(),
		Longitude:  77.5946,
		Latitude:   12.9716,
	}

	mock.ExpectExec("INSERT INTO leadgrid.businesses").
		WithArgs(sqlmock.AnyArg(), business.ProviderID, business.Name, "", "",
			"", "", "", "", business.Longitude, business.Latitude,
			model.BusinessStatusPending, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreateBusiness(context.Background(), business)
	assert.NoError(t, err)
	assert.NotEmpty(t, created.BusinessID)
	assert.Equal(t, model.BusinessStatusPending, created.Status)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Second)
}

func TestGetBusinessesWithinRadius(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	rows := sqlmock.NewRows(businessTestColumns).
		AddRow("biz_1", "idt_provider", "Shree Plumbing Works", "", "",
			"", "Bengaluru", "", "IN", 77.6, 12.97, "APPROVED", 3, now)

	mock.ExpectQuery(regexp.QuoteMeta("earth_box(ll_to_earth($1, $2), $3)")).
		WithArgs(12.9716, 77.5946, 15000).
		WillReturnRows(rows)

	businesses, err := ds.GetBusinessesWithinRadius(context.Background(), 12.9716, 77.5946, 15000)
	assert.NoError(t, err)
	assert.Len(t, businesses, 1)
	assert.Equal(t, "biz_1", businesses[0].BusinessID)
	assert.Equal(t, model.BusinessStatusApproved, businesses[0].Status)
}

func TestGetBusinessesWithinRadius_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery(regexp.QuoteMeta("earth_box(ll_to_earth($1, $2), $3)")).
		WithArgs(0.0, 0.0, 5000).
		WillReturnRows(sqlmock.NewRows(businessTestColumns))

	businesses, err := ds.GetBusinessesWithinRadius(context.Background(), 0, 0, 5000)
	assert.NoError(t, err)
	assert.Empty(t, businesses)
}

func TestUpdateBusinessStatus_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE leadgrid.businesses SET status").
		WithArgs("biz_1", model.BusinessStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.UpdateBusinessStatus(context.Background(), "biz_1", model.BusinessStatusApproved)
	assert.NoError(t, err)
}

func TestUpdateBusinessStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE leadgrid.businesses SET status").
		WithArgs("biz_missing", model.BusinessStatusRejected).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.UpdateBusinessStatus(context.Background(), "biz_missing", model.BusinessStatusRejected)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestGetBusinessByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT .* FROM leadgrid.businesses WHERE business_id =").
		WithArgs("biz_missing").
		WillReturnRows(sqlmock.NewRows(businessTestColumns))

	_, err = ds.GetBusinessByID(context.Background(), "biz_missing")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}
