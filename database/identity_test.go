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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/model"
)

var identityTestColumns = []string{
	"identity_id", "role", "first_name", "last_name", "email_address", "phone_number", "created_at",
}

// memoryCache is an in-process Cache for exercising the identity read-through
// without Redis.
type memoryCache struct {
	entries map[string]*model.Identity
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*model.Identity)}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if identity, ok := value.(*model.Identity); ok {
		m.entries[key] = identity
	}
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string, data interface{}) error {
	if identity, ok := m.entries[key]; ok {
		if target, ok := data.(*model.Identity); ok {
			*target = *identity
		}
	}
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func TestCreateIdentity_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	identity := &model.Identity{
		Role:         model.RoleProvider,
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		EmailAddress: gofakeit.Email(),
	}

	mock.ExpectExec("INSERT INTO leadgrid.identities").
		WithArgs(sqlmock.AnyArg(), identity.Role, identity.FirstName, identity.LastName,
			identity.EmailAddress, identity.PhoneNumber, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreateIdentity(context.Background(), identity)
	assert.NoError(t, err)
	assert.NotEmpty(t, created.IdentityID)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Second)
}

func TestGetIdentityByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	rows := sqlmock.NewRows(identityTestColumns).
		AddRow("idt_1", "seeker", "Asha", "Verma", "asha@example.com", "", now)

	mock.ExpectQuery("SELECT .* FROM leadgrid.identities WHERE identity_id =").
		WithArgs("idt_1").
		WillReturnRows(rows)

	identity, err := ds.GetIdentityByID(context.Background(), "idt_1")
	assert.NoError(t, err)
	assert.Equal(t, "idt_1", identity.IdentityID)
	assert.Equal(t, model.RoleSeeker, identity.Role)
}

func TestGetIdentityByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT .* FROM leadgrid.identities WHERE identity_id =").
		WithArgs("idt_missing").
		WillReturnRows(sqlmock.NewRows(identityTestColumns))

	_, err = ds.GetIdentityByID(context.Background(), "idt_missing")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

// The second lookup must come from the cache; the single ExpectQuery proves
// the database is hit once.
func TestGetIdentityByID_CacheReadThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db, Cache: newMemoryCache()}
	now := time.Now()

	rows := sqlmock.NewRows(identityTestColumns).
		AddRow("idt_1", "provider", "Ravi", "Kumar", "ravi@example.com", "", now)

	mock.ExpectQuery("SELECT .* FROM leadgrid.identities WHERE identity_id =").
		WithArgs("idt_1").
		WillReturnRows(rows)

	first, err := ds.GetIdentityByID(context.Background(), "idt_1")
	assert.NoError(t, err)
	assert.Equal(t, "idt_1", first.IdentityID)

	second, err := ds.GetIdentityByID(context.Background(), "idt_1")
	assert.NoError(t, err)
	assert.Equal(t, "Ravi", second.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllIdentities_Pagination(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Now()

	rows := sqlmock.NewRows(identityTestColumns).
		AddRow("idt_1", "seeker", "Asha", "Verma", "", "", now).
		AddRow("idt_2", "provider", "Ravi", "Kumar", "", "", now)

	mock.ExpectQuery("SELECT .* FROM leadgrid.identities ORDER BY created_at ASC").
		WithArgs(100, 0).
		WillReturnRows(rows)

	identities, err := ds.GetAllIdentities(context.Background(), 100, 0)
	assert.NoError(t, err)
	assert.Len(t, identities, 2)
}
