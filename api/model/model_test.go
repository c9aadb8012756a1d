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
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadgrid/leadgrid/model"
)

func TestValidateSubmitLead(t *testing.T) {
	tests := []struct {
		name    string
		lead    SubmitLead
		wantErr bool
	}{
		{
			name: "valid lead",
			lead: SubmitLead{SearchText: "need a plumber", Latitude: 30.3165, Longitude: 78.0322},
		},
		{
			name:    "missing search text",
			lead:    SubmitLead{Latitude: 30.3165, Longitude: 78.0322},
			wantErr: true,
		},
		{
			name:    "latitude out of range",
			lead:    SubmitLead{SearchText: "need a plumber", Latitude: 91},
			wantErr: true,
		},
		{
			name:    "longitude out of range",
			lead:    SubmitLead{SearchText: "need a plumber", Longitude: -181},
			wantErr: true,
		},
		{
			name:    "negative radius",
			lead:    SubmitLead{SearchText: "need a plumber", RadiusMeters: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lead.ValidateSubmitLead()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCreateIdentity(t *testing.T) {
	valid := CreateIdentity{Role: model.RoleSeeker, FirstName: "Asha", EmailAddress: "asha@example.com"}
	assert.NoError(t, valid.ValidateCreateIdentity())

	badRole := CreateIdentity{Role: "admin", FirstName: "Asha"}
	assert.Error(t, badRole.ValidateCreateIdentity())

	badEmail := CreateIdentity{Role: model.RoleProvider, FirstName: "Ravi", EmailAddress: "not-an-email"}
	assert.Error(t, badEmail.ValidateCreateIdentity())

	noEmail := CreateIdentity{Role: model.RoleProvider, FirstName: "Ravi"}
	assert.NoError(t, noEmail.ValidateCreateIdentity())
}

func TestValidateCreateBusiness(t *testing.T) {
	valid := CreateBusiness{
		ProviderID: "idt_provider",
		Name:       "Dehradun Plumbing Works",
		Latitude:   30.32,
		Longitude:  78.03,
	}
	assert.NoError(t, valid.ValidateCreateBusiness())

	missingName := CreateBusiness{ProviderID: "idt_provider"}
	assert.Error(t, missingName.ValidateCreateBusiness())

	missingProvider := CreateBusiness{Name: "Dehradun Plumbing Works"}
	assert.Error(t, missingProvider.ValidateCreateBusiness())
}

func TestValidateUpdateBusinessStatus(t *testing.T) {
	valid := UpdateBusinessStatus{Status: model.BusinessStatusApproved}
	assert.NoError(t, valid.ValidateUpdateBusinessStatus())

	unknown := UpdateBusinessStatus{Status: "SUSPENDED"}
	assert.Error(t, unknown.ValidateUpdateBusinessStatus())
}

func TestValidateVerifyPayment(t *testing.T) {
	valid := VerifyPayment{OrderRef: "order_abc", PaymentRef: "payment_xyz", Signature: "abc123"}
	assert.NoError(t, valid.ValidateVerifyPayment())

	missingSignature := VerifyPayment{OrderRef: "order_abc", PaymentRef: "payment_xyz"}
	assert.Error(t, missingSignature.ValidateVerifyPayment())

	missingOrder := VerifyPayment{PaymentRef: "payment_xyz", Signature: "abc123"}
	assert.Error(t, missingOrder.ValidateVerifyPayment())
}

func TestToLeadCarriesSeekerFromIdentity(t *testing.T) {
	body := SubmitLead{
		SearchText:   "need a plumber",
		Latitude:     30.3165,
		Longitude:    78.0322,
		City:         "Dehradun",
		RadiusMeters: 5000,
	}
	lead := body.ToLead("idt_seeker")
	assert.Equal(t, "idt_seeker", lead.SeekerID)
	assert.Equal(t, "need a plumber", lead.SearchText)
	assert.Equal(t, 5000, lead.RadiusMeters)
}
