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
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/leadgrid/leadgrid/model"
)

func (l *SubmitLead) ValidateSubmitLead() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.SearchText, validation.Required),
		validation.Field(&l.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&l.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&l.RadiusMeters, validation.Min(0)),
	)
}

func (i *CreateIdentity) ValidateCreateIdentity() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.Role, validation.Required, validation.In(model.RoleSeeker, model.RoleProvider)),
		validation.Field(&i.FirstName, validation.Required),
		validation.Field(&i.EmailAddress, validation.When(i.EmailAddress != "", is.Email)),
	)
}

func (b *CreateBusiness) ValidateCreateBusiness() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.ProviderID, validation.Required),
		validation.Field(&b.Name, validation.Required),
		validation.Field(&b.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&b.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&b.EmailAddress, validation.When(b.EmailAddress != "", is.Email)),
	)
}

func (u *UpdateBusinessStatus) ValidateUpdateBusinessStatus() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Status, validation.Required, validation.In(
			model.BusinessStatusPending, model.BusinessStatusApproved, model.BusinessStatusRejected)),
	)
}

func (k *RegisterKeyword) ValidateRegisterKeyword() error {
	return validation.ValidateStruct(k,
		validation.Field(&k.Keyword, validation.Required),
		validation.Field(&k.BusinessID, validation.Required),
	)
}

func (v *VerifyPayment) ValidateVerifyPayment() error {
	return validation.ValidateStruct(v,
		validation.Field(&v.OrderRef, validation.Required),
		validation.Field(&v.PaymentRef, validation.Required),
		validation.Field(&v.Signature, validation.Required),
	)
}

func (l *SubmitLead) ToLead(seekerID string) *model.Lead {
	return &model.Lead{
		SeekerID:     seekerID,
		SearchText:   l.SearchText,
		Description:  l.Description,
		Longitude:    l.Longitude,
		Latitude:     l.Latitude,
		Address:      l.Address,
		City:         l.City,
		State:        l.State,
		Country:      l.Country,
		RadiusMeters: l.RadiusMeters,
		MetaData:     l.MetaData,
	}
}

func (i *CreateIdentity) ToIdentity() *model.Identity {
	return &model.Identity{
		Role:         i.Role,
		FirstName:    i.FirstName,
		LastName:     i.LastName,
		EmailAddress: i.EmailAddress,
		PhoneNumber:  i.PhoneNumber,
	}
}

func (b *CreateBusiness) ToBusiness() *model.Business {
	return &model.Business{
		ProviderID: b.ProviderID,
		Name:       b.Name,
		Phone:      b.PhoneNumber,
		Email:      b.EmailAddress,
		Street:     b.Street,
		City:       b.City,
		State:      b.State,
		Country:    b.Country,
		Longitude:  b.Longitude,
		Latitude:   b.Latitude,
	}
}
