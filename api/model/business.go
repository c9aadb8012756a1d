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

type CreateBusiness struct {
	ProviderID   string  `json:"provider_id"`
	Name         string  `json:"name"`
	PhoneNumber  string  `json:"phone_number"`
	EmailAddress string  `json:"email_address"`
	Street       string  `json:"street"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Country      string  `json:"country"`
	Longitude    float64 `json:"longitude"`
	Latitude     float64 `json:"latitude"`
}

type UpdateBusinessStatus struct {
	Status string `json:"status"`
}

type RegisterKeyword struct {
	Keyword    string `json:"keyword"`
	BusinessID string `json:"business_id"`
	ProviderID string `json:"provider_id"`
}
