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

// SubmitLead is the request body for POST /leads. The seeker id comes from
// the resolved identity, not the body.
type SubmitLead struct {
	SearchText   string                 `json:"search_text"`
	Description  string                 `json:"description"`
	Longitude    float64                `json:"longitude"`
	Latitude     float64                `json:"latitude"`
	Address      string                 `json:"address"`
	City         string                 `json:"city"`
	State        string                 `json:"state"`
	Country      string                 `json:"country"`
	RadiusMeters int                    `json:"radius_meters"`
	MetaData     map[string]interface{} `json:"meta_data"`
}
