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
	"encoding/json"
	"time"
)

const (
	LeadStatusPending    = "PENDING"
	LeadStatusInProgress = "IN_PROGRESS"
	LeadStatusCompleted  = "COMPLETED"
	LeadStatusCancelled  = "CANCELLED"
)

// Lead is the seeker-facing request record. It owns the rollup counters that
// track how its responses have been answered. TotalNotified must always equal
// TotalAccepted + TotalRejected + TotalPending once fan-out has committed.
type Lead struct {
	ID              int64                  `json:"-"`
	LeadID          string                 `json:"lead_id"`
	SeekerID        string                 `json:"seeker_id"`
	SearchText      string                 `json:"search_text"`
	Description     string                 `json:"description,omitempty"`
	Longitude       float64                `json:"longitude"`
	Latitude        float64                `json:"latitude"`
	Address         string                 `json:"address,omitempty"`
	City            string                 `json:"city,omitempty"`
	State           string                 `json:"state,omitempty"`
	Country         string                 `json:"country,omitempty"`
	RadiusMeters    int                    `json:"radius_meters"`
	MatchedKeywords []string               `json:"matched_keywords"`
	Status          string                 `json:"status"`
	TotalNotified   int                    `json:"total_notified"`
	TotalAccepted   int                    `json:"total_accepted"`
	TotalRejected   int                    `json:"total_rejected"`
	TotalPending    int                    `json:"total_pending"`
	Version         int                    `json:"-"`
	CreatedAt       time.Time              `json:"created_at"`
	MetaData        map[string]interface{} `json:"meta_data,omitempty"`
}

// CountersConsistent reports whether the rollup counters still satisfy the
// notified = accepted + rejected + pending invariant.
func (l *Lead) CountersConsistent() bool {
	return l.TotalNotified == l.TotalAccepted+l.TotalRejected+l.TotalPending
}

func (l *Lead) ToJSON() ([]byte, error) {
	return json.Marshal(l)
}

// LeadSummary carries the non-sensitive lead fields pushed to providers
// alongside a new response. Seeker contact fields come from the identity
// store, not from the lead row itself.
type LeadSummary struct {
	LeadID      string  `json:"lead_id"`
	SearchText  string  `json:"search_text"`
	Description string  `json:"description,omitempty"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	Address     string  `json:"address,omitempty"`
	City        string  `json:"city,omitempty"`
	SeekerName  string  `json:"seeker_name,omitempty"`
	SeekerPhone string  `json:"seeker_phone,omitempty"`
	SeekerEmail string  `json:"seeker_email,omitempty"`
}
