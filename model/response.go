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
	"fmt"
	"time"
)

const (
	ResponseStatePending  = "PENDING"
	ResponseStateAccepted = "ACCEPTED"
	ResponseStateRejected = "REJECTED"
	ResponseStateExpired  = "EXPIRED"
)

// Response is one provider's record against a lead. A provider receives at
// most one response per lead regardless of how many of their businesses or
// keywords matched; matched keywords from all of them accumulate here.
type Response struct {
	ID              int64      `json:"-"`
	ResponseID      string     `json:"response_id"`
	LeadID          string     `json:"lead_id"`
	ProviderID      string     `json:"provider_id"`
	BusinessID      string     `json:"business_id"`
	MatchedKeywords []string   `json:"matched_keywords"`
	DistanceMeters  float64    `json:"distance_meters"`
	State           string     `json:"state"`
	Notes           string     `json:"notes,omitempty"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsTerminal reports whether the response has left the pending state.
// Accepted, rejected and expired are absorbing.
func (r *Response) IsTerminal() bool {
	return r.State != ResponseStatePending
}

// IsExpired reports whether the response's action window has lapsed. Expiry
// is evaluated lazily; a pending row past its window is treated as expired on
// read even before the sweep has rewritten it.
func (r *Response) IsExpired(now time.Time) bool {
	return r.State == ResponseStatePending && now.After(r.ExpiresAt)
}

// CanTransitionTo validates a requested state change. Pending is the only
// state other states are reachable from.
func (r *Response) CanTransitionTo(target string) error {
	switch target {
	case ResponseStateAccepted, ResponseStateRejected, ResponseStateExpired:
	default:
		return fmt.Errorf("invalid response state %q", target)
	}
	if r.IsTerminal() {
		return fmt.Errorf("response %s is already %s", r.ResponseID, r.State)
	}
	return nil
}

func (r *Response) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
