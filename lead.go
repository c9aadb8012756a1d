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

package leadgrid

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/leadgrid/leadgrid/config"
	"github.com/leadgrid/leadgrid/database"
	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/internal/search"
	"github.com/leadgrid/leadgrid/model"
)

// providerCandidate accumulates the matching state for one provider during a
// fan-out: every keyword that matched across their businesses, and the
// nearest matching business as the representative for distance.
type providerCandidate struct {
	business *model.Business
	distance float64
	keywords map[string]bool
}

// SubmitLead runs the full fan-out pipeline for a seeker's search: keyword
// matching against the registered keyword store, geographic filtering of
// approved businesses, intersection of the two, and atomic persistence of the
// lead with one response record per matching provider. Notification and
// indexing happen after commit and are best-effort.
func (l *Leadgrid) SubmitLead(ctx context.Context, lead *model.Lead) (*model.Lead, error) {
	ctx, span := tracer.Start(ctx, "Submitting lead")
	defer span.End()

	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	if err := validateLead(lead); err != nil {
		return nil, err
	}

	if lead.RadiusMeters <= 0 {
		lead.RadiusMeters = cfg.Matching.DefaultRadiusMeters
	}
	if lead.LeadID == "" {
		lead.LeadID = database.GenerateUUIDWithSuffix("led")
	}
	lead.Status = model.LeadStatusPending
	lead.CreatedAt = time.Now()

	candidates, matched, err := l.matchProviders(ctx, lead)
	if err != nil {
		return nil, err
	}
	lead.MatchedKeywords = matched

	expiresAt := lead.CreatedAt.Add(time.Duration(cfg.Matching.ResponseTTLHours) * time.Hour)
	responses := buildResponses(lead, candidates, expiresAt)

	lead.TotalNotified = len(responses)
	lead.TotalPending = len(responses)
	if len(responses) == 0 {
		// Nothing matched; record the lead as cancelled so the seeker can see
		// the search happened and widen it.
		lead.Status = model.LeadStatusCancelled
	}

	persisted, err := l.datasource.CreateLeadWithResponses(ctx, lead, responses)
	if err != nil {
		return nil, err
	}

	l.dispatchResponses(ctx, persisted, responses)
	l.indexLeadData(persisted, responses)

	return persisted, nil
}

// matchProviders runs the keyword matcher and the geographic filter
// concurrently and intersects the results per provider.
func (l *Leadgrid) matchProviders(ctx context.Context, lead *model.Lead) (map[string]*providerCandidate, []string, error) {
	pattern := TokenPattern(lead.SearchText)
	if pattern == "" {
		return map[string]*providerCandidate{}, nil, nil
	}

	var (
		wg          sync.WaitGroup
		keywordErr  error
		businessErr error
		matches     []*model.KeywordMatch
		businesses  []*model.Business
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		matches, keywordErr = l.datasource.FindMatchingKeywords(ctx, pattern)
	}()
	go func() {
		defer wg.Done()
		businesses, businessErr = l.datasource.GetBusinessesWithinRadius(ctx, lead.Latitude, lead.Longitude, lead.RadiusMeters)
	}()
	wg.Wait()

	if keywordErr != nil {
		return nil, nil, keywordErr
	}
	if businessErr != nil {
		return nil, nil, businessErr
	}

	withinRadius := make(map[string]*model.Business, len(businesses))
	for _, business := range businesses {
		withinRadius[business.BusinessID] = business
	}

	candidates := make(map[string]*providerCandidate)
	matchedSet := make(map[string]bool)
	for _, match := range matches {
		business, ok := withinRadius[match.BusinessID]
		if !ok {
			continue
		}
		matchedSet[match.Keyword] = true

		distance := model.HaversineMeters(lead.Latitude, lead.Longitude, business.Latitude, business.Longitude)
		candidate, ok := candidates[match.ProviderID]
		if !ok {
			candidate = &providerCandidate{
				business: business,
				distance: distance,
				keywords: make(map[string]bool),
			}
			candidates[match.ProviderID] = candidate
		}
		// A provider with several matching businesses is represented by the
		// nearest one; they still get a single response.
		if distance < candidate.distance {
			candidate.business = business
			candidate.distance = distance
		}
		candidate.keywords[match.Keyword] = true
	}

	return candidates, sortedKeywordSet(matchedSet), nil
}

// buildResponses materializes one pending response record per matching
// provider, ordered by provider ID so fan-out persistence is deterministic.
func buildResponses(lead *model.Lead, candidates map[string]*providerCandidate, expiresAt time.Time) []*model.Response {
	providerIDs := make([]string, 0, len(candidates))
	for providerID := range candidates {
		providerIDs = append(providerIDs, providerID)
	}
	sort.Strings(providerIDs)

	responses := make([]*model.Response, 0, len(candidates))
	for _, providerID := range providerIDs {
		candidate := candidates[providerID]
		responses = append(responses, &model.Response{
			ResponseID:      database.GenerateUUIDWithSuffix("rsp"),
			LeadID:          lead.LeadID,
			ProviderID:      providerID,
			BusinessID:      candidate.business.BusinessID,
			MatchedKeywords: sortedKeywordSet(candidate.keywords),
			DistanceMeters:  candidate.distance,
			State:           model.ResponseStatePending,
			ExpiresAt:       expiresAt,
			CreatedAt:       lead.CreatedAt,
		})
	}
	return responses
}

// dispatchResponses pushes a new-lead event and schedules the expiry task for
// every response in the batch. The lead is already committed; a failed
// enqueue here is logged and left to the expiry sweep and reindex to heal.
func (l *Leadgrid) dispatchResponses(ctx context.Context, lead *model.Lead, responses []*model.Response) {
	if len(responses) == 0 {
		return
	}

	summary := l.leadSummary(ctx, lead, false)
	for _, rsp := range responses {
		event := &NewLeadEvent{Response: rsp, Lead: summary}
		if err := l.queue.Enqueue(ctx, event); err != nil {
			logrus.Errorf("failed to enqueue new-lead event for %s: %v", rsp.ResponseID, err)
		}
		if err := l.queue.queueResponseExpiry(rsp.ResponseID, rsp.ExpiresAt); err != nil {
			logrus.Errorf("failed to schedule expiry for %s: %v", rsp.ResponseID, err)
		}
	}
}

// indexLeadData queues the lead and its responses for search indexing.
func (l *Leadgrid) indexLeadData(lead *model.Lead, responses []*model.Response) {
	if err := l.queue.queueIndexData(lead.LeadID, search.CollectionLeads, lead); err != nil {
		logrus.Errorf("failed to queue lead for indexing: %v", err)
	}
	for _, rsp := range responses {
		if err := l.queue.queueIndexData(rsp.ResponseID, search.CollectionResponses, rsp); err != nil {
			logrus.Errorf("failed to queue response for indexing: %v", err)
		}
	}
}

// leadSummary builds the denormalized lead view pushed to providers. Seeker
// contact fields are only attached once the caller has paid for the lead.
func (l *Leadgrid) leadSummary(ctx context.Context, lead *model.Lead, revealContact bool) *model.LeadSummary {
	summary := &model.LeadSummary{
		LeadID:      lead.LeadID,
		SearchText:  lead.SearchText,
		Description: lead.Description,
		Longitude:   lead.Longitude,
		Latitude:    lead.Latitude,
		Address:     lead.Address,
		City:        lead.City,
	}

	seeker, err := l.datasource.GetIdentityByID(ctx, lead.SeekerID)
	if err != nil {
		logrus.Errorf("failed to resolve seeker %s for lead summary: %v", lead.SeekerID, err)
		return summary
	}

	summary.SeekerName = seeker.DisplayName()
	if revealContact {
		summary.SeekerPhone = seeker.PhoneNumber
		summary.SeekerEmail = seeker.EmailAddress
	}
	return summary
}

// GetLead retrieves a lead aggregate by ID. Only the seeker who submitted
// the lead may read it.
func (l *Leadgrid) GetLead(ctx context.Context, id, seekerID string) (*model.Lead, error) {
	lead, err := l.datasource.GetLeadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.SeekerID != seekerID {
		return nil, apierror.NewAPIError(apierror.ErrForbidden, "Lead belongs to another seeker", nil)
	}
	return lead, nil
}

// GetLeadsBySeeker lists a seeker's leads, newest first.
func (l *Leadgrid) GetLeadsBySeeker(ctx context.Context, seekerID string, limit, offset int) ([]*model.Lead, error) {
	return l.datasource.GetLeadsBySeeker(ctx, seekerID, limit, offset)
}

// GetLeadResponses returns the responses fanned out for a lead, nearest
// first. Only the owning seeker may read them. Pending responses past their
// deadline are expired on read so the seeker never sees an
// actionable-looking response that no provider can act on anymore.
func (l *Leadgrid) GetLeadResponses(ctx context.Context, leadID, seekerID string) ([]*model.Response, error) {
	if _, err := l.GetLead(ctx, leadID, seekerID); err != nil {
		return nil, err
	}

	responses, err := l.datasource.GetLeadResponses(ctx, leadID)
	if err != nil {
		return nil, err
	}
	for i, rsp := range responses {
		responses[i] = l.applyLazyExpiry(ctx, rsp)
	}
	return responses, nil
}

func validateLead(lead *model.Lead) error {
	if lead.SeekerID == "" {
		return apierror.NewAPIError(apierror.ErrBadRequest, "Seeker ID is required", nil)
	}
	if lead.SearchText == "" {
		return apierror.NewAPIError(apierror.ErrBadRequest, "Search text is required", nil)
	}
	if lead.Latitude < -90 || lead.Latitude > 90 {
		return apierror.NewAPIError(apierror.ErrBadRequest, "Latitude must be between -90 and 90", nil)
	}
	if lead.Longitude < -180 || lead.Longitude > 180 {
		return apierror.NewAPIError(apierror.ErrBadRequest, "Longitude must be between -180 and 180", nil)
	}
	return nil
}
