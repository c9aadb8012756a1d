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
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/leadgrid/leadgrid/internal/apierror"
	redlock "github.com/leadgrid/leadgrid/internal/lock"
	"github.com/leadgrid/leadgrid/internal/search"
	"github.com/leadgrid/leadgrid/model"
)

const (
	// expirySweepBatch bounds one sweep pass so a backlog of overdue
	// responses cannot hold the lock indefinitely.
	expirySweepBatch = 500

	expirySweepLockKey = "leadgrid:expiry-sweep"
)

// RejectResponse declines a lead on behalf of a provider. Rejection is free
// and terminal. A pending response past its deadline expires instead, and the
// caller gets the same conflict a late rejection against any resolved
// response would get.
func (l *Leadgrid) RejectResponse(ctx context.Context, responseID, providerID, notes string) (*model.Response, error) {
	ctx, span := tracer.Start(ctx, "Rejecting response")
	defer span.End()

	rsp, err := l.datasource.GetResponseByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if rsp.ProviderID != providerID {
		return nil, apierror.NewAPIError(apierror.ErrForbidden, "Response belongs to another provider", nil)
	}

	if rsp.State == model.ResponseStatePending && rsp.IsExpired(time.Now()) {
		l.expireResponse(ctx, rsp.ResponseID)
		return nil, apierror.NewAPIError(apierror.ErrConflict, "Response already EXPIRED", nil)
	}

	updated, err := l.transitionWithRetry(ctx, responseID, model.ResponseStateRejected, notes)
	if err != nil {
		return nil, err
	}

	l.notifyResponseResolved(ctx, updated)
	return updated, nil
}

// GetResponse retrieves a response record, expiring it on read if its action
// window already lapsed.
func (l *Leadgrid) GetResponse(ctx context.Context, responseID string) (*model.Response, error) {
	rsp, err := l.datasource.GetResponseByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	return l.applyLazyExpiry(ctx, rsp), nil
}

// GetProviderResponses lists a provider's responses, newest first.
func (l *Leadgrid) GetProviderResponses(ctx context.Context, providerID string, limit, offset int) ([]*model.Response, error) {
	responses, err := l.datasource.GetResponsesByProvider(ctx, providerID, limit, offset)
	if err != nil {
		return nil, err
	}
	for i, rsp := range responses {
		responses[i] = l.applyLazyExpiry(ctx, rsp)
	}
	return responses, nil
}

// ProcessExpiry resolves a single overdue response. It is the handler behind
// the delayed expiry task; a response that already resolved is not an error.
func (l *Leadgrid) ProcessExpiry(ctx context.Context, responseID string) error {
	rsp, err := l.datasource.GetResponseByID(ctx, responseID)
	if err != nil {
		if apierror.Is(err, apierror.ErrNotFound) {
			return nil
		}
		return err
	}
	if rsp.State != model.ResponseStatePending {
		return nil
	}
	if !rsp.IsExpired(time.Now()) {
		// The deadline moved or the task fired early. Nothing to do.
		return nil
	}

	l.expireResponse(ctx, rsp.ResponseID)
	return nil
}

// ExpireDueResponses sweeps pending responses past their deadline. A redis
// lock keeps concurrent workers from double-sweeping; losing the lock race is
// not an error. Returns the number of responses expired.
func (l *Leadgrid) ExpireDueResponses(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Sweeping expired responses")
	defer span.End()

	locker := redlock.NewLocker(l.redis, expirySweepLockKey)
	acquired, err := locker.Lock(ctx, 2*time.Minute)
	if err != nil {
		return 0, err
	}
	if !acquired {
		logrus.Info("expiry sweep already running elsewhere")
		return 0, nil
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.Errorf("failed to release expiry sweep lock: %v", err)
		}
	}()

	due, err := l.datasource.GetDueResponses(ctx, time.Now(), expirySweepBatch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, rsp := range due {
		// Same path as the delayed task and the lazy read, so sweep
		// expiries emit the webhook and refresh the index too.
		if l.expireResponse(ctx, rsp.ResponseID) != nil {
			expired++
		}
	}

	if expired > 0 {
		logrus.Infof("expiry sweep resolved %d overdue responses", expired)
	}
	return expired, nil
}

// applyLazyExpiry expires a pending response whose deadline passed before it
// is handed to a reader. The returned record reflects the expired state even
// when the write loses a race, since whoever won also left it terminal.
func (l *Leadgrid) applyLazyExpiry(ctx context.Context, rsp *model.Response) *model.Response {
	if rsp.State != model.ResponseStatePending || !rsp.IsExpired(time.Now()) {
		return rsp
	}
	updated := l.expireResponse(ctx, rsp.ResponseID)
	if updated != nil {
		return updated
	}
	rsp.State = model.ResponseStateExpired
	return rsp
}

// expireResponse transitions a response to EXPIRED, tolerating the conflict
// of someone else getting there first.
func (l *Leadgrid) expireResponse(ctx context.Context, responseID string) *model.Response {
	updated, err := l.transitionWithRetry(ctx, responseID, model.ResponseStateExpired, "")
	if err != nil {
		if !apierror.Is(err, apierror.ErrConflict) {
			logrus.Errorf("failed to expire response %s: %v", responseID, err)
		}
		return nil
	}
	l.notifyResponseResolved(ctx, updated)
	return updated
}

// transitionWithRetry wraps the guarded transition with a backoff retry on
// transient contention (deadlocks, serialization failures). Conflicts and
// other terminal errors surface immediately.
func (l *Leadgrid) transitionWithRetry(ctx context.Context, responseID, target, notes string) (*model.Response, error) {
	var updated *model.Response

	operation := func() error {
		var err error
		updated, err = l.datasource.TransitionResponse(ctx, responseID, target, notes)
		if err != nil {
			if isRetryableDBError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return updated, nil
}

// isRetryableDBError reports whether an error is a transient Postgres
// condition worth retrying: deadlock detected or serialization failure.
func isRetryableDBError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	var apiErr apierror.APIError
	if errors.As(err, &apiErr) && apiErr.Details != nil {
		if inner, ok := apiErr.Details.(error); ok {
			return isRetryableDBError(inner)
		}
	}
	return false
}

// notifyResponseResolved pushes the terminal state to the webhook channel and
// refreshes the search index. Best-effort on both counts.
func (l *Leadgrid) notifyResponseResolved(ctx context.Context, rsp *model.Response) {
	if err := SendWebhook(NewWebhook{
		Event:   getEventFromState(rsp.State),
		Payload: rsp,
	}); err != nil {
		logrus.Errorf("failed to send webhook for response %s: %v", rsp.ResponseID, err)
	}
	if err := l.queue.queueIndexData(rsp.ResponseID, search.CollectionResponses, rsp); err != nil {
		logrus.Errorf("failed to queue response for indexing: %v", err)
	}

	lead, err := l.datasource.GetLeadByID(ctx, rsp.LeadID)
	if err != nil {
		logrus.Errorf("failed to refresh lead index for %s: %v", rsp.LeadID, err)
		return
	}
	if err := l.queue.queueIndexData(lead.LeadID, search.CollectionLeads, lead); err != nil {
		logrus.Errorf("failed to queue lead for indexing: %v", err)
	}
}
