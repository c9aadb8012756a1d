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
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/leadgrid/leadgrid/internal/search"
)

// ProviderChannel returns the realtime channel a provider's devices subscribe
// to for new-lead pushes.
func ProviderChannel(providerID string) string {
	return fmt.Sprintf("provider_%s", providerID)
}

// DispatchNewLead is the worker handler for the new-lead queue. It publishes
// the event on the provider's realtime channel and mirrors it to the
// outbound webhook. Either leg failing alone does not fail the task; the
// provider still has the response row and can poll it.
func (l *Leadgrid) DispatchNewLead(ctx context.Context, task *asynq.Task) error {
	var event NewLeadEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		logrus.Errorf("failed to unmarshal new-lead event: %v", err)
		return err
	}
	if event.Response == nil {
		logrus.Error("new-lead event missing response record")
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	channel := ProviderChannel(event.Response.ProviderID)
	if err := l.redis.Publish(ctx, channel, payload).Err(); err != nil {
		logrus.Errorf("failed to publish new lead to %s: %v", channel, err)
	} else {
		logrus.Infof("published new lead %s to %s", event.Response.LeadID, channel)
	}

	if err := SendWebhook(NewWebhook{
		Event:   getEventFromState(event.Response.State),
		Payload: event,
	}); err != nil {
		logrus.Errorf("failed to send new-lead webhook for %s: %v", event.Response.ResponseID, err)
	}

	return nil
}

// ProcessResponseExpiryTask is the worker handler for the delayed expiry
// queue. The payload is the bare response ID.
func (l *Leadgrid) ProcessResponseExpiryTask(ctx context.Context, task *asynq.Task) error {
	var responseID string
	if err := json.Unmarshal(task.Payload(), &responseID); err != nil {
		logrus.Errorf("failed to unmarshal expiry payload: %v", err)
		return err
	}
	return l.ProcessExpiry(ctx, responseID)
}

// ProcessIndexTask is the worker handler for the search index queue. The
// payload carries the collection name and the document to upsert.
func (l *Leadgrid) ProcessIndexTask(ctx context.Context, task *asynq.Task) error {
	var payload search.NotificationPayload
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(task.Payload(), &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw["collection"], &payload.Table); err != nil {
		return err
	}
	if err := json.Unmarshal(raw["payload"], &payload.Data); err != nil {
		return err
	}
	return l.search.HandleNotification(ctx, payload.Table, payload.Data)
}
