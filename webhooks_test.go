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
	"net/http"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/leadgrid/leadgrid/config"
	"github.com/leadgrid/leadgrid/model"
)

func TestGetEventFromState(t *testing.T) {
	tests := []struct {
		state string
		event string
	}{
		{model.ResponseStatePending, "response.created"},
		{model.ResponseStateAccepted, "response.accepted"},
		{model.ResponseStateRejected, "response.rejected"},
		{model.ResponseStateExpired, "response.expired"},
		{"pending", "response.created"},
		{"GARBAGE", "response.unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.event, getEventFromState(tt.state))
	}
}

func TestProcessWebhookDeliversPayload(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	cfg := &config.Configuration{}
	cfg.Notification.Webhook.Url = "http://example.com/webhooks"
	cfg.Notification.Webhook.Headers = map[string]string{"X-Signature": "sig_test"}
	config.MockConfig(cfg)

	var gotEvent string
	var gotSignature string
	httpmock.RegisterResponder("POST", "http://example.com/webhooks",
		func(req *http.Request) (*http.Response, error) {
			gotSignature = req.Header.Get("X-Signature")
			var body NewWebhook
			_ = json.NewDecoder(req.Body).Decode(&body)
			gotEvent = body.Event
			return httpmock.NewJsonResponse(200, map[string]string{"status": "received"})
		})

	payload, err := json.Marshal(NewWebhook{
		Event:   "response.accepted",
		Payload: map[string]interface{}{"response_id": "rsp_1"},
	})
	assert.NoError(t, err)

	task := asynq.NewTask("new:webhook", payload)
	err = ProcessWebhook(context.Background(), task)
	assert.NoError(t, err)
	assert.Equal(t, "response.accepted", gotEvent)
	assert.Equal(t, "sig_test", gotSignature)
}

func TestProcessWebhookSwallowsServerErrors(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	cfg := &config.Configuration{}
	cfg.Notification.Webhook.Url = "http://example.com/webhooks"
	config.MockConfig(cfg)

	httpmock.RegisterResponder("POST", "http://example.com/webhooks",
		httpmock.NewStringResponder(500, "upstream down"))

	payload, _ := json.Marshal(NewWebhook{Event: "response.created"})
	err := ProcessWebhook(context.Background(), asynq.NewTask("new:webhook", payload))
	assert.NoError(t, err)
}

func TestSendWebhookSkipsWhenUnconfigured(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	err := SendWebhook(NewWebhook{Event: "response.created"})
	assert.NoError(t, err)
}
