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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/leadgrid/leadgrid/database/mocks"
	"github.com/leadgrid/leadgrid/internal/apierror"
	"github.com/leadgrid/leadgrid/model"
)

func pendingResponse(responseID, providerID string, expiresAt time.Time) *model.Response {
	return &model.Response{
		ResponseID:      responseID,
		LeadID:          "led_1",
		ProviderID:      providerID,
		BusinessID:      "biz_a",
		MatchedKeywords: []string{"Plumbing Services"},
		DistanceMeters:  1200,
		State:           model.ResponseStatePending,
		ExpiresAt:       expiresAt,
		CreatedAt:       time.Now().Add(-time.Hour),
	}
}

func resolvedCopy(rsp *model.Response, state string) *model.Response {
	updated := *rsp
	updated.State = state
	now := time.Now()
	updated.RespondedAt = &now
	return &updated
}

func mockLeadForIndexing(datasource *mocks.MockDataSource) {
	datasource.On("GetLeadByID", mock.Anything, "led_1").Return(&model.Lead{
		LeadID: "led_1", SeekerID: "idt_seeker", SearchText: "plumber",
		Status: model.LeadStatusPending, TotalNotified: 2, TotalPending: 1, TotalRejected: 1,
	}, nil)
}

func TestRejectResponse(t *testing.T) {
	service, datasource := newTestService(t)

	rsp := pendingResponse("rsp_1", "prov_1", time.Now().Add(time.Hour))
	datasource.On("GetResponseByID", mock.Anything, "rsp_1").Return(rsp, nil)
	datasource.On("TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateRejected, "too far out").
		Return(resolvedCopy(rsp, model.ResponseStateRejected), nil)
	mockLeadForIndexing(datasource)

	updated, err := service.RejectResponse(context.Background(), "rsp_1", "prov_1", "too far out")
	assert.NoError(t, err)
	assert.Equal(t, model.ResponseStateRejected, updated.State)
	assert.NotNil(t, updated.RespondedAt)

	datasource.AssertExpectations(t)
}

func TestRejectResponseWrongProvider(t *testing.T) {
	service, datasource := newTestService(t)

	rsp := pendingResponse("rsp_1", "prov_1", time.Now().Add(time.Hour))
	datasource.On("GetResponseByID", mock.Anything, "rsp_1").Return(rsp, nil)

	_, err := service.RejectResponse(context.Background(), "rsp_1", "prov_2", "")
	assert.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.ErrForbidden))

	datasource.AssertNotCalled(t, "TransitionResponse", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectResponseAlreadyResolved(t *testing.T) {
	service, datasource := newTestService(t)

	rsp := resolvedCopy(pendingResponse("rsp_1", "prov_1", time.Now().Add(time.Hour)), model.ResponseStateAccepted)
	datasource.On("GetResponseByID", mock.Anything, "rsp_1").Return(rsp, nil)
	datasource.On("TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateRejected, "").
		Return(nil, apierror.NewAPIError(apierror.ErrConflict, "Response already ACCEPTED", nil))

	_, err := service.RejectResponse(context.Background(), "rsp_1", "prov_1", "")
	assert.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.ErrConflict))
}

func TestRejectResponseAfterDeadlineExpires(t *testing.T) {
	service, datasource := newTestService(t)

	rsp := pendingResponse("rsp_1", "prov_1", time.Now().Add(-time.Minute))
	datasource.On("GetResponseByID", mock.Anything, "rsp_1").Return(rsp, nil)
	datasource.On("TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateExpired, "").
		Return(resolvedCopy(rsp, model.ResponseStateExpired), nil)
	mockLeadForIndexing(datasource)

	_, err := service.RejectResponse(context.Background(), "rsp_1", "prov_1", "")
	assert.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.ErrConflict))

	// The expiry transition, not the rejection, was applied.
	datasource.AssertCalled(t, "TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateExpired, "")
	datasource.AssertNotCalled(t, "TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateRejected, "")
}

func TestGetResponseLazyExpiry(t *testing.T) {
	service, datasource := newTestService(t)

	rsp := pendingResponse("rsp_1", "prov_1", time.Now().Add(-time.Minute))
	datasource.On("GetResponseByID", mock.Anything, "rsp_1").Return(rsp, nil)
	datasource.On("TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateExpired, "").
		Return(resolvedCopy(rsp, model.ResponseStateExpired), nil)
	mockLeadForIndexing(datasource)

	got, err := service.GetResponse(context.Background(), "rsp_1")
	assert.NoError(t, err)
	assert.Equal(t, model.ResponseStateExpired, got.State)
}

func TestGetResponseLazyExpiryLosesRace(t *testing.T) {
	service, datasource := newTestService(t)

	// Another worker expired it between the read and the write. The reader
	// still sees EXPIRED.
	rsp := pendingResponse("rsp_1", "prov_1", time.Now().Add(-time.Minute))
	datasource.On("GetResponseByID", mock.Anything, "rsp_1").Return(rsp, nil)
	datasource.On("TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateExpired, "").
		Return(nil, apierror.NewAPIError(apierror.ErrConflict, "Response already EXPIRED", nil))

	got, err := service.GetResponse(context.Background(), "rsp_1")
	assert.NoError(t, err)
	assert.Equal(t, model.ResponseStateExpired, got.State)
}

func TestProcessExpirySkipsResolved(t *testing.T) {
	service, datasource := newTestService(t)

	rsp := resolvedCopy(pendingResponse("rsp_1", "prov_1", time.Now().Add(-time.Minute)), model.ResponseStateAccepted)
	datasource.On("GetResponseByID", mock.Anything, "rsp_1").Return(rsp, nil)

	err := service.ProcessExpiry(context.Background(), "rsp_1")
	assert.NoError(t, err)
	datasource.AssertNotCalled(t, "TransitionResponse", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessExpiryMissingResponse(t *testing.T) {
	service, datasource := newTestService(t)

	datasource.On("GetResponseByID", mock.Anything, "rsp_missing").
		Return(nil, apierror.NewAPIError(apierror.ErrNotFound, "Response not found", nil))

	err := service.ProcessExpiry(context.Background(), "rsp_missing")
	assert.NoError(t, err)
}

func TestExpireDueResponsesSweep(t *testing.T) {
	service, datasource := newTestService(t)

	overdueA := pendingResponse("rsp_1", "prov_1", time.Now().Add(-2*time.Hour))
	overdueB := pendingResponse("rsp_2", "prov_2", time.Now().Add(-time.Hour))

	datasource.On("GetDueResponses", mock.Anything, mock.Anything, expirySweepBatch).
		Return([]*model.Response{overdueA, overdueB}, nil)
	datasource.On("TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateExpired, "").
		Return(resolvedCopy(overdueA, model.ResponseStateExpired), nil)
	// rsp_2 raced with its delayed task; the sweep tolerates the conflict.
	datasource.On("TransitionResponse", mock.Anything, "rsp_2", model.ResponseStateExpired, "").
		Return(nil, apierror.NewAPIError(apierror.ErrConflict, "Response already EXPIRED", nil))
	mockLeadForIndexing(datasource)

	expired, err := service.ExpireDueResponses(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, expired)

	// The swept expiry refreshes the lead index like any other resolution.
	datasource.AssertCalled(t, "GetLeadByID", mock.Anything, "led_1")
	datasource.AssertExpectations(t)
}
