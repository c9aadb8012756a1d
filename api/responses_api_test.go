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

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/leadgrid/leadgrid/database/mocks"
	"github.com/leadgrid/leadgrid/model"
)

func pendingAPIResponse(id, providerID string) *model.Response {
	return &model.Response{
		ResponseID:      id,
		LeadID:          "led_1",
		ProviderID:      providerID,
		BusinessID:      "biz_a",
		MatchedKeywords: []string{"plumber"},
		DistanceMeters:  1200,
		State:           model.ResponseStatePending,
		ExpiresAt:       time.Now().Add(12 * time.Hour),
		CreatedAt:       time.Now(),
	}
}

func mockLeadRefresh(datasource *mocks.MockDataSource) {
	datasource.On("GetLeadByID", mock.Anything, "led_1").Return(&model.Lead{
		LeadID:     "led_1",
		SeekerID:   "idt_seeker",
		SearchText: "need a plumber",
		Status:     model.LeadStatusPending,
		CreatedAt:  time.Now(),
	}, nil)
}

func TestGetResponseEndpoint(t *testing.T) {
	router, datasource := setupRouter(t)
	mockIdentity(datasource, "idt_provider", model.RoleProvider)

	datasource.On("GetResponseByID", mock.Anything, "rsp_1").
		Return(pendingAPIResponse("rsp_1", "idt_provider"), nil)

	var response model.Response
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewBuffer(nil),
		Router:   router,
		Response: &response,
		Method:   http.MethodGet,
		Route:    "/responses/rsp_1",
		Header:   map[string]string{"X-Identity-Id": "idt_provider"},
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "rsp_1", response.ResponseID)
	assert.Equal(t, model.ResponseStatePending, response.State)
}

func TestRejectResponseEndpoint(t *testing.T) {
	router, datasource := setupRouter(t)
	mockIdentity(datasource, "idt_provider", model.RoleProvider)
	mockLeadRefresh(datasource)

	rsp := pendingAPIResponse("rsp_1", "idt_provider")
	rejected := *rsp
	rejected.State = model.ResponseStateRejected

	datasource.On("GetResponseByID", mock.Anything, "rsp_1").Return(rsp, nil)
	datasource.On("TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateRejected, "too far out").
		Return(&rejected, nil)

	payload, _ := json.Marshal(map[string]interface{}{"notes": "too far out"})
	var response model.Response
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewBuffer(payload),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/responses/rsp_1/reject",
		Header:   map[string]string{"X-Identity-Id": "idt_provider"},
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.ResponseStateRejected, response.State)
}

func TestRejectResponseEmptyBody(t *testing.T) {
	router, datasource := setupRouter(t)
	mockIdentity(datasource, "idt_provider", model.RoleProvider)
	mockLeadRefresh(datasource)

	rsp := pendingAPIResponse("rsp_1", "idt_provider")
	rejected := *rsp
	rejected.State = model.ResponseStateRejected

	datasource.On("GetResponseByID", mock.Anything, "rsp_1").Return(rsp, nil)
	datasource.On("TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateRejected, "").
		Return(&rejected, nil)

	var response model.Response
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewBuffer(nil),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/responses/rsp_1/reject",
		Header:   map[string]string{"X-Identity-Id": "idt_provider"},
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, model.ResponseStateRejected, response.State)
}

func TestRejectResponseWrongProvider(t *testing.T) {
	router, datasource := setupRouter(t)
	mockIdentity(datasource, "idt_other", model.RoleProvider)

	datasource.On("GetResponseByID", mock.Anything, "rsp_1").
		Return(pendingAPIResponse("rsp_1", "idt_provider"), nil)

	payload, _ := json.Marshal(map[string]interface{}{"notes": ""})
	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewBuffer(payload),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/responses/rsp_1/reject",
		Header:   map[string]string{"X-Identity-Id": "idt_other"},
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestCreatePaymentOrderEndpoint(t *testing.T) {
	router, datasource := setupRouter(t)
	mockIdentity(datasource, "idt_provider", model.RoleProvider)

	datasource.On("GetResponseByID", mock.Anything, "rsp_1").
		Return(pendingAPIResponse("rsp_1", "idt_provider"), nil)
	datasource.On("GetActivePaymentForResponse", mock.Anything, "rsp_1").
		Return(&model.Payment{
			PaymentID:  "pay_1",
			ResponseID: "rsp_1",
			ProviderID: "idt_provider",
			OrderRef:   "order_abc",
			Amount:     500,
			Currency:   "INR",
			State:      model.PaymentStateCreated,
		}, nil)

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewBuffer(nil),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/responses/rsp_1/accept/order",
		Header:   map[string]string{"X-Identity-Id": "idt_provider"},
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "order_abc", response["order_ref"])
	assert.Equal(t, "key_test", response["key_id"])
}

func TestVerifyPaymentEndpoint(t *testing.T) {
	router, datasource := setupRouter(t)
	mockIdentity(datasource, "idt_provider", model.RoleProvider)
	mockIdentity(datasource, "idt_seeker", model.RoleSeeker)
	mockLeadRefresh(datasource)

	rsp := pendingAPIResponse("rsp_1", "idt_provider")
	accepted := *rsp
	accepted.State = model.ResponseStateAccepted

	datasource.On("GetResponseByID", mock.Anything, "rsp_1").Return(rsp, nil)
	datasource.On("GetActivePaymentForResponse", mock.Anything, "rsp_1").
		Return(&model.Payment{
			PaymentID:  "pay_1",
			ResponseID: "rsp_1",
			ProviderID: "idt_provider",
			OrderRef:   "order_abc",
			Amount:     500,
			Currency:   "INR",
			State:      model.PaymentStateCreated,
		}, nil)
	datasource.On("UpdatePaymentState", mock.Anything, "pay_1", model.PaymentStateSuccess, "payment_xyz", mock.Anything).
		Return(nil)
	datasource.On("TransitionResponse", mock.Anything, "rsp_1", model.ResponseStateAccepted, "").
		Return(&accepted, nil)

	payload, _ := json.Marshal(map[string]interface{}{
		"order_ref":   "order_abc",
		"payment_ref": "payment_xyz",
		"signature":   model.SignPayment("order_abc", "payment_xyz", "secret_test"),
	})
	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewBuffer(payload),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/responses/rsp_1/accept/verify",
		Header:   map[string]string{"X-Identity-Id": "idt_provider"},
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestVerifyPaymentBadSignature(t *testing.T) {
	router, datasource := setupRouter(t)
	mockIdentity(datasource, "idt_provider", model.RoleProvider)

	datasource.On("GetResponseByID", mock.Anything, "rsp_1").
		Return(pendingAPIResponse("rsp_1", "idt_provider"), nil)
	datasource.On("GetActivePaymentForResponse", mock.Anything, "rsp_1").
		Return(&model.Payment{
			PaymentID:  "pay_1",
			ResponseID: "rsp_1",
			ProviderID: "idt_provider",
			OrderRef:   "order_abc",
			State:      model.PaymentStateCreated,
		}, nil)
	datasource.On("UpdatePaymentState", mock.Anything, "pay_1", model.PaymentStateFailed, "payment_xyz", mock.Anything).
		Return(nil)

	payload, _ := json.Marshal(map[string]interface{}{
		"order_ref":   "order_abc",
		"payment_ref": "payment_xyz",
		"signature":   "not-the-signature",
	})
	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewBuffer(payload),
		Router:   router,
		Response: &response,
		Method:   http.MethodPost,
		Route:    "/responses/rsp_1/accept/verify",
		Header:   map[string]string{"X-Identity-Id": "idt_provider"},
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
