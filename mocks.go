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

	"github.com/leadgrid/leadgrid/model"
)

type MockLeadgrid struct {
	Leadgrid
	mockGetResponse func(string) (*model.Response, error)
}

func (m *MockLeadgrid) GetResponse(ctx context.Context, id string) (*model.Response, error) {
	if m.mockGetResponse != nil {
		return m.mockGetResponse(id)
	}
	return m.Leadgrid.GetResponse(ctx, id)
}
