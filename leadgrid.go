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
	"embed"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/typesense/typesense-go/typesense/api"
	"go.opentelemetry.io/otel"

	"github.com/leadgrid/leadgrid/config"
	"github.com/leadgrid/leadgrid/database"
	redis_db "github.com/leadgrid/leadgrid/internal/redis-db"
	"github.com/leadgrid/leadgrid/internal/search"
)

var tracer = otel.Tracer("leadgrid.engine")

//go:embed sql/*.sql
var SQLFiles embed.FS

// Leadgrid is the lead matching and response lifecycle engine. It owns the
// fan-out pipeline from a seeker's search to the per-provider response
// records, and the payment-gated accept / free reject paths on top of them.
type Leadgrid struct {
	queue      *Queue
	search     *search.TypesenseClient
	redis      redis.UniversalClient
	datasource database.IDataSource
}

// NewLeadgrid initializes the engine with the provided datasource. It fetches
// the configuration and wires the Redis client, task queue and search client.
func NewLeadgrid(db database.IDataSource) (*Leadgrid, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)}, configuration.Redis.SkipTLSVerify)
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)
	newSearch := search.NewTypesenseClient(configuration.TypeSenseKey, []string{configuration.TypeSense.Dns})

	return &Leadgrid{
		datasource: db,
		queue:      newQueue,
		redis:      redisClient.Client(),
		search:     newSearch,
	}, nil
}

// Search performs a search on the specified collection using the provided query parameters.
func (l *Leadgrid) Search(collection string, query *api.SearchCollectionParams) (interface{}, error) {
	return l.search.Search(context.Background(), collection, query)
}

// MultiSearch performs a multi-search operation across collections.
func (l *Leadgrid) MultiSearch(searchParams *api.MultiSearchSearchesParameter) (*api.MultiSearchResult, error) {
	return l.search.MultiSearch(context.Background(), *searchParams)
}

// SearchClient exposes the underlying search client for reindex wiring.
func (l *Leadgrid) SearchClient() *search.TypesenseClient {
	return l.search
}

// Datasource exposes the underlying datasource for reindex wiring.
func (l *Leadgrid) Datasource() database.IDataSource {
	return l.datasource
}
