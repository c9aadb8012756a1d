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

package search

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/leadgrid/leadgrid/database"
)

// ReindexProgress tracks the progress of a reindex operation.
type ReindexProgress struct {
	Status           string     `json:"status"` // "in_progress", "completed", "failed"
	Phase            string     `json:"phase"`  // "drop_collections", "indexing_leads", etc.
	TotalRecords     int64      `json:"total_records"`
	ProcessedRecords int64      `json:"processed_records"`
	Errors           []string   `json:"errors,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// ReindexConfig holds configuration for reindexing.
type ReindexConfig struct {
	BatchSize int
}

// ReindexService rebuilds the search collections from the source of truth.
type ReindexService struct {
	client     *TypesenseClient
	datasource database.IDataSource
	config     ReindexConfig
	progress   *ReindexProgress
	mu         sync.RWMutex
}

// NewReindexService creates a new ReindexService instance.
func NewReindexService(client *TypesenseClient, datasource database.IDataSource, config ReindexConfig) *ReindexService {
	if config.BatchSize <= 0 {
		config.BatchSize = 1000
	}
	return &ReindexService{
		client:     client,
		datasource: datasource,
		config:     config,
		progress: &ReindexProgress{
			Status: "pending",
		},
	}
}

// GetProgress returns the current progress of the reindex operation.
func (r *ReindexService) GetProgress() ReindexProgress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.progress
}

func (r *ReindexService) updateProgress(phase string, processed int64, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.Phase = phase
	r.progress.ProcessedRecords = processed
	r.progress.TotalRecords = total
}

func (r *ReindexService) addError(err string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.Errors = append(r.progress.Errors, err)
}

// StartReindex performs a complete reindex of all data.
// It drops all collections, recreates them, and indexes data in order:
// identities -> businesses -> leads -> responses
func (r *ReindexService) StartReindex(ctx context.Context) (*ReindexProgress, error) {
	r.mu.Lock()
	r.progress = &ReindexProgress{
		Status:    "in_progress",
		Phase:     "starting",
		StartedAt: time.Now(),
	}
	r.mu.Unlock()

	logrus.Info("Starting reindex operation")

	if err := r.dropCollections(ctx); err != nil {
		return r.failWithError(err, "drop_collections")
	}

	if err := r.createCollections(ctx); err != nil {
		return r.failWithError(err, "create_collections")
	}

	if err := r.indexIdentities(ctx); err != nil {
		return r.failWithError(err, "indexing_identities")
	}

	if err := r.indexBusinesses(ctx); err != nil {
		return r.failWithError(err, "indexing_businesses")
	}

	if err := r.indexLeads(ctx); err != nil {
		return r.failWithError(err, "indexing_leads")
	}

	if err := r.indexResponses(ctx); err != nil {
		return r.failWithError(err, "indexing_responses")
	}

	r.mu.Lock()
	now := time.Now()
	r.progress.Status = "completed"
	r.progress.Phase = "done"
	r.progress.CompletedAt = &now
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"total_records":     r.progress.TotalRecords,
		"processed_records": r.progress.ProcessedRecords,
		"duration":          time.Since(r.progress.StartedAt).String(),
	}).Info("Reindex operation completed")

	return r.GetProgressPtr(), nil
}

// GetProgressPtr returns a pointer to a copy of the current progress.
func (r *ReindexService) GetProgressPtr() *ReindexProgress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	progress := *r.progress
	return &progress
}

func (r *ReindexService) failWithError(err error, phase string) (*ReindexProgress, error) {
	r.mu.Lock()
	now := time.Now()
	r.progress.Status = "failed"
	r.progress.Phase = phase
	r.progress.CompletedAt = &now
	r.progress.Errors = append(r.progress.Errors, err.Error())
	r.mu.Unlock()

	logrus.WithError(err).WithField("phase", phase).Error("Reindex operation failed")
	return r.GetProgressPtr(), err
}

func (r *ReindexService) dropCollections(ctx context.Context) error {
	r.updateProgress("drop_collections", 0, 0)
	logrus.Info("Dropping all collections")

	if err := r.client.DropAllCollections(ctx); err != nil {
		return err
	}

	logrus.Info("All collections dropped successfully")
	return nil
}

func (r *ReindexService) createCollections(ctx context.Context) error {
	r.updateProgress("create_collections", 0, 0)
	logrus.Info("Creating collections")

	if err := r.client.EnsureCollectionsExist(ctx); err != nil {
		return err
	}

	logrus.Info("All collections created successfully")
	return nil
}

func (r *ReindexService) indexIdentities(ctx context.Context) error {
	r.updateProgress("indexing_identities", r.progress.ProcessedRecords, r.progress.TotalRecords)
	logrus.Info("Starting to index identities")

	var offset int
	var totalIndexed int64
	batchNum := 0

	for {
		identities, err := r.datasource.GetAllIdentities(ctx, r.config.BatchSize, offset)
		if err != nil {
			return err
		}

		if len(identities) == 0 {
			break
		}

		batchCount := len(identities)
		for _, identity := range identities {
			data, err := toMap(identity)
			if err != nil {
				r.addError("identity " + identity.IdentityID + ": " + err.Error())
				continue
			}

			if err := r.client.HandleNotification(ctx, CollectionIdentities, data); err != nil {
				r.addError("identity " + identity.IdentityID + ": " + err.Error())
				continue
			}
			totalIndexed++
		}

		r.advance(totalIndexed)

		batchNum++
		if batchNum%100 == 0 {
			logrus.WithFields(logrus.Fields{
				"batch":   batchNum,
				"indexed": totalIndexed,
			}).Info("Identity indexing progress")
		}

		offset += batchCount
	}

	logrus.WithField("total", totalIndexed).Info("Identity indexing completed")
	return nil
}

func (r *ReindexService) indexBusinesses(ctx context.Context) error {
	r.updateProgress("indexing_businesses", r.progress.ProcessedRecords, r.progress.TotalRecords)
	logrus.Info("Starting to index businesses")

	var offset int
	var totalIndexed int64
	batchNum := 0

	for {
		businesses, err := r.datasource.GetAllBusinesses(ctx, r.config.BatchSize, offset)
		if err != nil {
			return err
		}

		if len(businesses) == 0 {
			break
		}

		batchCount := len(businesses)
		for _, business := range businesses {
			data, err := toMap(business)
			if err != nil {
				r.addError("business " + business.BusinessID + ": " + err.Error())
				continue
			}

			if err := r.client.HandleNotification(ctx, CollectionBusinesses, data); err != nil {
				r.addError("business " + business.BusinessID + ": " + err.Error())
				continue
			}
			totalIndexed++
		}

		r.advance(totalIndexed)

		batchNum++
		if batchNum%100 == 0 {
			logrus.WithFields(logrus.Fields{
				"batch":   batchNum,
				"indexed": totalIndexed,
			}).Info("Business indexing progress")
		}

		offset += batchCount
	}

	logrus.WithField("total", totalIndexed).Info("Business indexing completed")
	return nil
}

func (r *ReindexService) indexLeads(ctx context.Context) error {
	r.updateProgress("indexing_leads", r.progress.ProcessedRecords, r.progress.TotalRecords)
	logrus.Info("Starting to index leads")

	var offset int
	var totalIndexed int64
	batchNum := 0

	for {
		leads, err := r.datasource.GetAllLeads(ctx, r.config.BatchSize, offset)
		if err != nil {
			return err
		}

		if len(leads) == 0 {
			break
		}

		batchCount := len(leads)
		for _, lead := range leads {
			data, err := toMap(lead)
			if err != nil {
				r.addError("lead " + lead.LeadID + ": " + err.Error())
				continue
			}

			if err := r.client.HandleNotification(ctx, CollectionLeads, data); err != nil {
				r.addError("lead " + lead.LeadID + ": " + err.Error())
				continue
			}
			totalIndexed++
		}

		r.advance(totalIndexed)

		batchNum++
		if batchNum%100 == 0 {
			logrus.WithFields(logrus.Fields{
				"batch":   batchNum,
				"indexed": totalIndexed,
			}).Info("Lead indexing progress")
		}

		offset += batchCount
	}

	logrus.WithField("total", totalIndexed).Info("Lead indexing completed")
	return nil
}

func (r *ReindexService) indexResponses(ctx context.Context) error {
	r.updateProgress("indexing_responses", r.progress.ProcessedRecords, r.progress.TotalRecords)
	logrus.Info("Starting to index responses")

	var offset int
	var totalIndexed int64
	batchNum := 0

	for {
		responses, err := r.datasource.GetAllResponses(ctx, r.config.BatchSize, offset)
		if err != nil {
			return err
		}

		if len(responses) == 0 {
			break
		}

		batchCount := len(responses)
		for _, rsp := range responses {
			data, err := toMap(rsp)
			if err != nil {
				r.addError("response " + rsp.ResponseID + ": " + err.Error())
				continue
			}

			if err := r.client.HandleNotification(ctx, CollectionResponses, data); err != nil {
				r.addError("response " + rsp.ResponseID + ": " + err.Error())
				continue
			}
			totalIndexed++
		}

		r.advance(totalIndexed)

		batchNum++
		if batchNum%100 == 0 {
			logrus.WithFields(logrus.Fields{
				"batch":   batchNum,
				"indexed": totalIndexed,
			}).Info("Response indexing progress")
		}

		offset += batchCount
	}

	logrus.WithField("total", totalIndexed).Info("Response indexing completed")
	return nil
}

func (r *ReindexService) advance(indexed int64) {
	r.mu.Lock()
	r.progress.ProcessedRecords += indexed
	r.progress.TotalRecords = r.progress.ProcessedRecords
	r.mu.Unlock()
}

// toMap flattens a model struct to the generic document form Typesense ingests.
func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// DropCollection deletes a collection from Typesense.
func (t *TypesenseClient) DropCollection(ctx context.Context, collectionName string) error {
	_, err := t.Client.Collection(collectionName).Delete(ctx)
	if err != nil && !strings.Contains(err.Error(), "not found") && !strings.Contains(err.Error(), "Not Found") {
		return err
	}
	return nil
}

// DropAllCollections drops all known collections from Typesense.
func (t *TypesenseClient) DropAllCollections(ctx context.Context) error {
	collections := []string{
		CollectionIdentities,
		CollectionBusinesses,
		CollectionLeads,
		CollectionResponses,
	}

	for _, c := range collections {
		logrus.WithField("collection", c).Debug("Dropping collection")
		if err := t.DropCollection(ctx, c); err != nil {
			return err
		}
	}

	return nil
}
