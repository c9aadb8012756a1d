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
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/leadgrid/leadgrid/config"
	redis_db "github.com/leadgrid/leadgrid/internal/redis-db"
	"github.com/leadgrid/leadgrid/model"
)

// Queue wraps the asynq client used to hand work to the background workers:
// new-lead dispatches, delayed response expiry and search indexing.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// NewLeadEvent is the payload handed to the dispatch worker for every
// response record created by a fan-out. The summary never carries seeker
// contact fields; those are only revealed on acceptance.
type NewLeadEvent struct {
	Response *model.Response    `json:"response"`
	Lead     *model.LeadSummary `json:"lead"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// Enqueue hands a new-lead event to the dispatch queue. The task ID is the
// response ID so a retried fan-out cannot double-notify a provider.
func (q *Queue) Enqueue(ctx context.Context, event *NewLeadEvent) error {
	ctx, span := tracer.Start(ctx, "Adding new-lead event to queue")
	defer span.End()

	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	taskOptions := []asynq.Option{
		asynq.TaskID(event.Response.ResponseID),
		asynq.Queue(cfg.Queue.NewLeadQueue),
	}
	task := asynq.NewTask(cfg.Queue.NewLeadQueue, payload, taskOptions...)
	info, err := q.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5))
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued new-lead event: %+v", event.Response.ResponseID)
	return nil
}

// queueResponseExpiry schedules the expiry task for a response at its
// deadline. The delayed task is the primary expiry path; the periodic sweep
// only catches tasks lost to queue downtime.
func (q *Queue) queueResponseExpiry(responseID string, expiresAt time.Time) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	IPayload, err := json.Marshal(responseID)
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(responseID),
		asynq.Queue(cfg.Queue.ResponseExpiryQueue),
		asynq.ProcessIn(time.Until(expiresAt)),
	}
	task := asynq.NewTask(cfg.Queue.ResponseExpiryQueue, IPayload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued response expiry: %+v", responseID)
	return nil
}

// queueIndexData enqueues a task to index data in a specified collection.
func (q *Queue) queueIndexData(id string, collection string, data interface{}) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	if cfg.TypeSense.Dns == "" {
		return nil
	}

	payload := map[string]interface{}{
		"collection": collection,
		"payload":    data,
	}

	IPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	taskOptions := []asynq.Option{asynq.Queue(cfg.Queue.IndexQueue)}
	task := asynq.NewTask(cfg.Queue.IndexQueue, IPayload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued index data: %+v", id)
	return nil
}
