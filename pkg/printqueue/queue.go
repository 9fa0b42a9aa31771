package printqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	counterKeyPattern = "tenant:last_job_id:%s"
	jobsKeyPattern    = "tenant:print_jobs:%s"
)

// Job is one queued print payload. Payload bytes are transport-encoded as
// base64 by encoding/json.
type Job struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	Payload  []byte `json:"payload"`
	Tenant   string `json:"tenant"`
}

// Queue stores per-tenant print jobs in Redis lists.
type Queue struct {
	client *redis.Client
}

// New creates a queue on the shared Redis client.
func New(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// Enqueue allocates the next job ID for the tenant and appends the job to
// the tenant's list. IDs never repeat within the lifetime of the counter
// key; concurrent enqueues are serialized by Redis INCR.
func (q *Queue) Enqueue(ctx context.Context, tenant, fileName string, payload []byte) (int64, error) {
	if tenant == "" {
		return 0, ErrEmptyTenant
	}
	if fileName == "" {
		return 0, ErrEmptyFileName
	}

	id, err := q.client.Incr(ctx, fmt.Sprintf(counterKeyPattern, tenant)).Result()
	if err != nil {
		return 0, err
	}

	raw, err := json.Marshal(Job{ID: id, FileName: fileName, Payload: payload, Tenant: tenant})
	if err != nil {
		return 0, err
	}

	if err := q.client.RPush(ctx, fmt.Sprintf(jobsKeyPattern, tenant), raw).Err(); err != nil {
		return 0, err
	}
	return id, nil
}

// Poll returns every queued job with ID greater than since, preserving
// insertion order. Jobs remain queued until acked.
func (q *Queue) Poll(ctx context.Context, tenant string, since int64) ([]Job, error) {
	if tenant == "" {
		return nil, ErrEmptyTenant
	}

	raws, err := q.client.LRange(ctx, fmt.Sprintf(jobsKeyPattern, tenant), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(raws))
	for _, raw := range raws {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			// A corrupt entry must not wedge the whole queue.
			continue
		}
		if job.ID > since {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// Ack removes the job with the given ID from the tenant's list. A missing
// ID is a silent no-op: the printer may ack a job a second time after a
// redelivery.
func (q *Queue) Ack(ctx context.Context, tenant string, jobID int64) error {
	if tenant == "" {
		return ErrEmptyTenant
	}

	key := fmt.Sprintf(jobsKeyPattern, tenant)
	raws, err := q.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return err
	}

	for _, raw := range raws {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}
		if job.ID == jobID {
			return q.client.LRem(ctx, key, 1, raw).Err()
		}
	}
	return nil
}
