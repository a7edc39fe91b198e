/**
 * Job status events.
 *
 * Every state transition is published to a Redis channel so dashboards can
 * follow job progress without polling. Publishing is optional: a nil
 * Publisher is valid and drops every event.
 */

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const Channel = "ocr:job-events"

// Event is a single job status transition.
type Event struct {
	JobID        string `json:"jobId"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// Publisher publishes job events to Redis.
type Publisher struct {
	client *redis.Client
}

// NewPublisher connects to redisURL. An empty URL disables publishing and
// returns (nil, nil).
func NewPublisher(redisURL string) (*Publisher, error) {
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Publisher{client: client}, nil
}

// Publish emits a status event. Failures are logged and swallowed; events
// are advisory and never gate job processing.
func (p *Publisher) Publish(ctx context.Context, jobID, status, errorMessage string) {
	if p == nil {
		return
	}

	event := Event{
		JobID:        jobID,
		Status:       status,
		ErrorMessage: errorMessage,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Job %s] Event marshal failed: %v", jobID, err)
		return
	}

	if err := p.client.Publish(ctx, Channel, body).Err(); err != nil {
		log.Printf("[Job %s] Event publish failed: %v", jobID, err)
	}
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
