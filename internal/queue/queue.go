// Package queue carries OCR poll messages over a Redis-backed asynq queue. A poll is
// delayed by enqueuing it with ProcessIn; nothing ever blocks waiting for a job.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/documentexplorer/internal/models"
	"github.com/hibiken/asynq"
)

// Task types and queue names
const (
	TypeOCRPoll = "ocr:poll"
	QueueOCR    = "ocr"
)

// Client enqueues poll messages.
type Client struct {
	client *asynq.Client
}

// NewClient connects to the queue at endpoint, a redis:// or rediss:// URI.
func NewClient(endpoint string) (*Client, error) {
	opt, err := asynq.ParseRedisURI(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid queue endpoint: %w", err)
	}
	return &Client{client: asynq.NewClient(opt)}, nil
}

// NewPollTask builds the task for msg.
func NewPollTask(msg *models.PollMessage) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal poll message: %w", err)
	}
	return asynq.NewTask(TypeOCRPoll, payload), nil
}

// EnqueuePoll schedules msg to be handled once delay has passed. Poll tasks are never
// retried by the queue; the poll loop decides itself whether to poll again.
func (c *Client) EnqueuePoll(ctx context.Context, msg *models.PollMessage, delay time.Duration) error {
	task, err := NewPollTask(msg)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueOCR),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(0),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue poll for job %s: %w", msg.JobID, err)
	}
	return nil
}

// Close closes the Redis client connection
func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close queue client: %w", err)
	}
	return nil
}

// PollHandler handles one delivered poll message.
type PollHandler interface {
	HandlePoll(ctx context.Context, msg *models.PollMessage) error
}

// NewServeMux routes poll tasks to h. Payloads that cannot be decoded are dropped.
func NewServeMux(h PollHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOCRPoll, func(ctx context.Context, task *asynq.Task) error {
		var msg models.PollMessage
		if err := json.Unmarshal(task.Payload(), &msg); err != nil {
			slog.Error("Dropping undecodable poll message.", "error", err)
			return fmt.Errorf("failed to unmarshal poll message: %v: %w", err, asynq.SkipRetry)
		}
		if msg.JobID == "" || msg.TaskToken == "" {
			slog.Error("Dropping poll message without job ID or task token.", "bucket", msg.Bucket, "key", msg.Key)
			return fmt.Errorf("incomplete poll message: %w", asynq.SkipRetry)
		}
		return h.HandlePoll(ctx, &msg)
	})
	return mux
}

// Server consumes poll tasks.
type Server struct {
	server *asynq.Server
}

// NewServer creates a consumer of the OCR queue at endpoint.
func NewServer(endpoint string, concurrency int) (*Server, error) {
	opt, err := asynq.ParseRedisURI(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid queue endpoint: %w", err)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueOCR: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			slog.Error("Poll task failed.", "taskType", task.Type(), "error", err)
		}),
	})
	return &Server{server: srv}, nil
}

// Run processes tasks with mux until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, mux *asynq.ServeMux) error {
	if err := s.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start queue server: %w", err)
	}
	<-ctx.Done()
	s.server.Shutdown()
	return nil
}
