package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TopicCampaignDispatch carries DispatchJob payloads.
const TopicCampaignDispatch = "campaign_dispatch"

// DispatchJob asks a worker to run the dispatch pipeline for one campaign.
type DispatchJob struct {
	CampaignID string `json:"campaign_id"`
}

// DecodeDispatchJob accepts the payload shapes both queue implementations deliver.
func DecodeDispatchJob(payload any) (DispatchJob, error) {
	switch p := payload.(type) {
	case DispatchJob:
		return p, nil
	case *DispatchJob:
		return *p, nil
	case []byte:
		var job DispatchJob
		err := json.Unmarshal(p, &job)
		return job, err
	case string:
		return DispatchJob{CampaignID: p}, nil
	}
	return DispatchJob{}, fmt.Errorf("unexpected dispatch payload %T", payload)
}

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers to subscribers in goroutines of the same process.
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]func(payload any) error
	maxRetries map[string]int
	logger     *zap.Logger
	wg         sync.WaitGroup
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(logger *zap.Logger) *InMemoryQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		maxRetries: make(map[string]int),
		logger:     logger,
	}
}

// SetMaxRetries overrides the retry budget for one topic. Dispatch jobs use 0:
// a retried dispatch would email partners twice.
func (q *InMemoryQueue) SetMaxRetries(topic string, n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.maxRetries[topic] = n
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	retries, ok := q.maxRetries[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}
	if !ok {
		retries = 3
	}

	job := JobPayload{
		Topic:      topic,
		Payload:    payload,
		MaxRetries: retries,
	}

	for _, handler := range handlers {
		q.wg.Add(1)
		go func(h func(payload any) error) {
			defer q.wg.Done()
			q.processJob(h, job)
		}(handler)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	log := q.logger.With(zap.String("topic", job.Topic))
	for {
		err := handler(job.Payload)
		if err == nil {
			log.Debug("job processed", zap.Any("payload", job.Payload))
			return // ACK
		}

		job.RetryCount++
		if job.RetryCount > job.MaxRetries {
			log.Error("job permanently failed",
				zap.Int("attempts", job.RetryCount),
				zap.Any("payload", job.Payload),
				zap.Error(err))
			return // No requeue
		}
		log.Warn("job failed, retrying",
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err))

		// Linear backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every published job has finished.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}

// StartDispatchSubscriber wires handle to the dispatch topic.
func StartDispatchSubscriber(q Queue, handle func(job DispatchJob) error, logger *zap.Logger) error {
	return q.Subscribe(TopicCampaignDispatch, func(payload any) error {
		job, err := DecodeDispatchJob(payload)
		if err != nil {
			logger.Warn("dropping malformed dispatch job", zap.Error(err))
			return nil // no retry
		}
		return handle(job)
	})
}
