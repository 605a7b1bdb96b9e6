package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

type JobType string

const (
	JobTypeEmailNotification JobType = "email_notification"
	JobTypeTaskReminder      JobType = "task_reminder"
	JobTypeDataExport        JobType = "data_export"
	JobTypeCleanup           JobType = "cleanup"
)

const deadQueue = "dead_queue"
const retryQueue = "retry_queue"

// Job is one unit of background work, serialized as JSON on a Redis list.
type Job struct {
	ID        string                 `json:"id"`
	Type      JobType                `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Attempts  int                    `json:"attempts"`
	MaxTries  int                    `json:"max_tries"`
	CreatedAt time.Time              `json:"created_at"`
	ProcessAt time.Time              `json:"process_at"`
}

type HandlerFunc func(ctx context.Context, job *Job) error

type WorkerConfig struct {
	RedisClient  *redis.Client
	Concurrency  int
	PollInterval time.Duration
	Queues       []string
}

// Worker polls Redis lists for jobs and dispatches them to registered
// handlers. Failed jobs go to the retry queue with backoff until MaxTries,
// then to the dead queue.
type Worker struct {
	client       *redis.Client
	handlers     map[JobType]HandlerFunc
	queues       []string
	pollInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
}

func NewWorker(config WorkerConfig) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Worker{
		client:       config.RedisClient,
		handlers:     make(map[JobType]HandlerFunc),
		queues:       config.Queues,
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (w *Worker) RegisterHandler(jobType JobType, handler HandlerFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

// Start launches n polling goroutines.
func (w *Worker) Start(n int) {
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go w.run()
	}
	log.Printf("🚀 Worker started with %d pollers on queues %v", n, w.queues)
}

// Stop cancels the poll loop and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	log.Println("🛑 Worker stopped")
}

func (w *Worker) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if err := w.processNextJob(); err != nil {
				log.Printf("⚠️  Job processing failed: %v", err)
			}
		}
	}
}

// processNextJob pops one job from the first non-empty queue. An empty set
// of queues is not an error. Jobs scheduled in the future are requeued.
func (w *Worker) processNextJob() error {
	for _, queue := range w.queues {
		data, err := w.client.LPop(w.ctx, queue).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to pop from %s: %w", queue, err)
		}

		var job Job
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			return fmt.Errorf("failed to decode job from %s: %w", queue, err)
		}

		if job.ProcessAt.After(time.Now()) {
			return w.push(queue, &job)
		}

		return w.dispatch(queue, &job)
	}
	return nil
}

func (w *Worker) dispatch(queue string, job *Job) error {
	w.mu.RLock()
	handler, exists := w.handlers[job.Type]
	w.mu.RUnlock()
	if !exists {
		return fmt.Errorf("no handler registered for job type %s", job.Type)
	}

	if err := handler(w.ctx, job); err != nil {
		job.Attempts++
		if job.Attempts >= job.MaxTries {
			log.Printf("❌ Job %s exhausted %d attempts, moving to dead queue", job.ID, job.Attempts)
			return w.push(deadQueue, job)
		}
		job.ProcessAt = time.Now().Add(time.Duration(job.Attempts) * 30 * time.Second)
		return w.push(retryQueue, job)
	}
	return nil
}

func (w *Worker) push(queue string, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	return w.client.RPush(w.ctx, queue, data).Err()
}

// JobQueue is the producer side.
type JobQueue struct {
	client *redis.Client
}

func NewJobQueue(client *redis.Client) *JobQueue {
	return &JobQueue{client: client}
}

func (q *JobQueue) Enqueue(queue string, jobType JobType, payload map[string]interface{}) error {
	return q.EnqueueAt(queue, jobType, payload, time.Now())
}

func (q *JobQueue) EnqueueAt(queue string, jobType JobType, payload map[string]interface{}, processAt time.Time) error {
	job := Job{
		ID:        uuid.Must(uuid.NewV4()).String(),
		Type:      jobType,
		Payload:   payload,
		MaxTries:  3,
		CreatedAt: time.Now(),
		ProcessAt: processAt,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	return q.client.RPush(context.Background(), queue, data).Err()
}

func (q *JobQueue) GetQueueSize(queue string) (int64, error) {
	return q.client.LLen(context.Background(), queue).Result()
}
