package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/iolph/wpr/internal/config"
	"github.com/iolph/wpr/pkg/logger"
)

const (
	TaskTypeAnalysis = "analysis:process"
)

// AnalysisTask is the payload for building the derived analysis row after a
// report submission. The summary fields carry what the AI step produced so
// the analysis row records provenance regardless of queue mode.
type AnalysisTask struct {
	ReportID     uint   `json:"report_id"`
	EmployeeName string `json:"employee_name"`
	Narrative    string `json:"narrative"`
	ModelUsed    string `json:"model_used"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// TaskQueue abstracts where analysis work runs. With Redis available it
// goes through asynq; otherwise tasks run in-process.
type TaskQueue interface {
	Enqueue(task *AnalysisTask) error
	IsAsync() bool
	Close() error
}

var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config.
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Warn().Err(err).Msg("redis unavailable, falling back to sync queue")
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Info().Str("addr", cfg.Redis.Addr).Msg("async analysis queue initialized")
				globalTaskQueue = queue
			}
		} else {
			logger.Info().Msg("sync analysis queue initialized (redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue on asynq.
type AsyncQueue struct {
	client *asynq.Client
}

func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(task *AnalysisTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeAnalysis, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Info().Str("task_id", info.ID).Str("queue", info.Queue).Msg("analysis task enqueued")
	return nil
}

func (q *AsyncQueue) IsAsync() bool { return true }

func (q *AsyncQueue) Close() error { return q.client.Close() }

// SyncQueue processes tasks in-process when Redis is not available. Work
// still runs off the request goroutine so submissions return promptly.
type SyncQueue struct {
	processor func(context.Context, *AnalysisTask) error
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

func (q *SyncQueue) SetProcessor(processor func(context.Context, *AnalysisTask) error) {
	q.processor = processor
}

func (q *SyncQueue) Enqueue(task *AnalysisTask) error {
	if q.processor == nil {
		logger.Warn().Msg("sync queue has no processor, analysis task dropped")
		return nil
	}

	go func() {
		if err := q.processor(context.Background(), task); err != nil {
			logger.Error().Err(err).Uint("report_id", task.ReportID).Msg("analysis task failed")
		}
	}()

	return nil
}

func (q *SyncQueue) IsAsync() bool { return false }

func (q *SyncQueue) Close() error { return nil }
