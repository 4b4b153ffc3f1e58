package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkbase/inkbase/internal/models"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

type TaskRepository struct {
	client *redis.Client
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(client *redis.Client) *TaskRepository {
	return &TaskRepository{client: client}
}

// Create persists a task record and appends it to the owner's task list.
// The dispatcher only calls this after the scheduler has accepted the
// publish, so a task record always corresponds to a scheduled message.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	data, err := encode(task)
	if err != nil {
		return err
	}

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, taskKey(task.ID), data, 0)
		pipe.RPush(ctx, userTasksKey(task.UserID), task.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	return nil
}

// Get retrieves a task by id
func (r *TaskRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	return getJSON[models.Task](ctx, r.client, taskKey(id))
}

// ListByOwner returns the owner's tasks in scheduling order
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Task, error) {
	ids, err := r.client.LRange(ctx, userTasksKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return []*models.Task{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = taskKey(id)
	}

	return mgetDecode[models.Task](ctx, r.client, keys)
}

// MarkProcessing transitions a pending task to processing
func (r *TaskRepository) MarkProcessing(ctx context.Context, id string) (*models.Task, error) {
	return r.mutate(ctx, id, func(task *models.Task) {
		task.Status = models.TaskProcessing
	})
}

// MarkCompleted transitions a task to completed, attaching the
// processor's result
func (r *TaskRepository) MarkCompleted(ctx context.Context, id, result string) (*models.Task, error) {
	return r.mutate(ctx, id, func(task *models.Task) {
		task.Status = models.TaskCompleted
		task.Result = result
		task.Error = ""
	})
}

// MarkFailed transitions a task to failed, recording the error and
// incrementing the retry count. Redelivery is the scheduler's job; no
// retry happens here.
func (r *TaskRepository) MarkFailed(ctx context.Context, id, errMsg string) (*models.Task, error) {
	return r.mutate(ctx, id, func(task *models.Task) {
		task.Status = models.TaskFailed
		task.Error = errMsg
		task.RetryCount++
	})
}

func (r *TaskRepository) mutate(ctx context.Context, id string, apply func(*models.Task)) (*models.Task, error) {
	task, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(task)
	task.UpdatedAt = time.Now().UTC()

	if err := setJSON(ctx, r.client, taskKey(id), task); err != nil {
		return nil, err
	}

	return task, nil
}
