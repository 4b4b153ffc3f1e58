package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inkbase/inkbase/internal/config"
	"github.com/inkbase/inkbase/internal/models"
	"github.com/inkbase/inkbase/internal/repository"
	apperrors "github.com/inkbase/inkbase/pkg/errors"
)

// Dispatcher hands deferred work to the external scheduler and tracks
// task status through its webhook callback
type Dispatcher struct {
	cfg        *config.Config
	tasks      *repository.TaskRepository
	processors map[string]Processor
	httpClient *http.Client
	log        zerolog.Logger
}

// NewDispatcher creates a new dispatcher with the given task processors
func NewDispatcher(cfg *config.Config, tasks *repository.TaskRepository, processors map[string]Processor, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:        cfg,
		tasks:      tasks,
		processors: processors,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "dispatch").Logger(),
	}
}

type publishResponse struct {
	MessageID string `json:"messageId"`
}

// Schedule publishes a task description to the scheduler and, only once
// the publish is accepted, persists a pending task record. A publish
// failure surfaces as a dispatch error and leaves no task behind.
func (d *Dispatcher) Schedule(ctx context.Context, ownerID string, req *models.ScheduleTaskRequest) (*models.Task, error) {
	if req.Type == "" {
		return nil, apperrors.Validation("task type is required")
	}
	if len(req.Payload) == 0 {
		return nil, apperrors.Validation("task payload is required")
	}

	taskID := uuid.NewString()

	body, err := json.Marshal(map[string]any{
		"taskId":  taskID,
		"type":    req.Type,
		"payload": req.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode publish body: %w", err)
	}

	callback := d.cfg.CallbackBaseURL + "/qstash/webhook"
	publishURL := d.cfg.QStashURL + "/v2/publish/" + url.QueryEscape(callback)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDispatchFailed, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+d.cfg.QStashToken)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.DelaySeconds > 0 {
		httpReq.Header.Set("Upstash-Delay", fmt.Sprintf("%ds", req.DelaySeconds))
	}

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDispatchFailed, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.log.Error().Int("status", resp.StatusCode).Str("taskId", taskID).Msg("scheduler rejected publish")
		return nil, fmt.Errorf("%w: scheduler returned status %d", apperrors.ErrDispatchFailed, resp.StatusCode)
	}

	var pub publishResponse
	if err := json.Unmarshal(respBody, &pub); err != nil {
		d.log.Warn().Err(err).Str("taskId", taskID).Msg("unparseable scheduler response")
	}

	task := &models.Task{
		ID:        taskID,
		Type:      req.Type,
		Payload:   req.Payload,
		Status:    models.TaskPending,
		UserID:    ownerID,
		MessageID: pub.MessageID,
	}

	if err := d.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	d.log.Info().Str("taskId", taskID).Str("type", req.Type).Str("messageId", pub.MessageID).Msg("task scheduled")

	return task, nil
}

type webhookBody struct {
	TaskID  string          `json:"taskId"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HandleWebhook processes a verified scheduler delivery. The referenced
// task moves to processing, is dispatched to its type's processor, and
// ends completed or failed. Redelivery on failure is the scheduler's
// responsibility.
func (d *Dispatcher) HandleWebhook(ctx context.Context, body []byte) (*models.Task, error) {
	var wb webhookBody
	if err := json.Unmarshal(body, &wb); err != nil {
		return nil, apperrors.Validation("unparseable webhook body")
	}
	if wb.TaskID == "" {
		return nil, apperrors.Validation("webhook body missing taskId")
	}

	task, err := d.tasks.Get(ctx, wb.TaskID)
	if err != nil {
		return nil, err
	}

	task, err = d.tasks.MarkProcessing(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	processor, ok := d.processors[task.Type]
	if !ok {
		return d.tasks.MarkFailed(ctx, task.ID, fmt.Sprintf("no processor for task type %q", task.Type))
	}

	result, procErr := processor(ctx, task.Payload)
	if procErr != nil {
		d.log.Warn().Err(procErr).Str("taskId", task.ID).Str("type", task.Type).Msg("task processor failed")
		return d.tasks.MarkFailed(ctx, task.ID, procErr.Error())
	}

	d.log.Info().Str("taskId", task.ID).Str("type", task.Type).Msg("task completed")

	return d.tasks.MarkCompleted(ctx, task.ID, result)
}
