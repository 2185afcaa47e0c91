package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bust-order-backend/internal/events"
	"bust-order-backend/internal/meshy"
	"bust-order-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	msgPreviewReady     = "Preview ready. Pay to start 3D generation."
	msgModelReady       = "3D model ready."
	msgModelBusyTooLong = "Meshy stayed busy for too long. Please try again later."
)

type LifecycleConfig struct {
	MinPreviewBytes     int
	ModelMaxAttempts    int
	FreePreviewAttempts int
}

// LifecycleService advances orders through preview generation, payment
// gating and 3D generation. It holds no state between requests; every step
// is driven by a client poll.
type LifecycleService struct {
	repo    OrderRepository
	tasks   TaskClient
	storage *StorageService
	events  EventPublisher
	cfg     LifecycleConfig
	log     *zap.Logger
	now     func() time.Time
}

func NewLifecycleService(repo OrderRepository, tasks TaskClient, storage *StorageService, publisher EventPublisher, cfg LifecycleConfig, log *zap.Logger) *LifecycleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LifecycleService{
		repo:    repo,
		tasks:   tasks,
		storage: storage,
		events:  publisher,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// SubmitPreview signs the upload and starts a preview task for o. On success
// the order is processing with the new task id; on failure it is failed with
// no task id recorded.
func (s *LifecycleService) SubmitPreview(ctx context.Context, o *models.Order, upload *models.Upload, prompt string) (string, error) {
	imageURL, err := s.storage.SignUpload(ctx, upload.StoragePath)
	if err != nil {
		s.failPreview(ctx, o.ID, "Failed to sign image URL")
		return "", fmt.Errorf("failed to sign upload: %w", err)
	}

	taskID, err := s.tasks.SubmitPreview(ctx, meshy.PreviewRequest{Prompt: prompt, ReferenceImageURL: imageURL})
	if err != nil {
		s.failPreview(ctx, o.ID, "Failed to create preview task")
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if err := s.repo.MarkPreviewSubmitted(ctx, o.ID, taskID, s.now().UTC()); err != nil {
		s.log.Error("preview task started but not recorded",
			zap.String("order_id", o.ID.String()),
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		return "", err
	}

	s.log.Info("preview task submitted", zap.String("order_id", o.ID.String()), zap.String("task_id", taskID))
	return taskID, nil
}

func (s *LifecycleService) failPreview(ctx context.Context, id uuid.UUID, message string) {
	if err := s.repo.FailPreview(ctx, id, message); err != nil {
		s.log.Error("failed to mark preview failed", zap.String("order_id", id.String()), zap.Error(err))
		return
	}
	s.publish(ctx, events.OrderFailed, events.FailedPayload(id, models.StageClayPreview, message))
}

// Advance performs at most one lifecycle step for the order and reports where
// it stands.
func (s *LifecycleService) Advance(ctx context.Context, id uuid.UUID) (*models.OrderStatusResponse, error) {
	o, err := getOrder(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	if o.Status.IsPaidLike() {
		return s.advanceModel(ctx, o)
	}
	return s.advancePreview(ctx, o)
}

func (s *LifecycleService) advancePreview(ctx context.Context, o *models.Order) (*models.OrderStatusResponse, error) {
	if o.Status == models.StatusFailed {
		msg := o.PreviewLastError.String
		if msg == "" {
			msg = o.MeshyModelLastError.String
		}
		return s.respond(ctx, o, models.StageClayPreview, 0, msg), nil
	}

	if o.ClayPreviewPath.Valid {
		if o.Status != models.StatusPreviewReady {
			if _, err := s.repo.SetStatus(ctx, o.ID, models.StatusPreviewReady); err != nil {
				return nil, err
			}
			o.Status = models.StatusPreviewReady
		}
		return s.respond(ctx, o, models.StageClayPreview, 100, msgPreviewReady), nil
	}

	if !o.MeshyImageTaskID.Valid {
		return s.respond(ctx, o, models.StageClayPreview, 0, "Waiting for the preview task to start…"), nil
	}
	taskID := o.MeshyImageTaskID.String

	task, err := s.tasks.PollPreview(ctx, taskID)
	if err != nil {
		s.log.Warn("preview poll failed", zap.String("order_id", o.ID.String()), zap.Error(err))
		return s.respond(ctx, o, models.StageClayPreview, 0, "Could not fetch preview status yet. Retrying…"), nil
	}

	switch {
	case task.Status == meshy.TaskFailed:
		msg := task.ErrorMessage
		if msg == "" {
			msg = "Preview generation failed"
		}
		s.failPreview(ctx, o.ID, msg)
		s.log.Info("preview task failed", zap.String("order_id", o.ID.String()), zap.String("error", msg))
		return s.reloadAndRespond(ctx, o.ID, models.StageClayPreview, 0, msg)

	case !task.Done():
		return s.respond(ctx, o, models.StageClayPreview, task.Progress, task.Message), nil
	}

	imageURL := task.FirstImageURL()
	if imageURL == "" {
		return s.respond(ctx, o, models.StageClayPreview, 95, "Preview finished but the image is missing. Retrying…"), nil
	}

	data, err := s.tasks.Download(ctx, imageURL)
	if err != nil {
		s.log.Warn("preview download failed", zap.String("order_id", o.ID.String()), zap.Error(err))
		return s.respond(ctx, o, models.StageClayPreview, 95, "Downloading preview… retrying…"), nil
	}
	if len(data) < s.cfg.MinPreviewBytes {
		s.log.Warn("preview image too small",
			zap.String("order_id", o.ID.String()),
			zap.Int("bytes", len(data)),
		)
		return s.respond(ctx, o, models.StageClayPreview, 95, "Preview image looks broken. Retrying…"), nil
	}

	path := ClayPreviewPath(o.ID)
	if err := s.storage.StoreOutput(ctx, path, data, "image/png"); err != nil {
		s.log.Warn("preview upload failed", zap.String("order_id", o.ID.String()), zap.Error(err))
		return s.respond(ctx, o, models.StageClayPreview, 95, "Saving preview… retrying…"), nil
	}

	linked, err := s.repo.MarkPreviewReady(ctx, o.ID, taskID, path)
	if err != nil {
		return nil, err
	}
	if linked {
		s.log.Info("preview ready", zap.String("order_id", o.ID.String()))
		s.publish(ctx, events.OrderPreviewReady, events.PreviewReadyPayload(o.ID, path))
	}

	o, err = getOrder(ctx, s.repo, o.ID)
	if err != nil {
		return nil, err
	}
	if o.ClayPreviewPath.Valid {
		return s.respond(ctx, o, models.StageClayPreview, 100, msgPreviewReady), nil
	}
	// A retry replaced the task while this poll was downloading.
	return s.respond(ctx, o, models.StageClayPreview, 0, "Waiting for the new preview…"), nil
}

func (s *LifecycleService) advanceModel(ctx context.Context, o *models.Order) (*models.OrderStatusResponse, error) {
	if o.HasModel() {
		return s.respond(ctx, o, models.StageModel, 100, msgModelReady), nil
	}
	if !o.ClayPreviewPath.Valid {
		return s.respond(ctx, o, models.StageModel, 0, "Payment received. Waiting for the preview before starting 3D…"), nil
	}
	if !o.MeshyModelTaskID.Valid {
		return s.startModel(ctx, o)
	}

	task, err := s.tasks.PollModel(ctx, o.MeshyModelTaskID.String)
	if err != nil {
		s.log.Warn("model poll failed", zap.String("order_id", o.ID.String()), zap.Error(err))
		return s.respond(ctx, o, models.StageModel, 10, "Could not fetch 3D status yet…"), nil
	}

	switch {
	case task.Status == meshy.TaskFailed:
		return s.handleModelFailure(ctx, o, task)
	case !task.Done():
		return s.respond(ctx, o, models.StageModel, task.Progress, task.Message), nil
	}

	return s.storeModel(ctx, o, task)
}

func (s *LifecycleService) startModel(ctx context.Context, o *models.Order) (*models.OrderStatusResponse, error) {
	previewURL, err := s.storage.SignOutput(ctx, o.ClayPreviewPath.String)
	if err != nil {
		s.log.Warn("failed to sign preview for 3D", zap.String("order_id", o.ID.String()), zap.Error(err))
		return s.respond(ctx, o, models.StageModel, 5, "Signing preview image for 3D…"), nil
	}

	taskID, err := s.tasks.SubmitModel(ctx, previewURL)
	if err != nil {
		attempts, recErr := s.repo.RecordModelFailure(ctx, o.ID, err.Error())
		if recErr != nil {
			return nil, recErr
		}
		s.log.Warn("model submit failed",
			zap.String("order_id", o.ID.String()),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return s.reloadAndRespond(ctx, o.ID, models.StageModel, 5, "Meshy is busy starting the 3D job. Retrying…")
	}

	stored, err := s.repo.SetModelTaskIfEmpty(ctx, o.ID, taskID)
	if err != nil {
		return nil, err
	}
	if !stored {
		s.log.Warn("model task already set by another request, dropping duplicate",
			zap.String("order_id", o.ID.String()),
			zap.String("task_id", taskID),
		)
	} else {
		s.log.Info("model task submitted", zap.String("order_id", o.ID.String()), zap.String("task_id", taskID))
		s.publish(ctx, events.OrderModelStarted, events.ModelStartedPayload(o.ID, taskID))
	}

	return s.reloadAndRespond(ctx, o.ID, models.StageModel, 5, "3D generation started…")
}

func (s *LifecycleService) handleModelFailure(ctx context.Context, o *models.Order, task *meshy.Task) (*models.OrderStatusResponse, error) {
	msg := task.ErrorMessage
	if msg == "" {
		msg = "3D model generation failed"
	}

	if !meshy.IsRetryable(msg) {
		if err := s.repo.FailModel(ctx, o.ID, msg); err != nil {
			return nil, err
		}
		s.log.Info("model task failed", zap.String("order_id", o.ID.String()), zap.String("error", msg))
		s.publish(ctx, events.OrderFailed, events.FailedPayload(o.ID, models.StageModel, msg))
		return s.reloadAndRespond(ctx, o.ID, models.StageModel, 0, msg)
	}

	attempts, err := s.repo.RecordModelFailure(ctx, o.ID, msg)
	if err != nil {
		return nil, err
	}

	if attempts >= s.cfg.ModelMaxAttempts {
		if err := s.repo.FailModel(ctx, o.ID, msg); err != nil {
			return nil, err
		}
		s.log.Warn("model task gave up after retries",
			zap.String("order_id", o.ID.String()),
			zap.Int("attempts", attempts),
		)
		s.publish(ctx, events.OrderFailed, events.FailedPayload(o.ID, models.StageModel, msg))
		return s.reloadAndRespond(ctx, o.ID, models.StageModel, 0, msgModelBusyTooLong)
	}

	progress := task.Progress
	if progress == 0 {
		progress = 27
	}
	progress = min(max(progress, 5), 95)

	s.log.Info("model task busy, will retry",
		zap.String("order_id", o.ID.String()),
		zap.Int("attempts", attempts),
	)
	return s.reloadAndRespond(ctx, o.ID, models.StageModel, progress, "Meshy is busy right now. Retrying automatically…")
}

type modelArtifact struct {
	url         string
	path        string
	contentType string
	stored      sql.NullString
}

// storeModel fetches GLB and OBJ concurrently. Each artifact is optional; one
// failing does not block the other.
func (s *LifecycleService) storeModel(ctx context.Context, o *models.Order, task *meshy.Task) (*models.OrderStatusResponse, error) {
	artifacts := []*modelArtifact{
		{url: task.ModelURLs.GLB, path: ModelGLBPath(o.ID), contentType: "model/gltf-binary"},
		{url: task.ModelURLs.OBJ, path: ModelOBJPath(o.ID), contentType: "text/plain"},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range artifacts {
		if a.url == "" {
			continue
		}
		g.Go(func() error {
			data, err := s.tasks.Download(gctx, a.url)
			if err != nil {
				s.log.Warn("model artifact download failed",
					zap.String("order_id", o.ID.String()),
					zap.String("path", a.path),
					zap.Error(err),
				)
				return nil
			}
			if err := s.storage.StoreOutput(gctx, a.path, data, a.contentType); err != nil {
				s.log.Warn("model artifact upload failed",
					zap.String("order_id", o.ID.String()),
					zap.String("path", a.path),
					zap.Error(err),
				)
				return nil
			}
			a.stored = sql.NullString{String: a.path, Valid: true}
			return nil
		})
	}
	_ = g.Wait()

	glb, obj := artifacts[0].stored, artifacts[1].stored
	if !glb.Valid && !obj.Valid {
		return s.respond(ctx, o, models.StageModel, 95, "Saving 3D files… retrying…"), nil
	}

	if err := s.repo.SetModelAssets(ctx, o.ID, glb, obj); err != nil {
		return nil, err
	}
	s.log.Info("model ready",
		zap.String("order_id", o.ID.String()),
		zap.Bool("glb", glb.Valid),
		zap.Bool("obj", obj.Valid),
	)
	s.publish(ctx, events.OrderModelReady, events.ModelReadyPayload(o.ID, glb.String, obj.String))

	return s.reloadAndRespond(ctx, o.ID, models.StageModel, 100, msgModelReady)
}

// Retry starts a fresh preview generation from the latest upload. Attempts
// beyond the free allowance spend a retry credit.
func (s *LifecycleService) Retry(ctx context.Context, id uuid.UUID) (*models.RetryResponse, error) {
	o, err := getOrder(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanRetryPreview() {
		return nil, fmt.Errorf("%w: status is %q", ErrRetryNotAllowed, o.Status)
	}

	consumeCredit := o.PreviewAttempts >= s.cfg.FreePreviewAttempts
	if consumeCredit && o.RetryCredits <= 0 {
		return nil, ErrRetryCreditRequired
	}

	upload, err := s.repo.LatestUpload(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoUpload
	}
	if err != nil {
		return nil, err
	}

	imageURL, err := s.storage.SignUpload(ctx, upload.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload: %w", err)
	}

	taskID, err := s.tasks.SubmitPreview(ctx, meshy.PreviewRequest{
		Prompt:            BuildPreviewPrompt(o.BustStyle, promptHint(o)),
		ReferenceImageURL: imageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	started, err := s.repo.StartPreviewRetry(ctx, id, taskID, s.now().UTC(), consumeCredit)
	if err != nil {
		return nil, err
	}
	if !started {
		s.log.Warn("retry lost a race, dropping task",
			zap.String("order_id", id.String()),
			zap.String("task_id", taskID),
		)
		return nil, ErrConflict
	}

	s.log.Info("preview retry started",
		zap.String("order_id", id.String()),
		zap.String("task_id", taskID),
		zap.Bool("credit_used", consumeCredit),
	)
	s.publish(ctx, events.OrderStatusChanged, events.StatusChangedPayload(id, models.StatusProcessing))

	return &models.RetryResponse{OK: true, MeshyImageTaskID: taskID}, nil
}

func (s *LifecycleService) respond(ctx context.Context, o *models.Order, stage models.Stage, progress int, message string) *models.OrderStatusResponse {
	return &models.OrderStatusResponse{
		Order:         s.storage.OrderView(ctx, o),
		Stage:         stage,
		Progress:      progress,
		Message:       message,
		PaymentLocked: o.Status.IsPaidLike(),
	}
}

func (s *LifecycleService) reloadAndRespond(ctx context.Context, id uuid.UUID, stage models.Stage, progress int, message string) (*models.OrderStatusResponse, error) {
	o, err := getOrder(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, o, stage, progress, message), nil
}

func (s *LifecycleService) publish(ctx context.Context, event string, payload map[string]any) {
	publish(ctx, s.events, s.log, event, payload)
}

func publish(ctx context.Context, publisher EventPublisher, log *zap.Logger, event string, payload map[string]any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event, payload); err != nil {
		log.Warn("failed to publish event", zap.String("event", event), zap.Error(err))
	}
}

func getOrder(ctx context.Context, repo OrderRepository, id uuid.UUID) (*models.Order, error) {
	o, err := repo.GetOrder(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}
