package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskcom/internal/logger"
	"taskcom/internal/models"
	"taskcom/internal/repository"
	"taskcom/internal/service"
)

// OverdueWorker periodically scans pending tasks whose due date has passed
// and notifies the assignee. The stored state is never mutated: overdue is a
// derived status, not a lifecycle transition.
type OverdueWorker struct {
	repo      repository.TaskRepository
	notifier  service.Notifier
	interval  time.Duration
	batchSize int

	mtx      sync.Mutex
	notified map[uuid.UUID]bool
}

func NewOverdueWorker(repo repository.TaskRepository, notifier service.Notifier, interval time.Duration, batchSize int) *OverdueWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OverdueWorker{
		repo:      repo,
		notifier:  notifier,
		interval:  interval,
		batchSize: batchSize,
		notified:  make(map[uuid.UUID]bool),
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: overdue scan started", zap.Time("started_at", time.Now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: overdue scan stopping")
			return
		}
	}
}

func (w *OverdueWorker) Check(ctx context.Context) {
	start := time.Now()

	tasks, err := w.getDueTasks(ctx)
	if err != nil {
		logger.Warn("Worker: fetching due tasks", zap.Error(err))
		return
	}

	now := time.Now()
	overdueCount := 0
	for _, t := range tasks {
		visual, days := models.DeriveTaskStatus(t, now)
		if visual != models.VisualOverdue {
			continue
		}
		if w.alreadyNotified(t.ID) {
			continue
		}

		w.notifier.Notify(ctx, t.CompanyID, t.AssigneeID, t.ID,
			fmt.Sprintf("Task overdue by %d day(s): %s", days, t.Title))
		w.markNotified(t.ID)
		overdueCount++

		if overdueCount >= w.batchSize {
			break
		}
	}

	logger.Info("Worker: overdue scan finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("notified", overdueCount),
	)
}

func (w *OverdueWorker) getDueTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := w.repo.DueBefore(ctx, time.Now(), w.batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetching due tasks: %w", err)
	}
	return tasks, nil
}

// One notification per task per process lifetime; a restart may re-notify,
// which is acceptable for a reminder.
func (w *OverdueWorker) alreadyNotified(id uuid.UUID) bool {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.notified[id]
}

func (w *OverdueWorker) markNotified(id uuid.UUID) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.notified[id] = true
}
