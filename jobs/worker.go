package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"gorm.io/gorm"
)

// HandlerFunc executes one job. A nil return completes the job; an error
// reschedules it with exponential backoff until its attempts are exhausted,
// after which the job is parked in failed for manual inspection.
type HandlerFunc func(ctx context.Context, job *models.Job) error

// Worker drains the durable job queue with a pool of goroutines. Each job is
// claimed by flipping it from pending to running with a conditional update,
// so a row is only ever leased to one goroutine per attempt. A reclaim loop
// returns jobs stranded in running by a crashed process to the queue once
// their lease ages out.
type Worker struct {
	db           *gorm.DB
	handlers     map[string]HandlerFunc
	concurrency  int
	pollInterval time.Duration
	backoffBase  time.Duration
	leaseTimeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a worker pool over the given database
func NewWorker(db *gorm.DB, concurrency int, pollInterval time.Duration) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = utils.JobPollIntervalSeconds * time.Second
	}
	return &Worker{
		db:           db,
		handlers:     make(map[string]HandlerFunc),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		backoffBase:  utils.JobBackoffBaseSeconds * time.Second,
		leaseTimeout: utils.JobLeaseTimeoutSeconds * time.Second,
	}
}

// Register binds a handler to a job kind. Must be called before Start.
func (w *Worker) Register(kind string, handler HandlerFunc) {
	w.handlers[kind] = handler
}

// Start launches the pool and returns immediately
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}
	w.wg.Add(1)
	go w.reclaimLoop(ctx)
	utils.LogInfo("Job worker started: %d goroutines, polling every %v", w.concurrency, w.pollInterval)
}

// Stop cancels the pool and waits for in-flight jobs to finish
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	utils.LogInfo("Job worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.claim()
		if err != nil {
			utils.LogError("Job claim failed: %v", err)
		}
		if job == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.pollInterval):
			}
			continue
		}

		w.execute(ctx, job)
	}
}

// claim leases the oldest runnable job. The conditional update is the lease:
// losing it to another goroutine just means there was nothing to claim.
func (w *Worker) claim() (*models.Job, error) {
	var job models.Job
	err := w.db.Where("status = ? AND next_run_at <= ?", models.JobStatusPending, time.Now()).
		Order("next_run_at ASC").First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res := w.db.Model(&models.Job{}).
		Where("id = ? AND status = ?", job.ID, models.JobStatusPending).
		Updates(map[string]interface{}{
			"status":     models.JobStatusRunning,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	job.Status = models.JobStatusRunning
	job.Attempts++
	return &job, nil
}

func (w *Worker) reclaimLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reclaimStale()
		}
	}
}

// reclaimStale returns jobs stranded in running by a crashed worker to the
// queue, or parks them once their attempts are spent. The lease must outlast
// the slowest handler, or a live job would be delivered a second time;
// handlers already tolerate that.
func (w *Worker) reclaimStale() {
	cutoff := time.Now().Add(-w.leaseTimeout)

	res := w.db.Model(&models.Job{}).
		Where("status = ? AND updated_at < ? AND attempts < max_attempts",
			models.JobStatusRunning, cutoff).
		Updates(map[string]interface{}{
			"status":      models.JobStatusPending,
			"next_run_at": time.Now(),
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		utils.LogError("Failed to requeue stale jobs: %v", res.Error)
	} else if res.RowsAffected > 0 {
		utils.LogInfo("Requeued %d jobs abandoned mid-run", res.RowsAffected)
	}

	res = w.db.Model(&models.Job{}).
		Where("status = ? AND updated_at < ? AND attempts >= max_attempts",
			models.JobStatusRunning, cutoff).
		Updates(map[string]interface{}{
			"status":     models.JobStatusFailed,
			"last_error": "worker lost the lease",
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		utils.LogError("Failed to park stale jobs: %v", res.Error)
	} else if res.RowsAffected > 0 {
		utils.LogError("Parked %d abandoned jobs with no attempts left", res.RowsAffected)
	}
}

func (w *Worker) execute(ctx context.Context, job *models.Job) {
	handler, ok := w.handlers[job.Kind]
	if !ok {
		w.fail(job, fmt.Errorf("no handler registered for kind %q", job.Kind))
		return
	}

	utils.LogInfo("Job %d (%s) running, attempt %d/%d", job.ID, job.Kind, job.Attempts, job.MaxAttempts)
	if err := handler(ctx, job); err != nil {
		w.retry(job, err)
		return
	}
	w.complete(job)
}

func (w *Worker) complete(job *models.Job) {
	err := w.db.Model(job).Updates(map[string]interface{}{
		"status":     models.JobStatusCompleted,
		"last_error": "",
	}).Error
	if err != nil {
		utils.LogError("Failed to mark job %d completed: %v", job.ID, err)
		return
	}
	utils.LogInfo("Job %d (%s) completed", job.ID, job.Kind)
}

// retry reschedules the job with exponential backoff, or parks it once its
// attempts are exhausted
func (w *Worker) retry(job *models.Job, cause error) {
	if job.Attempts >= job.MaxAttempts {
		w.fail(job, cause)
		return
	}

	delay := w.backoffBase * time.Duration(1<<uint(job.Attempts-1))
	nextRun := time.Now().Add(delay)
	err := w.db.Model(job).Updates(map[string]interface{}{
		"status":      models.JobStatusPending,
		"next_run_at": nextRun,
		"last_error":  cause.Error(),
	}).Error
	if err != nil {
		utils.LogError("Failed to reschedule job %d: %v", job.ID, err)
		return
	}
	utils.LogError("Job %d (%s) attempt %d/%d failed, retrying in %v: %v",
		job.ID, job.Kind, job.Attempts, job.MaxAttempts, delay, cause)
}

// fail parks the job as the dead record for manual inspection
func (w *Worker) fail(job *models.Job, cause error) {
	err := w.db.Model(job).Updates(map[string]interface{}{
		"status":     models.JobStatusFailed,
		"last_error": cause.Error(),
	}).Error
	if err != nil {
		utils.LogError("Failed to mark job %d failed: %v", job.ID, err)
		return
	}
	utils.LogError("Job %d (%s) failed permanently after %d attempts: %v",
		job.ID, job.Kind, job.Attempts, cause)
}
