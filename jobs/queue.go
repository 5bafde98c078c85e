package jobs

import (
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"gorm.io/gorm"
)

// Options tunes a single enqueued job
type Options struct {
	// MaxAttempts overrides the default of 3
	MaxAttempts int
	// RunAt delays the first execution; zero means runnable immediately
	RunAt time.Time
}

// Enqueue appends a job to the durable queue. Passing a transaction handle as
// db makes the enqueue commit atomically with the caller's other writes.
// Delivery is at least once: handlers must tolerate duplicate execution.
func Enqueue(db *gorm.DB, kind string, payload interface{}, opts *Options) (*models.Job, error) {
	maxAttempts := 0
	if opts != nil {
		maxAttempts = opts.MaxAttempts
	}

	job, err := models.NewJob(kind, payload, maxAttempts)
	if err != nil {
		return nil, err
	}
	if opts != nil && !opts.RunAt.IsZero() {
		job.NextRunAt = opts.RunAt
	}

	if err := db.Create(job).Error; err != nil {
		return nil, err
	}

	utils.LogInfo("Job enqueued: %s #%d", kind, job.ID)
	return job, nil
}
