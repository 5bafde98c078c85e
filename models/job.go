package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Job statuses
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job kinds
const (
	JobKindCommissionCharge = "commission:charge"
	JobKindWebhookProcess   = "webhook:process"
	JobKindOverdueEmail     = "commission:overdue-email"
)

// Job is a unit of asynchronous work in the durable queue. Workers claim a
// pending job by flipping it to running (a compare-and-swap lease, so a job is
// only ever executed by one worker per attempt), retry it with exponential
// backoff up to MaxAttempts, and leave exhausted jobs in failed as the dead
// record for manual inspection.
type Job struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Kind        string         `gorm:"index;not null" json:"kind"`
	Payload     datatypes.JSON `json:"payload"`
	Status      string         `gorm:"index;not null;default:'pending'" json:"status"`
	Attempts    int            `gorm:"default:0" json:"attempts"`
	MaxAttempts int            `gorm:"default:3" json:"max_attempts"`
	NextRunAt   time.Time      `gorm:"index" json:"next_run_at"`
	LastError   string         `json:"last_error"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewJob builds a pending job with its payload serialized, runnable
// immediately. A non-positive maxAttempts falls back to the default of 3.
func NewJob(kind string, payload interface{}, maxAttempts int) (*Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job payload: %v", err)
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Job{
		Kind:        kind,
		Payload:     datatypes.JSON(raw),
		Status:      JobStatusPending,
		MaxAttempts: maxAttempts,
		NextRunAt:   time.Now(),
	}, nil
}
