package jobs

import (
	"database/sql"

	"bikerental-backend/internal/config"
	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/repository/postgres"
	"bikerental-backend/internal/service"
)

// JobRunner coordinates the scheduled jobs.
type JobRunner struct {
	db       *sql.DB
	store    *postgres.Store
	rentals  service.RentalService
	emailSvc service.EmailService
	config   *config.Config
}

func NewJobRunner(db *sql.DB, store *postgres.Store, rentals service.RentalService, emailSvc service.EmailService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:       db,
		store:    store,
		rentals:  rentals,
		emailSvc: emailSvc,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery so one bad run
// never takes the scheduler down.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
