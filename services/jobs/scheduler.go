package jobs

import (
	"time"

	"police_flow_app_go/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Default schedules, in cron syntax
const (
	OverdueFinesSpec   = "0 * * * *"
	SurveillanceSpec   = "15 0 * * *"
	SessionCleanupSpec = "30 */6 * * *"
)

// Scheduler runs the periodic maintenance jobs of the workflow
type Scheduler struct {
	cron *cron.Cron
	wf   *services.Workflow
	db   *gorm.DB
}

// NewScheduler creates a scheduler evaluating its specs in timezone. An unknown
// timezone falls back to UTC.
func NewScheduler(wf *services.Workflow, timezone string) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		zap.S().Warnw("Unknown scheduler timezone, using UTC", "timezone", timezone, "error", err)
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		wf:   wf,
		db:   wf.DB,
	}
}

// Register adds every job to the cron table without starting it
func (s *Scheduler) Register() error {
	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"overdue_fines", OverdueFinesSpec, func() { RunOverdueFines(s.wf) }},
		{"surveillance_sweep", SurveillanceSpec, func() { RunSurveillanceSweep(s.wf) }},
		{"session_cleanup", SessionCleanupSpec, func() { RunSessionCleanup(s.db) }},
	}
	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			zap.S().Errorw("Failed to register job", "job", job.name, "spec", job.spec, "error", err)
			return err
		}
	}
	return nil
}

// Entries returns the registered cron entries
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Start registers the jobs and begins running them
func (s *Scheduler) Start() error {
	if err := s.Register(); err != nil {
		return err
	}
	s.cron.Start()
	zap.S().Infow("Scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Scheduler stopped")
}
