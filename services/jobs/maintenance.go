package jobs

import (
	"police_flow_app_go/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunOverdueFines moves unpaid bail and fines past their due date to Overdue
func RunOverdueFines(wf *services.Workflow) int64 {
	n, err := wf.MarkOverdueFines(wf.Clock.Now())
	if err != nil {
		zap.S().Errorw("Overdue fines job failed", "error", err)
		return 0
	}
	zap.S().Infow("Overdue fines job completed", "updated", n)
	return n
}

// RunSurveillanceSweep escalates long-running investigations without waiting for a read
func RunSurveillanceSweep(wf *services.Workflow) int {
	n, err := wf.SweepSurveillance()
	if err != nil {
		zap.S().Errorw("Surveillance sweep failed", "escalated", n, "error", err)
		return n
	}
	zap.S().Infow("Surveillance sweep completed", "escalated", n)
	return n
}

// RunSessionCleanup deletes expired sessions and forgets stale failed-login counters
func RunSessionCleanup(db *gorm.DB) {
	if err := services.CleanupExpiredSessions(db); err != nil {
		zap.S().Errorw("Session cleanup failed", "error", err)
	}
	if services.Monitor != nil {
		services.Monitor.Prune()
	}
}
