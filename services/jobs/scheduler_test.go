package jobs

import (
	"fmt"
	"testing"
	"time"

	"police_flow_app_go/db"
	"police_flow_app_go/models"
	"police_flow_app_go/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var jobNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func setupJobs(t *testing.T) (*gorm.DB, *services.Workflow) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := db.Open(dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(models.All()...))
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	wf := services.NewWorkflow(database, services.NewFixedClock(jobNow), services.NopNotifier{})
	wf.AuditSync = true
	return database, wf
}

func TestRunOverdueFines(t *testing.T) {
	database, wf := setupJobs(t)
	due := jobNow.Add(-time.Hour)
	later := jobNow.Add(24 * time.Hour)
	fines := []models.BailFine{
		{SuspectID: "s-1", CaseID: "c-1", Type: models.BailFineTypeFine, Amount: 10, Status: models.BailFineStatusPending, DueDate: &due},
		{SuspectID: "s-1", CaseID: "c-1", Type: models.BailFineTypeFine, Amount: 10, Status: models.BailFineStatusPending, DueDate: &later},
		{SuspectID: "s-2", CaseID: "c-1", Type: models.BailFineTypeFine, Amount: 10, Status: models.BailFineStatusPaid, DueDate: &due},
	}
	require.NoError(t, database.Create(&fines).Error)

	assert.EqualValues(t, 1, RunOverdueFines(wf))
	assert.EqualValues(t, 0, RunOverdueFines(wf))

	var overdue models.BailFine
	require.NoError(t, database.First(&overdue, "id = ?", fines[0].ID).Error)
	assert.Equal(t, models.BailFineStatusOverdue, overdue.Status)
}

func TestRunSurveillanceSweep(t *testing.T) {
	database, wf := setupJobs(t)
	old := jobNow.AddDate(0, 0, -31)
	recent := jobNow.AddDate(0, 0, -3)
	suspects := []models.Suspect{
		{CaseID: "c-1", Name: "Old", Status: models.SuspectStatusUnderInvestigation, SurveillanceStartDate: &old},
		{CaseID: "c-1", Name: "Recent", Status: models.SuspectStatusUnderInvestigation, SurveillanceStartDate: &recent},
		{CaseID: "c-1", Name: "Held", Status: models.SuspectStatusArrested, SurveillanceStartDate: &old},
	}
	require.NoError(t, database.Create(&suspects).Error)

	assert.Equal(t, 1, RunSurveillanceSweep(wf))

	var statuses []string
	require.NoError(t, database.Model(&models.Suspect{}).Order("name ASC").Pluck("status", &statuses).Error)
	assert.Equal(t, []string{
		models.SuspectStatusArrested,
		models.SuspectStatusUnderSevereSurveillance,
		models.SuspectStatusUnderInvestigation,
	}, statuses)

	assert.Equal(t, 0, RunSurveillanceSweep(wf))
}

func TestRunSessionCleanup(t *testing.T) {
	database, _ := setupJobs(t)
	require.NoError(t, database.Create(&models.Session{
		ID: uuid.NewString(), UserID: "u-1", Token: "expired", ExpiresAt: time.Now().Add(-time.Hour),
	}).Error)
	require.NoError(t, database.Create(&models.Session{
		ID: uuid.NewString(), UserID: "u-1", Token: "live", ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	RunSessionCleanup(database)

	var tokens []string
	require.NoError(t, database.Model(&models.Session{}).Pluck("token", &tokens).Error)
	assert.Equal(t, []string{"live"}, tokens)
}

func TestSchedulerRegister(t *testing.T) {
	_, wf := setupJobs(t)

	s := NewScheduler(wf, "Not/AZone")
	require.NoError(t, s.Register())
	assert.Len(t, s.Entries(), 3)

	s = NewScheduler(wf, "Asia/Tehran")
	require.NoError(t, s.Start())
	s.Stop()
}
