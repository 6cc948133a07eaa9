package services

import (
	"testing"

	"police_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowAuditTrail(t *testing.T) {
	e := setupWorkflow(t)
	c := e.openCase(models.SeverityLevel2)
	_, err := e.wf.UpdateCaseStatus(e.detective, c.ID, models.CaseStatusUnderInvestigation, "")
	require.NoError(t, err)

	history, err := GetResourceAuditHistory(e.db, "Case", c.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)

	var transition *models.AuditLog
	for i := range history {
		if history[i].Action == models.AuditActionTransition {
			transition = &history[i]
		}
	}
	require.NotNil(t, transition)
	assert.Equal(t, e.detective.UserID, *transition.UserID)
	assert.Equal(t, "Detective Cole", transition.UserName)
	assert.Contains(t, transition.UserRoles, models.RoleDetective)

	changes := transition.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, "status", changes[0].Field)
	assert.Equal(t, models.CaseStatusOpen, changes[0].Old)
	assert.Equal(t, models.CaseStatusUnderInvestigation, changes[0].New)
}

func TestAuditLogsAreImmutable(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, writeAuditLog(db, AuditContext{UserID: "u-1", UserName: "Chief"}, AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: "Case",
		ResourceID:   "c-1",
		ResourceName: "CASE-1",
		Description:  "Case created",
		New:          map[string]string{"status": "Open"},
	}))

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "Case", entry.ResourceType)

	err := db.Model(&entry).Update("description", "rewritten").Error
	assert.ErrorIs(t, err, models.ErrImmutableRecord)
	err = db.Delete(&entry).Error
	assert.ErrorIs(t, err, models.ErrImmutableRecord)
}

func TestGetAuditLogsFilters(t *testing.T) {
	db := setupTestDB(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, writeAuditLog(db, AuditContext{UserID: "u-1"}, AuditEntry{Action: models.AuditActionCreate, ResourceType: "Case", ResourceID: "c-1"}))
	}
	require.NoError(t, writeAuditLog(db, AuditContext{UserID: "u-2"}, AuditEntry{Action: models.AuditActionClaim, ResourceType: "Reward", ResourceID: "r-1"}))

	logs, total, err := GetAuditLogs(db, AuditLogFilters{ResourceType: "Case"}, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, logs, 2)

	logs, total, err = GetAuditLogs(db, AuditLogFilters{UserID: "u-2", Action: string(models.AuditActionClaim)}, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "r-1", logs[0].ResourceID)
}
