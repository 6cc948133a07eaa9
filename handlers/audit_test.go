package handlers

import (
	"net/http"
	"testing"

	"police_flow_app_go/models"
	"police_flow_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditPage struct {
	Logs  []models.AuditLog `json:"logs"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
}

func TestAuditLogRoutes(t *testing.T) {
	api := setupAPI(t)
	_, chief := api.login("Chief Moradi", models.RolePoliceChief)
	_, detective := api.login("Detective Cole", models.RoleDetective)

	rec := api.do(http.MethodPost, "/api/cases", chief, services.CaseInput{Title: "Burglary", Description: "Shop broken into"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Case
	decode(t, rec, &created)

	t.Run("chief lists case entries", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/admin/audit-logs?resource_type=Case", chief, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page auditPage
		decode(t, rec, &page)
		assert.Equal(t, int64(1), page.Total)
		assert.Equal(t, 1, page.Page)
		require.Len(t, page.Logs, 1)
		assert.Equal(t, created.ID, page.Logs[0].ResourceID)
	})

	t.Run("resource history", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/admin/audit-logs/Case/"+created.ID, chief, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var logs []models.AuditLog
		decode(t, rec, &logs)
		assert.Len(t, logs, 1)
	})

	t.Run("detective is refused", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/admin/audit-logs", detective, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = api.do(http.MethodGet, "/api/admin/security-alerts", detective, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("security alerts", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/admin/security-alerts", chief, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
