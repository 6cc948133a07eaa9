package handlers

import (
	"net/http"
	"strconv"
	"time"

	"police_flow_app_go/db"
	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const auditPageSize = 20

// GetAuditLogsHandler returns filtered and paginated audit logs
func GetAuditLogsHandler(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	filters := services.AuditLogFilters{
		UserID:       c.QueryParam("user_id"),
		ResourceType: c.QueryParam("resource_type"),
		Action:       c.QueryParam("action"),
	}
	if dateFrom := c.QueryParam("date_from"); dateFrom != "" {
		if t, err := time.Parse("2006-01-02", dateFrom); err == nil {
			filters.DateFrom = t
		}
	}
	if dateTo := c.QueryParam("date_to"); dateTo != "" {
		if t, err := time.Parse("2006-01-02", dateTo); err == nil {
			filters.DateTo = t.Add(24*time.Hour - time.Second) // end of day
		}
	}

	logs, total, err := services.GetAuditLogs(db.DB, filters, page, auditPageSize)
	if err != nil {
		zap.S().Errorw("Failed to fetch audit logs", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch audit logs")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":      logs,
		"total":     total,
		"page":      page,
		"page_size": auditPageSize,
	})
}

// GetResourceHistoryHandler returns the audit history for a specific resource
func GetResourceHistoryHandler(c echo.Context) error {
	logs, err := services.GetResourceAuditHistory(db.DB, c.Param("type"), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch history")
	}
	return c.JSON(http.StatusOK, logs)
}

func GetSecurityAlertsHandler(c echo.Context) error {
	if services.Monitor == nil {
		return c.JSON(http.StatusOK, []services.SecurityAlert{})
	}
	return c.JSON(http.StatusOK, services.Monitor.RecentAlerts())
}
