package services

import (
	"encoding/json"
	"strings"
	"time"

	"police_flow_app_go/models"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditContext identifies who performed an audited operation and from where
type AuditContext struct {
	UserID    string
	UserName  string
	UserRoles []string
	IPAddress string
	UserAgent string
}

// AuditEntry describes one audited operation on a resource. Old and New are
// marshalled to JSON; nil leaves the column empty.
type AuditEntry struct {
	Action       models.AuditAction
	ResourceType string
	ResourceID   string
	ResourceName string
	Description  string
	Old          interface{}
	New          interface{}
}

// LogAuditEvent stores the entry in the background so callers never wait on it
func LogAuditEvent(db *gorm.DB, actor AuditContext, entry AuditEntry) {
	go func() {
		if err := writeAuditLog(db, actor, entry); err != nil {
			zap.S().Errorw("Failed to create audit log",
				"action", entry.Action, "resource_type", entry.ResourceType, "resource_id", entry.ResourceID, "error", err)
		}
	}()
}

func writeAuditLog(db *gorm.DB, actor AuditContext, entry AuditEntry) error {
	row := models.AuditLog{
		UserID:       ptrIfNotEmpty(actor.UserID),
		UserName:     actor.UserName,
		UserRoles:    strings.Join(actor.UserRoles, ","),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		ResourceName: entry.ResourceName,
		Description:  entry.Description,
		OldValues:    toJSON(entry.Old),
		NewValues:    toJSON(entry.New),
	}
	return db.Create(&row).Error
}

// toJSON encodes v for a JSON column; values that cannot be encoded are dropped
func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		zap.S().Warnw("Dropping unencodable JSON value", "error", err)
		return nil
	}
	return datatypes.JSON(raw)
}

func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetResourceAuditHistory returns every entry of one resource, newest first
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where(&models.AuditLog{ResourceType: resourceType, ResourceID: resourceID}).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// AuditLogFilters narrows an audit log query; zero fields are ignored
type AuditLogFilters struct {
	UserID       string
	ResourceType string
	Action       string
	DateFrom     time.Time
	DateTo       time.Time
}

// scope applies the filters to a query over audit_logs
func (f AuditLogFilters) scope(query *gorm.DB) *gorm.DB {
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.ResourceType != "" {
		query = query.Where("resource_type = ?", f.ResourceType)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if !f.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		query = query.Where("created_at <= ?", f.DateTo)
	}
	return query
}

const defaultAuditPageSize = 20

// GetAuditLogs returns one page of matching entries, newest first, with the total match count
func GetAuditLogs(db *gorm.DB, filters AuditLogFilters, page, pageSize int) ([]models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultAuditPageSize
	}

	var total int64
	if err := db.Model(&models.AuditLog{}).Scopes(filters.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := db.Scopes(filters.scope).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}
