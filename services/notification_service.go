package services

import (
	"fmt"
	"time"

	"police_flow_app_go/config"
	"police_flow_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier receives workflow events for delivery. Delivery failures never reach the caller.
type Notifier interface {
	Notify(userID, kind, title, message string, caseID *string)
}

// NopNotifier drops every notification
type NopNotifier struct{}

func (NopNotifier) Notify(userID, kind, title, message string, caseID *string) {}

// NotificationService stores notifications and, when configured, emails a copy
type NotificationService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{DB: db, Cfg: cfg}
}

// Notify implements Notifier
func (s *NotificationService) Notify(userID, kind, title, message string, caseID *string) {
	notification := &models.Notification{
		UserID:  userID,
		CaseID:  caseID,
		Kind:    kind,
		Title:   title,
		Message: message,
	}
	if err := s.CreateNotification(notification); err != nil {
		zap.S().Errorw("Failed to store notification", "user_id", userID, "kind", kind, "error", err)
		return
	}

	if s.Cfg == nil {
		return
	}
	var user models.User
	if err := s.DB.Select("id", "email", "name").First(&user, "id = ?", userID).Error; err != nil {
		zap.S().Warnw("Notification recipient not found for email", "user_id", userID, "error", err)
		return
	}
	SendEmailAsync(s.Cfg, BuildNotificationEmail(user.Email, user.Name, title, message))
}

func (s *NotificationService) CreateNotification(notification *models.Notification) error {
	return s.DB.Create(notification).Error
}

func (s *NotificationService) GetNotifications(userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.DB.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkAsRead marks one of the user's notifications as read
func (s *NotificationService) MarkAsRead(notificationID, userID string) error {
	result := s.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(userID string) error {
	return s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now()).Error
}
