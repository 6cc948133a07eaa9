package handlers

import (
	"net/http"

	"police_flow_app_go/db"
	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// GetNotificationsHandler lists the caller's notifications. ?unread=true limits it to unread ones.
func GetNotificationsHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	service := services.NewNotificationService(db.DB, getConfig(c))
	notifications, err := service.GetNotifications(caller.UserID, c.QueryParam("unread") == "true", 50)
	if err != nil {
		return toHTTPError(err)
	}
	unread, err := service.GetUnreadCount(caller.UserID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func MarkNotificationReadHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	service := services.NewNotificationService(db.DB, getConfig(c))
	if err := service.MarkAsRead(c.Param("id"), caller.UserID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func MarkAllNotificationsReadHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}

	service := services.NewNotificationService(db.DB, getConfig(c))
	if err := service.MarkAllAsRead(caller.UserID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
