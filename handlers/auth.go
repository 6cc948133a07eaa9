package handlers

import (
	"errors"
	"net/http"
	"strings"

	"police_flow_app_go/db"
	"police_flow_app_go/middleware"
	"police_flow_app_go/models"
	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginPostHandler checks credentials and opens a session, returned both as a cookie
// and as a token for API clients
func LoginPostHandler(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	session, err := services.Login(db.DB, req.Email, req.Password, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return toHTTPError(err)
	}

	middleware.SetSessionCookie(c, session)

	audit := middleware.GetAuditContext(c)
	audit.UserID = session.UserID
	services.LogAuditEvent(db.DB, audit, services.AuditEntry{
		Action: models.AuditActionLogin, ResourceType: "User", ResourceID: session.UserID, Description: "User logged in",
	})

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user_id":    session.UserID,
	})
}

// LogoutHandler ends the current session
func LogoutHandler(c echo.Context) error {
	if session, ok := c.Get(middleware.ContextKeySession).(*models.Session); ok {
		if err := services.DeleteSession(db.DB, session.Token); err != nil {
			return toHTTPError(err)
		}
		audit := middleware.GetAuditContext(c)
		services.LogAuditEvent(db.DB, audit, services.AuditEntry{
			Action: models.AuditActionLogout, ResourceType: "User", ResourceID: session.UserID, Description: "User logged out",
		})
	}
	middleware.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// GetCurrentUserHandler returns the authenticated user and their active roles
func GetCurrentUserHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":  middleware.GetCurrentUser(c),
		"roles": caller.RoleList(),
	})
}
