package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"police_flow_app_go/models"
	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestAuditContext(t *testing.T) {
	e := echo.New()

	t.Run("WithCaller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
		c := e.NewContext(req, httptest.NewRecorder())

		caller := services.NewCaller("user-123", models.RoleCaptain)
		caller.Name = "Captain Karimi"
		c.Set(ContextKeyCaller, caller)

		var got services.AuditContext
		handler := AuditContext()(func(c echo.Context) error {
			got = GetAuditContext(c)
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, handler(c))
		assert.Equal(t, "user-123", got.UserID)
		assert.Equal(t, "Captain Karimi", got.UserName)
		assert.Equal(t, []string{models.RoleCaptain}, got.UserRoles)
		assert.Equal(t, "10.0.0.7", got.IPAddress)
		assert.Equal(t, "test-agent", got.UserAgent)
	})

	t.Run("Anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "curl")
		c := e.NewContext(req, httptest.NewRecorder())

		got := GetAuditContext(c)
		assert.Empty(t, got.UserID)
		assert.Equal(t, "curl", got.UserAgent)
	})
}
