package handlers

import (
	"net/http"
	"testing"

	"police_flow_app_go/middleware"
	"police_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPostHandler(t *testing.T) {
	api := setupAPI(t)
	api.login("Detective Cole", models.RoleDetective)

	t.Run("valid credentials", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/login", "", loginRequest{Email: "Detective.Cole@police.test", Password: testPassword})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body map[string]interface{}
		decode(t, rec, &body)
		assert.NotEmpty(t, body["token"])

		var cookieSet bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == middleware.SessionCookieName {
				cookieSet = c.Value == body["token"] && c.HttpOnly
			}
		}
		assert.True(t, cookieSet)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/login", "", loginRequest{Email: "detective.cole@police.test", Password: "nope-nope-nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/login", "", loginRequest{Email: "ghost@police.test", Password: testPassword})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/login", "", loginRequest{Email: "detective.cole@police.test"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetCurrentUserAndLogout(t *testing.T) {
	api := setupAPI(t)
	_, token := api.login("Sergeant Ahmadi", models.RoleSergeant, models.RoleDetective)

	rec := api.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		User  models.User `json:"user"`
		Roles []string    `json:"roles"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "sergeant.ahmadi@police.test", body.User.Email)
	assert.ElementsMatch(t, []string{models.RoleSergeant, models.RoleDetective}, body.Roles)

	rec = api.do(http.MethodPost, "/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	api := setupAPI(t)

	for _, path := range []string{"/api/cases", "/api/complaints", "/api/notifications"} {
		rec := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
