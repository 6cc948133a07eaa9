package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"police_flow_app_go/config"
	"police_flow_app_go/db"
	"police_flow_app_go/models"
	"police_flow_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "correct-horse-battery"

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type apiEnv struct {
	t     *testing.T
	db    *gorm.DB
	wf    *services.Workflow
	clock *services.FixedClock
	e     *echo.Echo
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	testDB, err := db.Open(dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	// Handlers and the auth middleware read the global connection
	db.DB = testDB
	return testDB
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	testDB := setupTestDB(t)
	clock := services.NewFixedClock(testNow)
	wf := services.NewWorkflow(testDB, clock, services.NewNotificationService(testDB, nil))
	wf.AuditSync = true

	e := echo.New()
	RegisterRoutes(e, wf, &config.Config{Environment: "test"})
	return &apiEnv{t: t, db: testDB, wf: wf, clock: clock, e: e}
}

// login provisions a user with roles and returns its user id and session token
func (a *apiEnv) login(name string, roles ...string) (string, string) {
	a.t.Helper()
	user, err := services.CreateUserWithRoles(a.db, services.NewUserInput{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@police.test",
		Password: testPassword,
		Roles:    roles,
	})
	require.NoError(a.t, err)
	session, err := services.CreateSession(a.db, user.ID, "127.0.0.1", "test-agent")
	require.NoError(a.t, err)
	return user.ID, session.Token
}

func (a *apiEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = strings.NewReader(string(payload))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a JSON response body into v
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
