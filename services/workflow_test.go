package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"police_flow_app_go/db"
	"police_flow_app_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentNotification struct {
	UserID  string
	Kind    string
	Title   string
	Message string
	CaseID  *string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Notify(userID, kind, title, message string, caseID *string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{UserID: userID, Kind: kind, Title: title, Message: message, CaseID: caseID})
}

// For returns the notifications sent to userID
func (r *recordingNotifier) For(userID string) []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentNotification
	for _, n := range r.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (r *recordingNotifier) Kinds(userID string) []string {
	var kinds []string
	for _, n := range r.For(userID) {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// testEnv is a workflow over a private in-memory database with one user per role
type testEnv struct {
	t     *testing.T
	db    *gorm.DB
	clock *FixedClock
	notes *recordingNotifier
	wf    *Workflow

	chief     Caller
	captain   Caller
	sergeant  Caller
	detective Caller
	officer   Caller
	cadet     Caller
	judge     Caller
	forensic  Caller
	citizen   Caller
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := db.Open(dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(models.All()...))
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return database
}

func setupWorkflow(t *testing.T) *testEnv {
	t.Helper()
	database := setupTestDB(t)
	clock := NewFixedClock(testNow)
	notes := &recordingNotifier{}
	wf := NewWorkflow(database, clock, notes)
	wf.AuditSync = true

	e := &testEnv{t: t, db: database, clock: clock, notes: notes, wf: wf}
	e.chief = e.user("Chief Rahimi", models.RolePoliceChief)
	e.captain = e.user("Captain Karimi", models.RoleCaptain)
	e.sergeant = e.user("Sergeant Ahmadi", models.RoleSergeant)
	e.detective = e.user("Detective Cole", models.RoleDetective)
	e.officer = e.user("Officer Moradi", models.RolePoliceOfficer)
	e.cadet = e.user("Cadet Nouri", models.RoleCadet)
	e.judge = e.user("Judge Hosseini", models.RoleJudge)
	e.forensic = e.user("Dr Tehrani", models.RoleForensicDoctor)
	e.citizen = e.user("Citizen Jafari", models.RoleBasicUser)
	return e
}

// user creates an active user with the given roles and returns it as a caller
func (e *testEnv) user(name string, roles ...string) Caller {
	e.t.Helper()
	u := models.User{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@police.test",
		Password: "not-a-hash",
		IsActive: true,
	}
	require.NoError(e.t, e.db.Create(&u).Error)
	for _, r := range roles {
		require.NoError(e.t, e.db.Create(&models.UserRole{UserID: u.ID, Role: r, IsActive: true}).Error)
	}
	c := NewCaller(u.ID, roles...)
	c.Name = name
	return c
}

// openCase creates an Open case of the given severity with the detective and sergeant assigned
func (e *testEnv) openCase(severity string) *models.Case {
	e.t.Helper()
	c, err := e.wf.CreateCase(e.chief, CaseInput{Title: "Robbery on Valiasr", Description: "Store robbed at night", Severity: severity})
	require.NoError(e.t, err)
	_, err = e.wf.AssignDetective(e.chief, c.ID, e.detective.UserID)
	require.NoError(e.t, err)
	c, err = e.wf.AssignSergeant(e.chief, c.ID, e.sergeant.UserID)
	require.NoError(e.t, err)
	return c
}

func (e *testEnv) suspect(caseID, name string) *models.Suspect {
	e.t.Helper()
	s, err := e.wf.AddSuspect(e.detective, caseID, SuspectInput{Name: name, NationalID: "NID-" + name})
	require.NoError(e.t, err)
	return s
}

// trialFor approves an arrest on a new suspect of c and assigns the judge to the trial
func (e *testEnv) trialFor(c *models.Case) (*models.Suspect, *models.Trial) {
	e.t.Helper()
	s := e.suspect(c.ID, "Reza")
	res, err := e.wf.CreateCaptainDecision(e.captain, s.ID, models.DecisionApproveArrest, "enough evidence")
	require.NoError(e.t, err)
	if res.Trial == nil {
		res, err = e.wf.ChiefApproveDecision(e.chief, res.Decision.ID, true, "approved")
		require.NoError(e.t, err)
	}
	require.NotNil(e.t, res.Trial)
	trial, err := e.wf.ScheduleTrial(e.captain, res.Trial.ID, e.judge.UserID, nil)
	require.NoError(e.t, err)
	return s, trial
}

func (e *testEnv) reloadSuspect(id string) models.Suspect {
	e.t.Helper()
	var s models.Suspect
	require.NoError(e.t, e.db.First(&s, "id = ?", id).Error)
	return s
}

func (e *testEnv) reloadCase(id string) models.Case {
	e.t.Helper()
	var c models.Case
	require.NoError(e.t, e.db.First(&c, "id = ?", id).Error)
	return c
}

func (e *testEnv) count(model interface{}, query string, args ...interface{}) int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
