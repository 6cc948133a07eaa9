package handlers

import (
	"net/http"
	"testing"

	"police_flow_app_go/models"
	"police_flow_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplaintBecomesCase(t *testing.T) {
	api := setupAPI(t)
	complainantID, citizen := api.login("Citizen Jafari", models.RoleComplainant)
	_, cadet := api.login("Cadet Nouri", models.RoleCadet)
	_, officer := api.login("Officer Moradi", models.RolePoliceOfficer)

	rec := api.do(http.MethodPost, "/api/complaints", citizen, complaintRequest{
		Title:       "Stolen bicycle",
		Description: "Taken from the courtyard overnight",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var complaint models.Complaint
	decode(t, rec, &complaint)
	assert.Equal(t, models.ComplaintStatusPending, complaint.Status)
	assert.Equal(t, complainantID, complaint.SubmittedByID)

	// Only the officer step can approve
	rec = api.do(http.MethodPost, "/api/complaints/"+complaint.ID+"/officer-review", officer,
		complaintReviewRequest{Action: services.OfficerActionApprove})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/api/complaints/"+complaint.ID+"/intern-review", cadet,
		complaintReviewRequest{Action: services.InternActionForward, Comments: "Looks complete"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/complaints/"+complaint.ID+"/officer-review", officer, complaintReviewRequest{
		Action: services.OfficerActionApprove,
		Case:   &services.CaseInput{Severity: models.SeverityLevel3, IncidentLocation: "Courtyard"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &complaint)
	assert.Equal(t, models.ComplaintStatusApproved, complaint.Status)
	require.NotNil(t, complaint.CaseID)

	rec = api.do(http.MethodGet, "/api/cases/"+*complaint.CaseID, officer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var opened models.Case
	decode(t, rec, &opened)
	assert.Equal(t, models.CaseStatusOpen, opened.Status)
	assert.Equal(t, "Courtyard", opened.IncidentLocation)
}

func TestCaseApprovalOverHTTP(t *testing.T) {
	api := setupAPI(t)
	_, officer := api.login("Officer Moradi", models.RolePoliceOfficer)
	_, chief := api.login("Chief Rahimi", models.RolePoliceChief)

	rec := api.do(http.MethodPost, "/api/cases", officer, services.CaseInput{
		Title:       "Armed robbery",
		Description: "Jewelry store on Valiasr street",
		Severity:    models.SeverityLevel1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Case
	decode(t, rec, &created)
	assert.Equal(t, models.CaseStatusPending, created.Status)

	t.Run("officer cannot approve", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/cases/"+created.ID+"/approve", officer, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("chief approves once", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/cases/"+created.ID+"/approve", chief, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var approved models.Case
		decode(t, rec, &approved)
		assert.Equal(t, models.CaseStatusOpen, approved.Status)

		rec = api.do(http.MethodPost, "/api/cases/"+created.ID+"/approve", chief, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing case", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/cases/00000000-0000-0000-0000-000000000000/approve", chief, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid severity", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/cases", officer, services.CaseInput{
			Title:       "Bad",
			Description: "Severity out of range",
			Severity:    "Level 9",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/cases", officer, "not an object")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDossierRequiresCommandOrJudge(t *testing.T) {
	api := setupAPI(t)
	_, chief := api.login("Chief Rahimi", models.RolePoliceChief)
	_, detective := api.login("Detective Cole", models.RoleDetective)

	rec := api.do(http.MethodPost, "/api/cases", chief, services.CaseInput{Title: "Fraud", Description: "Forged cheques"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Case
	decode(t, rec, &created)

	rec = api.do(http.MethodGet, "/api/cases/"+created.ID+"/dossier", detective, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/cases/"+created.ID+"/dossier", chief, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dossier services.Dossier
	decode(t, rec, &dossier)
	assert.Equal(t, created.ID, dossier.Case.ID)
}
