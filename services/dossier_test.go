package services

import (
	"context"
	"testing"

	"police_flow_app_go/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDossier(t *testing.T) {
	e := setupWorkflow(t)
	c := e.openCase(models.SeverityLevel1)
	s, trial := e.trialFor(c)

	_, err := e.wf.AddGuiltScore(e.detective, s.ID, 8, "fingerprints on the safe")
	require.NoError(t, err)
	_, err = e.wf.AddGuiltScore(e.sergeant, s.ID, 7, "alibi does not hold")
	require.NoError(t, err)
	_, err = e.wf.AddInterrogation(e.detective, s.ID, InterrogationInput{DurationMinutes: 45, Transcript: "Denies everything"})
	require.NoError(t, err)
	_, err = e.wf.AddEvidence(e.detective, c.ID, EvidenceInput{EvidenceType: models.EvidenceTypeOther, Title: "Crowbar"})
	require.NoError(t, err)

	d, err := e.wf.BuildDossier(context.Background(), e.judge, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, d.Case.ID)
	require.NotNil(t, d.Trial)
	assert.Equal(t, trial.ID, d.Trial.ID)
	assert.Len(t, d.Evidence, 1)
	require.Len(t, d.Suspects, 1)
	assert.Equal(t, s.ID, d.Suspects[0].ID)
	type scoreLine struct {
		AssignedBy string
		Score      int
		Reason     string
	}
	var got []scoreLine
	for _, gs := range d.Suspects[0].GuiltScores {
		got = append(got, scoreLine{gs.AssignedByID, gs.Score, gs.Justification})
	}
	want := []scoreLine{
		{e.detective.UserID, 8, "fingerprints on the safe"},
		{e.sergeant.UserID, 7, "alibi does not hold"},
	}
	byAssigner := cmpopts.SortSlices(func(a, b scoreLine) bool { return a.AssignedBy < b.AssignedBy })
	if diff := cmp.Diff(want, got, byAssigner); diff != "" {
		t.Errorf("guilt scores mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, d.Suspects[0].Decisions, 1)
	assert.Len(t, d.Suspects[0].Interrogations, 1)
	assert.Empty(t, d.BailFines)

	_, err = e.wf.BuildDossier(context.Background(), e.captain, c.ID)
	assert.NoError(t, err)
}

func TestBuildDossierAccess(t *testing.T) {
	e := setupWorkflow(t)
	c := e.openCase(models.SeverityLevel2)
	e.trialFor(c)
	otherJudge := e.user("Judge Sadeghi", models.RoleJudge)

	_, err := e.wf.BuildDossier(context.Background(), otherJudge, c.ID)
	assert.ErrorIs(t, err, ErrAuthorizationDenied)

	_, err = e.wf.BuildDossier(context.Background(), e.detective, c.ID)
	assert.ErrorIs(t, err, ErrAuthorizationDenied)

	noTrial := e.openCase(models.SeverityLevel2)
	_, err = e.wf.BuildDossier(context.Background(), e.judge, noTrial.ID)
	assert.ErrorIs(t, err, ErrAuthorizationDenied)

	_, err = e.wf.BuildDossier(context.Background(), e.chief, "missing")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}
