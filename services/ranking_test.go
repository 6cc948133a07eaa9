package services

import (
	"bytes"
	"testing"
	"time"

	"police_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCalculateRewardAmount(t *testing.T) {
	assert.EqualValues(t, 0, CalculateRewardAmount(models.SeverityCritical, 0))
	assert.EqualValues(t, 0, CalculateRewardAmount(models.SeverityCritical, -5))
	assert.EqualValues(t, 10*RewardUnit, CalculateRewardAmount(models.SeverityLevel3, 10))
	assert.EqualValues(t, 40*RewardUnit, CalculateRewardAmount(models.SeverityCritical, 10))
}

func TestReclassifyIsPure(t *testing.T) {
	start := testNow.AddDate(0, 0, -45)
	s := &models.Suspect{Status: models.SuspectStatusUnderInvestigation, SurveillanceStartDate: &start}

	assert.Equal(t, models.SuspectStatusUnderSevereSurveillance, Reclassify(s, testNow))
	assert.Equal(t, models.SuspectStatusUnderInvestigation, s.Status)
	assert.Equal(t, 45, DaysUnderInvestigation(s, testNow))

	s.SurveillanceStartDate = nil
	assert.Equal(t, models.SuspectStatusUnderInvestigation, Reclassify(s, testNow))
	assert.Equal(t, 0, DaysUnderInvestigation(s, testNow))

	future := testNow.AddDate(0, 0, 3)
	s.SurveillanceStartDate = &future
	assert.Equal(t, 0, DaysUnderInvestigation(s, testNow))
}

// rankingFixture puts one person in two cases: an active Level 3 case watched for 40 days
// and a resolved Critical case watched for 90 days
func rankingFixture(t *testing.T, e *testEnv) (*models.Suspect, *models.Case, *models.Case) {
	active := e.openCase(models.SeverityLevel3)
	resolved := e.openCase(models.SeverityCritical)

	start40 := testNow.AddDate(0, 0, -40)
	start90 := testNow.AddDate(0, 0, -90)
	s, err := e.wf.AddSuspect(e.detective, active.ID, SuspectInput{Name: "Dariush", NationalID: "NID-7", SurveillanceStartDate: &start40})
	require.NoError(t, err)
	_, err = e.wf.AddSuspect(e.detective, resolved.ID, SuspectInput{Name: "Dariush", NationalID: "NID-7", SurveillanceStartDate: &start90})
	require.NoError(t, err)
	_, err = e.wf.UpdateCaseStatus(e.detective, resolved.ID, models.CaseStatusResolved, "")
	require.NoError(t, err)
	return s, active, resolved
}

func TestRankSuspectAcrossCases(t *testing.T) {
	e := setupWorkflow(t)
	s, _, _ := rankingFixture(t, e)

	rank, err := RankSuspect(e.db, s, testNow)
	require.NoError(t, err)
	assert.Equal(t, 40, rank.MaxDays)
	assert.Equal(t, 4, rank.MaxSeverity)
	assert.Equal(t, 160, rank.Ranking)
	assert.Equal(t, int64(160)*RewardUnit, rank.RewardAmount)

	// Escalated at creation: 40 days is past the threshold
	assert.Equal(t, models.SuspectStatusUnderSevereSurveillance, s.Status)
}

func TestListMostWanted(t *testing.T) {
	e := setupWorkflow(t)
	_, active, resolved := rankingFixture(t, e)

	fresh := e.openCase(models.SeverityLevel2)
	recent := testNow.AddDate(0, 0, -5)
	_, err := e.wf.AddSuspect(e.detective, fresh.ID, SuspectInput{Name: "Babak", NationalID: "NID-9", SurveillanceStartDate: &recent})
	require.NoError(t, err)

	arrested := e.suspect(fresh.ID, "Caught")
	_, err = e.wf.UpdateSuspectStatus(e.sergeant, arrested.ID, models.SuspectStatusArrested)
	require.NoError(t, err)

	entries, err := e.wf.ListMostWanted(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Dariush", entries[0].Name)
	assert.Equal(t, "NID-7", entries[0].NationalID)
	assert.Equal(t, 160, entries[0].Ranking)
	assert.ElementsMatch(t, []string{active.ID, resolved.ID}, entries[0].CaseIDs)
	assert.Equal(t, "Babak", entries[1].Name)
	assert.Equal(t, 10, entries[1].Ranking)

	top, err := e.wf.ListMostWanted(1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestMostWantedEscalatesOnRead(t *testing.T) {
	e := setupWorkflow(t)
	c := e.openCase(models.SeverityLevel2)
	s := e.suspect(c.ID, "Kian")

	e.clock.Set(testNow.Add(31 * 24 * time.Hour))
	entries, err := e.wf.ListMostWanted(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SuspectStatusUnderSevereSurveillance, entries[0].Status)
	assert.Equal(t, models.SuspectStatusUnderSevereSurveillance, e.reloadSuspect(s.ID).Status)
}

func TestExportMostWantedXLSX(t *testing.T) {
	e := setupWorkflow(t)
	rankingFixture(t, e)

	buf, err := e.wf.ExportMostWantedXLSX(10)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(mostWantedSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, mostWantedHeaders, rows[0])
	assert.Equal(t, "Dariush", rows[1][1])
	assert.Equal(t, "160", rows[1][7])
}
