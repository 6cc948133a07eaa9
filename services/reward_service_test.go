package services

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"police_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rewardCodePattern = regexp.MustCompile(`^RWD-[A-Z0-9]{12}$`)

func TestGenerateRewardCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateRewardCode()
		require.NoError(t, err)
		assert.Regexp(t, rewardCodePattern, code)
		seen[code] = true
	}
	assert.Len(t, seen, 50)
}

// issueReward runs a tip through both reviews and returns the issued reward
func (e *testEnv) issueReward(caseID *string) *models.Reward {
	e.t.Helper()
	sub, err := e.wf.SubmitRewardInfo(e.citizen, caseID, "The red Peugeot is parked behind the bakery")
	require.NoError(e.t, err)
	_, err = e.wf.OfficerReviewSubmission(e.officer, sub.ID, true, "credible")
	require.NoError(e.t, err)
	_, reward, err := e.wf.DetectiveReviewSubmission(e.detective, sub.ID, true, "led to the car")
	require.NoError(e.t, err)
	require.NotNil(e.t, reward)
	return reward
}

func TestRewardSubmissionFlow(t *testing.T) {
	e := setupWorkflow(t)
	c := e.openCase(models.SeverityLevel2)
	start := testNow.AddDate(0, 0, -12)
	_, err := e.wf.AddSuspect(e.detective, c.ID, SuspectInput{Name: "Omid", NationalID: "NID-44", SurveillanceStartDate: &start})
	require.NoError(t, err)

	reward := e.issueReward(&c.ID)
	assert.Equal(t, int64(24)*RewardUnit, reward.Amount)
	assert.Regexp(t, rewardCodePattern, reward.Code)
	assert.Equal(t, models.RewardStatusPending, reward.Status)
	assert.Equal(t, e.citizen.UserID, reward.RecipientID)

	sub, err := e.wf.GetRewardSubmission(e.citizen, reward.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, models.RewardSubmissionStatusApproved, sub.Status)
	require.NotNil(t, sub.Reward)
	assert.Equal(t, reward.ID, sub.Reward.ID)

	kinds := e.notes.Kinds(e.citizen.UserID)
	assert.Equal(t, []string{models.NotificationKindRewardUpdate, models.NotificationKindRewardUpdate}, kinds)
}

func TestRewardWithoutCaseIsZero(t *testing.T) {
	e := setupWorkflow(t)
	reward := e.issueReward(nil)
	assert.Zero(t, reward.Amount)
	assert.Nil(t, reward.CaseID)
}

func TestRewardReviewOrder(t *testing.T) {
	e := setupWorkflow(t)
	sub, err := e.wf.SubmitRewardInfo(e.citizen, nil, "tip")
	require.NoError(t, err)

	// detective cannot decide before the officer has screened it
	_, _, err = e.wf.DetectiveReviewSubmission(e.detective, sub.ID, true, "")
	assert.ErrorIs(t, err, ErrWorkflowViolation)

	_, err = e.wf.OfficerReviewSubmission(e.detective, sub.ID, true, "")
	assert.ErrorIs(t, err, ErrAuthorizationDenied)

	rejected, err := e.wf.OfficerReviewSubmission(e.officer, sub.ID, false, "not useful")
	require.NoError(t, err)
	assert.Equal(t, models.RewardSubmissionStatusRejected, rejected.Status)

	_, err = e.wf.OfficerReviewSubmission(e.officer, sub.ID, true, "")
	assert.ErrorIs(t, err, ErrWorkflowViolation)
	assert.Zero(t, e.count(&models.Reward{}, "submission_id = ?", sub.ID))

	_, err = e.wf.SubmitRewardInfo(e.citizen, nil, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClaimReward(t *testing.T) {
	e := setupWorkflow(t)
	reward := e.issueReward(nil)

	t.Run("wrong code has no effect", func(t *testing.T) {
		_, err := e.wf.ClaimReward(e.officer, reward.ID, "RWD-000000000000", "Station 4")
		assert.ErrorIs(t, err, ErrInvalidRewardCode)

		var stored models.Reward
		require.NoError(t, e.db.First(&stored, "id = ?", reward.ID).Error)
		assert.Equal(t, models.RewardStatusPending, stored.Status)
		assert.Nil(t, stored.ClaimedDate)
	})

	t.Run("code must match exactly", func(t *testing.T) {
		for _, supplied := range []string{strings.ToLower(reward.Code), "  " + reward.Code + " ", ""} {
			_, err := e.wf.ClaimReward(e.officer, reward.ID, supplied, "Station 4")
			assert.ErrorIs(t, err, ErrInvalidRewardCode, "supplied %q", supplied)
		}
		var stored models.Reward
		require.NoError(t, e.db.First(&stored, "id = ?", reward.ID).Error)
		assert.Equal(t, models.RewardStatusPending, stored.Status)
	})

	t.Run("correct code claims once", func(t *testing.T) {
		claimed, err := e.wf.ClaimReward(e.officer, reward.ID, reward.Code, "Station 4")
		require.NoError(t, err)
		assert.Equal(t, models.RewardStatusClaimed, claimed.Status)
		require.NotNil(t, claimed.ClaimedByOfficer)
		assert.Equal(t, e.officer.UserID, *claimed.ClaimedByOfficer)
		assert.Equal(t, testNow, claimed.ClaimedDate.UTC())

		_, err = e.wf.ClaimReward(e.officer, reward.ID, reward.Code, "Station 4")
		assert.ErrorIs(t, err, ErrRewardAlreadyClaimed)
	})
}

func TestLookupReward(t *testing.T) {
	e := setupWorkflow(t)
	reward := e.issueReward(nil)
	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", e.citizen.UserID).Update("national_id", "0012345678").Error)

	found, err := e.wf.LookupReward(e.sergeant, reward.Code, "0012345678")
	require.NoError(t, err)
	assert.Equal(t, reward.ID, found.Reward.ID)
	assert.Equal(t, "Citizen Jafari", found.RecipientName)

	_, err = e.wf.LookupReward(e.sergeant, reward.Code, "9999999999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.wf.LookupReward(e.sergeant, strings.ToLower(reward.Code), "0012345678")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.wf.LookupReward(e.citizen, reward.Code, "0012345678")
	assert.ErrorIs(t, err, ErrAuthorizationDenied)
}

func TestRewardCodeStaysWithRecipient(t *testing.T) {
	e := setupWorkflow(t)
	reward := e.issueReward(nil)
	stranger := e.user("Stranger Rostami", models.RoleBasicUser)

	_, err := e.wf.GetRewardSubmission(stranger, reward.SubmissionID)
	assert.ErrorIs(t, err, ErrRewardSubmissionNotFound)

	own, err := e.wf.GetRewardSubmission(e.citizen, reward.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, reward.Code, own.ClaimCode)

	staff, err := e.wf.GetRewardSubmission(e.detective, reward.SubmissionID)
	require.NoError(t, err)
	assert.Empty(t, staff.ClaimCode)
	require.NotNil(t, staff.Reward)

	payload, err := json.Marshal(staff)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), reward.Code)

	payload, err = json.Marshal(reward)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), reward.Code)
}
