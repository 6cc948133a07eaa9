package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type rewardSubmissionRequest struct {
	CaseID      *string `json:"case_id"`
	Information string  `json:"information"`
}

type reviewRequest struct {
	Approve  bool   `json:"approve"`
	Comments string `json:"comments"`
}

type claimRewardRequest struct {
	Code     string `json:"code"`
	Location string `json:"location"`
}

// SubmitRewardInfoHandler files a tip from a citizen, optionally tied to a case
func SubmitRewardInfoHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req rewardSubmissionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.CaseID != nil && *req.CaseID == "" {
		req.CaseID = nil
	}

	sub, err := getWorkflow(c).SubmitRewardInfo(caller, req.CaseID, req.Information)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, sub)
}

func OfficerReviewSubmissionHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sub, err := getWorkflow(c).OfficerReviewSubmission(caller, c.Param("id"), req.Approve, req.Comments)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, sub)
}

// DetectiveReviewSubmissionHandler makes the final call on a tip. Approval issues the reward.
func DetectiveReviewSubmissionHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sub, reward, err := getWorkflow(c).DetectiveReviewSubmission(caller, c.Param("id"), req.Approve, req.Comments)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"submission": sub,
		"reward":     reward,
	})
}

// LookupRewardHandler finds a reward by ?code= and ?national_id=
func LookupRewardHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	lookup, err := getWorkflow(c).LookupReward(caller, c.QueryParam("code"), c.QueryParam("national_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, lookup)
}

func ClaimRewardHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req claimRewardRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	reward, err := getWorkflow(c).ClaimReward(caller, c.Param("id"), req.Code, req.Location)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, reward)
}

func GetRewardSubmissionHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	sub, err := getWorkflow(c).GetRewardSubmission(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, sub)
}
