package handlers

import (
	"net/http"
	"time"

	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type scheduleTrialRequest struct {
	JudgeID   string     `json:"judge_id"`
	TrialDate *time.Time `json:"trial_date"`
}

func GetCaseTrialHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	trial, err := getWorkflow(c).GetCaseTrial(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, trial)
}

// ScheduleTrialHandler assigns the judge and date of a pending trial
func ScheduleTrialHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req scheduleTrialRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	trial, err := getWorkflow(c).ScheduleTrial(caller, c.Param("id"), req.JudgeID, req.TrialDate)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, trial)
}

func RecordVerdictHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var input services.VerdictInput
	if err := bind(c, &input); err != nil {
		return err
	}

	result, err := getWorkflow(c).RecordVerdict(caller, c.Param("id"), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func GetTrialHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	trial, err := getWorkflow(c).GetTrial(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, trial)
}
