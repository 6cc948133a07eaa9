package handlers

import (
	"net/http"

	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type suspectStatusRequest struct {
	Status string `json:"status"`
}

type guiltScoreRequest struct {
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Comments string `json:"comments"`
}

type chiefApprovalRequest struct {
	Approve  bool   `json:"approve"`
	Comments string `json:"comments"`
}

func AddSuspectHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var input services.SuspectInput
	if err := bind(c, &input); err != nil {
		return err
	}

	suspect, err := getWorkflow(c).AddSuspect(caller, c.Param("id"), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, suspect)
}

func ListCaseSuspectsHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	suspects, err := getWorkflow(c).ListCaseSuspects(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, suspects)
}

// GetSuspectHandler returns a suspect together with its investigation figures
func GetSuspectHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	view, err := getWorkflow(c).GetSuspect(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func UpdateSuspectStatusHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req suspectStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	suspect, err := getWorkflow(c).UpdateSuspectStatus(caller, c.Param("id"), req.Status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, suspect)
}

func AddGuiltScoreHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req guiltScoreRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	score, err := getWorkflow(c).AddGuiltScore(caller, c.Param("id"), req.Score, req.Justification)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, score)
}

func AddInterrogationHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var input services.InterrogationInput
	if err := bind(c, &input); err != nil {
		return err
	}

	interrogation, err := getWorkflow(c).AddInterrogation(caller, c.Param("id"), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, interrogation)
}

// CreateDecisionHandler records the captain's decision on a suspect
func CreateDecisionHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req decisionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := getWorkflow(c).CreateCaptainDecision(caller, c.Param("id"), req.Decision, req.Comments)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

// ChiefApprovalHandler approves or rejects a captain decision on a critical case
func ChiefApprovalHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req chiefApprovalRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := getWorkflow(c).ChiefApproveDecision(caller, c.Param("id"), req.Approve, req.Comments)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func ListGuiltScoresHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	scores, err := getWorkflow(c).ListGuiltScores(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, scores)
}

func ListSuspectDecisionsHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	decisions, err := getWorkflow(c).ListSuspectDecisions(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, decisions)
}

func GetDecisionHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	decision, err := getWorkflow(c).GetDecision(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, decision)
}
