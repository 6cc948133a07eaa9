package handlers

import (
	"net/http"

	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type caseStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type assignRequest struct {
	UserID string `json:"user_id"`
}

// CreateCaseHandler registers a case from a crime scene report
func CreateCaseHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var input services.CaseInput
	if err := bind(c, &input); err != nil {
		return err
	}

	created, err := getWorkflow(c).CreateCase(caller, input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// ListCasesHandler lists the cases visible to the caller, optionally filtered by ?status=
func ListCasesHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	cases, err := getWorkflow(c).ListCases(caller, c.QueryParam("status"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, cases)
}

func GetCaseHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	found, err := getWorkflow(c).GetCase(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, found)
}

func ApproveCaseHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	approved, err := getWorkflow(c).ApproveCase(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, approved)
}

func UpdateCaseStatusHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req caseStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updated, err := getWorkflow(c).UpdateCaseStatus(caller, c.Param("id"), req.Status, req.Notes)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func AssignDetectiveHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req assignRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updated, err := getWorkflow(c).AssignDetective(caller, c.Param("id"), req.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func AssignSergeantHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req assignRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updated, err := getWorkflow(c).AssignSergeant(caller, c.Param("id"), req.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func AddWitnessHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var input services.WitnessInput
	if err := bind(c, &input); err != nil {
		return err
	}

	witness, err := getWorkflow(c).AddWitness(caller, c.Param("id"), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, witness)
}

func AddComplainantHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req assignRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	complainant, err := getWorkflow(c).AddComplainant(caller, c.Param("id"), req.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, complainant)
}

// GetCaseDossierHandler assembles the full case file for the trial judge and command staff
func GetCaseDossierHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	dossier, err := getWorkflow(c).BuildDossier(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dossier)
}
