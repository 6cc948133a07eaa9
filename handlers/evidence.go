package handlers

import (
	"net/http"

	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type verifyEvidenceRequest struct {
	IsValid bool   `json:"is_valid"`
	Notes   string `json:"notes"`
}

func AddEvidenceHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var input services.EvidenceInput
	if err := bind(c, &input); err != nil {
		return err
	}

	evidence, err := getWorkflow(c).AddEvidence(caller, c.Param("id"), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, evidence)
}

// ListCaseEvidenceHandler lists a case's evidence, optionally filtered by ?type=
func ListCaseEvidenceHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	items, err := getWorkflow(c).ListCaseEvidence(caller, c.Param("id"), c.QueryParam("type"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func VerifyEvidenceHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req verifyEvidenceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	evidence, err := getWorkflow(c).VerifyEvidence(caller, c.Param("id"), req.IsValid, req.Notes)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, evidence)
}
