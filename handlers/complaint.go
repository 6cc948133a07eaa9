package handlers

import (
	"net/http"

	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type complaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type complaintReviewRequest struct {
	Action   string              `json:"action"`
	Comments string              `json:"comments"`
	Case     *services.CaseInput `json:"case,omitempty"`
}

// SubmitComplaintHandler files a new complaint for the calling complainant
func SubmitComplaintHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req complaintRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	complaint, err := getWorkflow(c).SubmitComplaint(caller, req.Title, req.Description)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, complaint)
}

// ListComplaintsHandler returns the review queue of the caller
func ListComplaintsHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	complaints, err := getWorkflow(c).ListComplaintQueue(caller)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, complaints)
}

func GetComplaintHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	complaint, err := getWorkflow(c).GetComplaint(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, complaint)
}

func InternReviewComplaintHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req complaintReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	complaint, err := getWorkflow(c).InternReviewComplaint(caller, c.Param("id"), req.Action, req.Comments)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, complaint)
}

// OfficerReviewComplaintHandler approves or returns a complaint. Approval may carry
// case details that override the ones derived from the complaint.
func OfficerReviewComplaintHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req complaintReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	complaint, err := getWorkflow(c).OfficerReviewComplaint(caller, c.Param("id"), req.Action, req.Comments, req.Case)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, complaint)
}

func ResubmitComplaintHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req complaintRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	complaint, err := getWorkflow(c).ResubmitComplaint(caller, c.Param("id"), req.Title, req.Description)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, complaint)
}
