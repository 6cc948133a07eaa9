package handlers

import (
	"encoding/json"
	"net/http"

	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type boardLayoutRequest struct {
	BoardData json.RawMessage `json:"board_data"`
}

// OpenBoardHandler returns the caller's board for the case, creating it on first use
func OpenBoardHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	board, created, err := getWorkflow(c).OpenBoard(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, board)
}

func GetBoardHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	board, err := getWorkflow(c).GetBoard(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, board)
}

func UpdateBoardLayoutHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req boardLayoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	board, err := getWorkflow(c).UpdateBoardLayout(caller, c.Param("id"), req.BoardData)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, board)
}

// ConnectEvidenceHandler answers 201 for a new link and 200 when an existing one was replaced
func ConnectEvidenceHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var input services.ConnectionInput
	if err := bind(c, &input); err != nil {
		return err
	}

	conn, created, err := getWorkflow(c).ConnectEvidence(caller, c.Param("id"), input)
	if err != nil {
		return toHTTPError(err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, conn)
}
