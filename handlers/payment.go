package handlers

import (
	"net/http"
	"strings"

	"police_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type bailFineRequest struct {
	SuspectID string `json:"suspect_id"`
	services.BailFineInput
}

// CreateBailFineHandler sets bail or a fine on a suspect
func CreateBailFineHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	var req bailFineRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	bf, err := getWorkflow(c).CreateBailFine(caller, req.SuspectID, req.BailFineInput)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, bf)
}

// RequestPaymentHandler opens a gateway transaction and returns where to send the payer
func RequestPaymentHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	txn, err := getWorkflow(c).RequestPayment(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, txn)
}

// PaymentCallbackHandler is where the gateway sends the payer back. Zibal passes
// trackId and success, Stripe passes session_id.
func PaymentCallbackHandler(c echo.Context) error {
	trackingID := c.QueryParam("trackId")
	success := c.QueryParam("success") == "1"
	if trackingID == "" {
		trackingID = c.QueryParam("session_id")
		success = trackingID != "" && !strings.EqualFold(c.QueryParam("canceled"), "true")
	}
	if trackingID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing tracking id")
	}

	result, err := getWorkflow(c).HandleCallback(c.Request().Context(), trackingID, success)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func VerifyPaymentHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	result, err := getWorkflow(c).VerifyPayment(c.Request().Context(), caller, c.Param("trackingId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// InquirePaymentHandler shows the gateway's raw view of a transaction
func InquirePaymentHandler(c echo.Context) error {
	if _, err := requireCaller(c); err != nil {
		return err
	}
	raw, err := getWorkflow(c).InquirePayment(c.Request().Context(), c.Param("trackingId"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, raw)
}

func GetBailFineHandler(c echo.Context) error {
	caller, err := requireCaller(c)
	if err != nil {
		return err
	}
	bf, err := getWorkflow(c).GetBailFine(caller, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, bf)
}
