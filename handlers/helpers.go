package handlers

import (
	"errors"
	"net/http"

	"police_flow_app_go/config"
	"police_flow_app_go/middleware"
	"police_flow_app_go/services"
	"police_flow_app_go/services/payment"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContextKeyWorkflow is the context key for the shared workflow
const ContextKeyWorkflow = "workflow"

// WithWorkflow makes wf and cfg available to every handler
func WithWorkflow(wf *services.Workflow, cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyWorkflow, wf)
			c.Set("config", cfg)
			return next(c)
		}
	}
}

func getWorkflow(c echo.Context) *services.Workflow {
	wf, _ := c.Get(ContextKeyWorkflow).(*services.Workflow)
	return wf
}

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

// requireCaller returns the authenticated caller or a 401
func requireCaller(c echo.Context) (services.Caller, error) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		return services.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return caller, nil
}

// bind decodes the request body into v, answering 400 on malformed input
func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// toHTTPError maps a workflow error onto the HTTP status of its class
func toHTTPError(err error) error {
	if err == nil {
		return nil
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAuthorizationDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrWorkflowViolation):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrExternalService):
		if payment.IsTimeout(err) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	zap.S().Errorw("Unhandled workflow error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}
