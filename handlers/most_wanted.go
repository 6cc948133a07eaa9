package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func mostWantedLimit(c echo.Context) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// MostWantedHandler is the public most-wanted list
func MostWantedHandler(c echo.Context) error {
	entries, err := getWorkflow(c).ListMostWanted(mostWantedLimit(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// MostWantedExportHandler serves the most-wanted list as an Excel download
func MostWantedExportHandler(c echo.Context) error {
	wf := getWorkflow(c)
	buf, err := wf.ExportMostWantedXLSX(mostWantedLimit(c))
	if err != nil {
		return toHTTPError(err)
	}

	filename := fmt.Sprintf("most-wanted-%s.xlsx", wf.Clock.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
