package web

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pmsmanus/clinic-portal/internal/reports"
)

type reportsData struct {
	page
	Kind        string
	Date        string
	Month       string
	Report      *reports.Report
	DownloadURL string
}

// generateReport runs the report selected by the query parameters, or none
// when no parameters are present yet.
func (h *Handler) generateReport(c echo.Context) (*reports.Report, string, string, string, error) {
	ctx := c.Request().Context()
	kind := c.QueryParam("type")
	date := c.QueryParam("date")
	month := c.QueryParam("month")

	switch kind {
	case "daily":
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		r, err := h.reports.Daily(ctx, date)
		return r, kind, date, month, err
	case "monthly":
		if month == "" {
			month = time.Now().Format("2006-01")
		}
		r, err := h.reports.Monthly(ctx, month)
		return r, kind, date, month, err
	case "":
		return nil, kind, date, month, nil
	default:
		return nil, kind, date, month,
			echo.NewHTTPError(http.StatusBadRequest, "report type must be daily or monthly")
	}
}

func (h *Handler) handleReports(c echo.Context) error {
	report, kind, date, month, err := h.generateReport(c)
	if err != nil {
		return h.fail(c, err)
	}

	data := reportsData{
		page:   h.newPage(c, "Reports", "reports"),
		Kind:   kind,
		Date:   date,
		Month:  month,
		Report: report,
	}
	if report != nil {
		q := url.Values{"type": {kind}}
		if kind == "daily" {
			q.Set("date", date)
		} else {
			q.Set("month", month)
		}
		data.DownloadURL = "/reports/download?" + q.Encode()
	}
	return c.Render(http.StatusOK, "reports.html", data)
}

func (h *Handler) handleReportDownload(c echo.Context) error {
	report, _, _, _, err := h.generateReport(c)
	if err != nil {
		return h.fail(c, err)
	}
	if report == nil {
		return h.fail(c, echo.NewHTTPError(http.StatusBadRequest, "report type must be daily or monthly"))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+report.ReportID+`.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(reports.CSV(report, time.Now())))
}
