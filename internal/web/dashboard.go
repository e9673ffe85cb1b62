package web

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

type dashboardData struct {
	page
	Date              string
	TodayAppointments []clinic.Appointment
	PatientNames      map[int64]string
	TotalPatients     int
	Scheduled         int
	Completed         int
	Cancelled         int
}

func (h *Handler) handleDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	today, err := h.todayAppointments(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	patients, err := h.listPatients(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	data := dashboardData{
		page:              h.newPage(c, "Dashboard", "dashboard"),
		Date:              time.Now().Format("Monday, 02 Jan 2006"),
		TodayAppointments: today,
		PatientNames:      nameIndex(patients),
		TotalPatients:     len(patients),
	}
	for _, a := range today {
		switch a.Status {
		case clinic.StatusCompleted:
			data.Completed++
		case clinic.StatusCancelled:
			data.Cancelled++
		default:
			data.Scheduled++
		}
	}
	return c.Render(http.StatusOK, "dashboard.html", data)
}

func nameIndex(patients []clinic.Patient) map[int64]string {
	idx := make(map[int64]string, len(patients))
	for _, p := range patients {
		idx[p.ID] = p.FullName()
	}
	return idx
}
