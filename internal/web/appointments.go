package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pmsmanus/clinic-portal/internal/api"
	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

type appointmentsData struct {
	page
	Date         string
	Appointments []clinic.Appointment
	Patients     []clinic.Patient
	PatientNames map[int64]string
}

func (h *Handler) handleAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	date := strings.TrimSpace(c.QueryParam("date"))

	var appointments []clinic.Appointment
	var err error
	if date != "" {
		appointments, err = h.appointmentsByDate(ctx, date)
	} else {
		appointments, err = h.listAppointments(ctx)
	}
	if err != nil {
		return h.fail(c, err)
	}

	patients, err := h.listPatients(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Render(http.StatusOK, "appointments.html", appointmentsData{
		page:         h.newPage(c, "Appointments", "appointments"),
		Date:         date,
		Appointments: appointments,
		Patients:     patients,
		PatientNames: nameIndex(patients),
	})
}

func (h *Handler) handleAppointmentCreate(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.FormValue("patientId"), 10, 64)
	if err != nil {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest, "select a patient"), "/appointments")
	}

	_, err = h.appointments.Create(c.Request().Context(), api.CreateAppointmentInput{
		PatientID:       patientID,
		AppointmentDate: strings.TrimSpace(c.FormValue("appointmentDate")),
		AppointmentTime: strings.TrimSpace(c.FormValue("appointmentTime")),
		Reason:          strings.TrimSpace(c.FormValue("reason")),
	})
	if err != nil {
		return h.failBack(c, err, "/appointments")
	}

	h.cache.Invalidate("appointments")
	setFlash(c, "success", "Appointment scheduled")
	return c.Redirect(http.StatusSeeOther, "/appointments")
}

func (h *Handler) handleAppointmentStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id"), "/appointments")
	}

	ctx := c.Request().Context()
	to := c.FormValue("status")

	// The current status comes from the server-side record, never the form.
	appointments, err := h.listAppointments(ctx)
	if err != nil {
		return h.failBack(c, err, "/appointments")
	}
	var current *clinic.Appointment
	for i := range appointments {
		if appointments[i].ID == id {
			current = &appointments[i]
			break
		}
	}
	if current == nil {
		return h.failBack(c, echo.NewHTTPError(http.StatusNotFound, "appointment not found"), "/appointments")
	}
	if !clinic.CanTransition(current.Status, to) {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest,
			"appointment cannot move from "+current.Status+" to "+to), "/appointments")
	}

	if _, err := h.appointments.UpdateStatus(ctx, id, to); err != nil {
		return h.failBack(c, err, "/appointments")
	}

	h.cache.Invalidate("appointments")
	setFlash(c, "success", "Appointment marked "+to)
	return c.Redirect(http.StatusSeeOther, "/appointments")
}
