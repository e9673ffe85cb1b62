package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

type patientsData struct {
	page
	Query    string
	Patients []clinic.Patient
	Genders  []string
}

func (h *Handler) handlePatients(c echo.Context) error {
	ctx := c.Request().Context()
	q := strings.TrimSpace(c.QueryParam("q"))

	var patients []clinic.Patient
	var err error
	if q != "" {
		patients, err = h.searchPatients(ctx, q)
	} else {
		patients, err = h.listPatients(ctx)
	}
	if err != nil {
		return h.fail(c, err)
	}

	return c.Render(http.StatusOK, "patients.html", patientsData{
		page:     h.newPage(c, "Patients", "patients"),
		Query:    q,
		Patients: patients,
		Genders:  []string{clinic.GenderMale, clinic.GenderFemale, clinic.GenderOther},
	})
}

func patientFromForm(c echo.Context) clinic.Patient {
	return clinic.Patient{
		FirstName:        strings.TrimSpace(c.FormValue("firstName")),
		LastName:         strings.TrimSpace(c.FormValue("lastName")),
		Phone:            strings.TrimSpace(c.FormValue("phone")),
		Email:            strings.TrimSpace(c.FormValue("email")),
		DateOfBirth:      strings.TrimSpace(c.FormValue("dateOfBirth")),
		Gender:           c.FormValue("gender"),
		BloodType:        strings.TrimSpace(c.FormValue("bloodType")),
		Address:          strings.TrimSpace(c.FormValue("address")),
		City:             strings.TrimSpace(c.FormValue("city")),
		State:            strings.TrimSpace(c.FormValue("state")),
		ZipCode:          strings.TrimSpace(c.FormValue("zipCode")),
		EmergencyContact: strings.TrimSpace(c.FormValue("emergencyContact")),
		EmergencyPhone:   strings.TrimSpace(c.FormValue("emergencyPhone")),
	}
}

func (h *Handler) handlePatientCreate(c echo.Context) error {
	in := patientFromForm(c)
	if in.FirstName == "" || in.LastName == "" || in.Phone == "" {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest,
			"first name, last name and phone are required"), "/patients")
	}

	created, err := h.patients.Create(c.Request().Context(), in)
	if err != nil {
		return h.failBack(c, err, "/patients")
	}

	h.cache.Invalidate("patients")
	setFlash(c, "success", "Patient "+created.PatientID+" registered")
	return c.Redirect(http.StatusSeeOther, "/patients")
}

func (h *Handler) handlePatientUpdate(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id"), "/patients")
	}

	in := patientFromForm(c)
	in.ID = id
	in.PatientID = c.FormValue("patientId")

	if _, err := h.patients.Update(c.Request().Context(), in); err != nil {
		return h.failBack(c, err, "/patients")
	}

	h.cache.Invalidate("patients")
	setFlash(c, "success", "Patient updated")
	return c.Redirect(http.StatusSeeOther, "/patients")
}

func (h *Handler) handlePatientDelete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id"), "/patients")
	}

	if err := h.patients.Remove(c.Request().Context(), id); err != nil {
		return h.failBack(c, err, "/patients")
	}

	// Dependent records reference the patient, so their caches go too.
	h.cache.Invalidate("patients", "appointments", "prescriptions", "documents")
	setFlash(c, "success", "Patient deleted")
	return c.Redirect(http.StatusSeeOther, "/patients")
}
