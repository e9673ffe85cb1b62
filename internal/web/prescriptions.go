package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pmsmanus/clinic-portal/internal/api"
	"github.com/pmsmanus/clinic-portal/internal/clinic"
	"github.com/pmsmanus/clinic-portal/internal/rx"
)

type prescriptionView struct {
	clinic.Prescription
	Medicines []clinic.Medicine
}

type prescriptionsData struct {
	page
	Patients      []clinic.Patient
	Selected      *clinic.Patient
	Prescriptions []prescriptionView
}

func (h *Handler) handlePrescriptions(c echo.Context) error {
	ctx := c.Request().Context()

	patients, err := h.listPatients(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	data := prescriptionsData{
		page:     h.newPage(c, "Prescriptions", "prescriptions"),
		Patients: patients,
	}

	if raw := c.QueryParam("patient"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return h.fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id"))
		}
		for i := range patients {
			if patients[i].ID == id {
				data.Selected = &patients[i]
			}
		}

		list, err := h.patientPrescriptions(ctx, id)
		if err != nil {
			return h.fail(c, err)
		}
		for _, p := range list {
			data.Prescriptions = append(data.Prescriptions, prescriptionView{
				Prescription: p,
				Medicines:    clinic.SplitMedicines(p),
			})
		}
	}

	return c.Render(http.StatusOK, "prescriptions.html", data)
}

// medicinesFromForm reassembles the repeated medicine rows of the authoring
// form. Duration and route are form-level fields and land on the first
// medicine, which is where the wire encoding reads them from.
func medicinesFromForm(c echo.Context) ([]clinic.Medicine, error) {
	form, err := c.FormParams()
	if err != nil {
		return nil, err
	}

	names := form["medicationName"]
	dosages := form["dosage"]
	frequencies := form["frequency"]

	var meds []clinic.Medicine
	for i, name := range names {
		m := clinic.Medicine{MedicationName: strings.TrimSpace(name)}
		if i < len(dosages) {
			m.Dosage = strings.TrimSpace(dosages[i])
		}
		if i < len(frequencies) {
			m.Frequency = strings.TrimSpace(frequencies[i])
		}
		if m.MedicationName == "" && m.Dosage == "" && m.Frequency == "" {
			continue // empty spare row
		}
		meds = append(meds, m)
	}
	if len(meds) > 0 {
		meds[0].Duration = strings.TrimSpace(c.FormValue("duration"))
		meds[0].Route = strings.TrimSpace(c.FormValue("route"))
	}
	return meds, nil
}

func (h *Handler) prescriptionInputFromForm(c echo.Context) (api.PrescriptionInput, string, error) {
	patientID, err := strconv.ParseInt(c.FormValue("patientId"), 10, 64)
	if err != nil {
		return api.PrescriptionInput{}, "/prescriptions",
			echo.NewHTTPError(http.StatusBadRequest, "select a patient")
	}
	back := "/prescriptions?patient=" + strconv.FormatInt(patientID, 10)

	meds, err := medicinesFromForm(c)
	if err != nil {
		return api.PrescriptionInput{}, back, err
	}

	in := api.PrescriptionInput{
		PatientID:    patientID,
		Medicines:    meds,
		Instructions: strings.TrimSpace(c.FormValue("instructions")),
		StartDate:    strings.TrimSpace(c.FormValue("startDate")),
	}
	if raw := c.FormValue("visitId"); raw != "" {
		if visitID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			in.VisitID = visitID
		}
	}
	return in, back, nil
}

func (h *Handler) handlePrescriptionCreate(c echo.Context) error {
	in, back, err := h.prescriptionInputFromForm(c)
	if err != nil {
		return h.failBack(c, err, back)
	}

	created, err := h.prescriptions.Create(c.Request().Context(), in)
	if err != nil {
		return h.failBack(c, err, back)
	}

	h.cache.Invalidate("prescriptions")
	setFlash(c, "success", "Prescription "+created.PrescriptionID+" created")
	return c.Redirect(http.StatusSeeOther, back)
}

func (h *Handler) handlePrescriptionUpdate(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id"), "/prescriptions")
	}

	in, back, err := h.prescriptionInputFromForm(c)
	if err != nil {
		return h.failBack(c, err, back)
	}

	if _, err := h.prescriptions.Update(c.Request().Context(), id, in); err != nil {
		return h.failBack(c, err, back)
	}

	h.cache.Invalidate("prescriptions")
	setFlash(c, "success", "Prescription updated")
	return c.Redirect(http.StatusSeeOther, back)
}

// renderPrescriptionDocument resolves the prescription named in the route
// and renders it on the letterhead.
func (h *Handler) renderPrescriptionDocument(c echo.Context) (string, string, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}
	patientID, err := strconv.ParseInt(c.QueryParam("patient"), 10, 64)
	if err != nil {
		return "", "", echo.NewHTTPError(http.StatusBadRequest, "missing patient id")
	}

	ctx := c.Request().Context()
	list, err := h.patientPrescriptions(ctx, patientID)
	if err != nil {
		return "", "", err
	}
	var target *clinic.Prescription
	for i := range list {
		if list[i].ID == id {
			target = &list[i]
		}
	}
	if target == nil {
		return "", "", echo.NewHTTPError(http.StatusNotFound, "prescription not found")
	}

	patient, err := h.findPatient(ctx, patientID)
	if err != nil {
		return "", "", err
	}

	doc, err := rx.BuildDocument(*target, patient, h.letterhead, time.Now())
	if err != nil {
		return "", "", err
	}
	return doc, target.PrescriptionID, nil
}

func (h *Handler) handlePrescriptionPrint(c echo.Context) error {
	doc, _, err := h.renderPrescriptionDocument(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.HTML(http.StatusOK, doc)
}

func (h *Handler) handlePrescriptionDownload(c echo.Context) error {
	doc, prescriptionID, err := h.renderPrescriptionDocument(c)
	if err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="prescription-`+prescriptionID+`.html"`)
	return c.HTML(http.StatusOK, doc)
}
