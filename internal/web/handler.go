// Package web serves the portal's six screens as server-rendered pages.
// Handlers read through the query cache, invalidate it after every
// mutation, and funnel every upstream authentication failure into one
// redirect-to-login policy.
package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pmsmanus/clinic-portal/internal/api"
	"github.com/pmsmanus/clinic-portal/internal/clinic"
	"github.com/pmsmanus/clinic-portal/internal/query"
	"github.com/pmsmanus/clinic-portal/internal/reports"
	"github.com/pmsmanus/clinic-portal/internal/rx"
	"github.com/pmsmanus/clinic-portal/internal/session"
)

// Options carries the handler's dependencies.
type Options struct {
	Patients      *api.PatientsService
	Appointments  *api.AppointmentsService
	Prescriptions *api.PrescriptionsService
	Documents     *api.DocumentsService
	Gate          *session.Gate
	Cache         *query.Cache
	Letterhead    rx.Letterhead
	UploadsBase   string
	Logger        zerolog.Logger
}

// Handler owns every UI route.
type Handler struct {
	patients      *api.PatientsService
	appointments  *api.AppointmentsService
	prescriptions *api.PrescriptionsService
	documents     *api.DocumentsService
	gate          *session.Gate
	cache         *query.Cache
	reports       *reports.Generator
	letterhead    rx.Letterhead
	uploadsBase   string
	logger        zerolog.Logger
}

// New wires the handler and points the report generator at the same cached
// reads the pages use.
func New(opts Options) (*Handler, error) {
	h := &Handler{
		patients:      opts.Patients,
		appointments:  opts.Appointments,
		prescriptions: opts.Prescriptions,
		documents:     opts.Documents,
		gate:          opts.Gate,
		cache:         opts.Cache,
		letterhead:    opts.Letterhead,
		uploadsBase:   opts.UploadsBase,
		logger:        opts.Logger,
	}
	h.reports = reports.NewGenerator(appointmentReads{h}, patientReads{h})

	h.cache.OnError(func(key string, err error) {
		h.logger.Warn().Str("key", key).Err(err).Msg("fetch failed")
	})
	return h, nil
}

// RegisterRoutes mounts the UI on e. Everything except the health probe
// sits behind the session gate.
func (h *Handler) RegisterRoutes(e *echo.Echo) error {
	r, err := newRenderer()
	if err != nil {
		return err
	}
	e.Renderer = r

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	g := e.Group("", session.Middleware(h.gate))
	g.GET("/", h.handleDashboard)

	g.GET("/patients", h.handlePatients)
	g.POST("/patients", h.handlePatientCreate)
	g.POST("/patients/:id/update", h.handlePatientUpdate)
	g.POST("/patients/:id/delete", h.handlePatientDelete)

	g.GET("/appointments", h.handleAppointments)
	g.POST("/appointments", h.handleAppointmentCreate)
	g.POST("/appointments/:id/status", h.handleAppointmentStatus)

	g.GET("/prescriptions", h.handlePrescriptions)
	g.POST("/prescriptions", h.handlePrescriptionCreate)
	g.POST("/prescriptions/:id/update", h.handlePrescriptionUpdate)
	g.GET("/prescriptions/:id/print", h.handlePrescriptionPrint)
	g.GET("/prescriptions/:id/download", h.handlePrescriptionDownload)

	g.GET("/documents", h.handleDocuments)
	g.POST("/documents", h.handleDocumentCreate)
	g.POST("/documents/:id/delete", h.handleDocumentDelete)

	g.GET("/reports", h.handleReports)
	g.GET("/reports/download", h.handleReportDownload)

	g.GET("/logout", h.handleLogout)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.Render(http.StatusNotFound, "error.html", errorPage(c, http.StatusNotFound,
			"The page you are looking for does not exist."))
	})
	return nil
}

// page is the data every template receives.
type page struct {
	Title  string
	Active string
	User   *clinic.User
	Flash  *Flash
}

func (h *Handler) newPage(c echo.Context, title, active string) page {
	return page{
		Title:  title,
		Active: active,
		User:   session.UserFrom(c),
		Flash:  takeFlash(c),
	}
}

type errorData struct {
	page
	Status  int
	Message string
}

func errorPage(c echo.Context, status int, message string) errorData {
	return errorData{
		page:    page{Title: "Error", User: session.UserFrom(c)},
		Status:  status,
		Message: message,
	}
}

// fail maps an upstream error to a response: authentication failures
// redirect to login with the current page as return state, anything else
// renders the error page.
func (h *Handler) fail(c echo.Context, err error) error {
	if api.IsUnauthorized(err) {
		return c.Redirect(http.StatusFound, h.gate.LoginURL(c.Request().Context(), currentLocation(c)))
	}
	if he, ok := err.(*echo.HTTPError); ok {
		return c.Render(he.Code, "error.html", errorPage(c, he.Code, fmt.Sprint(he.Message)))
	}
	h.logger.Error().Err(err).Str("path", c.Path()).Msg("upstream request failed")
	return c.Render(http.StatusBadGateway, "error.html",
		errorPage(c, http.StatusBadGateway, "The clinic service is unavailable. Please try again."))
}

// failBack is fail for mutations: non-auth errors become a flash on the
// page the form came from.
func (h *Handler) failBack(c echo.Context, err error, back string) error {
	if api.IsUnauthorized(err) {
		return c.Redirect(http.StatusFound, h.gate.LoginURL(c.Request().Context(), currentLocation(c)))
	}
	h.logger.Error().Err(err).Str("path", c.Path()).Msg("mutation failed")
	msg := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		msg = fmt.Sprint(he.Message)
	}
	setFlash(c, "error", msg)
	return c.Redirect(http.StatusSeeOther, back)
}

func currentLocation(c echo.Context) string {
	req := c.Request()
	scheme := c.Scheme()
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + req.Host + req.RequestURI
}

func (h *Handler) handleLogout(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.gate.Logout(ctx, session.CredentialsFrom(c)); err != nil {
		h.logger.Warn().Err(err).Msg("logout call failed")
	}
	h.cache.Clear()
	return c.Redirect(http.StatusFound, h.gate.LoginURL(ctx, ""))
}

// Cached reads. Every page and the report generator go through these, so
// one mutation's invalidation is visible everywhere at once.

func (h *Handler) listPatients(ctx context.Context) ([]clinic.Patient, error) {
	return query.Fetch(ctx, h.cache, query.Key("patients"), h.patients.List)
}

func (h *Handler) searchPatients(ctx context.Context, q string) ([]clinic.Patient, error) {
	return query.Fetch(ctx, h.cache, query.Key("patients.search", "q="+q),
		func(ctx context.Context) ([]clinic.Patient, error) {
			return h.patients.Search(ctx, q)
		})
}

func (h *Handler) listAppointments(ctx context.Context) ([]clinic.Appointment, error) {
	return query.Fetch(ctx, h.cache, query.Key("appointments"), h.appointments.List)
}

func (h *Handler) appointmentsByDate(ctx context.Context, date string) ([]clinic.Appointment, error) {
	return query.Fetch(ctx, h.cache, query.Key("appointments.date", date),
		func(ctx context.Context) ([]clinic.Appointment, error) {
			return h.appointments.ByDate(ctx, date)
		})
}

func (h *Handler) todayAppointments(ctx context.Context) ([]clinic.Appointment, error) {
	return query.Fetch(ctx, h.cache, query.Key("appointments.today"), h.appointments.Today)
}

func (h *Handler) patientPrescriptions(ctx context.Context, patientID int64) ([]clinic.Prescription, error) {
	return query.Fetch(ctx, h.cache, query.Key("prescriptions", strconv.FormatInt(patientID, 10)),
		func(ctx context.Context) ([]clinic.Prescription, error) {
			return h.prescriptions.ListByPatient(ctx, patientID)
		})
}

func (h *Handler) patientDocuments(ctx context.Context, patientID int64) ([]clinic.Document, error) {
	return query.Fetch(ctx, h.cache, query.Key("documents", strconv.FormatInt(patientID, 10)),
		func(ctx context.Context) ([]clinic.Document, error) {
			return h.documents.ListByPatient(ctx, patientID)
		})
}

// findPatient resolves a patient row by database id from the cached list.
func (h *Handler) findPatient(ctx context.Context, id int64) (*clinic.Patient, error) {
	patients, err := h.listPatients(ctx)
	if err != nil {
		return nil, err
	}
	for i := range patients {
		if patients[i].ID == id {
			return &patients[i], nil
		}
	}
	return nil, nil
}

// appointmentReads and patientReads feed the report generator from the
// cache.
type appointmentReads struct{ h *Handler }

func (r appointmentReads) List(ctx context.Context) ([]clinic.Appointment, error) {
	return r.h.listAppointments(ctx)
}

func (r appointmentReads) ByDate(ctx context.Context, date string) ([]clinic.Appointment, error) {
	return r.h.appointmentsByDate(ctx, date)
}

type patientReads struct{ h *Handler }

func (r patientReads) List(ctx context.Context) ([]clinic.Patient, error) {
	return r.h.listPatients(ctx)
}
