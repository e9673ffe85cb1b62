// Package reports derives the portal's statistical reports from fetched
// appointment and patient lists. All aggregation is client-side and O(n)
// over whatever the API returns; if the API truncates a list, the numbers
// shrink with it.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

// AppointmentSource supplies appointment lists, usually through the query
// cache.
type AppointmentSource interface {
	List(ctx context.Context) ([]clinic.Appointment, error)
	ByDate(ctx context.Context, date string) ([]clinic.Appointment, error)
}

// PatientSource supplies the patient list.
type PatientSource interface {
	List(ctx context.Context) ([]clinic.Patient, error)
}

// Report is the flat record of counts a generation run produces, plus the
// JSON-serialized raw breakdown used by the CSV download.
type Report struct {
	ReportID              string `json:"reportId"`
	ReportType            string `json:"reportType"`
	ReportDate            string `json:"reportDate"`
	TotalAppointments     int    `json:"totalAppointments"`
	CompletedAppointments int    `json:"completedAppointments"`
	CancelledAppointments int    `json:"cancelledAppointments"`
	TotalPatients         int    `json:"totalPatients"`
	NewPatients           int    `json:"newPatients"`
	ReportData            string `json:"reportData"`
}

// ScheduledAppointments is the remainder after completed and cancelled.
func (r Report) ScheduledAppointments() int {
	return r.TotalAppointments - r.CompletedAppointments - r.CancelledAppointments
}

// Generator builds daily and monthly reports.
type Generator struct {
	appointments AppointmentSource
	patients     PatientSource
}

// NewGenerator creates a Generator over the two sources.
func NewGenerator(appointments AppointmentSource, patients PatientSource) *Generator {
	return &Generator{appointments: appointments, patients: patients}
}

// Daily reports on a single date: the date's appointments partitioned by
// status, plus the total patient count.
func (g *Generator) Daily(ctx context.Context, date string) (*Report, error) {
	day, err := clinic.NormalizeDate(date)
	if err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}

	var appointments []clinic.Appointment
	var patients []clinic.Patient
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		appointments, err = g.appointments.ByDate(egCtx, day)
		return err
	})
	eg.Go(func() error {
		var err error
		patients, err = g.patients.List(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}

	r := partition("daily", "daily-"+day, day, appointments, len(patients))
	return r, nil
}

// Monthly reports on a calendar month: all appointments filtered by the
// year and month of their appointmentDate, partitioned identically.
func (g *Generator) Monthly(ctx context.Context, month string) (*Report, error) {
	year, m, err := clinic.YearMonth(month)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}

	var appointments []clinic.Appointment
	var patients []clinic.Patient
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		appointments, err = g.appointments.List(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		patients, err = g.patients.List(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}

	var filtered []clinic.Appointment
	for _, a := range appointments {
		if clinic.InMonth(a.AppointmentDate, year, m) {
			filtered = append(filtered, a)
		}
	}

	r := partition("monthly", "monthly-"+month, month+"-01", filtered, len(patients))
	return r, nil
}

func partition(kind, id, date string, appointments []clinic.Appointment, totalPatients int) *Report {
	completed, cancelled := 0, 0
	for _, a := range appointments {
		switch a.Status {
		case clinic.StatusCompleted:
			completed++
		case clinic.StatusCancelled:
			cancelled++
		}
	}

	breakdown, _ := json.Marshal(struct {
		Appointments []clinic.Appointment `json:"appointments"`
	}{Appointments: appointments})

	return &Report{
		ReportID:              id,
		ReportType:            kind,
		ReportDate:            date,
		TotalAppointments:     len(appointments),
		CompletedAppointments: completed,
		CancelledAppointments: cancelled,
		TotalPatients:         totalPatients,
		NewPatients:           0,
		ReportData:            string(breakdown),
	}
}

// CSV renders the downloadable text artifact for a report.
func CSV(r *Report, now time.Time) string {
	title := "Monthly"
	if r.ReportType == "daily" {
		title = "Daily"
	}

	reportDate := r.ReportDate
	if t, err := time.Parse(clinic.DateLayout, r.ReportDate); err == nil {
		reportDate = t.Format("January 2, 2006")
	}

	var detail string
	var raw map[string]any
	if err := json.Unmarshal([]byte(r.ReportData), &raw); err == nil {
		if pretty, err := json.MarshalIndent(raw, "", "  "); err == nil {
			detail = string(pretty)
		}
	}
	if detail == "" {
		detail = "{}"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Clinic Management System - %s Report\n", title)
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Report Date: %s\n\n", reportDate)
	b.WriteString("APPOINTMENT STATISTICS\n")
	fmt.Fprintf(&b, "Total Appointments: %d\n", r.TotalAppointments)
	fmt.Fprintf(&b, "Completed: %d\n", r.CompletedAppointments)
	fmt.Fprintf(&b, "Cancelled: %d\n", r.CancelledAppointments)
	fmt.Fprintf(&b, "Scheduled: %d\n\n", r.ScheduledAppointments())
	b.WriteString("PATIENT STATISTICS\n")
	fmt.Fprintf(&b, "Total Patients: %d\n", r.TotalPatients)
	fmt.Fprintf(&b, "New Patients: %d\n\n", r.NewPatients)
	b.WriteString("DETAILED BREAKDOWN\n")
	b.WriteString(detail)
	b.WriteString("\n")
	return b.String()
}
