package reports

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

type fakeSource struct {
	appointments []clinic.Appointment
	patients     []clinic.Patient
	byDateCalls  []string
}

func (f *fakeSource) List(ctx context.Context) ([]clinic.Appointment, error) {
	return f.appointments, nil
}

func (f *fakeSource) ByDate(ctx context.Context, date string) ([]clinic.Appointment, error) {
	f.byDateCalls = append(f.byDateCalls, date)
	var out []clinic.Appointment
	for _, a := range f.appointments {
		if a.AppointmentDate == date {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakePatients struct {
	patients []clinic.Patient
}

func (f *fakePatients) List(ctx context.Context) ([]clinic.Patient, error) {
	return f.patients, nil
}

func sampleAppointments() []clinic.Appointment {
	return []clinic.Appointment{
		{AppointmentID: "APT-1", AppointmentDate: "2024-03-05", Status: clinic.StatusCompleted},
		{AppointmentID: "APT-2", AppointmentDate: "2024-03-05", Status: clinic.StatusCancelled},
		{AppointmentID: "APT-3", AppointmentDate: "2024-03-05", Status: clinic.StatusScheduled},
		{AppointmentID: "APT-4", AppointmentDate: "2024-03-18", Status: clinic.StatusCompleted},
		{AppointmentID: "APT-5", AppointmentDate: "2024-04-02", Status: clinic.StatusScheduled},
	}
}

func TestDaily(t *testing.T) {
	src := &fakeSource{appointments: sampleAppointments()}
	pats := &fakePatients{patients: make([]clinic.Patient, 7)}
	g := NewGenerator(src, pats)

	r, err := g.Daily(context.Background(), "2024-03-05")
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if r.TotalAppointments != 3 || r.CompletedAppointments != 1 || r.CancelledAppointments != 1 {
		t.Fatalf("counts = %d/%d/%d, want 3/1/1", r.TotalAppointments, r.CompletedAppointments, r.CancelledAppointments)
	}
	if r.ScheduledAppointments() != 1 {
		t.Fatalf("scheduled = %d, want 1", r.ScheduledAppointments())
	}
	if r.TotalPatients != 7 {
		t.Fatalf("totalPatients = %d, want 7", r.TotalPatients)
	}
	if r.NewPatients != 0 {
		t.Fatalf("newPatients = %d, want 0", r.NewPatients)
	}
	if r.ReportID != "daily-2024-03-05" || r.ReportType != "daily" {
		t.Fatalf("report identity = %q/%q", r.ReportID, r.ReportType)
	}
}

func TestDailyRejectsBadDate(t *testing.T) {
	g := NewGenerator(&fakeSource{}, &fakePatients{})
	if _, err := g.Daily(context.Background(), "05/03/2024"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestMonthlyFiltersByMonth(t *testing.T) {
	src := &fakeSource{appointments: sampleAppointments()}
	g := NewGenerator(src, &fakePatients{})

	r, err := g.Monthly(context.Background(), "2024-03")
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if r.TotalAppointments != 4 {
		t.Fatalf("totalAppointments = %d, want 4", r.TotalAppointments)
	}
	if r.CompletedAppointments+r.CancelledAppointments > r.TotalAppointments {
		t.Fatalf("completed+cancelled %d exceeds total %d",
			r.CompletedAppointments+r.CancelledAppointments, r.TotalAppointments)
	}

	var breakdown struct {
		Appointments []clinic.Appointment `json:"appointments"`
	}
	if err := json.Unmarshal([]byte(r.ReportData), &breakdown); err != nil {
		t.Fatalf("reportData not JSON: %v", err)
	}
	for _, a := range breakdown.Appointments {
		if !strings.HasPrefix(a.AppointmentDate, "2024-03") {
			t.Fatalf("appointment %s from %s leaked into March report", a.AppointmentID, a.AppointmentDate)
		}
	}
}

func TestCSV(t *testing.T) {
	src := &fakeSource{appointments: sampleAppointments()}
	g := NewGenerator(src, &fakePatients{patients: make([]clinic.Patient, 2)})

	r, err := g.Daily(context.Background(), "2024-03-05")
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	out := CSV(r, time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"Daily Report",
		"Report Date: March 5, 2024",
		"Total Appointments: 3",
		"Completed: 1",
		"Cancelled: 1",
		"Scheduled: 1",
		"Total Patients: 2",
		"DETAILED BREAKDOWN",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("csv missing %q:\n%s", want, out)
		}
	}
}
