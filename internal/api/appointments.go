package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

// AppointmentsService calls the appointment scheduling endpoints.
type AppointmentsService struct {
	c *Client
}

// NewAppointmentsService creates an AppointmentsService on the shared client.
func NewAppointmentsService(c *Client) *AppointmentsService {
	return &AppointmentsService{c: c}
}

// CreateAppointmentInput is what the scheduling form submits.
type CreateAppointmentInput struct {
	PatientID       int64
	AppointmentDate string
	AppointmentTime string
	Reason          string
}

// List fetches every appointment.
func (s *AppointmentsService) List(ctx context.Context) ([]clinic.Appointment, error) {
	var out []clinic.Appointment
	if err := s.c.get(ctx, "/appointments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByDate fetches the appointments for one calendar date.
func (s *AppointmentsService) ByDate(ctx context.Context, date string) ([]clinic.Appointment, error) {
	day, err := clinic.NormalizeDate(date)
	if err != nil {
		return nil, fmt.Errorf("appointments by date: %w", err)
	}
	q := url.Values{"date": []string{day}}
	var out []clinic.Appointment
	if err := s.c.get(ctx, "/appointments/date", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Today fetches today's appointments.
func (s *AppointmentsService) Today(ctx context.Context) ([]clinic.Appointment, error) {
	var out []clinic.Appointment
	if err := s.c.get(ctx, "/appointments/today", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create schedules a new appointment: generates the APT- business code,
// normalizes date and time (HH:MM becomes HH:MM:SS), and forces the initial
// status to scheduled.
func (s *AppointmentsService) Create(ctx context.Context, in CreateAppointmentInput) (*clinic.Appointment, error) {
	if in.PatientID == 0 {
		return nil, fmt.Errorf("create appointment: missing patient")
	}
	day, err := clinic.NormalizeDate(in.AppointmentDate)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	at, err := clinic.NormalizeTime(in.AppointmentTime)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	payload := clinic.Appointment{
		AppointmentID:   clinic.NewAppointmentID(),
		PatientID:       in.PatientID,
		AppointmentDate: day,
		AppointmentTime: at,
		Status:          clinic.StatusScheduled,
		Reason:          in.Reason,
	}
	var out clinic.Appointment
	if err := s.c.post(ctx, "/appointments", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus moves an appointment to a new status.
func (s *AppointmentsService) UpdateStatus(ctx context.Context, id int64, status string) (*clinic.Appointment, error) {
	if !clinic.ValidStatus(status) {
		return nil, fmt.Errorf("update appointment: invalid status %q", status)
	}
	body := map[string]string{"status": status}
	var out clinic.Appointment
	if err := s.c.put(ctx, fmt.Sprintf("/appointments/%d/status", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
