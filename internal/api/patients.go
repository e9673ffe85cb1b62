package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

// PatientsService calls the patient registry endpoints.
type PatientsService struct {
	c *Client
}

// NewPatientsService creates a PatientsService on the shared client.
func NewPatientsService(c *Client) *PatientsService {
	return &PatientsService{c: c}
}

// List fetches every registered patient.
func (s *PatientsService) List(ctx context.Context) ([]clinic.Patient, error) {
	var out []clinic.Patient
	if err := s.c.get(ctx, "/patients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search fetches patients matching the server-side search query.
func (s *PatientsService) Search(ctx context.Context, query string) ([]clinic.Patient, error) {
	q := url.Values{"query": []string{query}}
	var out []clinic.Patient
	if err := s.c.get(ctx, "/patients/search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create registers a patient. A PatientID business code is generated when
// the input has none, and DateOfBirth is normalized to YYYY-MM-DD (or
// omitted entirely when blank).
func (s *PatientsService) Create(ctx context.Context, in clinic.Patient) (*clinic.Patient, error) {
	if in.PatientID == "" {
		in.PatientID = clinic.NewPatientID()
	}
	if in.DateOfBirth != "" {
		dob, err := clinic.NormalizeDate(in.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("create patient: %w", err)
		}
		in.DateOfBirth = dob
	}
	var out clinic.Patient
	if err := s.c.post(ctx, "/patients", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update rewrites a patient record. PatientID is immutable on the server;
// the portal sends it through untouched.
func (s *PatientsService) Update(ctx context.Context, in clinic.Patient) (*clinic.Patient, error) {
	if in.ID == 0 {
		return nil, fmt.Errorf("update patient: missing id")
	}
	if in.DateOfBirth != "" {
		dob, err := clinic.NormalizeDate(in.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("update patient: %w", err)
		}
		in.DateOfBirth = dob
	}
	var out clinic.Patient
	if err := s.c.put(ctx, fmt.Sprintf("/patients/%d", in.ID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove deletes a patient.
func (s *PatientsService) Remove(ctx context.Context, id int64) error {
	return s.c.delete(ctx, fmt.Sprintf("/patients/%d", id))
}
