package api

import (
	"context"
	"fmt"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

// PrescriptionsService calls the prescription endpoints. The medicine list
// codec runs here, at the wire boundary: inputs carry []Medicine, payloads
// carry the API's comma-joined parallel strings.
type PrescriptionsService struct {
	c *Client
}

// NewPrescriptionsService creates a PrescriptionsService on the shared client.
func NewPrescriptionsService(c *Client) *PrescriptionsService {
	return &PrescriptionsService{c: c}
}

// PrescriptionInput is what the authoring form submits, for both create and
// update.
type PrescriptionInput struct {
	PatientID    int64
	VisitID      int64
	Medicines    []clinic.Medicine
	Instructions string
	StartDate    string
}

// ListByPatient fetches all prescriptions for one patient.
func (s *PrescriptionsService) ListByPatient(ctx context.Context, patientID int64) ([]clinic.Prescription, error) {
	var out []clinic.Prescription
	if err := s.c.get(ctx, fmt.Sprintf("/prescriptions/patient/%d", patientID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create authors a new prescription: generates the PR- business code,
// flattens the medicine list, normalizes the start date, and sets status
// active.
func (s *PrescriptionsService) Create(ctx context.Context, in PrescriptionInput) (*clinic.Prescription, error) {
	payload, err := s.payload(in)
	if err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}
	payload.PrescriptionID = clinic.NewPrescriptionID()
	payload.Status = clinic.PrescriptionActive

	var out clinic.Prescription
	if err := s.c.post(ctx, "/prescriptions", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update rewrites an existing prescription with a re-flattened medicine
// list.
func (s *PrescriptionsService) Update(ctx context.Context, id int64, in PrescriptionInput) (*clinic.Prescription, error) {
	payload, err := s.payload(in)
	if err != nil {
		return nil, fmt.Errorf("update prescription: %w", err)
	}
	var out clinic.Prescription
	if err := s.c.put(ctx, fmt.Sprintf("/prescriptions/%d", id), payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PrescriptionsService) payload(in PrescriptionInput) (clinic.Prescription, error) {
	if in.PatientID == 0 {
		return clinic.Prescription{}, fmt.Errorf("missing patient")
	}
	p, err := clinic.JoinMedicines(in.Medicines)
	if err != nil {
		return clinic.Prescription{}, err
	}
	start, err := clinic.NormalizeDate(in.StartDate)
	if err != nil {
		return clinic.Prescription{}, err
	}
	p.PatientID = in.PatientID
	p.VisitID = in.VisitID
	p.Instructions = in.Instructions
	p.StartDate = start
	return p, nil
}
