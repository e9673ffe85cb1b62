package api

import (
	"context"
	"fmt"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

// DocumentsService calls the document metadata endpoints. File bytes live in
// the external object store; only metadata travels through here.
type DocumentsService struct {
	c *Client
}

// NewDocumentsService creates a DocumentsService on the shared client.
func NewDocumentsService(c *Client) *DocumentsService {
	return &DocumentsService{c: c}
}

// ListByPatient fetches all document records for one patient.
func (s *DocumentsService) ListByPatient(ctx context.Context, patientID int64) ([]clinic.Document, error) {
	var out []clinic.Document
	if err := s.c.get(ctx, fmt.Sprintf("/documents/patient/%d", patientID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create records document metadata after an upload completes.
func (s *DocumentsService) Create(ctx context.Context, in clinic.Document) (*clinic.Document, error) {
	if in.PatientID == 0 {
		return nil, fmt.Errorf("create document: missing patient")
	}
	if !clinic.ValidDocumentType(in.DocumentType) {
		return nil, fmt.Errorf("create document: invalid type %q", in.DocumentType)
	}
	var out clinic.Document
	if err := s.c.post(ctx, "/documents", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove deletes a document record.
func (s *DocumentsService) Remove(ctx context.Context, id int64) error {
	return s.c.delete(ctx, fmt.Sprintf("/documents/%d", id))
}
