package clinic

import (
	"strings"
	"testing"
)

func TestBusinessIdentifiers(t *testing.T) {
	cases := []struct {
		gen    func() string
		prefix string
	}{
		{NewPatientID, "PT-"},
		{NewAppointmentID, "APT-"},
		{NewPrescriptionID, "PR-"},
	}
	for _, c := range cases {
		id := c.gen()
		if !strings.HasPrefix(id, c.prefix) {
			t.Errorf("identifier %q missing prefix %q", id, c.prefix)
		}
		if len(id) <= len(c.prefix) {
			t.Errorf("identifier %q has no suffix", id)
		}
		if id == c.gen() {
			t.Errorf("two generated identifiers collided: %q", id)
		}
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusScheduled, StatusCompleted) {
		t.Error("scheduled -> completed must be allowed")
	}
	if !CanTransition(StatusScheduled, StatusCancelled) {
		t.Error("scheduled -> cancelled must be allowed")
	}
	if CanTransition(StatusCompleted, StatusScheduled) {
		t.Error("completed -> scheduled must not be allowed")
	}
	if CanTransition(StatusCancelled, StatusCompleted) {
		t.Error("cancelled -> completed must not be allowed")
	}
}

func TestValidDocumentType(t *testing.T) {
	if len(DocumentTypes) != 10 {
		t.Fatalf("document type enum has %d values, want 10", len(DocumentTypes))
	}
	for _, dt := range DocumentTypes {
		if !ValidDocumentType(dt.Value) {
			t.Errorf("enum value %q not accepted", dt.Value)
		}
	}
	if ValidDocumentType("selfie") {
		t.Error("unexpected type accepted")
	}
	if got := DocumentTypeLabel("xray"); got != "X-Ray" {
		t.Errorf("label for xray = %q", got)
	}
	if got := DocumentTypeLabel("legacy_kind"); got != "legacy_kind" {
		t.Errorf("unknown type label = %q, want raw value", got)
	}
}

func TestPatientFullName(t *testing.T) {
	p := Patient{FirstName: "Jane", LastName: "Doe"}
	if p.FullName() != "Jane Doe" {
		t.Errorf("FullName = %q", p.FullName())
	}
	if (Patient{FirstName: "Jane"}).FullName() != "Jane" {
		t.Error("single first name mishandled")
	}
	if (Patient{LastName: "Doe"}).FullName() != "Doe" {
		t.Error("single last name mishandled")
	}
}
