package clinic

import "github.com/google/uuid"

// Business identifier prefixes. The codes are human-readable tokens distinct
// from the database primary keys; the suffix is a UUID rather than a
// millisecond timestamp so that concurrent creation from multiple sessions
// cannot collide.
const (
	patientIDPrefix      = "PT-"
	appointmentIDPrefix  = "APT-"
	prescriptionIDPrefix = "PR-"
)

// NewPatientID returns a fresh PT- business code.
func NewPatientID() string { return patientIDPrefix + uuid.NewString() }

// NewAppointmentID returns a fresh APT- business code.
func NewAppointmentID() string { return appointmentIDPrefix + uuid.NewString() }

// NewPrescriptionID returns a fresh PR- business code.
func NewPrescriptionID() string { return prescriptionIDPrefix + uuid.NewString() }
