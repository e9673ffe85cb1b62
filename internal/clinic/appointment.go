package clinic

// Appointment statuses. The UI only ever moves an appointment forward:
// scheduled to completed, or scheduled to cancelled. There is no way back
// to scheduled.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment is a scheduled visit. AppointmentDate is YYYY-MM-DD and
// AppointmentTime is HH:MM:SS as normalized by the data-access layer.
type Appointment struct {
	ID              int64  `json:"id"`
	AppointmentID   string `json:"appointmentId"`
	PatientID       int64  `json:"patientId"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Status          string `json:"status"`
	Reason          string `json:"reason,omitempty"`
}

// ValidStatus reports whether s is one of the three appointment statuses.
func ValidStatus(s string) bool {
	return s == StatusScheduled || s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the UI may move an appointment from one
// status to another. Only the two forward transitions are exposed.
func CanTransition(from, to string) bool {
	return from == StatusScheduled && (to == StatusCompleted || to == StatusCancelled)
}
