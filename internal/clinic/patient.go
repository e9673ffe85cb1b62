// Package clinic defines the entity types the portal exchanges with the
// clinic REST API, together with the identifier and date conventions those
// entities carry on the wire. The API owns every entity; the portal holds
// only cache-lifetime copies.
package clinic

// Gender values accepted by the registration form.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Patient is a registered patient as returned by the clinic API.
// PatientID is the human-readable business code (PT-…), generated on the
// client at registration time and immutable thereafter; ID is the database
// primary key and is opaque to the portal.
type Patient struct {
	ID               int64  `json:"id"`
	PatientID        string `json:"patientId"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Phone            string `json:"phone"`
	Email            string `json:"email,omitempty"`
	DateOfBirth      string `json:"dateOfBirth,omitempty"`
	Gender           string `json:"gender,omitempty"`
	BloodType        string `json:"bloodType,omitempty"`
	Address          string `json:"address,omitempty"`
	City             string `json:"city,omitempty"`
	State            string `json:"state,omitempty"`
	ZipCode          string `json:"zipCode,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
	EmergencyPhone   string `json:"emergencyPhone,omitempty"`
}

// FullName returns the display name used in tables and the prescription
// letterhead.
func (p Patient) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
