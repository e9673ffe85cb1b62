package clinic

import (
	"fmt"
	"strings"
)

// Prescription statuses used by the authoring flow.
const (
	PrescriptionActive = "active"

	// DefaultRoute is applied when the authoring form leaves the route blank.
	DefaultRoute = "oral"
)

// Prescription is the wire shape of a prescription record. The API stores
// the medicine list as three positionally aligned comma-joined strings
// (MedicationName, Dosage, Frequency); Duration and Route are single values
// taken from the first medicine. That encoding is the API's contract, not
// the portal's: everywhere else the portal works with []Medicine and only
// runs the codec at the request boundary.
type Prescription struct {
	ID             int64  `json:"id"`
	PrescriptionID string `json:"prescriptionId"`
	PatientID      int64  `json:"patientId"`
	VisitID        int64  `json:"visitId"`
	MedicationName string `json:"medicationName"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	Duration       string `json:"duration,omitempty"`
	Route          string `json:"route,omitempty"`
	Quantity       *int   `json:"quantity,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
	StartDate      string `json:"startDate"`
	Status         string `json:"status"`
}

// Medicine is one line-item of a prescription as edited in the authoring
// form. Duration, Route, Quantity and Instructions beyond the first line
// are not representable in the wire encoding and survive only for display.
type Medicine struct {
	MedicationName string
	Dosage         string
	Frequency      string
	Duration       string
	Route          string
	Quantity       string
	Instructions   string
}

// ValidateMedicine rejects line-items the wire encoding cannot carry:
// missing required fields, or a comma in a joined field. The comma check is
// what keeps the positional alignment of the flattened strings intact.
func ValidateMedicine(m Medicine) error {
	if strings.TrimSpace(m.MedicationName) == "" {
		return fmt.Errorf("medicine name is required")
	}
	if strings.TrimSpace(m.Dosage) == "" {
		return fmt.Errorf("dosage is required")
	}
	if strings.TrimSpace(m.Frequency) == "" {
		return fmt.Errorf("frequency is required")
	}
	for _, f := range []struct{ name, v string }{
		{"medicine name", m.MedicationName},
		{"dosage", m.Dosage},
		{"frequency", m.Frequency},
	} {
		if strings.Contains(f.v, ",") {
			return fmt.Errorf("%s %q must not contain a comma", f.name, f.v)
		}
	}
	return nil
}

// JoinMedicines flattens an ordered medicine list into the comma-joined
// fields of a Prescription. Duration and Route come from the first medicine,
// matching what the API stores. Every medicine is validated first.
func JoinMedicines(meds []Medicine) (Prescription, error) {
	if len(meds) == 0 {
		return Prescription{}, fmt.Errorf("at least one medicine is required")
	}
	names := make([]string, len(meds))
	dosages := make([]string, len(meds))
	freqs := make([]string, len(meds))
	for i, m := range meds {
		if err := ValidateMedicine(m); err != nil {
			return Prescription{}, err
		}
		names[i] = strings.TrimSpace(m.MedicationName)
		dosages[i] = strings.TrimSpace(m.Dosage)
		freqs[i] = strings.TrimSpace(m.Frequency)
	}
	p := Prescription{
		MedicationName: strings.Join(names, ", "),
		Dosage:         strings.Join(dosages, ", "),
		Frequency:      strings.Join(freqs, ", "),
		Duration:       strings.TrimSpace(meds[0].Duration),
		Route:          strings.TrimSpace(meds[0].Route),
	}
	if p.Route == "" {
		p.Route = DefaultRoute
	}
	return p, nil
}

// SplitMedicines reconstructs the ordered medicine list from a wire
// prescription by splitting the joined fields and aligning them by position.
// Dosage and frequency entries missing at the tail are left blank, which is
// also what the original display did. The round-trip is exact as long as no
// field ever contained the delimiter; JoinMedicines guarantees that for
// records authored here.
func SplitMedicines(p Prescription) []Medicine {
	names := splitList(p.MedicationName)
	dosages := splitList(p.Dosage)
	freqs := splitList(p.Frequency)

	meds := make([]Medicine, 0, len(names))
	for i, name := range names {
		m := Medicine{
			MedicationName: name,
			Duration:       p.Duration,
			Route:          p.Route,
		}
		if i < len(dosages) {
			m.Dosage = dosages[i]
		}
		if i < len(freqs) {
			m.Frequency = freqs[i]
		}
		meds = append(meds, m)
	}
	return meds
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
