// Package rx renders prescriptions into the printable letterhead document
// used by the view, print and download actions.
package rx

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

// Letterhead holds the clinic identity printed at the top of every
// prescription.
type Letterhead struct {
	Name    string
	Address string
	Phone   string
	Email   string
	RegNo   string
}

type medicineRow struct {
	Serial    int
	Name      string
	Dosage    string
	Frequency string
	Duration  string
	Route     string
}

type documentData struct {
	Letterhead     Letterhead
	PrescriptionID string
	PatientName    string
	PatientID      string
	Age            string
	Gender         string
	Contact        string
	BloodType      string
	VisitDate      string
	Medicines      []medicineRow
	Instructions   string
	Printed        string
}

// BuildDocument renders a prescription as a standalone HTML page. patient
// may be nil when the patient record could not be fetched; the fields then
// print as N/A.
func BuildDocument(p clinic.Prescription, patient *clinic.Patient, lh Letterhead, now time.Time) (string, error) {
	data := documentData{
		Letterhead:     lh,
		PrescriptionID: p.PrescriptionID,
		PatientName:    "N/A",
		PatientID:      "N/A",
		Age:            "N/A",
		Gender:         "N/A",
		Contact:        "N/A",
		BloodType:      "N/A",
		VisitDate:      now.Format("02-Jan-2006"),
		Instructions:   p.Instructions,
		Printed:        now.Format("1/2/2006, 3:04:05 PM"),
	}

	if patient != nil {
		data.PatientName = patient.FullName()
		if patient.PatientID != "" {
			data.PatientID = patient.PatientID
		}
		if years := clinic.Age(patient.DateOfBirth, now); years >= 0 {
			data.Age = fmt.Sprintf("%d years", years)
		}
		if patient.Gender != "" {
			data.Gender = strings.ToUpper(patient.Gender[:1]) + patient.Gender[1:]
		}
		if patient.Phone != "" {
			data.Contact = patient.Phone
		}
		if patient.BloodType != "" {
			data.BloodType = patient.BloodType
		}
	}

	for i, m := range clinic.SplitMedicines(p) {
		row := medicineRow{
			Serial:    i + 1,
			Name:      m.MedicationName,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Duration:  m.Duration,
			Route:     m.Route,
		}
		if row.Duration == "" {
			row.Duration = "As directed"
		}
		if row.Route == "" {
			row.Route = "Oral"
		}
		data.Medicines = append(data.Medicines, row)
	}

	var b strings.Builder
	if err := documentTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prescription %s: %w", p.PrescriptionID, err)
	}
	return b.String(), nil
}

var documentTmpl = template.Must(template.New("prescription").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>Prescription - {{.PrescriptionID}}</title>
    <style>
      * { margin: 0; padding: 0; }
      body { font-family: 'Arial', sans-serif; background: white; }
      .container { width: 100%; max-width: 900px; margin: 0 auto; padding: 40px; }
      .header { text-align: center; border-bottom: 3px solid #333; padding-bottom: 20px; margin-bottom: 30px; }
      .clinic-name { font-size: 28px; font-weight: bold; color: #1a1a1a; margin-bottom: 5px; }
      .clinic-subtitle { font-size: 12px; color: #666; margin-bottom: 10px; }
      .clinic-info { font-size: 11px; color: #666; line-height: 1.6; }
      .patient-info-table { width: 100%; margin: 30px 0; border-collapse: collapse; }
      .patient-info-table td { padding: 8px 12px; border: 1px solid #ddd; font-size: 12px; }
      .patient-info-table .label { font-weight: bold; background: #f5f5f5; width: 150px; }
      .patient-info-table .value { color: #333; }
      .rx-section { margin: 30px 0; }
      .rx-title { font-size: 14px; font-weight: bold; color: #333; margin-bottom: 15px; border-bottom: 2px solid #333; padding-bottom: 8px; }
      .medicines-table { width: 100%; border-collapse: collapse; margin-top: 10px; }
      .medicines-table thead { background: #f0f0f0; }
      .medicines-table th { border: 1px solid #ddd; padding: 10px; text-align: left; font-weight: bold; font-size: 11px; color: #333; }
      .medicines-table td { border: 1px solid #ddd; padding: 10px; font-size: 11px; color: #333; }
      .medicines-table tbody tr:nth-child(odd) { background: #fafafa; }
      .footer { margin-top: 40px; border-top: 2px solid #333; padding-top: 20px; }
      .signature-section { display: flex; justify-content: space-between; margin-top: 40px; }
      .signature-box { text-align: center; width: 30%; }
      .signature-line { border-top: 1px solid #333; margin-top: 40px; padding-top: 5px; font-size: 11px; }
      .instructions-section { margin-top: 20px; padding: 10px; background: #f9f9f9; border-left: 3px solid #007bff; }
      .instructions-label { font-weight: bold; margin-bottom: 5px; }
      .instructions-text { font-size: 11px; color: #666; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header">
        <div class="clinic-name">{{.Letterhead.Name}}</div>
        <div class="clinic-subtitle">Medical Prescription</div>
        <div class="clinic-info">
          <div>Address: {{.Letterhead.Address}}</div>
          <div>Phone: {{.Letterhead.Phone}} | Email: {{.Letterhead.Email}}</div>
          <div>Reg. No: {{.Letterhead.RegNo}}</div>
        </div>
      </div>

      <table class="patient-info-table">
        <tr>
          <td class="label">Patient Name</td>
          <td class="value">{{.PatientName}}</td>
          <td class="label">Patient ID</td>
          <td class="value">{{.PatientID}}</td>
        </tr>
        <tr>
          <td class="label">Age / DOB</td>
          <td class="value">{{.Age}}</td>
          <td class="label">Gender</td>
          <td class="value">{{.Gender}}</td>
        </tr>
        <tr>
          <td class="label">Contact</td>
          <td class="value">{{.Contact}}</td>
          <td class="label">Date of Visit</td>
          <td class="value">{{.VisitDate}}</td>
        </tr>
        <tr>
          <td class="label">Blood Type</td>
          <td class="value">{{.BloodType}}</td>
          <td class="label">Prescription ID</td>
          <td class="value">{{.PrescriptionID}}</td>
        </tr>
      </table>

      <div class="rx-section">
        <div class="rx-title">Rx - MEDICINES</div>
        <table class="medicines-table">
          <thead>
            <tr>
              <th style="width: 5%;">S.No</th>
              <th style="width: 25%;">Medicine Name</th>
              <th style="width: 15%;">Dosage</th>
              <th style="width: 20%;">Frequency</th>
              <th style="width: 15%;">Duration</th>
              <th style="width: 20%;">Route</th>
            </tr>
          </thead>
          <tbody>
            {{range .Medicines}}<tr>
              <td>{{.Serial}}</td>
              <td><strong>{{.Name}}</strong></td>
              <td>{{.Dosage}}</td>
              <td>{{.Frequency}}</td>
              <td>{{.Duration}}</td>
              <td>{{.Route}}</td>
            </tr>
            {{end}}
          </tbody>
        </table>
      </div>

      {{if .Instructions}}<div class="instructions-section">
        <div class="instructions-label">General Instructions:</div>
        <div class="instructions-text">{{.Instructions}}</div>
      </div>{{end}}

      <div class="footer">
        <div class="signature-section">
          <div class="signature-box">
            <div class="signature-line">Doctor's Signature &amp; Seal</div>
          </div>
          <div class="signature-box">
            <div style="font-size: 10px; color: #666;">Printed: {{.Printed}}</div>
          </div>
        </div>
      </div>
    </div>
  </body>
</html>
`))
