package clinic

// DocumentType is one of the ten document categories the API accepts.
type DocumentType struct {
	Value string
	Label string
}

// DocumentTypes is the closed enum of accepted document categories, in the
// order the upload form lists them.
var DocumentTypes = []DocumentType{
	{"lab_report", "Lab Report"},
	{"xray", "X-Ray"},
	{"scan", "Scan"},
	{"prescription", "Prescription"},
	{"discharge_summary", "Discharge Summary"},
	{"medical_history", "Medical History"},
	{"insurance", "Insurance"},
	{"vaccination", "Vaccination"},
	{"allergy_report", "Allergy Report"},
	{"other", "Other"},
}

// ValidDocumentType reports whether v is a member of the enum.
func ValidDocumentType(v string) bool {
	for _, t := range DocumentTypes {
		if t.Value == v {
			return true
		}
	}
	return false
}

// DocumentTypeLabel returns the display label for a type value, or the raw
// value when it is not in the enum (older records).
func DocumentTypeLabel(v string) string {
	for _, t := range DocumentTypes {
		if t.Value == v {
			return t.Label
		}
	}
	return v
}

// Document is stored-file metadata. The bytes themselves live in the
// external object store; the portal only ever sees FileURL and FileKey.
type Document struct {
	ID           int64  `json:"id"`
	DocumentID   string `json:"documentId"`
	PatientID    int64  `json:"patientId"`
	DocumentType string `json:"documentType"`
	DocumentName string `json:"documentName"`
	Description  string `json:"description,omitempty"`
	FileURL      string `json:"fileUrl"`
	FileKey      string `json:"fileKey"`
	MimeType     string `json:"mimeType,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	UploadDate   string `json:"uploadDate,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}
