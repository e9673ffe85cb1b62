package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}), srv
}

func TestCall_DecodesErrorBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": UnauthorizedSentinel})
	}))

	err := c.get(context.Background(), "/auth/me", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.Status)
	}
	if apiErr.Message != UnauthorizedSentinel {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestIsUnauthorized(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&Error{Status: http.StatusUnauthorized, Message: "nope"}, true},
		{&Error{Status: http.StatusOK, Message: UnauthorizedSentinel}, true},
		{&Error{Status: http.StatusBadRequest, Message: "bad input"}, false},
		{context.DeadlineExceeded, false},
		{nil, false},
	}
	for _, c := range cases {
		if got := IsUnauthorized(c.err); got != c.want {
			t.Errorf("IsUnauthorized(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestCall_ForwardsCredentials(t *testing.T) {
	var gotCookie string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(`{}`))
	}))

	ctx := WithCredentials(context.Background(), "session=abc123")
	if err := c.get(ctx, "/auth/me", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCookie != "session=abc123" {
		t.Errorf("cookie header = %q", gotCookie)
	}
}

func TestPatientsCreate_NormalizesDateOfBirth(t *testing.T) {
	var calls int32
	var got clinic.Patient
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/patients" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		atomic.AddInt32(&calls, 1)
		json.NewDecoder(r.Body).Decode(&got)
		got.ID = 7
		json.NewEncoder(w).Encode(got)
	}))
	svc := NewPatientsService(c)

	created, err := svc.Create(context.Background(), clinic.Patient{
		FirstName:   "Jane",
		LastName:    "Doe",
		Phone:       "555-0100",
		DateOfBirth: "1990-06-14T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("create issued %d calls, want 1", n)
	}
	if got.DateOfBirth != "1990-06-14" {
		t.Errorf("submitted dateOfBirth = %q, want 1990-06-14", got.DateOfBirth)
	}
	if got.PatientID == "" {
		t.Error("expected a generated patientId")
	}
	if created.ID != 7 {
		t.Errorf("created.ID = %d, want server-assigned 7", created.ID)
	}
}

func TestPatientsCreate_OmitsBlankDateOfBirth(t *testing.T) {
	var raw map[string]any
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`{}`))
	}))
	svc := NewPatientsService(c)

	if _, err := svc.Create(context.Background(), clinic.Patient{FirstName: "A", LastName: "B", Phone: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["dateOfBirth"]; ok {
		t.Error("blank dateOfBirth must be omitted from the payload")
	}
}

func TestPatientsCreate_MalformedDateFailsWithoutCall(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	svc := NewPatientsService(c)

	if _, err := svc.Create(context.Background(), clinic.Patient{FirstName: "A", Phone: "1", DateOfBirth: "someday"}); err == nil {
		t.Fatal("expected error for malformed dateOfBirth")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("malformed input must not reach the network")
	}
}

func TestAppointmentsCreate_NormalizesTime(t *testing.T) {
	for _, in := range []string{"09:30", "09:30:00"} {
		var got clinic.Appointment
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got)
			json.NewEncoder(w).Encode(got)
		}))
		svc := NewAppointmentsService(c)

		_, err := svc.Create(context.Background(), CreateAppointmentInput{
			PatientID:       3,
			AppointmentDate: "2024-05-01",
			AppointmentTime: in,
		})
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if got.AppointmentTime != "09:30:00" {
			t.Errorf("appointmentTime for input %q = %q, want 09:30:00", in, got.AppointmentTime)
		}
		if got.Status != clinic.StatusScheduled {
			t.Errorf("status = %q, want scheduled", got.Status)
		}
		if got.AppointmentID == "" {
			t.Error("expected a generated appointmentId")
		}
	}
}

func TestAppointmentsUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected network call")
	}))
	svc := NewAppointmentsService(c)
	if _, err := svc.UpdateStatus(context.Background(), 1, "rescheduled"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestPrescriptionsCreate_FlattensMedicines(t *testing.T) {
	var got clinic.Prescription
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prescriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(got)
	}))
	svc := NewPrescriptionsService(c)

	_, err := svc.Create(context.Background(), PrescriptionInput{
		PatientID: 5,
		StartDate: "2024-05-01",
		Medicines: []clinic.Medicine{
			{MedicationName: "A", Dosage: "5mg", Frequency: "1x", Duration: "3 days"},
			{MedicationName: "B", Dosage: "10mg", Frequency: "2x"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MedicationName != "A, B" || got.Dosage != "5mg, 10mg" || got.Frequency != "1x, 2x" {
		t.Errorf("flattened fields = %q / %q / %q", got.MedicationName, got.Dosage, got.Frequency)
	}
	if got.Status != clinic.PrescriptionActive {
		t.Errorf("status = %q, want active", got.Status)
	}
	if got.PrescriptionID == "" {
		t.Error("expected a generated prescriptionId")
	}
}

func TestAuthResolveLoginURL_FallsBack(t *testing.T) {
	c, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	svc := NewAuthService(c)

	got := svc.ResolveLoginURL(context.Background(), "http://portal/patients")
	want := srv.URL + "/oauth/google/login?state=http%3A%2F%2Fportal%2Fpatients"
	if got != want {
		t.Errorf("fallback login url = %q, want %q", got, want)
	}
}

func TestAuthResolveLoginURL_UsesServerTarget(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("json") != "1" {
			t.Errorf("expected json=1, got query %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "https://accounts.example.com/o/oauth2/auth"})
	}))
	svc := NewAuthService(c)

	got := svc.ResolveLoginURL(context.Background(), "http://portal/")
	if got != "https://accounts.example.com/o/oauth2/auth" {
		t.Errorf("login url = %q", got)
	}
}
