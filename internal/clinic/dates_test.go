package clinic

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-07", "2024-03-07"},
		{"2024-03-07T10:30:00Z", "2024-03-07"},
		{"2024-03-07T10:30:00", "2024-03-07"},
		{"2024-03-07 10:30:00", "2024-03-07"},
	}
	for _, c := range cases {
		got, err := NormalizeDate(c.in)
		if err != nil {
			t.Errorf("NormalizeDate(%q) returned error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "07/03/2024", "not a date", "2024-13-40"} {
		if _, err := NormalizeDate(in); err == nil {
			t.Errorf("NormalizeDate(%q) expected error, got none", in)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"09:00", "09:00:00"},
		{"09:00:00", "09:00:00"},
		{"23:59", "23:59:00"},
		{"14:30:45", "14:30:45"},
	}
	for _, c := range cases {
		got, err := NormalizeTime(c.in)
		if err != nil {
			t.Errorf("NormalizeTime(%q) returned error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeTime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "25:00", "9am", "12"} {
		if _, err := NormalizeTime(in); err == nil {
			t.Errorf("NormalizeTime(%q) expected error, got none", in)
		}
	}
}

func TestInMonth(t *testing.T) {
	if !InMonth("2024-03-15", 2024, time.March) {
		t.Error("expected 2024-03-15 to be in 2024-03")
	}
	if InMonth("2024-04-01", 2024, time.March) {
		t.Error("expected 2024-04-01 to be outside 2024-03")
	}
	if InMonth("2023-03-15", 2024, time.March) {
		t.Error("expected 2023-03-15 to be outside 2024-03")
	}
	if InMonth("garbage", 2024, time.March) {
		t.Error("expected unparseable dates to be outside every month")
	}
}

func TestYearMonth(t *testing.T) {
	year, month, err := YearMonth("2024-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if year != 2024 || month != time.March {
		t.Errorf("YearMonth(2024-03) = %d, %v", year, month)
	}
	if _, _, err := YearMonth("2024-3"); err == nil {
		t.Error("expected error for non-padded month")
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := Age("1990-06-14", now); got != 34 {
		t.Errorf("Age(1990-06-14) = %d, want 34", got)
	}
	if got := Age("1990-06-16", now); got != 33 {
		t.Errorf("Age(1990-06-16) = %d, want 33 (birthday not reached)", got)
	}
	if got := Age("", now); got != -1 {
		t.Errorf("Age(empty) = %d, want -1", got)
	}
}
