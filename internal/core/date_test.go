package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.March || d.Day() != 9 {
		t.Fatalf("parsed wrong date: %s", d)
	}

	for _, bad := range []string{"", "09-03-2025", "2025-13-01", "2025-03-09T00:00:00Z"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("%q expected error", bad)
		}
	}
}

func TestDateOfTruncates(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	d := DateOf(time.Date(2025, 3, 9, 23, 30, 0, 0, loc))
	if d.String() != "2025-03-10" {
		t.Fatalf("DateOf = %s, want 2025-03-10", d)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2025, 3, 9))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-09"` {
		t.Fatalf("marshal = %s", b)
	}

	if b, _ := json.Marshal(Date{}); string(b) != "null" {
		t.Fatalf("zero date marshal = %s, want null", b)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2025-03-09"`), &d); err != nil || d.String() != "2025-03-09" {
		t.Fatalf("unmarshal: got %s, err=%v", d, err)
	}
	var zero Date
	if err := json.Unmarshal([]byte("null"), &zero); err != nil || !zero.IsZero() {
		t.Fatalf("unmarshal null: got %s, err=%v", zero, err)
	}
}

func TestDateAddDays(t *testing.T) {
	d := NewDate(2024, 2, 28).AddDays(1)
	if d.String() != "2024-02-29" {
		t.Fatalf("leap day: got %s", d)
	}
	if got := NewDate(2025, 1, 1).AddDays(-1); got.String() != "2024-12-31" {
		t.Fatalf("year boundary: got %s", got)
	}
}
