package dates

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2023-05-10")
	if err != nil {
		t.Fatalf("ParseDay() error = %v", err)
	}

	if d.String() != "2023-05-10" {
		t.Errorf("String() = %q, want %q", d.String(), "2023-05-10")
	}

	if got := d.Time(); got.Hour() != 0 || got.Location() != time.UTC {
		t.Errorf("Time() = %v, want midnight UTC", got)
	}
}

func TestParseDay_Invalid(t *testing.T) {
	for _, value := range []string{"", "05/10/2023", "2023-13-01", "yesterday"} {
		if _, err := ParseDay(value); err == nil {
			t.Errorf("ParseDay(%q) expected error", value)
		}
	}
}

func TestDayPrev(t *testing.T) {
	d := NewDay(2023, time.May, 1)

	if got := d.Prev().String(); got != "2023-04-30" {
		t.Errorf("Prev() = %q, want %q", got, "2023-04-30")
	}
}

func TestDayCompare(t *testing.T) {
	a := NewDay(2023, time.May, 9)
	b := NewDay(2023, time.May, 10)

	if got := a.Compare(b); got != -1 {
		t.Errorf("Compare(earlier, later) = %d, want -1", got)
	}

	if got := b.Compare(a); got != 1 {
		t.Errorf("Compare(later, earlier) = %d, want 1", got)
	}

	if got := a.Compare(a); got != 0 {
		t.Errorf("Compare(same, same) = %d, want 0", got)
	}
}

func TestNewRange_Inverted(t *testing.T) {
	_, err := NewRange(NewDay(2023, time.May, 10), NewDay(2023, time.May, 9))
	if err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestRangeDays(t *testing.T) {
	r, err := ParseRange("2023-05-07", "2023-05-09")
	if err != nil {
		t.Fatalf("ParseRange() error = %v", err)
	}

	days := r.Days()
	if len(days) != 3 {
		t.Fatalf("Days() length = %d, want 3", len(days))
	}

	want := []string{"2023-05-07", "2023-05-08", "2023-05-09"}
	for i, d := range days {
		if d.String() != want[i] {
			t.Errorf("Days()[%d] = %q, want %q", i, d, want[i])
		}
	}

	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

func TestRangeContains(t *testing.T) {
	r, _ := ParseRange("2023-05-07", "2023-05-09")

	tests := []struct {
		day  string
		want bool
	}{
		{"2023-05-06", false},
		{"2023-05-07", true},
		{"2023-05-09", true},
		{"2023-05-10", false},
	}

	for _, tt := range tests {
		d, _ := ParseDay(tt.day)
		if got := r.Contains(d); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestWindow(t *testing.T) {
	latest := NewDay(2022, time.November, 3)
	r := Window(latest, 8)

	if r.Min.String() != "2022-10-26" {
		t.Errorf("Min = %q, want %q", r.Min, "2022-10-26")
	}

	if r.Max.String() != "2022-11-03" {
		t.Errorf("Max = %q, want %q", r.Max, "2022-11-03")
	}
}

func TestWindow_DefaultsToToday(t *testing.T) {
	r := Window(Day{}, 7)

	if !r.Max.Equal(Today()) {
		t.Errorf("Max = %s, want today", r.Max)
	}

	if r.Len() != 8 {
		t.Errorf("Len() = %d, want 8", r.Len())
	}
}
