package dates_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/nuln/pathio/dates"
)

func TestValidate(t *testing.T) {
	got, err := dates.Validate("2018-02-05")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got != "2018-02-05" {
		t.Errorf("Validate = %q, want 2018-02-05", got)
	}

	for _, bad := range []string{"2018-2-5", "02-05-2018", "2018-02-30", "not a date"} {
		if _, err := dates.Validate(bad); err == nil {
			t.Errorf("Validate(%q) should fail", bad)
		}
	}
}

func TestGetWindow(t *testing.T) {
	w, err := dates.GetWindow("2018-02-05", 1, true)
	if err != nil {
		t.Fatalf("GetWindow lookback: %v", err)
	}
	if want := (dates.Window{Start: "2018-02-04", End: "2018-02-05"}); w != want {
		t.Errorf("lookback window = %v, want %v", w, want)
	}

	w, err = dates.GetWindow("2018-02-05", 1, false)
	if err != nil {
		t.Fatalf("GetWindow forward: %v", err)
	}
	if want := (dates.Window{Start: "2018-02-05", End: "2018-02-06"}); w != want {
		t.Errorf("forward window = %v, want %v", w, want)
	}

	if _, err := dates.GetWindow("bogus", 1, true); err == nil {
		t.Error("GetWindow with invalid date should fail")
	}
}

func TestRange(t *testing.T) {
	got, err := dates.RangeBetween("2017-12-30", "2018-01-01")
	if err != nil {
		t.Fatalf("RangeBetween: %v", err)
	}
	want := []string{"2017-12-30", "2017-12-31", "2018-01-01"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RangeBetween = %v, want %v", got, want)
	}

	// A one-day window is that single day.
	got, err = dates.RangeBetween("2018-02-05", "2018-02-05")
	if err != nil {
		t.Fatalf("RangeBetween single: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"2018-02-05"}) {
		t.Errorf("single-day range = %v", got)
	}

	if _, err := dates.RangeBetween("2018-02-05", "2018-02-04"); err == nil {
		t.Error("inverted window should fail")
	}
}

func TestRangeFreqMonthStarts(t *testing.T) {
	got, err := dates.RangeFreq(dates.Window{Start: "2017-12-15", End: "2018-02-10"}, "MS")
	if err != nil {
		t.Fatalf("RangeFreq MS: %v", err)
	}
	want := []string{"2018-01-01", "2018-02-01"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RangeFreq MS = %v, want %v", got, want)
	}

	// Window starting on a month start includes it.
	got, err = dates.RangeFreq(dates.Window{Start: "2018-01-01", End: "2018-02-10"}, "MS")
	if err != nil {
		t.Fatalf("RangeFreq MS aligned: %v", err)
	}
	want = []string{"2018-01-01", "2018-02-01"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RangeFreq MS aligned = %v, want %v", got, want)
	}

	if _, err := dates.RangeFreq(dates.Window{Start: "2018-01-01", End: "2018-01-02"}, "W"); err == nil {
		t.Error("unsupported frequency should fail")
	}
}

func TestYesterday(t *testing.T) {
	want := time.Now().AddDate(0, 0, -1).Format(dates.Layout)
	if got := dates.Yesterday(); got != want {
		t.Errorf("Yesterday = %q, want %q", got, want)
	}
}
