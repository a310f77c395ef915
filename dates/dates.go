// Package dates provides the date-window helpers used to drive daily
// batch jobs. All dates are YYYY-MM-DD strings.
package dates

import (
	"fmt"
	"time"
)

// Layout is the date format used throughout.
const Layout = "2006-01-02"

// Window is an inclusive begin/end date pair.
type Window struct {
	Start string
	End   string
}

// Validate checks that s is a real date in YYYY-MM-DD form and returns
// it normalized.
func Validate(s string) (string, error) {
	t, err := ToTime(s)
	if err != nil {
		return "", err
	}
	return t.Format(Layout), nil
}

// ToTime parses a YYYY-MM-DD date string.
func ToTime(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates: invalid date %q, must be YYYY-MM-DD", s)
	}
	return t, nil
}

// Format renders t as a YYYY-MM-DD date string.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Yesterday returns yesterday's date, the conventional default for a
// daily batch job catching up on the previous day.
func Yesterday() string {
	return Format(time.Now().AddDate(0, 0, -1))
}

// GetWindow returns the n-day window anchored at date. With lookback the
// window ends at date; otherwise it starts there.
//
//	GetWindow("2018-02-05", 1, true)  => {2018-02-04 2018-02-05}
//	GetWindow("2018-02-05", 1, false) => {2018-02-05 2018-02-06}
func GetWindow(date string, nDays int, lookback bool) (Window, error) {
	t, err := ToTime(date)
	if err != nil {
		return Window{}, err
	}
	if lookback {
		return Window{Start: Format(t.AddDate(0, 0, -nDays)), End: date}, nil
	}
	return Window{Start: date, End: Format(t.AddDate(0, 0, nDays))}, nil
}

// Range returns every day in the window, inclusive on both ends.
func Range(w Window) ([]string, error) {
	return RangeFreq(w, "D")
}

// RangeBetween is Range over an ad-hoc start/end pair.
func RangeBetween(start, end string) ([]string, error) {
	return Range(Window{Start: start, End: end})
}

// RangeFreq returns the dates in the window at the given frequency:
// "D" for every day, "MS" for the first day of each month inside the
// window.
func RangeFreq(w Window, freq string) ([]string, error) {
	start, err := ToTime(w.Start)
	if err != nil {
		return nil, err
	}
	end, err := ToTime(w.End)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("dates: window end %q before start %q", w.End, w.Start)
	}

	var out []string
	switch freq {
	case "D":
		for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
			out = append(out, Format(t))
		}
	case "MS":
		t := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		if t.Before(start) {
			t = t.AddDate(0, 1, 0)
		}
		for ; !t.After(end); t = t.AddDate(0, 1, 0) {
			out = append(out, Format(t))
		}
	default:
		return nil, fmt.Errorf("dates: unsupported frequency %q", freq)
	}
	return out, nil
}
