/*
Copyright © 2024 the MPAS-Ocean authors.
This file is part of MPAS-Ocean.

MPAS-Ocean is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

MPAS-Ocean is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with MPAS-Ocean.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package timekeeping parses the time stamps and time intervals used in
// ocean model configuration files and provides a simple model clock.
//
// Time stamps have the form "YYYY-MM-DD_hh:mm:ss", where the year may
// be zero (climatological data sets are usually anchored at year 0).
// Intervals have the form "[[[Y-]M-]D_]hh:mm:ss", so that
// "0001-00-00_00:00:00" is one year, "0000-01-00_00:00:00" is one month
// and "00:30:00" is thirty minutes.
package timekeeping

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 86400.

// Average calendar lengths used to estimate how many intervals fit
// into a span of time.
const (
	secondsPerYear  = 365.2425 * secondsPerDay
	secondsPerMonth = secondsPerYear / 12
)

// Interval is a calendar-aware span of time. Years, months and days are
// applied with time.Time.AddDate; the remainder is a fixed Duration.
type Interval struct {
	Years, Months, Days int
	Duration            time.Duration
}

// ParseInterval parses an interval string such as "0001-00-00_00:00:00",
// "10_00:00:00", "01:30:00" or "3600".
func ParseInterval(s string) (Interval, error) {
	var iv Interval
	s = strings.TrimSpace(s)
	if s == "" {
		return iv, fmt.Errorf("timekeeping: empty time interval")
	}
	datePart, timePart := "", s
	if i := strings.Index(s, "_"); i >= 0 {
		datePart, timePart = s[:i], s[i+1:]
	} else if strings.Contains(s, "-") {
		datePart, timePart = s, ""
	}

	if datePart != "" {
		fields := strings.Split(datePart, "-")
		vals := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil || v < 0 {
				return iv, fmt.Errorf("timekeeping: invalid date part %q in interval %q", datePart, s)
			}
			vals[i] = v
		}
		switch len(vals) {
		case 1:
			iv.Days = vals[0]
		case 2:
			iv.Months, iv.Days = vals[0], vals[1]
		case 3:
			iv.Years, iv.Months, iv.Days = vals[0], vals[1], vals[2]
		default:
			return iv, fmt.Errorf("timekeeping: invalid date part %q in interval %q", datePart, s)
		}
	}

	if timePart != "" {
		fields := strings.Split(timePart, ":")
		if len(fields) > 3 {
			return iv, fmt.Errorf("timekeeping: invalid time part %q in interval %q", timePart, s)
		}
		var seconds float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil || v < 0 {
				return iv, fmt.Errorf("timekeeping: invalid time part %q in interval %q", timePart, s)
			}
			// The last field is always seconds.
			seconds += v * math.Pow(60, float64(len(fields)-1-i))
		}
		iv.Duration = time.Duration(seconds * float64(time.Second))
	}
	return iv, nil
}

// AddTo returns t advanced by iv.
func (iv Interval) AddTo(t time.Time) time.Time {
	return t.AddDate(iv.Years, iv.Months, iv.Days).Add(iv.Duration)
}

// Scale returns iv multiplied by n.
func (iv Interval) Scale(n int) Interval {
	return Interval{
		Years:    iv.Years * n,
		Months:   iv.Months * n,
		Days:     iv.Days * n,
		Duration: iv.Duration * time.Duration(n),
	}
}

// IsZero reports whether iv is an empty interval.
func (iv Interval) IsZero() bool {
	return iv.Years == 0 && iv.Months == 0 && iv.Days == 0 && iv.Duration == 0
}

// Seconds returns the length of iv in seconds. Intervals containing
// years or months do not have a fixed length and return an error.
func (iv Interval) Seconds() (float64, error) {
	if iv.Years != 0 || iv.Months != 0 {
		return 0, fmt.Errorf("timekeeping: interval %s has no fixed length in seconds", iv)
	}
	return float64(iv.Days)*secondsPerDay + iv.Duration.Seconds(), nil
}

// approxSeconds estimates the length of iv using average month and
// year lengths.
func (iv Interval) approxSeconds() float64 {
	return float64(iv.Years)*secondsPerYear + float64(iv.Months)*secondsPerMonth +
		float64(iv.Days)*secondsPerDay + iv.Duration.Seconds()
}

func (iv Interval) String() string {
	d := iv.Duration
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	sec := d.Seconds()
	if sec == math.Trunc(sec) {
		return fmt.Sprintf("%04d-%02d-%02d_%02d:%02d:%02d", iv.Years, iv.Months, iv.Days, h, m, int(sec))
	}
	return fmt.Sprintf("%04d-%02d-%02d_%02d:%02d:%09.6f", iv.Years, iv.Months, iv.Days, h, m, sec)
}

// Cycles returns the number of whole intervals iv that fit between
// origin and t, so that origin+k*iv <= t < origin+(k+1)*iv. k is
// negative when t is before origin.
func (iv Interval) Cycles(origin, t time.Time) (int, error) {
	approx := iv.approxSeconds()
	if !(approx > 0) {
		return 0, fmt.Errorf("timekeeping: cannot count cycles of empty interval")
	}
	k := int(math.Floor(secondsBetween(origin, t) / approx))
	for t.Before(iv.Scale(k).AddTo(origin)) {
		k--
	}
	for !t.Before(iv.Scale(k + 1).AddTo(origin)) {
		k++
	}
	return k, nil
}

// ParseTime parses a time stamp of the form "YYYY-MM-DD_hh:mm:ss" or
// "YYYY-MM-DD". All times are in UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	datePart, timePart := s, ""
	if i := strings.Index(s, "_"); i >= 0 {
		datePart, timePart = s[:i], s[i+1:]
	}
	d := strings.Split(datePart, "-")
	if len(d) != 3 {
		return time.Time{}, fmt.Errorf("timekeeping: invalid time stamp %q", s)
	}
	var ymd [3]int
	for i, f := range d {
		v, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, fmt.Errorf("timekeeping: invalid time stamp %q", s)
		}
		ymd[i] = v
	}
	if ymd[1] < 1 || ymd[1] > 12 || ymd[2] < 1 || ymd[2] > 31 {
		return time.Time{}, fmt.Errorf("timekeeping: invalid date in time stamp %q", s)
	}
	var hms [3]int
	if timePart != "" {
		tt := strings.Split(timePart, ":")
		if len(tt) != 3 {
			return time.Time{}, fmt.Errorf("timekeeping: invalid time stamp %q", s)
		}
		for i, f := range tt {
			v, err := strconv.Atoi(f)
			if err != nil {
				return time.Time{}, fmt.Errorf("timekeeping: invalid time stamp %q", s)
			}
			hms[i] = v
		}
	}
	return time.Date(ymd[0], time.Month(ymd[1]), ymd[2], hms[0], hms[1], hms[2], 0, time.UTC), nil
}

// FormatTime formats t as "YYYY-MM-DD_hh:mm:ss".
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d_%02d:%02d:%02d",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// secondsBetween returns t-origin in seconds without the ±292 year
// limit of time.Duration.
func secondsBetween(origin, t time.Time) float64 {
	return float64(t.Unix()-origin.Unix()) + float64(t.Nanosecond()-origin.Nanosecond())/1e9
}

// Fraction returns the position of t between a and b, where 0 is a and 1
// is b.
func Fraction(a, b, t time.Time) float64 {
	span := secondsBetween(a, b)
	if span == 0 {
		return 0
	}
	return secondsBetween(a, t) / span
}
