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

package timekeeping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		want Interval
	}{
		{in: "0001-00-00_00:00:00", want: Interval{Years: 1}},
		{in: "0000-01-00_00:00:00", want: Interval{Months: 1}},
		{in: "10_00:00:00", want: Interval{Days: 10}},
		{in: "01:30:00", want: Interval{Duration: 90 * time.Minute}},
		{in: "30:00", want: Interval{Duration: 30 * time.Minute}},
		{in: "3600", want: Interval{Duration: time.Hour}},
		{in: "0000-00-01", want: Interval{Days: 1}},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			got, err := ParseInterval(test.in)
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestParseInterval_invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1-2-3-4_00:00:00", "1:2:3:4", "-1"} {
		_, err := ParseInterval(in)
		assert.Error(t, err, in)
	}
}

func TestIntervalString(t *testing.T) {
	iv, err := ParseInterval("0001-02-03_04:05:06")
	require.NoError(t, err)
	assert.Equal(t, "0001-02-03_04:05:06", iv.String())
}

func TestIntervalSeconds(t *testing.T) {
	iv := Interval{Days: 1, Duration: time.Hour}
	s, err := iv.Seconds()
	require.NoError(t, err)
	assert.Equal(t, 90000., s)

	_, err = Interval{Months: 1}.Seconds()
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("0000-01-15_00:00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, "0000-01-15_00:00:00", FormatTime(got))

	got, err = ParseTime("2001-07-04_12:30:15")
	require.NoError(t, err)
	assert.Equal(t, "2001-07-04_12:30:15", FormatTime(got))

	_, err = ParseTime("2001-13-04_12:30:15")
	assert.Error(t, err)
	_, err = ParseTime("2001-07")
	assert.Error(t, err)
}

func TestCycles(t *testing.T) {
	origin, err := ParseTime("0000-01-01_00:00:00")
	require.NoError(t, err)
	year := Interval{Years: 1}

	tests := []struct {
		t    string
		want int
	}{
		{t: "0000-01-01_00:00:00", want: 0},
		{t: "0000-12-31_23:59:59", want: 0},
		{t: "0001-01-01_00:00:00", want: 1},
		{t: "2000-06-15_00:00:00", want: 2000},
	}
	for _, test := range tests {
		tt, err := ParseTime(test.t)
		require.NoError(t, err)
		k, err := year.Cycles(origin, tt)
		require.NoError(t, err)
		assert.Equal(t, test.want, k, test.t)
	}

	k, err := year.Cycles(origin, origin.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, -1, k)

	_, err = Interval{}.Cycles(origin, origin)
	assert.Error(t, err)
}

func TestFraction(t *testing.T) {
	a := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.Add(10 * time.Hour)
	assert.InDelta(t, 0.25, Fraction(a, b, a.Add(150*time.Minute)), 1e-12)
	assert.Equal(t, 0., Fraction(a, a, b))
}

func TestClock(t *testing.T) {
	c, err := NewClock("2000-01-01_00:00:00", "01:00:00", "0000-00-00_03:00:00")
	require.NoError(t, err)
	assert.True(t, c.IsFirstStep())
	assert.False(t, c.Done())

	var n int
	for !c.Done() {
		c.Advance()
		n++
	}
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, c.Steps())
	assert.False(t, c.IsFirstStep())
	assert.Equal(t, "2000-01-01_03:00:00", c.String())

	_, err = NewClock("2000-01-01_00:00:00", "00:00:00", "01:00:00")
	assert.Error(t, err)
}
