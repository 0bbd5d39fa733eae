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
	"fmt"
	"time"
)

// Clock keeps track of simulation time.
type Clock struct {
	Start   time.Time
	Stop    time.Time
	Current time.Time
	Step    Interval

	steps int
}

// NewClock creates a clock starting at start (a time stamp), advancing by
// step and stopping after runDuration (both intervals).
func NewClock(start, step, runDuration string) (*Clock, error) {
	t0, err := ParseTime(start)
	if err != nil {
		return nil, err
	}
	dt, err := ParseInterval(step)
	if err != nil {
		return nil, err
	}
	if dt.IsZero() {
		return nil, fmt.Errorf("timekeeping: time step must be greater than zero")
	}
	run, err := ParseInterval(runDuration)
	if err != nil {
		return nil, err
	}
	return &Clock{
		Start:   t0,
		Stop:    run.AddTo(t0),
		Current: t0,
		Step:    dt,
	}, nil
}

// Advance moves the clock forward by one time step.
func (c *Clock) Advance() {
	c.steps++
	c.Current = c.Step.Scale(c.steps).AddTo(c.Start)
}

// Done reports whether the clock has reached its stop time.
func (c *Clock) Done() bool {
	return !c.Current.Before(c.Stop)
}

// IsFirstStep reports whether the clock has not yet been advanced.
func (c *Clock) IsFirstStep() bool {
	return c.steps == 0
}

// Steps returns the number of steps taken so far.
func (c *Clock) Steps() int { return c.steps }

func (c *Clock) String() string {
	return FormatTime(c.Current)
}
