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

// Package forcing provides time-interpolated forcing fields read from
// periodic data sets such as monthly climatologies.
//
// Fields are registered in groups. All of the fields in a group share a
// data source and a forcing clock, which is synchronized to the model
// clock on the first time step and advanced by the model time step
// afterwards. When a group has a cycle, times are wrapped into the
// cycle before looking up records, so a 12-record monthly climatology
// repeats every year.
package forcing

import (
	"fmt"
	"sort"
	"time"

	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/timekeeping"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// Interpolation specifies how field values are calculated between
// records.
type Interpolation int

const (
	// Constant uses the most recent record.
	Constant Interpolation = iota

	// Linear interpolates linearly between the surrounding records.
	Linear
)

// ParseInterpolation returns the Interpolation with the given name,
// either "constant" or "linear".
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "constant":
		return Constant, nil
	case "linear":
		return Linear, nil
	default:
		return 0, fmt.Errorf("forcing: invalid interpolation type '%s'", s)
	}
}

func (i Interpolation) String() string {
	switch i {
	case Constant:
		return "constant"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// Manager holds forcing groups and updates their fields.
type Manager struct {
	groups map[string]*group

	// Log receives information about record changes.
	Log logrus.FieldLogger
}

// NewManager returns an empty forcing manager. If log is nil, the
// standard logger is used.
func NewManager(log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		groups: make(map[string]*group),
		Log:    log,
	}
}

type group struct {
	name          string
	src           Source
	time          time.Time
	cycleStart    time.Time
	cycleDuration timekeeping.Interval
	fields        []*field
}

type field struct {
	name     string
	variable string
	interp   Interpolation
	refTime  time.Time
	interval timekeeping.Interval
	target   *sparse.DenseArray
	nrec     int

	cache   map[int][]float64
	lastRec int
}

// InitGroup registers a forcing group whose fields are read from src.
// start is the initial forcing time. If cycleDuration is not empty,
// forcing times are wrapped into the cycle beginning at cycleStart;
// an empty cycleDuration means the group does not repeat.
func (m *Manager) InitGroup(name string, src Source, start, cycleStart, cycleDuration string) error {
	if _, ok := m.groups[name]; ok {
		return fmt.Errorf("forcing: group %s already exists", name)
	}
	if src == nil {
		return fmt.Errorf("forcing: group %s has no data source", name)
	}
	g := &group{name: name, src: src}
	var err error
	if g.time, err = timekeeping.ParseTime(start); err != nil {
		return fmt.Errorf("forcing: group %s: %w", name, err)
	}
	if cycleDuration != "" {
		if g.cycleStart, err = timekeeping.ParseTime(cycleStart); err != nil {
			return fmt.Errorf("forcing: group %s: %w", name, err)
		}
		if g.cycleDuration, err = timekeeping.ParseInterval(cycleDuration); err != nil {
			return fmt.Errorf("forcing: group %s: %w", name, err)
		}
	}
	m.groups[name] = g
	m.Log.WithFields(logrus.Fields{
		"group": name,
		"start": start,
		"cycle": g.cycleDuration.String(),
	}).Debug("initialized forcing group")
	return nil
}

// InitField registers a field in the given group. variable is the name
// of the variable in the group's data source and target is the array
// the interpolated values are written to. Record i of the variable is
// valid at refTime + i*interval.
func (m *Manager) InitField(groupName, name, variable, interp, refTime, interval string, target *sparse.DenseArray) error {
	g, ok := m.groups[groupName]
	if !ok {
		return fmt.Errorf("forcing: field %s: group %s does not exist", name, groupName)
	}
	if target == nil {
		return fmt.Errorf("forcing: field %s: nil target", name)
	}
	f := &field{
		name:     name,
		variable: variable,
		target:   target,
		cache:    make(map[int][]float64),
		lastRec:  -1,
	}
	var err error
	if f.interp, err = ParseInterpolation(interp); err != nil {
		return fmt.Errorf("forcing: field %s: %w", name, err)
	}
	if f.refTime, err = timekeeping.ParseTime(refTime); err != nil {
		return fmt.Errorf("forcing: field %s: %w", name, err)
	}
	if f.interval, err = timekeeping.ParseInterval(interval); err != nil {
		return fmt.Errorf("forcing: field %s: %w", name, err)
	}
	if f.interval.IsZero() {
		return fmt.Errorf("forcing: field %s: record interval must not be empty", name)
	}
	if f.nrec, err = g.src.Records(variable); err != nil {
		return fmt.Errorf("forcing: field %s: %w", name, err)
	}
	if f.nrec == 0 {
		return fmt.Errorf("forcing: field %s: variable %s has no records", name, variable)
	}
	g.fields = append(g.fields, f)
	return nil
}

// Sync sets the forcing time of the group to t and updates its fields.
func (m *Manager) Sync(groupName string, t time.Time) error {
	g, ok := m.groups[groupName]
	if !ok {
		return fmt.Errorf("forcing: group %s does not exist", groupName)
	}
	g.time = t
	return m.update(g)
}

// Advance moves the forcing time of the group forward by dt and updates
// its fields.
func (m *Manager) Advance(groupName string, dt timekeeping.Interval) error {
	g, ok := m.groups[groupName]
	if !ok {
		return fmt.Errorf("forcing: group %s does not exist", groupName)
	}
	g.time = dt.AddTo(g.time)
	return m.update(g)
}

// Time returns the current forcing time of the group.
func (m *Manager) Time(groupName string) (time.Time, error) {
	g, ok := m.groups[groupName]
	if !ok {
		return time.Time{}, fmt.Errorf("forcing: group %s does not exist", groupName)
	}
	return g.time, nil
}

// Groups returns the names of the registered groups in sorted order.
func (m *Manager) Groups() []string {
	o := make([]string, 0, len(m.groups))
	for name := range m.groups {
		o = append(o, name)
	}
	sort.Strings(o)
	return o
}

// update recalculates all fields of g at the group's forcing time.
func (m *Manager) update(g *group) error {
	t, err := g.cycleTime()
	if err != nil {
		return err
	}
	for _, f := range g.fields {
		if err := f.update(g, t); err != nil {
			return fmt.Errorf("forcing: group %s: %w", g.name, err)
		}
		m.Log.WithFields(logrus.Fields{
			"group":  g.name,
			"field":  f.name,
			"record": f.lastRec,
			"time":   timekeeping.FormatTime(g.time),
		}).Debug("updated forcing field")
	}
	return nil
}

// cycleTime returns the forcing time of g wrapped into its cycle.
func (g *group) cycleTime() (time.Time, error) {
	if g.cycleDuration.IsZero() {
		return g.time, nil
	}
	c, err := g.cycleDuration.Cycles(g.cycleStart, g.time)
	if err != nil {
		return time.Time{}, fmt.Errorf("forcing: group %s: %w", g.name, err)
	}
	return g.cycleDuration.Scale(-c).AddTo(g.time), nil
}

// update writes the value of f at time t into its target.
func (f *field) update(g *group, t time.Time) error {
	k, err := f.interval.Cycles(f.refTime, t)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.name, err)
	}
	rec, err := f.record(g, k)
	if err != nil {
		return err
	}
	v0, err := f.read(g, rec)
	if err != nil {
		return err
	}
	f.lastRec = rec
	t0 := f.interval.Scale(k).AddTo(f.refTime)
	if f.interp == Constant || t.Equal(t0) {
		copy(f.target.Elements, v0)
		return nil
	}
	rec1, err := f.record(g, k+1)
	if err != nil {
		return err
	}
	v1, err := f.read(g, rec1)
	if err != nil {
		return err
	}
	t1 := f.interval.Scale(k + 1).AddTo(f.refTime)
	frac := timekeeping.Fraction(t0, t1, t)
	for i := range f.target.Elements {
		f.target.Elements[i] = (1-frac)*v0[i] + frac*v1[i]
	}
	return nil
}

// record returns the index of the k-th record after the reference time.
// Indices are wrapped when the group is cyclic; otherwise k must be a
// valid record.
func (f *field) record(g *group, k int) (int, error) {
	if !g.cycleDuration.IsZero() {
		return ((k % f.nrec) + f.nrec) % f.nrec, nil
	}
	if k < 0 || k >= f.nrec {
		return 0, fmt.Errorf("field %s: time %s is outside of the %d available records",
			f.name, timekeeping.FormatTime(g.time), f.nrec)
	}
	return k, nil
}

func (f *field) read(g *group, rec int) ([]float64, error) {
	if v, ok := f.cache[rec]; ok {
		return v, nil
	}
	v, err := g.src.Read(f.variable, rec)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.name, err)
	}
	if len(v) != len(f.target.Elements) {
		return nil, fmt.Errorf("field %s: record %d has %d values but the target has %d",
			f.name, rec, len(v), len(f.target.Elements))
	}
	f.cache[rec] = v
	return v, nil
}
