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

package forcing

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/timekeeping"
	"github.com/sirupsen/logrus"
)

// restartTimes is the TOML layout of a restart times file:
//
//	[groups.shortwave_monthly_data]
//	time = "0001-03-01_00:00:00"
type restartTimes struct {
	Groups map[string]groupTime `toml:"groups"`
}

type groupTime struct {
	Time string `toml:"time"`
}

// WriteRestartTimes writes the forcing time of every group to w.
func (m *Manager) WriteRestartTimes(w io.Writer) error {
	rt := restartTimes{Groups: make(map[string]groupTime, len(m.groups))}
	for name, g := range m.groups {
		rt.Groups[name] = groupTime{Time: timekeeping.FormatTime(g.time)}
	}
	if err := toml.NewEncoder(w).Encode(rt); err != nil {
		return fmt.Errorf("forcing: writing restart times: %w", err)
	}
	return nil
}

// ReadRestartTimes reads group forcing times from r, as written by
// WriteRestartTimes, and updates the fields of those groups. Groups in r
// that have not been registered are skipped with a warning.
func (m *Manager) ReadRestartTimes(r io.Reader) error {
	var rt restartTimes
	if _, err := toml.DecodeReader(r, &rt); err != nil {
		return fmt.Errorf("forcing: reading restart times: %w", err)
	}
	for name, gt := range rt.Groups {
		g, ok := m.groups[name]
		if !ok {
			m.Log.WithField("group", name).Warn("restart time for unknown forcing group")
			continue
		}
		t, err := timekeeping.ParseTime(gt.Time)
		if err != nil {
			return fmt.Errorf("forcing: restart time for group %s: %w", name, err)
		}
		g.time = t
		if err := m.update(g); err != nil {
			return err
		}
		m.Log.WithFields(logrus.Fields{
			"group": name,
			"time":  gt.Time,
		}).Info("restored forcing time")
	}
	return nil
}
