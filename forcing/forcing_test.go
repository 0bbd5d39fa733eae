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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/internal/ncf"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/timekeeping"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monthly returns a source with a 12-month climatology where the value
// in every cell is the month index.
func monthly(nCells int) MemorySource {
	recs := make([][]float64, 12)
	for i := range recs {
		recs[i] = make([]float64, nCells)
		for j := range recs[i] {
			recs[i][j] = float64(i)
		}
	}
	return MemorySource{"chl": recs}
}

func mustInterval(t *testing.T, s string) timekeeping.Interval {
	t.Helper()
	iv, err := timekeeping.ParseInterval(s)
	require.NoError(t, err)
	return iv
}

func newMonthly(t *testing.T, interp string) (*Manager, *sparse.DenseArray) {
	t.Helper()
	log, _ := test.NewNullLogger()
	m := NewManager(log)
	target := sparse.ZerosDense(2)
	require.NoError(t, m.InitGroup("monthly", monthly(2), "0001-01-01_00:00:00",
		"0000-01-01_00:00:00", "0001-00-00_00:00:00"))
	require.NoError(t, m.InitField("monthly", "chlorophyllData", "chl", interp,
		"0000-01-15_00:00:00", "0000-01-00_00:00:00", target))
	return m, target
}

func TestConstantCycle(t *testing.T) {
	m, target := newMonthly(t, "constant")
	for _, c := range []struct {
		time string
		want float64
	}{
		{"0001-01-01_00:00:00", 11}, // before the first record: previous December
		{"0001-01-15_00:00:00", 0},
		{"0001-03-20_12:00:00", 2},
		{"0001-12-31_23:00:00", 11},
		{"0005-07-15_00:00:00", 6},
	} {
		tt, err := timekeeping.ParseTime(c.time)
		require.NoError(t, err)
		require.NoError(t, m.Sync("monthly", tt))
		assert.Equal(t, []float64{c.want, c.want}, target.Elements, c.time)
	}
}

func TestLinearCycle(t *testing.T) {
	m, target := newMonthly(t, "linear")
	start, err := timekeeping.ParseTime("0001-01-01_00:00:00")
	require.NoError(t, err)
	require.NoError(t, m.Sync("monthly", start))
	// Dec 15 -> Jan 15 is 31 days, and Jan 1 is 17 days in.
	assert.InDelta(t, 11*14./31, target.Elements[0], 1e-12)

	tt, err := timekeeping.ParseTime("0001-02-15_00:00:00")
	require.NoError(t, err)
	require.NoError(t, m.Sync("monthly", tt))
	assert.InDelta(t, 1, target.Elements[1], 1e-12)
}

func TestLinearNoCycle(t *testing.T) {
	m := NewManager(logrus.New())
	target := sparse.ZerosDense(1)
	src := MemorySource{"v": {{0}, {10}}}
	require.NoError(t, m.InitGroup("g", src, "0001-01-01_00:00:00", "", ""))
	require.NoError(t, m.InitField("g", "v", "v", "linear", "0001-01-01_00:00:00", "1_00:00:00", target))

	require.NoError(t, m.Advance("g", mustInterval(t, "06:00:00")))
	assert.InDelta(t, 2.5, target.Elements[0], 1e-12)

	require.NoError(t, m.Advance("g", mustInterval(t, "18:00:00")))
	assert.Equal(t, 10., target.Elements[0], "last record")

	assert.Error(t, m.Advance("g", mustInterval(t, "01:00:00")), "past the last record")
}

func TestAdvance(t *testing.T) {
	m, target := newMonthly(t, "constant")
	start, err := timekeeping.ParseTime("0001-01-10_00:00:00")
	require.NoError(t, err)
	require.NoError(t, m.Sync("monthly", start))
	assert.Equal(t, 11., target.Elements[0])

	dt := mustInterval(t, "1_00:00:00")
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Advance("monthly", dt))
	}
	assert.Equal(t, 0., target.Elements[0])
	now, err := m.Time("monthly")
	require.NoError(t, err)
	assert.Equal(t, "0001-01-15_00:00:00", timekeeping.FormatTime(now))
}

func TestRestartTimes(t *testing.T) {
	m, _ := newMonthly(t, "constant")
	tt, err := timekeeping.ParseTime("0002-06-20_00:00:00")
	require.NoError(t, err)
	require.NoError(t, m.Sync("monthly", tt))

	var buf bytes.Buffer
	require.NoError(t, m.WriteRestartTimes(&buf))
	assert.Contains(t, buf.String(), "[groups.monthly]")
	assert.Contains(t, buf.String(), `time = "0002-06-20_00:00:00"`)

	m2, target := newMonthly(t, "constant")
	log, hook := test.NewNullLogger()
	m2.Log = log
	buf.WriteString("\n[groups.other]\ntime = \"0001-01-01_00:00:00\"\n")
	require.NoError(t, m2.ReadRestartTimes(&buf))
	now, err := m2.Time("monthly")
	require.NoError(t, err)
	assert.True(t, now.Equal(tt))
	assert.Equal(t, 5., target.Elements[0])

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["group"] == "other" {
			warned = true
		}
	}
	assert.True(t, warned, "unknown group should be reported")
}

func TestErrors(t *testing.T) {
	log, _ := test.NewNullLogger()
	m := NewManager(log)
	target := sparse.ZerosDense(3)
	src := MemorySource{"v": {{0, 1}}}
	require.NoError(t, m.InitGroup("g", src, "0001-01-01", "", ""))

	assert.Error(t, m.InitGroup("g", src, "0001-01-01", "", ""), "duplicate group")
	assert.Error(t, m.InitGroup("h", nil, "0001-01-01", "", ""), "no source")
	assert.Error(t, m.InitGroup("h", src, "bad", "", ""), "bad start")
	assert.Error(t, m.InitField("nope", "v", "v", "constant", "0001-01-01", "1_00:00:00", target))
	assert.Error(t, m.InitField("g", "v", "v", "cubic", "0001-01-01", "1_00:00:00", target))
	assert.Error(t, m.InitField("g", "v", "missing", "constant", "0001-01-01", "1_00:00:00", target))
	assert.Error(t, m.InitField("g", "v", "v", "constant", "0001-01-01", "00:00:00", target))
	tt, err := timekeeping.ParseTime("0001-01-01")
	require.NoError(t, err)
	assert.Error(t, m.Sync("nope", tt))

	require.NoError(t, m.InitField("g", "v", "v", "constant", "0001-01-01", "1_00:00:00", target))
	assert.Error(t, m.Sync("g", tt), "record length does not match target")
}

func TestNCFSource(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "forcing.nc"))
	require.NoError(t, err)
	defer f.Close()

	h := cdf.NewHeader([]string{"Time", "nCells"}, []int{0, 2})
	h.AddVariable("chl", []string{"Time", "nCells"}, []float32{0})
	h.AddVariable("depth", []string{"nCells"}, []float64{0})
	h.Define()
	ff, err := cdf.Create(f, h)
	require.NoError(t, err)
	for rec := 0; rec < 3; rec++ {
		require.NoError(t, ncf.WriteRecord(ff, "chl", rec, []float64{float64(rec), float64(rec) + 0.5}))
	}
	require.NoError(t, ncf.Write(ff, "depth", []float64{100, 200}))
	require.NoError(t, cdf.UpdateNumRecs(f))

	src, err := NewNCFSource(f)
	require.NoError(t, err)
	n, err := src.Records("chl")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	v, err := src.Read("chl", 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2.5}, v)
	_, err = src.Read("chl", 3)
	assert.Error(t, err)

	n, err = src.Records("depth")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	v, err = src.Read("depth", 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200}, v)

	_, err = src.Records("missing")
	assert.Error(t, err)
}
