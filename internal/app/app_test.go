package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/decoplan/internal/dive"
)

func runApp(t *testing.T, opts Options) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := New(opts, &out, nil).Run(context.Background())
	return out.String(), err
}

func TestDefaultPlanTable(t *testing.T) {
	out, err := runApp(t, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "depth (m)")
	assert.Contains(t, out, "ZHL16C")
	assert.Contains(t, out, "bottom")
}

func TestPointsTable(t *testing.T) {
	out, err := runApp(t, Options{Output: "points"})
	require.NoError(t, err)
	assert.Contains(t, out, "margin")
	assert.Contains(t, out, "surface")
	assert.Contains(t, out, "21/35")
}

func TestClock(t *testing.T) {
	assert.Equal(t, "00:00", clock(0))
	assert.Equal(t, "01:05", clock(65))
	assert.Equal(t, "62:30", clock(3749.6))
}

func TestStopsTable(t *testing.T) {
	p := dive.NewDefaultPlan()
	assert.Contains(t, stopsTable(p), "no decompression stops")

	p.Mode = dive.ModeCustom
	p.DecoStops[0].Runtime = 1920
	p.DecoStops[0].Done = 240
	out := stopsTable(p)
	assert.NotContains(t, out, "no decompression stops")
	assert.Contains(t, out, "32")
	for _, stop := range p.DecoStops {
		assert.Contains(t, out, fmt.Sprintf(" %.0f ", stop.Depth))
	}
}

func TestCSVExport(t *testing.T) {
	out, err := runApp(t, Options{Output: "csv"})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Greater(t, len(records), 2)
	assert.Equal(t, csvHeader, records[0])

	last := records[len(records)-1]
	assert.Equal(t, "surface", last[3])
	assert.Equal(t, "0.0000", last[2])
}

func TestJSONExport(t *testing.T) {
	out, err := runApp(t, Options{Output: "json"})
	require.NoError(t, err)

	var doc struct {
		Summary dive.Summary        `json:"summary"`
		Profile []dive.ProfilePoint `json:"profile"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, len(doc.Profile), doc.Summary.Points)
	assert.Equal(t, dive.PhaseSurface, doc.Profile[len(doc.Profile)-1].Phase)
}

func TestUnknownOutput(t *testing.T) {
	_, err := runApp(t, Options{Output: "pdf"})
	assert.Error(t, err)
}

func TestPlanFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bottom_depth: 30\nbottom_time: 10\nmode: import\n"), 0o600))

	_, err := runApp(t, Options{PlanFile: path})
	assert.ErrorIs(t, err, dive.ErrConfiguration)

	_, err = runApp(t, Options{PlanFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, dive.ErrConfiguration)

	rejected := map[string]string{
		"mix.yaml":   "bottom_depth: 30\nbottom_time: 10\ntanks:\n  - role: bottom\n    o2: 60\n    he: 50\n",
		"depth.yaml": "bottom_depth: -5\nbottom_time: 10\n",
		"mode.yaml":  "bottom_depth: 30\nbottom_time: 10\nmode: guess\n",
		"typo.yaml":  "bottom_depth: 30\nbotom_time: 10\n",
	}
	for name, doc := range rejected {
		bad := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(bad, []byte(doc), 0o600))
		_, err := runApp(t, Options{PlanFile: bad})
		assert.ErrorIs(t, err, dive.ErrConfiguration, name)
		assert.NotContains(t, err.Error(), "-plan flag", name)
	}

	_, err = runApp(t, Options{PlanFile: path, PlanBackend: "toml"})
	assert.Error(t, err)
}

func TestMaxStepsOption(t *testing.T) {
	_, err := runApp(t, Options{MaxSteps: 5})
	assert.ErrorIs(t, err, dive.ErrNotConverged)
}

func TestArchiveAndReplan(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "runs.db")
	plan := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(plan, []byte("name: shallow\nbottom_depth: 30\nbottom_time: 15\n"), 0o600))

	_, err := runApp(t, Options{PlanFile: plan, ArchivePath: archive})
	require.NoError(t, err)

	out, err := runApp(t, Options{ArchivePath: archive, ListRuns: true})
	require.NoError(t, err)
	assert.Contains(t, out, "shallow")

	out, err = runApp(t, Options{ArchivePath: archive, PlanBackend: "sqlite", DumpPlan: true})
	require.NoError(t, err)
	assert.Contains(t, out, "name: shallow")
	assert.Contains(t, out, "bottom_depth: 30")

	_, err = runApp(t, Options{ListRuns: true})
	assert.Error(t, err)
}

func TestUnknownModel(t *testing.T) {
	_, err := newModel("vpm-b")
	assert.ErrorIs(t, err, dive.ErrConfiguration)

	model, err := newModel("ZHL16C")
	require.NoError(t, err)
	assert.Equal(t, "ZHL16C", model.Name())
}
