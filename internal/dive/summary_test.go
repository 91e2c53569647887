package dive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeCalculatedRun(t *testing.T) {
	p := NewDefaultPlan()
	runPlan(t, p)
	s := Summarize(p)

	last := p.Profile[len(p.Profile)-1]
	assert.Equal(t, last.Time, s.Runtime)
	assert.Equal(t, last.DepthRunAvg, s.AverageDepth)
	assert.Equal(t, 45.0, s.MaxDepth)
	assert.Equal(t, len(p.Profile), s.Points)
	assert.Equal(t, "ZHL16C", s.ModelName)
	assert.Equal(t, p.AscentBegins, s.AscentBegins)
	assert.Positive(t, s.DepthStdDev)
	assert.Greater(t, s.MeanPPOxygen, 0.21)
	assert.LessOrEqual(t, s.MeanPPOxygen, p.Maxima.PPOxygen)

	var deco float64
	for _, stop := range p.DecoStopsCalculated {
		deco += stop.Duration
	}
	assert.Equal(t, deco, s.DecoTime)
	assert.Equal(t, p.DecoStopsCalculated, s.Stops)

	// travel is disabled, the rest are listed in display order
	require.Len(t, s.Tanks, 3)
	assert.Equal(t, []TankRole{RoleBottom, RoleDeco1, RoleDeco2},
		[]TankRole{s.Tanks[0].Role, s.Tanks[1].Role, s.Tanks[2].Role})
	for _, usage := range s.Tanks {
		assert.Positive(t, usage.UsedBar, "%s", usage.Role)
		assert.InDelta(t, usage.StartPressure-usage.EndPressure, usage.UsedBar, 1e-9)
		assert.False(t, usage.OutOfGas)
		assert.NotEmpty(t, usage.Usage)
	}
}

func TestSummarizeCustomRun(t *testing.T) {
	p := airPlan(40, 20)
	p.Mode = ModeCustom
	p.AddDecoStop(6, 2)
	p.AddDecoStop(3, 3)
	runPlan(t, p)

	s := Summarize(p)
	require.Len(t, s.Stops, 2)
	assert.Equal(t, s.Stops[0].Done+s.Stops[1].Done, s.DecoTime)
	assert.GreaterOrEqual(t, s.DecoTime, 300.0)
}

func TestSummarizeOutOfGas(t *testing.T) {
	p := airPlan(50, 30)
	p.Tanks[RoleBottom].Liters = 3
	runPlan(t, p)

	s := Summarize(p)
	require.Len(t, s.Tanks, 1)
	assert.True(t, s.Tanks[0].OutOfGas)
	assert.Negative(t, s.Tanks[0].EndPressure)
}

func TestSummarizeEmptyPlan(t *testing.T) {
	s := Summarize(NewDefaultPlan())
	assert.Zero(t, s.Runtime)
	assert.Zero(t, s.Points)
	assert.Empty(t, s.Stops)
	assert.Len(t, s.Tanks, 3)
}
