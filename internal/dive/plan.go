package dive

import (
	"errors"
	"fmt"
	"sync"
)

// PlanMode selects how decompression stops are decided
type PlanMode int

const (
	// ModeCalculate inserts stops from the decompression model's ceiling
	ModeCalculate PlanMode = iota
	// ModeCustom holds the diver's own list of stops
	ModeCustom
	// ModeImport is reserved for imported dive logs and cannot be simulated
	ModeImport
)

func (m PlanMode) String() string {
	switch m {
	case ModeCalculate:
		return "calculate"
	case ModeCustom:
		return "custom"
	case ModeImport:
		return "import"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParsePlanMode converts a mode name to a PlanMode
func ParsePlanMode(s string) (PlanMode, error) {
	for _, m := range []PlanMode{ModeCalculate, ModeCustom, ModeImport} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown plan mode %q", s)
}

// Rates are descent and ascent speeds in meters per minute. Ascent uses one rate per
// depth band: deeper than half the bottom depth, from there to 6 m, and the last 6 m.
type Rates struct {
	Descent         float64 `json:"descent"`
	AscentToDeco    float64 `json:"ascent_to_deco"`
	AscentAtDeco    float64 `json:"ascent_at_deco"`
	AscentToSurface float64 `json:"ascent_to_surface"`
}

// DecoStop is a requested (Custom mode) or computed (Calculate mode) stop. Depth is in
// meters; Duration, Done and Runtime are in seconds.
type DecoStop struct {
	Depth    float64 `json:"depth"`
	Duration float64 `json:"duration"`
	Number   int     `json:"number"`
	Done     float64 `json:"done"`
	Runtime  float64 `json:"runtime"`
}

// Maxima are running maxima collected over a run, used to scale presentation
type Maxima struct {
	PPOxygen       float64 `json:"pp_o2"`
	PPHelium       float64 `json:"pp_he"`
	PPNitrogen     float64 `json:"pp_n2"`
	PPAnyGas       float64 `json:"pp_any"`
	TissueNitrogen float64 `json:"tissue_n2"`
	TissueHelium   float64 `json:"tissue_he"`
}

// DivePlan is the caller owned session state. The engine reads the inputs and writes
// the run state and results in place; a plan must not be shared between concurrent runs.
type DivePlan struct {
	mu sync.Mutex

	BottomDepth float64  `json:"bottom_depth"` // meters
	BottomTime  float64  `json:"bottom_time"`  // seconds
	Rates       Rates    `json:"rates"`
	GFLow       float64  `json:"gf_low"`
	GFHigh      float64  `json:"gf_high"`
	Mode        PlanMode `json:"mode"`
	Tanks       Tanks    `json:"tanks"`

	// DecoStops is the ordered Custom mode stop list
	DecoStops []DecoStop `json:"deco_stops,omitempty"`

	CurrentTank  *ScubaTank `json:"-"`
	NextTank     *ScubaTank `json:"-"`
	ChangeDepth  float64    `json:"-"`
	AscentBegins float64    `json:"ascent_begins"`

	Profile             []ProfilePoint `json:"profile,omitempty"`
	DecoStopsCalculated []DecoStop     `json:"deco_stops_calculated,omitempty"`
	Maxima              Maxima         `json:"maxima"`
	ModelName           string         `json:"model,omitempty"`
}

// DescentTime returns the time in seconds to reach the bottom
func (p *DivePlan) DescentTime() float64 {
	if p.Rates.Descent <= 0 {
		return 0
	}
	return p.BottomDepth / p.Rates.Descent * 60.0
}

// MaxDepth returns the deepest point of the plan
func (p *DivePlan) MaxDepth() float64 {
	return p.BottomDepth
}

// AddDecoStop appends a Custom mode stop. Depth is in meters and minutes is the
// requested time; stops without time are ignored.
func (p *DivePlan) AddDecoStop(depth, minutes float64) {
	if minutes <= 0 {
		return
	}
	p.DecoStops = append(p.DecoStops, DecoStop{
		Depth:    depth,
		Duration: minutes * 60.0,
		Number:   len(p.DecoStops),
	})
}

var (
	errNoBottomTank = errors.New("plan has no bottom tank")
)

// Validate checks the inputs the engine cannot simulate. Zero or negative ascent rates
// are left to the engine, which reports them as non-convergence.
func (p *DivePlan) Validate() error {
	if p.BottomDepth <= 0 {
		return fmt.Errorf("bottom depth must be positive, got %.1f m", p.BottomDepth)
	}
	if p.BottomTime <= 0 {
		return fmt.Errorf("bottom time must be positive, got %.0f s", p.BottomTime)
	}
	if p.Rates.Descent <= 0 {
		return fmt.Errorf("descent rate must be positive, got %.1f m/min", p.Rates.Descent)
	}
	if p.GFLow <= 0 || p.GFLow > 1 || p.GFHigh <= 0 || p.GFHigh > 1 {
		return fmt.Errorf("gradient factors must be within (0, 1], got %.2f/%.2f", p.GFLow, p.GFHigh)
	}

	bottom := p.Tanks.Get(RoleBottom)
	if bottom == nil {
		return errNoBottomTank
	}
	if !bottom.Enabled {
		return fmt.Errorf("the bottom tank must be in use")
	}

	for _, role := range Roles {
		tank := p.Tanks.Get(role)
		if tank == nil || !tank.Enabled {
			continue
		}
		if tank.Oxygen < 0 || tank.Helium < 0 || tank.Oxygen+tank.Helium > 100 {
			return fmt.Errorf("%w: %s tank O2 %.0f%% + He %.0f%%", ErrInvalidMix, role, tank.Oxygen, tank.Helium)
		}
		if tank.Liters <= 0 {
			return fmt.Errorf("%s tank volume must be positive", role)
		}
	}

	if p.Mode == ModeCustom {
		for i, stop := range p.DecoStops {
			if stop.Depth <= 0 {
				return fmt.Errorf("custom stop %d has non-positive depth %.1f m", i, stop.Depth)
			}
		}
	}

	return nil
}

// Warnings reports plan settings that can be simulated but look unsafe
func (p *DivePlan) Warnings() []string {
	var out []string
	for _, role := range Roles {
		tank := p.Tanks.Get(role)
		if tank == nil || !tank.Enabled {
			continue
		}
		depth := tank.SwitchDepth
		if role == RoleBottom {
			depth = p.BottomDepth
		}
		if mod := tank.MOD(); depth > mod {
			out = append(out, fmt.Sprintf("%s tank %.0f/%.0f used at %.0f m, deeper than its MOD of %.1f m",
				role, tank.Oxygen, tank.Helium, depth, mod))
		}
	}
	if p.Tanks.Enabled(RoleDeco1) && p.Tanks.Enabled(RoleDeco2) &&
		p.Tanks[RoleDeco2].SwitchDepth > p.Tanks[RoleDeco1].SwitchDepth {
		out = append(out, fmt.Sprintf("deco2 switch depth %.0f m is deeper than deco1 at %.0f m",
			p.Tanks[RoleDeco2].SwitchDepth, p.Tanks[RoleDeco1].SwitchDepth))
	}
	if p.GFLow > p.GFHigh {
		out = append(out, fmt.Sprintf("GF low %.2f is above GF high %.2f", p.GFLow, p.GFHigh))
	}
	return out
}

// Clone returns a deep copy of the plan inputs and results
func (p *DivePlan) Clone() *DivePlan {
	c := &DivePlan{
		BottomDepth:         p.BottomDepth,
		BottomTime:          p.BottomTime,
		Rates:               p.Rates,
		GFLow:               p.GFLow,
		GFHigh:              p.GFHigh,
		Mode:                p.Mode,
		Tanks:               p.Tanks.clone(),
		DecoStops:           append([]DecoStop(nil), p.DecoStops...),
		ChangeDepth:         p.ChangeDepth,
		AscentBegins:        p.AscentBegins,
		DecoStopsCalculated: append([]DecoStop(nil), p.DecoStopsCalculated...),
		Maxima:              p.Maxima,
		ModelName:           p.ModelName,
	}
	if p.CurrentTank != nil {
		c.CurrentTank = c.Tanks[p.CurrentTank.Role]
	}
	if p.NextTank != nil {
		c.NextTank = c.Tanks[p.NextTank.Role]
	}
	if p.Profile != nil {
		c.Profile = make([]ProfilePoint, len(p.Profile))
		for i, point := range p.Profile {
			point.Model = point.Model.Clone()
			c.Profile[i] = point
		}
	}
	return c
}

// publish copies the run state of a finished working copy into p. Tank pointers held
// by callers stay valid.
func (p *DivePlan) publish(work *DivePlan) {
	for role, tank := range work.Tanks {
		if own, ok := p.Tanks[role]; ok {
			*own = *tank
		}
	}
	p.CurrentTank = nil
	if work.CurrentTank != nil {
		p.CurrentTank = p.Tanks[work.CurrentTank.Role]
	}
	p.NextTank = nil
	if work.NextTank != nil {
		p.NextTank = p.Tanks[work.NextTank.Role]
	}
	p.ChangeDepth = work.ChangeDepth
	p.AscentBegins = work.AscentBegins
	p.DecoStops = work.DecoStops
}

// defaultStops is the Custom mode stop table of a new plan, in meters and minutes
var defaultStops = []struct{ depth, minutes float64 }{
	{21, 3}, {15, 1}, {12, 1}, {9, 3}, {6, 5}, {3, 6},
}

// NewDefaultPlan returns the planner's default session: 45 m for 25 minutes on
// trimix 21/35 with 50% and oxygen for decompression, GF 30/80.
func NewDefaultPlan() *DivePlan {
	p := &DivePlan{
		BottomDepth: 45,
		BottomTime:  25 * 60,
		Rates: Rates{
			Descent:         20,
			AscentToDeco:    9,
			AscentAtDeco:    6,
			AscentToSurface: 3,
		},
		GFLow:       0.30,
		GFHigh:      0.80,
		Mode:        ModeCalculate,
		ChangeDepth: -1,
		Tanks: Tanks{
			RoleBottom: {
				Role: RoleBottom, Label: "Bottom", Name: "B", Enabled: true,
				Oxygen: 21, Helium: 35, SAC: 15, PPO2Max: 1.4,
				Liters: 24, StartPressure: 200, Pressure: 200,
			},
			RoleDeco1: {
				Role: RoleDeco1, Label: "deco 1", Name: "D1", Enabled: true,
				Oxygen: 50, SwitchDepth: 21, SAC: 13, PPO2Max: 1.6,
				Liters: 7, StartPressure: 200, Pressure: 200,
			},
			RoleDeco2: {
				Role: RoleDeco2, Label: "deco 2", Name: "D2", Enabled: true,
				Oxygen: 100, SwitchDepth: 6, SAC: 13, PPO2Max: 1.6,
				Liters: 7, StartPressure: 200, Pressure: 200,
			},
			RoleTravel: {
				Role: RoleTravel, Label: "travel 1", Name: "T1", Enabled: false,
				Oxygen: 21, Helium: 25, SwitchDepth: 40, SAC: 16, PPO2Max: 1.4,
				Liters: 11, StartPressure: 200, Pressure: 200,
			},
		},
	}
	for _, stop := range defaultStops {
		p.AddDecoStop(stop.depth, stop.minutes)
	}
	return p
}
