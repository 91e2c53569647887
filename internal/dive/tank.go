package dive

import (
	"errors"
	"fmt"
	"math"

	"github.com/chrissnell/decoplan/pkg/pressure"
)

// TankRole identifies a gas supply in the plan
type TankRole int

const (
	RoleBottom TankRole = iota
	RoleDeco1
	RoleDeco2
	RoleTravel
)

// Roles lists every tank role in display order
var Roles = []TankRole{RoleTravel, RoleBottom, RoleDeco1, RoleDeco2}

func (r TankRole) String() string {
	switch r {
	case RoleBottom:
		return "bottom"
	case RoleDeco1:
		return "deco1"
	case RoleDeco2:
		return "deco2"
	case RoleTravel:
		return "travel"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseTankRole converts a role name to a TankRole
func ParseTankRole(s string) (TankRole, error) {
	for _, r := range Roles {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown tank role %q", s)
}

// TankKind groups roles by how the tank is used during the dive
type TankKind int

const (
	KindBottom TankKind = iota
	KindDeco
	KindTravel
)

// Kind returns the usage group of the role
func (r TankRole) Kind() TankKind {
	switch r {
	case RoleDeco1, RoleDeco2:
		return KindDeco
	case RoleTravel:
		return KindTravel
	default:
		return KindBottom
	}
}

// UsageWindow is a runtime interval (seconds) during which a tank was breathed
type UsageWindow struct {
	From  float64 `json:"from"`
	Until float64 `json:"until"`
}

// ScubaTank is one gas supply. Oxygen and Helium are percentages, nitrogen is the
// remainder.
type ScubaTank struct {
	Role          TankRole      `json:"role"`
	Label         string        `json:"label"`
	Name          string        `json:"name"`
	Enabled       bool          `json:"enabled"`
	Oxygen        float64       `json:"o2"`
	Helium        float64       `json:"he"`
	Liters        float64       `json:"liters"`
	StartPressure float64       `json:"start_bar"`
	Pressure      float64       `json:"bar"`
	SAC           float64       `json:"sac"`
	PPO2Max       float64       `json:"ppo2_max"`
	SwitchDepth   float64       `json:"switch_depth"`
	Usage         []UsageWindow `json:"usage,omitempty"`
}

// ErrInvalidMix is returned when a mixture would break O2% + He% <= 100
var ErrInvalidMix = errors.New("invalid gas mixture")

// Nitrogen returns the nitrogen percentage
func (t *ScubaTank) Nitrogen() float64 {
	return 100 - t.Oxygen - t.Helium
}

// Fractions returns the oxygen, helium and nitrogen fractions (0-1)
func (t *ScubaTank) Fractions() (oxygen, helium, nitrogen float64) {
	oxygen = t.Oxygen / 100.0
	helium = t.Helium / 100.0
	nitrogen = 1.0 - oxygen - helium
	return oxygen, helium, nitrogen
}

// MOD returns the maximum operating depth in meters for the tank's ppO2 limit
func (t *ScubaTank) MOD() float64 {
	if t.Oxygen <= 0 {
		return math.Inf(1)
	}
	return pressure.DepthFromAbsolute(t.PPO2Max / (t.Oxygen / 100.0))
}

// Consume draws the gas breathed over an interval with a linear depth change.
// The surface volume is SAC * minutes, scaled by the mean ambient pressure.
func (t *ScubaTank) Consume(beginDepth, endDepth, minutes float64) {
	if t.Liters <= 0 {
		return
	}
	surfaceLiters := t.SAC * minutes
	avgAmbient := (pressure.AbsoluteFromDepth(beginDepth) + pressure.AbsoluteFromDepth(endDepth)) / 2
	depthLiters := avgAmbient * surfaceLiters
	t.Pressure = (t.Pressure*t.Liters - depthLiters) / t.Liters
}

// UsedBar returns the pressure drawn since the tank was filled
func (t *ScubaTank) UsedBar() float64 {
	return t.StartPressure - t.Pressure
}

// UsedLiters returns the surface volume drawn since the tank was filled
func (t *ScubaTank) UsedLiters() float64 {
	return t.UsedBar() * t.Liters
}

func (t *ScubaTank) reset() {
	t.Pressure = t.StartPressure
	t.Usage = nil
}

func (t *ScubaTank) startUse(runtime float64) {
	t.Usage = append(t.Usage, UsageWindow{From: runtime, Until: runtime})
}

func (t *ScubaTank) endUse(runtime float64) {
	if len(t.Usage) == 0 {
		return
	}
	t.Usage[len(t.Usage)-1].Until = runtime
}

func (t *ScubaTank) clone() *ScubaTank {
	c := *t
	c.Usage = append([]UsageWindow(nil), t.Usage...)
	return &c
}
