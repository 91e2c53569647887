package dive

import (
	"fmt"
	"math"
)

// Tanks is the gas supply registry of a plan, keyed by role
type Tanks map[TankRole]*ScubaTank

// Get returns the tank for role, nil if the plan has none
func (t Tanks) Get(role TankRole) *ScubaTank {
	return t[role]
}

// Enabled reports whether the role exists and is switched on
func (t Tanks) Enabled(role TankRole) bool {
	tank := t[role]
	return tank != nil && tank.Enabled
}

// Reset refills every tank and clears its usage windows
func (t Tanks) Reset() {
	for _, tank := range t {
		tank.reset()
	}
}

// CurrentSupply selects the tank of kind usable at depth. The bottom tank is always
// usable; a travel tank is usable above its switch depth; a deco tank is usable above
// its switch depth and the shallowest such deco tank wins.
func (t Tanks) CurrentSupply(kind TankKind, depth float64) *ScubaTank {
	switch kind {
	case KindBottom:
		return t[RoleBottom]
	case KindTravel:
		if t.Enabled(RoleTravel) && depth <= t[RoleTravel].SwitchDepth {
			return t[RoleTravel]
		}
	case KindDeco:
		var best *ScubaTank
		bestDepth := math.Inf(1)
		for _, role := range []TankRole{RoleDeco1, RoleDeco2} {
			if !t.Enabled(role) {
				continue
			}
			tank := t[role]
			if depth <= tank.SwitchDepth && tank.SwitchDepth < bestDepth {
				best = tank
				bestDepth = tank.SwitchDepth
			}
		}
		return best
	}
	return nil
}

func (t Tanks) lookup(role TankRole) (*ScubaTank, error) {
	tank := t[role]
	if tank == nil {
		return nil, fmt.Errorf("no %s tank in plan", role)
	}
	return tank, nil
}

// SetMix sets the oxygen and helium percentages
func (t Tanks) SetMix(role TankRole, oxygen, helium float64) error {
	tank, err := t.lookup(role)
	if err != nil {
		return err
	}
	if oxygen < 0 || helium < 0 || oxygen+helium > 100 {
		return fmt.Errorf("%w: %s tank O2 %.0f%% + He %.0f%%", ErrInvalidMix, role, oxygen, helium)
	}
	tank.Oxygen = oxygen
	tank.Helium = helium
	return nil
}

// SetEnabled switches a tank on or off. The bottom tank is always in use.
func (t Tanks) SetEnabled(role TankRole, enabled bool) error {
	tank, err := t.lookup(role)
	if err != nil {
		return err
	}
	if role == RoleBottom && !enabled {
		return fmt.Errorf("the bottom tank cannot be disabled")
	}
	tank.Enabled = enabled
	return nil
}

// SetLiters sets the cylinder water volume
func (t Tanks) SetLiters(role TankRole, liters float64) error {
	tank, err := t.lookup(role)
	if err != nil {
		return err
	}
	tank.Liters = liters
	return nil
}

// SetPressure fills the tank to bar
func (t Tanks) SetPressure(role TankRole, bar float64) error {
	tank, err := t.lookup(role)
	if err != nil {
		return err
	}
	tank.StartPressure = bar
	tank.Pressure = bar
	return nil
}

// SetSAC sets the surface air consumption in liters per minute
func (t Tanks) SetSAC(role TankRole, sac float64) error {
	tank, err := t.lookup(role)
	if err != nil {
		return err
	}
	tank.SAC = sac
	return nil
}

// SetPPO2Max sets the oxygen partial pressure limit in bar
func (t Tanks) SetPPO2Max(role TankRole, ppo2 float64) error {
	tank, err := t.lookup(role)
	if err != nil {
		return err
	}
	tank.PPO2Max = ppo2
	return nil
}

// SetSwitchDepth sets the depth at which the engine switches to or from the tank
func (t Tanks) SetSwitchDepth(role TankRole, depth float64) error {
	tank, err := t.lookup(role)
	if err != nil {
		return err
	}
	tank.SwitchDepth = depth
	return nil
}

func (t Tanks) clone() Tanks {
	out := make(Tanks, len(t))
	for role, tank := range t {
		out[role] = tank.clone()
	}
	return out
}
