package dive

import "fmt"

// Phase is a state of the dive profile state machine
type Phase int

const (
	PhaseInitTanks Phase = iota
	PhaseStarting
	PhaseDescending
	// PhaseDescendingToSwitch descends on the travel gas toward its switch depth
	PhaseDescendingToSwitch
	PhaseTankChangeDescending
	PhaseBottom
	PhaseAscending
	// PhaseAscendingToSwitch ascends with a gas switch pending at ChangeDepth
	PhaseAscendingToSwitch
	PhaseTankChangeAscending
	PhaseStopDeco
	PhaseSurface
	PhaseError
)

var phaseNames = map[Phase]string{
	PhaseInitTanks:            "init-tanks",
	PhaseStarting:             "starting",
	PhaseDescending:           "descending",
	PhaseDescendingToSwitch:   "descending-switch",
	PhaseTankChangeDescending: "tank-change-descending",
	PhaseBottom:               "bottom",
	PhaseAscending:            "ascending",
	PhaseAscendingToSwitch:    "ascending-switch",
	PhaseTankChangeAscending:  "tank-change-ascending",
	PhaseStopDeco:             "deco-stop",
	PhaseSurface:              "surface",
	PhaseError:                "error",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown dive phase %q", text)
}

// IsAscending reports whether deco stop decisions are made in this phase
func (p Phase) IsAscending() bool {
	switch p {
	case PhaseAscending, PhaseAscendingToSwitch, PhaseTankChangeAscending, PhaseStopDeco:
		return true
	}
	return false
}
