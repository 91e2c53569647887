package config

// PlanProvider defines the interface for dive plan sources
type PlanProvider interface {
	// Load the plan. The result is validated but not yet merged with defaults.
	LoadPlan() (*PlanData, error)

	IsReadOnly() bool
	Close() error
}

// PlanData is a dive plan as written by the diver. Depths are meters, times minutes,
// rates meters per minute and gradient factors either fractions (0.3) or percent (30).
type PlanData struct {
	Name        string     `json:"name,omitempty" yaml:"name,omitempty"`
	Mode        string     `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,oneof=calculate custom import"`
	Model       string     `json:"model,omitempty" yaml:"model,omitempty" validate:"omitempty,oneof=zhl16c"`
	BottomDepth float64    `json:"bottom_depth" yaml:"bottom_depth" validate:"gt=0,lte=300"`
	BottomTime  float64    `json:"bottom_time" yaml:"bottom_time" validate:"gt=0"`
	GFLow       float64    `json:"gf_low,omitempty" yaml:"gf_low,omitempty" validate:"gte=0,lte=100"`
	GFHigh      float64    `json:"gf_high,omitempty" yaml:"gf_high,omitempty" validate:"gte=0,lte=100"`
	Rates       RatesData  `json:"rates,omitempty" yaml:"rates,omitempty"`
	Tanks       []TankData `json:"tanks,omitempty" yaml:"tanks,omitempty" validate:"max=4,dive"`
	Stops       []StopData `json:"stops,omitempty" yaml:"stops,omitempty" validate:"dive"`
	MaxSteps    int        `json:"max_steps,omitempty" yaml:"max_steps,omitempty" validate:"gte=0"`
}

// RatesData holds descent and ascent speeds. Zero keeps the default rate.
type RatesData struct {
	Descent         float64 `json:"descent,omitempty" yaml:"descent,omitempty" validate:"gte=0"`
	AscentToDeco    float64 `json:"ascent_to_deco,omitempty" yaml:"ascent_to_deco,omitempty" validate:"gte=0"`
	AscentAtDeco    float64 `json:"ascent_at_deco,omitempty" yaml:"ascent_at_deco,omitempty" validate:"gte=0"`
	AscentToSurface float64 `json:"ascent_to_surface,omitempty" yaml:"ascent_to_surface,omitempty" validate:"gte=0"`
}

// TankData overrides one tank of the default set. Zero values keep the default; a
// listed tank is enabled unless Enabled says otherwise.
type TankData struct {
	Role        string   `json:"role" yaml:"role" validate:"required,oneof=bottom deco1 deco2 travel"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Enabled     *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Oxygen      *float64 `json:"o2,omitempty" yaml:"o2,omitempty" validate:"omitempty,gte=0,lte=100"`
	Helium      *float64 `json:"he,omitempty" yaml:"he,omitempty" validate:"omitempty,gte=0,lte=100"`
	Liters      float64  `json:"liters,omitempty" yaml:"liters,omitempty" validate:"gte=0"`
	Pressure    float64  `json:"pressure,omitempty" yaml:"pressure,omitempty" validate:"gte=0,lte=350"`
	SAC         float64  `json:"sac,omitempty" yaml:"sac,omitempty" validate:"gte=0"`
	PPO2Max     float64  `json:"ppo2_max,omitempty" yaml:"ppo2_max,omitempty" validate:"gte=0,lte=2"`
	SwitchDepth float64  `json:"switch_depth,omitempty" yaml:"switch_depth,omitempty" validate:"gte=0"`
}

// StopData is one Custom mode stop
type StopData struct {
	Depth   float64 `json:"depth" yaml:"depth" validate:"gt=0"`
	Minutes float64 `json:"minutes" yaml:"minutes" validate:"gte=0"`
}
