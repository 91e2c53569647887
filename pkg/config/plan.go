package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/chrissnell/decoplan/internal/dive"
)

// planValidate checks PlanData tags and the tank mixture rule
var planValidate *validator.Validate

func init() {
	planValidate = validator.New()
	planValidate.RegisterStructValidation(validateTankMix, TankData{})
}

// validateTankMix rejects mixtures with O2% + He% above 100
func validateTankMix(sl validator.StructLevel) {
	tank := sl.Current().Interface().(TankData)
	if tank.Oxygen == nil || tank.Helium == nil {
		return
	}
	if *tank.Oxygen+*tank.Helium > 100 {
		sl.ReportError(tank.Helium, "Helium", "he", "mix", "")
	}
}

// Validate checks the plan against its field constraints. Failures wrap
// dive.ErrConfiguration.
func (p *PlanData) Validate() error {
	if err := planValidate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", dive.ErrConfiguration, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", dive.ErrConfiguration, err)
	}

	seen := make(map[string]bool, len(p.Tanks))
	for _, tank := range p.Tanks {
		if seen[tank.Role] {
			return fmt.Errorf("%w: tank role %s listed twice", dive.ErrConfiguration, tank.Role)
		}
		seen[tank.Role] = true
	}
	return nil
}

// fraction accepts a gradient factor as a fraction or in percent
func fraction(gf float64) float64 {
	if gf > 1 {
		return gf / 100.0
	}
	return gf
}

// ToDivePlan merges the plan over the default session and returns a plan ready to run
func (p *PlanData) ToDivePlan() (*dive.DivePlan, error) {
	plan := dive.NewDefaultPlan()

	if p.Mode != "" {
		mode, err := dive.ParsePlanMode(p.Mode)
		if err != nil {
			return nil, err
		}
		plan.Mode = mode
	}

	plan.BottomDepth = p.BottomDepth
	plan.BottomTime = p.BottomTime * 60.0
	if p.GFLow > 0 {
		plan.GFLow = fraction(p.GFLow)
	}
	if p.GFHigh > 0 {
		plan.GFHigh = fraction(p.GFHigh)
	}

	if p.Rates.Descent > 0 {
		plan.Rates.Descent = p.Rates.Descent
	}
	if p.Rates.AscentToDeco > 0 {
		plan.Rates.AscentToDeco = p.Rates.AscentToDeco
	}
	if p.Rates.AscentAtDeco > 0 {
		plan.Rates.AscentAtDeco = p.Rates.AscentAtDeco
	}
	if p.Rates.AscentToSurface > 0 {
		plan.Rates.AscentToSurface = p.Rates.AscentToSurface
	}

	for _, t := range p.Tanks {
		if err := applyTank(plan.Tanks, t); err != nil {
			return nil, err
		}
	}

	if len(p.Stops) > 0 {
		plan.DecoStops = nil
		for _, stop := range p.Stops {
			plan.AddDecoStop(stop.Depth, stop.Minutes)
		}
	}

	return plan, nil
}

func applyTank(tanks dive.Tanks, t TankData) error {
	role, err := dive.ParseTankRole(t.Role)
	if err != nil {
		return err
	}
	tank := tanks.Get(role)

	oxygen, helium := tank.Oxygen, tank.Helium
	if t.Oxygen != nil {
		oxygen = *t.Oxygen
	}
	if t.Helium != nil {
		helium = *t.Helium
	}
	if err := tanks.SetMix(role, oxygen, helium); err != nil {
		return err
	}

	enabled := true
	if t.Enabled != nil {
		enabled = *t.Enabled
	}
	if err := tanks.SetEnabled(role, enabled); err != nil {
		return err
	}

	if t.Name != "" {
		tank.Name = t.Name
	}
	setters := []struct {
		value float64
		set   func(dive.TankRole, float64) error
	}{
		{t.Liters, tanks.SetLiters},
		{t.Pressure, tanks.SetPressure},
		{t.SAC, tanks.SetSAC},
		{t.PPO2Max, tanks.SetPPO2Max},
		{t.SwitchDepth, tanks.SetSwitchDepth},
	}
	for _, s := range setters {
		if s.value <= 0 {
			continue
		}
		if err := s.set(role, s.value); err != nil {
			return err
		}
	}
	return nil
}

// FromDivePlan describes a plan in config form, the inverse of ToDivePlan. Times are
// converted back to minutes and every tank is listed.
func FromDivePlan(plan *dive.DivePlan) *PlanData {
	data := &PlanData{
		Mode:        plan.Mode.String(),
		BottomDepth: plan.BottomDepth,
		BottomTime:  plan.BottomTime / 60.0,
		GFLow:       plan.GFLow,
		GFHigh:      plan.GFHigh,
		Rates: RatesData{
			Descent:         plan.Rates.Descent,
			AscentToDeco:    plan.Rates.AscentToDeco,
			AscentAtDeco:    plan.Rates.AscentAtDeco,
			AscentToSurface: plan.Rates.AscentToSurface,
		},
	}
	if plan.ModelName != "" {
		data.Model = strings.ToLower(plan.ModelName)
	}

	for _, role := range dive.Roles {
		tank := plan.Tanks.Get(role)
		if tank == nil {
			continue
		}
		enabled, oxygen, helium := tank.Enabled, tank.Oxygen, tank.Helium
		data.Tanks = append(data.Tanks, TankData{
			Role:        role.String(),
			Name:        tank.Name,
			Enabled:     &enabled,
			Oxygen:      &oxygen,
			Helium:      &helium,
			Liters:      tank.Liters,
			Pressure:    tank.StartPressure,
			SAC:         tank.SAC,
			PPO2Max:     tank.PPO2Max,
			SwitchDepth: tank.SwitchDepth,
		})
	}

	for _, stop := range plan.DecoStops {
		data.Stops = append(data.Stops, StopData{Depth: stop.Depth, Minutes: stop.Duration / 60.0})
	}
	return data
}
