package dive

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TankUsage reports how much gas a tank gave over the run
type TankUsage struct {
	Role          TankRole      `json:"role"`
	Name          string        `json:"name"`
	StartPressure float64       `json:"start_bar"`
	EndPressure   float64       `json:"end_bar"`
	UsedBar       float64       `json:"used_bar"`
	UsedLiters    float64       `json:"used_liters"`
	Usage         []UsageWindow `json:"usage,omitempty"`
	OutOfGas      bool          `json:"out_of_gas"`
}

// Summary condenses a finished run for tables and archives
type Summary struct {
	Runtime      float64     `json:"runtime"` // seconds
	MaxDepth     float64     `json:"max_depth"`
	AverageDepth float64     `json:"average_depth"` // running average at the end of the dive
	DepthStdDev  float64     `json:"depth_stddev"`
	MeanPPOxygen float64     `json:"mean_pp_o2"`
	DecoTime     float64     `json:"deco_time"` // seconds spent at stops
	AscentBegins float64     `json:"ascent_begins"`
	Stops        []DecoStop  `json:"stops,omitempty"`
	Tanks        []TankUsage `json:"tanks"`
	Maxima       Maxima      `json:"maxima"`
	Points       int         `json:"points"`
	ModelName    string      `json:"model"`
	Mode         PlanMode    `json:"mode"`
	GFLow        float64     `json:"gf_low"`
	GFHigh       float64     `json:"gf_high"`
}

// Summarize builds the summary of the last run stored in p
func Summarize(p *DivePlan) Summary {
	s := Summary{
		AscentBegins: p.AscentBegins,
		Maxima:       p.Maxima,
		Points:       len(p.Profile),
		ModelName:    p.ModelName,
		Mode:         p.Mode,
		GFLow:        p.GFLow,
		GFHigh:       p.GFHigh,
	}

	if p.Mode == ModeCustom {
		for _, stop := range p.DecoStops {
			s.Stops = append(s.Stops, stop)
			s.DecoTime += stop.Done
		}
	} else {
		for _, stop := range p.DecoStopsCalculated {
			s.Stops = append(s.Stops, stop)
			s.DecoTime += stop.Duration
		}
	}

	if n := len(p.Profile); n > 0 {
		last := p.Profile[n-1]
		s.Runtime = last.Time
		s.AverageDepth = last.DepthRunAvg

		depths := make([]float64, n)
		ppo2 := make([]float64, n)
		weights := make([]float64, n)
		for i, point := range p.Profile {
			depths[i] = point.Depth
			ppo2[i] = point.PPOxygen
			weights[i] = point.Interval
			s.MaxDepth = math.Max(s.MaxDepth, point.Depth)
		}
		if floats.Sum(weights) > 0 {
			s.MeanPPOxygen = stat.Mean(ppo2, weights)
			if n > 1 {
				s.DepthStdDev = stat.StdDev(depths, weights)
			}
		}
	}

	for _, role := range Roles {
		tank := p.Tanks.Get(role)
		if tank == nil || !tank.Enabled {
			continue
		}
		s.Tanks = append(s.Tanks, TankUsage{
			Role:          role,
			Name:          tank.Name,
			StartPressure: tank.StartPressure,
			EndPressure:   tank.Pressure,
			UsedBar:       tank.UsedBar(),
			UsedLiters:    tank.UsedLiters(),
			Usage:         append([]UsageWindow(nil), tank.Usage...),
			OutOfGas:      tank.Pressure < 0,
		})
	}

	return s
}
