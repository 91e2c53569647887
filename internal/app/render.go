package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/chrissnell/decoplan/internal/dive"
	"github.com/chrissnell/decoplan/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	warnStyle   = numberStyle.Foreground(lipgloss.Color("9"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		})
}

func minutes(seconds float64) string {
	return strconv.FormatFloat(seconds/60.0, 'f', 0, 64)
}

// stopsTable lists the stops held during the run: runtime at arrival, depth, time
func stopsTable(plan *dive.DivePlan) string {
	stops := plan.DecoStopsCalculated
	if plan.Mode == dive.ModeCustom {
		stops = plan.DecoStops
	}

	t := newTable("#", "runtime (min)", "depth (m)", "stop (min)")
	for _, stop := range stops {
		held := stop.Duration
		if plan.Mode == dive.ModeCustom {
			held = stop.Done
		}
		t.Row(strconv.Itoa(stop.Number+1), minutes(stop.Runtime), fmt.Sprintf("%.0f", stop.Depth), minutes(held))
	}
	if len(stops) == 0 {
		t.Row("-", "no decompression stops", "", "")
	}
	return t.Render()
}

// summaryTable shows the run totals and the gas drawn from each tank
func summaryTable(s dive.Summary) string {
	totals := newTable("run", "").
		Row("model", s.ModelName).
		Row("mode", s.Mode.String()).
		Row("GF", fmt.Sprintf("%.0f/%.0f", s.GFLow*100, s.GFHigh*100)).
		Row("max depth (m)", fmt.Sprintf("%.1f", s.MaxDepth)).
		Row("avg depth (m)", fmt.Sprintf("%.1f", s.AverageDepth)).
		Row("runtime (min)", fmt.Sprintf("%.1f", s.Runtime/60.0)).
		Row("deco (min)", fmt.Sprintf("%.1f", s.DecoTime/60.0)).
		Row("max ppO2 (bar)", fmt.Sprintf("%.2f", s.Maxima.PPOxygen)).
		Row("max ppN2 (bar)", fmt.Sprintf("%.2f", s.Maxima.PPNitrogen))

	tanks := newTable("tank", "start (bar)", "end (bar)", "used (l)")
	outOfGas := map[int]bool{}
	for i, tank := range s.Tanks {
		tanks.Row(fmt.Sprintf("%s %s", tank.Name, tank.Role),
			fmt.Sprintf("%.0f", tank.StartPressure),
			fmt.Sprintf("%.0f", tank.EndPressure),
			fmt.Sprintf("%.0f", tank.UsedLiters))
		outOfGas[i] = tank.OutOfGas
	}
	tanks.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col == 0:
			return cellStyle
		case col == 2 && outOfGas[row]:
			return warnStyle
		default:
			return numberStyle
		}
	})

	return lipgloss.JoinHorizontal(lipgloss.Top, totals.Render(), " ", tanks.Render())
}

// pointsTable prints every profile point
func pointsTable(profile []dive.ProfilePoint) string {
	t := newTable("time", "depth", "phase", "tank", "mix", "bar", "ppO2", "GF", "stop", "ceiling", "margin", "lead")
	for _, pt := range profile {
		t.Row(
			clock(pt.Time),
			fmt.Sprintf("%.1f", pt.Depth),
			pt.Phase.String(),
			pt.TankName,
			fmt.Sprintf("%.0f/%.0f", pt.Oxygen*100, pt.Helium*100),
			fmt.Sprintf("%.0f", pt.TankPressure),
			fmt.Sprintf("%.2f", pt.PPOxygen),
			fmt.Sprintf("%.2f", pt.GradientFactor),
			fmt.Sprintf("%.0f", pt.Model.LeadCeilingStop),
			fmt.Sprintf("%.1f", pt.Model.LeadCeiling),
			fmt.Sprintf("%.1f", pt.CeilingMargin()),
			strconv.Itoa(pt.Model.LeadTissue+1),
		)
	}
	return t.Render()
}

// clock formats seconds as mm:ss
func clock(seconds float64) string {
	total := int(seconds + 0.5)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func runsTable(runs []storage.RunRecord) string {
	t := newTable("id", "created", "name", "depth (m)", "bottom (min)", "runtime (min)", "deco (min)")
	for _, run := range runs {
		t.Row(run.ID.String(),
			run.CreatedAt.Local().Format(time.DateTime),
			run.Name,
			fmt.Sprintf("%.0f", run.BottomDepth),
			minutes(run.BottomTime),
			fmt.Sprintf("%.1f", run.Runtime/60.0),
			fmt.Sprintf("%.1f", run.DecoTime/60.0))
	}
	return t.Render()
}

var csvHeader = []string{
	"time_s", "interval_s", "depth_m", "phase", "tank", "o2", "he", "n2", "tank_bar",
	"pp_o2", "pp_he", "pp_n2", "gf", "ceiling_m", "ceiling_stop_m", "margin_m", "lead_tissue", "depth_avg_m",
}

// writeCSV exports the profile one point per row
func writeCSV(w io.Writer, profile []dive.ProfilePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	for _, pt := range profile {
		record := []string{
			f(pt.Time), f(pt.Interval), f(pt.Depth), pt.Phase.String(), pt.Tank.String(),
			f(pt.Oxygen), f(pt.Helium), f(pt.Nitrogen), f(pt.TankPressure),
			f(pt.PPOxygen), f(pt.PPHelium), f(pt.PPNitrogen), f(pt.GradientFactor),
			f(pt.Model.LeadCeiling), f(pt.Model.LeadCeilingStop), f(pt.CeilingMargin()), strconv.Itoa(pt.Model.LeadTissue),
			f(pt.DepthRunAvg),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
