// Package dive simulates a planned dive: it walks the dive phases in discrete steps,
// switches between gas supplies, loads a decompression model and inserts the stops the
// model's ceiling (or the diver's own stop list) requires.
package dive

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/chrissnell/decoplan/pkg/decompression"
	"github.com/chrissnell/decoplan/pkg/gradient"
	"github.com/chrissnell/decoplan/pkg/pressure"
)

const (
	// DefaultMaxSteps bounds a run; ill-formed plans fail instead of looping
	DefaultMaxSteps = 500

	descentSteps     = 5
	bottomSteps      = 20
	ascentInterval   = 5.0  // seconds
	tankChangeTime   = 60.0 // seconds
	decoExitMargin   = 3.0  // meters
	slowAscentDepth  = 6.0  // meters
	runtimeEpsilon   = 0.001
	bottomTimeSlack  = 1e-6
	depthComparison  = 1e-9
	defaultDecoPause = 60.0
)

// Engine runs dive simulations against one decompression model. Runs on the same
// engine are serialized because the model is advanced in place.
type Engine struct {
	mu       sync.Mutex
	model    decompression.Model
	logger   *zap.SugaredLogger
	maxSteps int
}

// NewEngine creates an engine around model. A nil logger disables logging.
func NewEngine(model decompression.Model, logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{
		model:    model,
		logger:   logger,
		maxSteps: DefaultMaxSteps,
	}
}

// SetMaxSteps overrides the step limit
func (e *Engine) SetMaxSteps(n int) {
	if n > 0 {
		e.maxSteps = n
	}
}

// Run simulates the whole dive described by p. On success the plan carries the new
// profile, the computed stops and the maxima. On failure the previous results are left
// untouched and the error wraps ErrConfiguration or ErrNotConverged.
func (e *Engine) Run(p *DivePlan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.Validate(); err != nil {
		return &RunError{Kind: ErrConfiguration, Phase: PhaseInitTanks, Err: err}
	}
	for _, w := range p.Warnings() {
		e.logger.Warnw("dive plan warning", "warning", w)
	}

	work := p.Clone()
	work.Profile = nil
	s := newSimulation(work, e.model, e.logger, e.maxSteps)
	if err := s.run(); err != nil {
		e.logger.Warnw("dive simulation aborted", "error", err, "steps", s.steps, "runtime", s.runtime)
		return err
	}

	p.publish(work)
	p.Profile = s.trace
	p.DecoStopsCalculated = s.computed
	p.Maxima = s.maxima
	p.ModelName = e.model.Name()

	e.logger.Debugw("dive simulation complete",
		"model", p.ModelName,
		"points", len(s.trace),
		"runtime", s.runtime,
		"stops", len(s.computed))
	return nil
}

// simulation holds everything a run mutates between steps
type simulation struct {
	plan     *DivePlan
	model    decompression.Model
	gf       *gradient.Controller
	log      *zap.SugaredLogger
	maxSteps int

	phase      Phase
	done       bool
	steps      int
	runtime    float64 // seconds
	interval   float64 // seconds of the current step
	beginDepth float64
	endDepth   float64
	depthSum   float64
	ascending  bool

	descentTime     float64
	descentInterval float64
	descentStep     float64
	bottomInterval  float64

	decoInterval float64
	decoDone     float64
	openStop     *DecoStop
	customStop   int // index into plan.DecoStops, -1 once exhausted

	last     decompression.ModelPoint
	trace    []ProfilePoint
	computed []DecoStop
	maxima   Maxima
}

func newSimulation(p *DivePlan, model decompression.Model, logger *zap.SugaredLogger, maxSteps int) *simulation {
	descentTime := p.DescentTime()
	s := &simulation{
		plan:            p,
		model:           model,
		gf:              gradient.New(p.GFLow, p.GFHigh),
		log:             logger,
		maxSteps:        maxSteps,
		phase:           PhaseInitTanks,
		descentTime:     descentTime,
		descentInterval: descentTime / descentSteps,
		descentStep:     p.BottomDepth / descentSteps,
		bottomInterval:  p.BottomTime / bottomSteps,
		decoInterval:    defaultDecoPause,
		customStop:      -1,
	}
	if p.Mode == ModeCustom && len(p.DecoStops) > 0 {
		s.customStop = 0
	}
	return s
}

func (s *simulation) run() error {
	s.model.InitSurface()
	s.last = s.model.Snapshot()

	for !s.done {
		s.steps++
		if s.steps > s.maxSteps {
			return s.fail(ErrNotConverged, fmt.Errorf("exceeded %d steps", s.maxSteps))
		}
		if err := s.step(); err != nil {
			return err
		}
	}
	return nil
}

// fail moves the simulation into PhaseError. The returned error keeps the phase the
// run was aborted in.
func (s *simulation) fail(kind, err error) *RunError {
	runErr := &RunError{Kind: kind, Phase: s.phase, Steps: s.steps, Runtime: s.runtime, Err: err}
	s.setPhase(PhaseError)
	s.done = true
	return runErr
}

// step executes the current phase and moves to the next one
func (s *simulation) step() error {
	switch s.phase {
	case PhaseInitTanks:
		s.initTanks()
		return nil
	case PhaseStarting:
		s.start()
	case PhaseDescending, PhaseDescendingToSwitch:
		s.descend()
	case PhaseTankChangeDescending:
		s.changeTankDescending()
	case PhaseBottom:
		s.bottom()
	case PhaseAscending, PhaseAscendingToSwitch:
		if err := s.ascend(); err != nil {
			return err
		}
	case PhaseTankChangeAscending:
		s.changeTankAscending()
	case PhaseStopDeco:
		if err := s.holdStop(); err != nil {
			return err
		}
	case PhaseSurface:
		s.surface()
		return nil
	default:
		return s.fail(ErrConfiguration, fmt.Errorf("no transition from phase %s", s.phase))
	}
	s.appendPoint()
	return nil
}

func (s *simulation) setPhase(next Phase) {
	if next != s.phase {
		s.log.Debugw("dive phase", "from", s.phase, "to", next, "runtime", s.runtime, "depth", s.endDepth)
	}
	s.phase = next
}

func (s *simulation) initTanks() {
	s.plan.CurrentTank = nil
	s.plan.NextTank = nil
	s.plan.ChangeDepth = -1
	s.plan.AscentBegins = 0
	s.plan.Tanks.Reset()
	s.setPhase(PhaseStarting)
}

// start picks the first gas. With a travel tank the descent begins on it and the bottom
// gas is pending at the travel switch depth; otherwise the first enabled deco tank is
// the pending switch for the ascent.
func (s *simulation) start() {
	p := s.plan
	s.runtime = 0
	s.interval = 0
	s.beginDepth = 0
	s.endDepth = 0

	next := PhaseDescending
	if p.Tanks.Enabled(RoleTravel) {
		p.CurrentTank = p.Tanks[RoleTravel]
		p.NextTank = p.Tanks.CurrentSupply(KindBottom, 0)
		p.ChangeDepth = p.Tanks[RoleTravel].SwitchDepth
		next = PhaseDescendingToSwitch
	} else {
		p.CurrentTank = p.Tanks.CurrentSupply(KindBottom, 0)
		s.pendFirstDeco()
	}
	p.CurrentTank.startUse(s.runtime)
	s.advance()
	s.setPhase(next)
}

func (s *simulation) pendFirstDeco() {
	p := s.plan
	switch {
	case p.Tanks.Enabled(RoleDeco1):
		s.pend(p.Tanks[RoleDeco1])
	case p.Tanks.Enabled(RoleDeco2):
		s.pend(p.Tanks[RoleDeco2])
	default:
		s.pend(nil)
	}
}

func (s *simulation) pend(tank *ScubaTank) {
	s.plan.NextTank = tank
	if tank == nil {
		s.plan.ChangeDepth = -1
		return
	}
	s.plan.ChangeDepth = tank.SwitchDepth
}

func (s *simulation) descend() {
	s.interval = s.descentInterval
	s.runtime += s.interval
	s.beginDepth = s.endDepth
	s.endDepth = s.beginDepth + s.descentStep

	target, next := s.plan.BottomDepth, PhaseBottom
	if s.phase == PhaseDescendingToSwitch {
		target = math.Min(s.plan.ChangeDepth, s.plan.BottomDepth)
		next = PhaseTankChangeDescending
	}

	if s.endDepth >= target {
		s.endDepth = target
	} else {
		next = s.phase
	}
	s.advance()
	s.setPhase(next)
}

// changeTankDescending leaves the travel gas for the bottom gas. The travel tank
// becomes the pending switch for the ascent.
func (s *simulation) changeTankDescending() {
	p := s.plan
	s.beginDepth = s.endDepth
	s.swapTanks()
	s.pend(p.Tanks[RoleTravel])
	s.interval = tankChangeTime
	s.runtime += s.interval
	s.advance()
	s.setPhase(PhaseDescending)
}

func (s *simulation) swapTanks() {
	p := s.plan
	old := p.CurrentTank
	old.endUse(s.runtime)
	p.CurrentTank = p.NextTank
	p.CurrentTank.startUse(s.runtime)
	s.log.Debugw("gas switch", "from", old.Role, "to", p.CurrentTank.Role, "depth", s.endDepth, "runtime", s.runtime)
}

func (s *simulation) bottom() {
	p := s.plan
	s.interval = s.bottomInterval
	s.runtime += s.interval
	s.beginDepth = p.BottomDepth
	s.endDepth = p.BottomDepth
	s.advance()

	if s.runtime >= s.descentTime+p.BottomTime-bottomTimeSlack {
		s.ascending = true
		p.AscentBegins = s.runtime
		s.setPhase(s.ascentPhase())
		return
	}
	s.setPhase(PhaseBottom)
}

func (s *simulation) ascentPhase() Phase {
	if s.plan.NextTank != nil {
		return PhaseAscendingToSwitch
	}
	return PhaseAscending
}

// ascentStep returns the meters covered in one ascent interval from depth. The rate
// depends on the band: deeper than half the bottom depth, down to 6 m, and above 6 m.
func (s *simulation) ascentStep(depth float64) float64 {
	r := s.plan.Rates
	var rate float64
	switch {
	case depth > s.plan.BottomDepth/2.0:
		rate = r.AscentToDeco
	case depth > slowAscentDepth:
		rate = r.AscentAtDeco
	default:
		rate = r.AscentToSurface
	}
	return rate / 60.0 * ascentInterval
}

func (s *simulation) ascend() error {
	p := s.plan
	s.interval = ascentInterval
	s.runtime += s.interval
	s.beginDepth = s.endDepth
	s.endDepth = s.beginDepth - s.ascentStep(s.beginDepth)

	next := s.phase
	switch {
	case s.phase == PhaseAscendingToSwitch && s.endDepth <= p.ChangeDepth:
		s.endDepth = math.Min(p.ChangeDepth, s.beginDepth)
		next = PhaseTankChangeAscending
	case s.endDepth <= 0:
		s.endDepth = 0
		next = PhaseSurface
	}

	next, err := s.checkStop(next)
	if err != nil {
		return err
	}
	s.advance()
	s.setPhase(next)
	return nil
}

// checkStop decides whether the candidate end depth of an ascent step must be held at
// a decompression stop instead
func (s *simulation) checkStop(next Phase) (Phase, error) {
	p := s.plan
	switch p.Mode {
	case ModeCalculate:
		stop := s.last.LeadCeilingStop
		if stop <= 0 || s.endDepth > stop || switchFirst(next, s.endDepth, stop) {
			return next, nil
		}
		s.enterStop(stop)
		s.decoDone = 0
		s.openStop = &DecoStop{Depth: s.endDepth, Number: len(s.computed), Runtime: s.runtime}
		s.log.Debugw("deco stop required", "depth", s.endDepth, "ceiling", s.last.LeadCeiling, "runtime", s.runtime)
		return PhaseStopDeco, nil

	case ModeCustom:
		if s.customStop < 0 {
			return next, nil
		}
		planned := &p.DecoStops[s.customStop]
		if s.endDepth > planned.Depth || switchFirst(next, s.endDepth, planned.Depth) {
			return next, nil
		}
		s.enterStop(planned.Depth)
		planned.Done = 0
		planned.Runtime = s.runtime
		s.log.Debugw("planned deco stop", "number", planned.Number, "depth", s.endDepth, "runtime", s.runtime)
		return PhaseStopDeco, nil

	default:
		return next, s.fail(ErrConfiguration, fmt.Errorf("unsupported plan mode %s", p.Mode))
	}
}

// switchFirst reports whether a gas switch reached at or below the stop depth is made
// before the stop begins
func switchFirst(next Phase, depth, stop float64) bool {
	return next == PhaseTankChangeAscending && depth >= stop
}

// enterStop clamps the step to the stop depth, anchors the gradient factor and picks
// the stop interval. Stops deeper than the current depth are held where the diver is.
func (s *simulation) enterStop(depth float64) {
	s.endDepth = math.Min(depth, s.beginDepth)
	s.gf.Set(s.endDepth)
	s.decoInterval = decoInterval(s.endDepth)
}

func decoInterval(depth float64) float64 {
	switch {
	case math.Abs(depth-3.0) < depthComparison:
		return 180.0
	case math.Abs(depth-6.0) < depthComparison:
		return 120.0
	default:
		return 60.0
	}
}

// holdStop spends one interval at the stop depth and decides whether the stop is over
func (s *simulation) holdStop() error {
	p := s.plan
	s.interval = s.decoInterval
	s.runtime += s.interval
	s.beginDepth = s.endDepth
	s.advance()

	switch p.Mode {
	case ModeCalculate:
		s.decoDone += s.interval
		if s.openStop != nil {
			s.openStop.Duration = s.decoDone
		}
		if s.endDepth > s.last.LeadCeiling+decoExitMargin {
			if s.openStop != nil {
				s.computed = append(s.computed, *s.openStop)
				s.log.Debugw("deco stop cleared", "depth", s.openStop.Depth, "duration", s.openStop.Duration)
			}
			s.openStop = nil
			s.setPhase(s.ascentPhase())
		}

	case ModeCustom:
		if s.customStop < 0 {
			s.setPhase(s.ascentPhase())
			return nil
		}
		planned := &p.DecoStops[s.customStop]
		planned.Done += s.interval
		if planned.Done >= planned.Duration {
			s.customStop++
			if s.customStop >= len(p.DecoStops) {
				s.customStop = -1
			}
			s.setPhase(s.ascentPhase())
		}

	default:
		return s.fail(ErrConfiguration, fmt.Errorf("unsupported plan mode %s", p.Mode))
	}
	return nil
}

// changeTankAscending switches to the pending gas and queues the next one in the order
// travel, deco1, deco2
func (s *simulation) changeTankAscending() {
	p := s.plan
	s.beginDepth = s.endDepth
	s.swapTanks()

	switch p.CurrentTank.Role {
	case RoleTravel:
		s.pendFirstDeco()
	case RoleDeco1:
		if p.Tanks.Enabled(RoleDeco2) {
			s.pend(p.Tanks[RoleDeco2])
		} else {
			s.pend(nil)
		}
	default:
		s.pend(nil)
	}

	s.interval = tankChangeTime
	s.runtime += s.interval
	s.advance()
	s.setPhase(s.ascentPhase())
}

func (s *simulation) surface() {
	s.plan.CurrentTank.endUse(s.runtime)
	s.done = true
}

// advance charges the step's gas to the current tank and loads the model
func (s *simulation) advance() {
	tank := s.plan.CurrentTank
	minutes := s.interval / 60.0
	tank.Consume(s.beginDepth, s.endDepth, minutes)

	_, helium, nitrogen := tank.Fractions()
	s.model.Advance(decompression.Segment{
		BeginDepth:       s.beginDepth,
		EndDepth:         s.endDepth,
		Minutes:          minutes,
		HeliumFraction:   helium,
		NitrogenFraction: nitrogen,
		GradientFactor:   s.gf.Get(s.endDepth),
	})
	s.last = s.model.Snapshot()

	s.maxima.TissueNitrogen = math.Max(s.maxima.TissueNitrogen, s.last.MaxNitrogen)
	s.maxima.TissueHelium = math.Max(s.maxima.TissueHelium, s.last.MaxHelium)
}

func (s *simulation) appendPoint() {
	tank := s.plan.CurrentTank
	oxygen, helium, nitrogen := tank.Fractions()
	ambient := pressure.AbsoluteFromDepth(s.endDepth)

	s.depthSum += s.endDepth * s.interval / 60.0
	point := ProfilePoint{
		Time:           s.runtime,
		Interval:       s.interval,
		Depth:          s.endDepth,
		Pressure:       ambient,
		Phase:          s.phase,
		Tank:           tank.Role,
		TankName:       tank.Name,
		Oxygen:         oxygen,
		Helium:         helium,
		Nitrogen:       nitrogen,
		TankPressure:   tank.Pressure,
		PPOxygen:       ambient * oxygen,
		PPHelium:       ambient * helium,
		PPNitrogen:     ambient * nitrogen,
		GradientFactor: s.gf.Get(s.endDepth),
		GFSet:          s.gf.IsSet(),
		Ascending:      s.ascending,
		DepthRunAvg:    s.depthSum / ((s.runtime + runtimeEpsilon) / 60.0),
		Model:          s.last,
	}

	m := &s.maxima
	m.PPOxygen = math.Max(m.PPOxygen, point.PPOxygen)
	m.PPHelium = math.Max(m.PPHelium, point.PPHelium)
	m.PPNitrogen = math.Max(m.PPNitrogen, point.PPNitrogen)
	m.PPAnyGas = math.Max(m.PPOxygen, math.Max(m.PPHelium, m.PPNitrogen))

	s.trace = append(s.trace, point)
}
