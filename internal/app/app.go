// Package app wires plan loading, simulation, output and the run archive together for
// the decoplan command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chrissnell/decoplan/internal/dive"
	"github.com/chrissnell/decoplan/internal/storage"
	"github.com/chrissnell/decoplan/pkg/buhlmann"
	"github.com/chrissnell/decoplan/pkg/config"
	"github.com/chrissnell/decoplan/pkg/decompression"
	"github.com/chrissnell/decoplan/pkg/responseformat"
)

// Options are the command line settings of one invocation
type Options struct {
	PlanFile    string // empty runs the default plan
	PlanBackend string // "yaml" or "sqlite"
	RunID       string // archived run to re-plan with the sqlite backend
	ArchivePath string // empty disables archiving
	Name        string // name stored with the archived run
	Output      string // table, points, csv, json or msgpack
	ListRuns    bool
	DumpPlan    bool
	MaxSteps    int
}

// App represents one decoplan invocation
type App struct {
	opts   Options
	out    io.Writer
	logger *zap.SugaredLogger
}

// New creates a new application instance writing its results to out
func New(opts Options, out io.Writer, logger *zap.SugaredLogger) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Output == "" {
		opts.Output = "table"
	}
	if opts.PlanBackend == "" {
		opts.PlanBackend = "yaml"
	}
	return &App{
		opts:   opts,
		out:    out,
		logger: logger,
	}
}

// Run executes the invocation
func (a *App) Run(ctx context.Context) error {
	if a.opts.ListRuns {
		return a.listRuns(ctx)
	}

	data, err := a.loadPlan()
	if err != nil {
		return err
	}

	if a.opts.DumpPlan {
		return config.EncodeYAML(a.out, data)
	}

	plan, err := data.ToDivePlan()
	if err != nil {
		return fmt.Errorf("%w: %v", dive.ErrConfiguration, err)
	}

	model, err := newModel(data.Model)
	if err != nil {
		return err
	}

	engine := dive.NewEngine(model, a.logger.Named("engine"))
	if a.opts.MaxSteps > 0 {
		engine.SetMaxSteps(a.opts.MaxSteps)
	} else if data.MaxSteps > 0 {
		engine.SetMaxSteps(data.MaxSteps)
	}

	if err := engine.Run(plan); err != nil {
		return err
	}
	a.logger.Infow("dive planned",
		"depth", plan.BottomDepth,
		"bottom_time", plan.BottomTime/60.0,
		"mode", plan.Mode,
		"stops", len(plan.DecoStopsCalculated),
		"runtime", plan.Profile[len(plan.Profile)-1].Time/60.0)

	if a.opts.ArchivePath != "" {
		if err := a.archive(ctx, plan, data.Name); err != nil {
			return err
		}
	}

	return a.render(plan)
}

// loadPlan reads the plan from the configured source, or returns the default plan
func (a *App) loadPlan() (*config.PlanData, error) {
	if a.opts.PlanFile == "" && a.opts.PlanBackend != "sqlite" {
		return config.FromDivePlan(dive.NewDefaultPlan()), nil
	}

	var provider config.PlanProvider
	switch a.opts.PlanBackend {
	case "yaml":
		filename, _ := filepath.Abs(a.opts.PlanFile)
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		path := a.opts.PlanFile
		if path == "" {
			path = a.opts.ArchivePath
		}
		if path == "" {
			return nil, fmt.Errorf("the sqlite plan backend needs -plan or -archive")
		}
		p, err := config.NewSQLiteProvider(path, a.opts.RunID)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		provider = p
	default:
		return nil, fmt.Errorf("unsupported plan backend: %s. Use 'yaml' or 'sqlite'", a.opts.PlanBackend)
	}
	defer provider.Close()

	data, err := provider.LoadPlan()
	if errors.Is(err, dive.ErrConfiguration) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("error reading plan. Did you pass the -plan flag? Run with -h for help: %w", err)
	}
	return data, nil
}

// newModel returns the decompression model named in the plan
func newModel(name string) (decompression.Model, error) {
	switch strings.ToLower(name) {
	case "", "zhl16c":
		return buhlmann.NewZHL16C(), nil
	default:
		return nil, fmt.Errorf("%w: unknown decompression model %q", dive.ErrConfiguration, name)
	}
}

func (a *App) archive(ctx context.Context, plan *dive.DivePlan, planName string) error {
	archive, err := storage.Open(a.opts.ArchivePath, a.logger.Named("archive"))
	if err != nil {
		return err
	}
	defer archive.Close()

	name := a.opts.Name
	if name == "" {
		name = planName
	}
	_, err = archive.SaveRun(ctx, name, plan)
	return err
}

func (a *App) listRuns(ctx context.Context) error {
	if a.opts.ArchivePath == "" {
		return fmt.Errorf("-list needs -archive")
	}
	archive, err := storage.Open(a.opts.ArchivePath, a.logger.Named("archive"))
	if err != nil {
		return err
	}
	defer archive.Close()

	runs, err := archive.ListRuns(ctx, 0)
	if err != nil {
		return err
	}

	switch a.opts.Output {
	case "json", "msgpack":
		return a.export(runs)
	default:
		fmt.Fprintln(a.out, runsTable(runs))
		return nil
	}
}

func (a *App) render(plan *dive.DivePlan) error {
	switch a.opts.Output {
	case "table":
		fmt.Fprintln(a.out, stopsTable(plan))
		fmt.Fprintln(a.out, summaryTable(dive.Summarize(plan)))
		return nil
	case "points":
		fmt.Fprintln(a.out, pointsTable(plan.Profile))
		return nil
	case "csv":
		return writeCSV(a.out, plan.Profile)
	case "json", "msgpack":
		return a.export(struct {
			Summary dive.Summary        `json:"summary"`
			Profile []dive.ProfilePoint `json:"profile"`
		}{dive.Summarize(plan), plan.Profile})
	default:
		return fmt.Errorf("unknown output %q (want table, points, csv, json or msgpack)", a.opts.Output)
	}
}

func (a *App) export(v any) error {
	format, err := responseformat.ParseFormat(a.opts.Output)
	if err != nil {
		return err
	}
	return responseformat.NewFormatter(format, true).Write(a.out, v)
}
