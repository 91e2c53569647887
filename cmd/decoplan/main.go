package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrissnell/decoplan/internal/app"
	"github.com/chrissnell/decoplan/internal/constants"
	"github.com/chrissnell/decoplan/internal/dive"
	"github.com/chrissnell/decoplan/internal/log"
)

func main() {
	planFile := flag.String("plan", "", "Path to the dive plan:\n\t\t\t  YAML: plan.yaml (default plan when empty)\n\t\t\t  SQLite: a run archive, see -run")
	planBackend := flag.String("plan-backend", "yaml", "Plan backend type: 'yaml' for YAML files, 'sqlite' to re-plan an archived run")
	runID := flag.String("run", "", "Archived run ID to re-plan with -plan-backend sqlite (newest run when empty)")
	archivePath := flag.String("archive", "", "Save the run to this SQLite archive (e.g. "+constants.DefaultArchivePath+")")
	name := flag.String("name", "", "Name stored with the archived run (defaults to the plan's name)")
	output := flag.String("output", "table", "Output: table, points, csv, json or msgpack")
	list := flag.Bool("list", false, "List the runs in -archive and exit")
	dumpPlan := flag.Bool("dump-plan", false, "Print the effective plan as YAML and exit")
	maxSteps := flag.Int("max-steps", 0, "Override the simulation step limit")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", constants.AppName, constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(app.Options{
		PlanFile:    *planFile,
		PlanBackend: *planBackend,
		RunID:       *runID,
		ArchivePath: *archivePath,
		Name:        *name,
		Output:      *output,
		ListRuns:    *list,
		DumpPlan:    *dumpPlan,
		MaxSteps:    *maxSteps,
	}, os.Stdout, log.Named(constants.AppName))

	if err := application.Run(ctx); err != nil {
		switch {
		case errors.Is(err, dive.ErrConfiguration):
			log.Errorw("dive plan rejected", "error", err)
			os.Exit(2)
		case errors.Is(err, dive.ErrNotConverged):
			log.Errorw("dive simulation did not finish", "error", err)
			os.Exit(3)
		default:
			log.Errorf("Application error: %v", err)
			os.Exit(1)
		}
	}
}
