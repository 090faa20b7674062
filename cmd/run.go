package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli"

	cmdCommon "github.com/agroslabs/agros/cmd/common"
	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/pkg/agrocli"
	"github.com/agroslabs/agros/pkg/agrolib"
)

var (
	runName    string
	modelKind  string
	modelVar   string
	dvsStart   float64
	dvsStep    float64
	noiseMin   float64
	noiseMax   float64
	noiseSeed  int64
	scriptPath string
	startAt    string
	startIn    string
	everyExpr  string
	noJournal  bool
	detach     bool

	runFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "name, n",
			Usage:       "explicitly set the name of the run (document name is used if not specified)",
			Destination: &runName,
		},
		cli.StringFlag{
			Name:        "model, m",
			Usage:       "state model stepped before each day: ramp, noise or script",
			Destination: &modelKind,
		},
		cli.StringFlag{
			Name:        "variable",
			Usage:       "state variable written by the ramp and noise models",
			Value:       "DVS",
			Destination: &modelVar,
		},
		cli.Float64Flag{
			Name:        "dvs-start",
			Usage:       "initial value of the ramp model",
			Destination: &dvsStart,
		},
		cli.Float64Flag{
			Name:        "dvs-step",
			Usage:       "daily increment of the ramp model",
			Value:       0.025,
			Destination: &dvsStep,
		},
		cli.Float64Flag{
			Name:        "min",
			Usage:       "lower bound of the noise model",
			Destination: &noiseMin,
		},
		cli.Float64Flag{
			Name:        "max",
			Usage:       "upper bound of the noise model",
			Value:       DEF_NOISE_MAX,
			Destination: &noiseMax,
		},
		cli.Int64Flag{
			Name:        "seed",
			Usage:       "seed of the noise model (same seed reproduces the same series)",
			Destination: &noiseSeed,
		},
		cli.StringFlag{
			Name:        "script",
			Usage:       "path of a JavaScript model stepped before each day",
			Destination: &scriptPath,
		},
		cli.StringFlag{
			Name:        "start-at",
			Usage:       "schedule the run for a later time (format: \"YYYY-MM-DD HH:MM\", local time)",
			Destination: &startAt,
		},
		cli.StringFlag{
			Name:        "start-in",
			Usage:       "schedule the run after a delay (format: 2h, 30m, 1h30m)",
			Destination: &startIn,
		},
		cli.StringFlag{
			Name:        "every",
			Usage:       "re-run on a cron schedule (5-field: minute hour day-of-month month day-of-week)",
			Destination: &everyExpr,
		},
		cli.BoolFlag{
			Name:        "no-journal",
			Usage:       "do not journal the events fired by this run",
			Destination: &noJournal,
		},
		cli.BoolFlag{
			Name:        "detach, d",
			Usage:       "submit the run and exit without streaming its progress",
			Destination: &detach,
		},
	}
)

func run(ctx *cli.Context) (err error) {
	document := ctx.Args().First()
	if document == "" {
		if ctx.Command.Name == "" {
			return cmdCommon.Help(ctx)
		}
		return cmdCommon.PrintErrWithCmdHelp(
			ctx,
			errors.New("no document provided"),
		)
	} else if document == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	opts, err := buildRunOpts()
	if err != nil {
		fmt.Println(err.Error())
		return nil
	}
	document = strings.TrimSpace(document)
	if abs, aerr := filepath.Abs(document); aerr == nil {
		// The daemon resolves the path on its own filesystem.
		document = abs
	}
	client, err := agrocli.NewClient()
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "run", "new_client", err)
		return
	}
	client.CheckVersionMismatch(currentBuildArgs.Version)
	r, err := client.Run(document, opts)
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "run", "start", err)
		return nil
	}
	printRunInfo(r)
	if r.Scheduled || detach {
		client.Disconnect()
		return nil
	}
	RegisterHandlers(client, r.TotalDays, 0)
	return client.Listen()
}

// buildRunOpts resolves the run flags into client options, validating
// the schedule flags before anything is sent to the daemon.
func buildRunOpts() (*agrocli.RunOpts, error) {
	if err := validateStartAtStartInExclusion(startAt, startIn); err != nil {
		return nil, err
	}
	opts := &agrocli.RunOpts{
		Name:      strings.TrimSpace(runName),
		NoJournal: noJournal,
	}
	if startAt != "" {
		t, err := parseStartAt(startAt)
		if err != nil {
			return nil, err
		}
		if _, warning := validateStartAt(startAt); warning != "" {
			fmt.Println(warning)
		} else {
			opts.StartAt = t
		}
	} else if startIn != "" {
		t, err := parseStartIn(startIn)
		if err != nil {
			return nil, err
		}
		opts.StartAt = t
	}
	if everyExpr != "" {
		if err := validateSchedule(everyExpr); err != nil {
			return nil, err
		}
		if !hasOccurrenceWithinYear(everyExpr, time.Now()) {
			return nil, fmt.Errorf("error: cron expression %q has no occurrence within a year", everyExpr)
		}
		opts.CronExpr = everyExpr
	}
	model, err := buildModelSpec()
	if err != nil {
		return nil, err
	}
	opts.Model = model
	return opts, nil
}

// buildModelSpec maps the model flags onto the wire spec. The daemon
// validates again; checking here keeps the round trip out of the obvious
// mistakes.
func buildModelSpec() (agrolib.ModelSpec, error) {
	kind := modelKind
	if kind == "" {
		if scriptPath == "" {
			return agrolib.ModelSpec{}, nil
		}
		// --script alone implies a scripted model.
		kind = "script"
	}
	spec := agrolib.ModelSpec{
		Kind:     kind,
		Variable: modelVar,
	}
	switch kind {
	case "ramp":
		spec.Start = dvsStart
		spec.Step = dvsStep
	case "noise":
		if noiseMax < noiseMin {
			return agrolib.ModelSpec{}, fmt.Errorf("error: noise model needs --min <= --max, got [%v, %v]", noiseMin, noiseMax)
		}
		spec.Min = noiseMin
		spec.Max = noiseMax
		spec.Seed = noiseSeed
	case "script":
		if scriptPath == "" {
			return agrolib.ModelSpec{}, errors.New("error: the script model needs --script")
		}
		abs, err := filepath.Abs(scriptPath)
		if err != nil {
			return agrolib.ModelSpec{}, err
		}
		if _, err := os.Stat(abs); err != nil {
			return agrolib.ModelSpec{}, fmt.Errorf("error: script %s: %w", scriptPath, err)
		}
		spec.Script = abs
		spec.Variable = ""
	default:
		return agrolib.ModelSpec{}, fmt.Errorf("error: unknown model %q, expected ramp, noise or script", kind)
	}
	return spec, nil
}

func printRunInfo(r *common.RunResponse) {
	txt := fmt.Sprintf(`
Run Info
Name`+"\t\t"+`: %s
Run Id`+"\t\t"+`: %s
Campaigns`+"\t"+`: %d
Season`+"\t\t"+`: %s - %s
Total Days`+"\t"+`: %d
`,
		r.Name,
		r.RunId,
		r.Campaigns,
		r.StartDate.Format(agrolib.DayLayout),
		r.EndDate.Format(agrolib.DayLayout),
		r.TotalDays,
	)
	if r.Scheduled {
		if !r.TriggerAt.IsZero() {
			txt += fmt.Sprintf("Starts At\t: %s\n", r.TriggerAt.Local().Format(startAtLayout))
		}
		if r.CronExpr != "" {
			txt += fmt.Sprintf("Recurs\t\t: %s\n", r.CronExpr)
		}
	}
	fmt.Println(txt)
}
