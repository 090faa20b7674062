package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"

	"github.com/agroslabs/agros/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// currentBuildArgs is populated by Execute so command actions can
// report the CLI build to the daemon.
var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "agros",
		HelpName:              "agros",
		Usage:                 "A crop campaign scheduling engine.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "agros <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: append([]cli.Command{
			{
				Name:   "daemon",
				Usage:  "run the agros daemon in the foreground",
				Action: getDaemonAction(),
			},
			{
				Name:   "stop-daemon",
				Usage:  "stop a running agros daemon",
				Action: stopDaemon,
			},
			{
				Name:                   "run",
				Aliases:                []string{"r"},
				Usage:                  "simulate an agromanagement document",
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 run,
				Flags:                  runFlags,
				UseShortOptionHandling: true,
				Description:            RunDescription,
			},
			{
				Name:               "validate",
				Usage:              "check a document without running it",
				Action:             validate,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        ValidateDescription,
			},
			{
				Name:                   "list",
				Aliases:                []string{"l"},
				Usage:                  "display simulation runs",
				Action:                 list,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            ListDescription,
				UseShortOptionHandling: true,
				Flags:                  lsFlags,
			},
			{
				Name:                   "events",
				Aliases:                []string{"e"},
				Usage:                  "show the journaled events of a run",
				Action:                 events,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            EventsDescription,
				UseShortOptionHandling: true,
				Flags:                  evFlags,
			},
			{
				Name:                   "attach",
				Aliases:                []string{"a"},
				Usage:                  "re-attach to an executing run",
				Description:            AttachDescription,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Action:                 attach,
				UseShortOptionHandling: true,
				Flags:                  attachFlags,
			},
			{
				Name:               "stop",
				Aliases:            []string{"s"},
				Usage:              "stop an executing or scheduled run",
				Description:        StopDescription,
				OnUsageError:       common.UsageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             stop,
			},
			{
				Name:                   "flush",
				Aliases:                []string{"c"},
				Usage:                  "flush finished runs and their journals",
				Description:            FlushDescription,
				OnUsageError:           common.UsageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Action:                 flush,
				UseShortOptionHandling: true,
				Flags:                  flsFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of agros",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		}, getPlatformCommands()...),
		Action:                 run,
		Flags:                  runFlags,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
