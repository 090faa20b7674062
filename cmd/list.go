package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	cmdCommon "github.com/agroslabs/agros/cmd/common"
	"github.com/agroslabs/agros/pkg/agrocli"
	"github.com/agroslabs/agros/pkg/agrolib"
)

var (
	showFinished bool
	showPending  bool
	showAll      bool

	lsFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "finished, f",
			Usage:       "use this flag to list finished runs (default: false)",
			Destination: &showFinished,
		},
		cli.BoolTFlag{
			Name:        "pending, p",
			Usage:       "use this flag to include scheduled and running runs (default: true)",
			Destination: &showPending,
		},
		cli.BoolFlag{
			Name:        "all, a",
			Usage:       "use this flag to list all runs (default: false)",
			Destination: &showAll,
		},
	}
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := agrocli.NewClient()
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "list", "new_client", err)
		return nil
	}
	defer client.Disconnect()
	l, err := client.List(&agrocli.ListOpts{
		ShowFinished: showFinished || showAll,
		ShowPending:  showPending || showAll,
	})
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "list", "get_list", err)
		return nil
	}
	if len(l.Runs) == 0 {
		fmt.Println("agros: no runs found")
		return nil
	}
	txt := "Here are your runs:"
	txt += "\n\n--------------------------------------------------------------------------------------------------"
	txt += "\n|Num|\t         Name         |                Run Id                |   Days   |   Status    |"
	txt += "\n|---|-------------------------|--------------------------------------|----------|-------------|"
	for i, run := range l.Runs {
		name := run.Name
		n := len(name)
		switch {
		case n > 23:
			name = name[:20] + "..."
		case n < 23:
			name = cmdCommon.Beaut(name, 23)
		}
		days := fmt.Sprintf("%d/%d", run.Ticks, run.TotalDays)
		txt += fmt.Sprintf("\n| %d | %s | %s |%s|%s|",
			i+1,
			name,
			run.Id,
			cmdCommon.Beaut(days, 10),
			cmdCommon.Beaut(string(run.Status), 13),
		)
	}
	txt += "\n--------------------------------------------------------------------------------------------------"
	fmt.Println(txt)
	printScheduleNotes(l.Runs)
	return nil
}

// printScheduleNotes lists trigger times under the table for runs that
// are waiting on a schedule.
func printScheduleNotes(runs []*agrolib.Run) {
	for _, run := range runs {
		if run.Status != agrolib.StatusScheduled {
			continue
		}
		switch {
		case run.CronExpr != "":
			fmt.Printf("%s recurs on %q\n", run.Id, run.CronExpr)
		case !run.StartAt.IsZero():
			fmt.Printf("%s starts at %s\n", run.Id, run.StartAt.Local().Format(startAtLayout))
		}
	}
}
