package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	cmdCommon "github.com/agroslabs/agros/cmd/common"
	"github.com/agroslabs/agros/pkg/agrocli"
	"github.com/agroslabs/agros/pkg/agrolib"
)

var (
	eventLimit   int
	signalFilter string

	evFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "limit, l",
			Usage:       "cap the number of returned events (0 means all)",
			Value:       DEF_EVENT_LIMIT,
			Destination: &eventLimit,
		},
		cli.StringFlag{
			Name:        "signal, s",
			Usage:       "only print events of the given signal (e.g. irrigate, crop_start)",
			Destination: &signalFilter,
		},
	}
)

func events(ctx *cli.Context) error {
	runId := ctx.Args().First()
	if runId == "" {
		return cmdCommon.PrintErrWithCmdHelp(
			ctx,
			errors.New("no run id provided"),
		)
	} else if runId == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if signalFilter != "" {
		if _, err := agrolib.ParseSignal(signalFilter); err != nil {
			fmt.Println("error:", err.Error())
			return nil
		}
	}
	client, err := agrocli.NewClient()
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "events", "new_client", err)
		return nil
	}
	defer client.Disconnect()
	resp, err := client.Events(runId, eventLimit)
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "events", "get_events", err)
		return nil
	}
	if len(resp.Events) == 0 {
		fmt.Println("agros: no journaled events for this run")
		return nil
	}
	var printed int
	for _, rec := range resp.Events {
		if signalFilter != "" && rec.Event.Signal != agrolib.Signal(signalFilter) {
			continue
		}
		printed++
		fmt.Println(formatEvent(&rec.Event))
	}
	if printed == 0 {
		fmt.Printf("agros: no %s events for this run\n", signalFilter)
	}
	return nil
}
