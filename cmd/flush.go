package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	cmdCommon "github.com/agroslabs/agros/cmd/common"
	"github.com/agroslabs/agros/pkg/agrocli"
)

var (
	forceFlush bool
	runToFlush string

	flsFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "force, f",
			Usage:       "use this flag to force flush (default: false)",
			Destination: &forceFlush,
		},
		cli.StringFlag{
			Name:        "run-id, i",
			Usage:       "use this flag to flush a particular run (default: all finished)",
			Destination: &runToFlush,
		},
	}
)

func flush(ctx *cli.Context) error {
	if !confirm(command("flush"), forceFlush) {
		return nil
	}
	client, err := agrocli.NewClient()
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "flush", "new_client", err)
		return nil
	}
	defer client.Disconnect()
	_, err = client.Flush(runToFlush)
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "flush", "flush", err)
		return nil
	}
	if runToFlush == "" {
		fmt.Println("Flushed all finished runs!")
	} else {
		fmt.Printf("Flushed %s\n", runToFlush)
	}
	return nil
}
