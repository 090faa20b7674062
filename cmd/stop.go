package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	cmdCommon "github.com/agroslabs/agros/cmd/common"
	"github.com/agroslabs/agros/pkg/agrocli"
)

func stop(ctx *cli.Context) (err error) {
	runId := ctx.Args().First()
	if runId == "" {
		if ctx.Command.Name == "" {
			return cmdCommon.Help(ctx)
		}
		return cmdCommon.PrintErrWithCmdHelp(
			ctx,
			errors.New("no run id provided"),
		)
	} else if runId == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := agrocli.NewClient()
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "stop", "new_client", err)
		return nil
	}
	defer client.Disconnect()
	resp, err := client.Stop(runId)
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "stop", "stop-run", err)
		return nil
	}
	if resp.Message != "" {
		fmt.Println(resp.Message)
		return nil
	}
	fmt.Println("Run stopped.")
	return nil
}
