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
	daemonURI string

	attachFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "daemon-uri",
			Usage:       "daemon URI to connect to (e.g., tcp://localhost:4340, unix:///tmp/agros.sock, or /path/to/socket)",
			Destination: &daemonURI,
			EnvVar:      "AGROS_DAEMON_URI",
		},
	}
)

func attach(ctx *cli.Context) (err error) {
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
	var client *agrocli.Client
	if daemonURI != "" {
		client, err = agrocli.NewClientWithURI(daemonURI)
	} else {
		client, err = agrocli.NewClient()
	}
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "attach", "new_client", err)
		return nil
	}
	client.CheckVersionMismatch(currentBuildArgs.Version)
	r, err := client.Attach(runId)
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "attach", "client-attach", err)
		return nil
	}
	txt := fmt.Sprintf(`
Run Info
Name`+"\t\t"+`: %s
Run Id`+"\t\t"+`: %s
Season`+"\t\t"+`: %s - %s
Total Days`+"\t"+`: %d
`,
		r.Name,
		r.RunId,
		r.StartDate.Format(agrolib.DayLayout),
		r.EndDate.Format(agrolib.DayLayout),
		r.TotalDays,
	)
	fmt.Println(txt)
	RegisterHandlers(client, r.TotalDays, 0)
	return client.Listen()
}
