package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	cmdCommon "github.com/agroslabs/agros/cmd/common"
	"github.com/agroslabs/agros/pkg/agrocli"
	"github.com/agroslabs/agros/pkg/agrolib"
)

func validate(ctx *cli.Context) error {
	document := ctx.Args().First()
	if document == "" {
		return cmdCommon.PrintErrWithCmdHelp(
			ctx,
			errors.New("no document provided"),
		)
	} else if document == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	document = strings.TrimSpace(document)
	if abs, err := filepath.Abs(document); err == nil {
		document = abs
	}
	client, err := agrocli.NewClient()
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "validate", "new_client", err)
		return nil
	}
	defer client.Disconnect()
	v, err := client.Validate(document)
	if err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "validate", "validate", err)
		return nil
	}
	if !v.Valid {
		fmt.Printf("%s: invalid document\n\t%s\n", document, v.Error)
		return cli.NewExitError("", 1)
	}
	fmt.Printf(`
Document Info
Document`+"\t"+`: %s
Campaigns`+"\t"+`: %d
Season`+"\t\t"+`: %s - %s
Total Days`+"\t"+`: %d
`,
		document,
		v.Campaigns,
		v.StartDate.Format(agrolib.DayLayout),
		v.EndDate.Format(agrolib.DayLayout),
		v.TotalDays,
	)
	return nil
}
