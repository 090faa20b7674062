// Command agrosd runs the agros scheduling daemon without the CLI front-end.
package main

import (
	"fmt"
	"os"

	"github.com/agroslabs/agros/cmd"
)

var (
	version   string
	commit    string
	date      string
	buildType string = "unclassified"
)

func main() {
	err := cmd.RunDaemon(cmd.BuildArgs{
		Version:   version,
		Commit:    commit,
		Date:      date,
		BuildType: buildType,
	})
	if err != nil {
		fmt.Println("agrosd:", err.Error())
		os.Exit(1)
	}
}
