package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	cmdCommon "github.com/agroslabs/agros/cmd/common"
	"github.com/agroslabs/agros/pkg/logger"
)

// daemon runs the agros daemon in the foreground until it is signalled
// to stop.
func daemon(ctx *cli.Context) error {
	if err := RunDaemon(currentBuildArgs); err != nil {
		cmdCommon.PrintRuntimeErr(ctx, "daemon", "run", err)
	}
	return nil
}

// RunDaemon starts the daemon with console logging and blocks until the
// process is signalled to stop. It is also the entry point for the agrosd
// binary, which skips CLI argument parsing entirely.
func RunDaemon(bArgs BuildArgs) error {
	currentBuildArgs = bArgs

	// Refuse to start next to a live daemon; clear PID files left behind
	// by crashed ones.
	if err := CleanupStalePidFile(); err != nil {
		if errors.Is(err, ErrDaemonAlreadyRunning) {
			fmt.Println(err.Error())
			return nil
		}
		return err
	}
	if err := WritePidFile(); err != nil {
		return err
	}
	defer func() {
		if err := RemovePidFile(); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing PID file: %v\n", err)
		}
	}()

	lg := logger.NewStandardLogger(log.Default())
	components, err := initDaemonComponents(lg)
	if err != nil {
		return err
	}
	defer components.Close()

	shutdownCtx, cancel := setupShutdownHandler()
	defer cancel()

	lg.Info("Daemon listening (PID %d)", os.Getpid())
	return startServerFunc(shutdownCtx, components.Server)
}
