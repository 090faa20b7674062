//go:build windows

package cmd

import (
	"context"
	"log"

	daemonpkg "github.com/agroslabs/agros/internal/daemon"
	"github.com/agroslabs/agros/internal/service"
	"github.com/agroslabs/agros/pkg/logger"
	"github.com/urfave/cli"
	"golang.org/x/sys/windows/svc"
)

// getDaemonAction returns the platform-specific daemon action.
// On Windows, this detects service mode and uses Event Log.
func getDaemonAction() cli.ActionFunc {
	return daemonWindows
}

// Seams for the SCM control flow, swapped out in tests.
var (
	svcIsWindowsService = svc.IsWindowsService
	newEventLogger      = logger.NewEventLogger
	svcRun              = svc.Run
)

// daemonWindows detects if running as a Windows service and uses the appropriate logger.
// When running as a service, logs go to both console and Windows Event Log.
// When running as a console application, the standard daemon() function is used.
func daemonWindows(ctx *cli.Context) error {
	isService, err := svcIsWindowsService()
	if err != nil {
		return err
	}

	if !isService {
		// Console mode - use existing daemon() function (unchanged behavior)
		return daemon(ctx)
	}

	// Service mode - use Event Log
	return runAsWindowsService()
}

// runAsWindowsService runs the daemon as a Windows service with Event Log integration.
func runAsWindowsService() error {
	stdLogger := logger.NewStandardLogger(log.Default())

	// Attempt to open Event Log
	eventLogger, err := newEventLogger(daemonpkg.DefaultServiceName)
	if err != nil {
		// Fallback: Event Log unavailable (not registered, permissions issue)
		// Use console-only logging
		return runServiceWithLogger(stdLogger)
	}
	defer eventLogger.Close()

	// Multi-backend: Console output + Event Log
	multiLogger := logger.NewMultiLogger(stdLogger, eventLogger)
	return runServiceWithLogger(multiLogger)
}

// runServiceWithLogger runs the Windows service handler with the given logger.
func runServiceWithLogger(lg logger.Logger) error {
	components, err := initDaemonComponents(lg)
	if err != nil {
		// In service mode the event log is the only place this surfaces.
		lg.Error("Service initialization failed: %v", err)
		return err
	}
	defer components.Close()

	// The runner delegates its serve loop to the daemon's server so the
	// SCM lifecycle controls the same listener as console mode.
	runner := daemonpkg.New(nil, &daemonpkg.Dependencies{
		ServeFunc: func(ctx context.Context) error {
			return startServerFunc(ctx, components.Server)
		},
	})

	// Create service handler with logger
	handler := service.NewWindowsHandler(runner, lg)

	// svc.Run blocks until service stops
	return svcRun(daemonpkg.DefaultServiceName, handler)
}
