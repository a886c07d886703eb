package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/KK-2k06/DreamInk/core"
	"github.com/KK-2k06/DreamInk/core/validation"
	"github.com/kardianos/service"
)

const serviceStopTimeout = 90 * time.Second

// program adapts run to the service manager's Start/Stop lifecycle.
type program struct {
	stop chan struct{}
	done chan int
}

func (p *program) Start(service.Service) error {
	p.stop = make(chan struct{})
	p.done = make(chan int, 1)
	go func() { p.done <- run(context.Background(), p.stop) }()
	return nil
}

func (p *program) Stop(service.Service) error {
	close(p.stop)
	select {
	case code := <-p.done:
		if code != core.ExitCodeSuccess {
			return fmt.Errorf("server exited with %s", core.ExitCodeName(code))
		}
		return nil
	case <-time.After(serviceStopTimeout):
		return errors.New("timeout waiting for server to stop")
	}
}

func serviceConfig() *service.Config {
	return &service.Config{
		Name:        "DreamInk",
		DisplayName: "DreamInk Style Server",
		Description: "Transforms uploaded images into artistic styles and keeps per-user history.",
		Option: service.KeyValue{
			"StartType": "automatic",
			"Restart":   "on-failure",
		},
	}
}

func newService() (service.Service, error) {
	s, err := service.New(&program{}, serviceConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return s, nil
}

// runService runs under the platform service manager (Windows SCM,
// systemd or launchd).
func runService() int {
	s, err := newService()
	if err != nil {
		return core.ExitCodeError
	}
	if err := s.Run(); err != nil {
		if logger, lerr := s.Logger(nil); lerr == nil {
			_ = logger.Error(err)
		}
		return core.ExitCodeError
	}
	return core.ExitCodeSuccess
}

// handleCommand runs a command-line subcommand and returns the exit code.
func handleCommand(args []string, out io.Writer) int {
	switch cmd := args[0]; cmd {
	case "help", "-h", "--help", "-help":
		printUsage(out)
		return core.ExitCodeSuccess
	case "check":
		return runCheck(out)
	case "status":
		s, err := newService()
		if err != nil {
			fmt.Fprintln(out, err)
			return core.ExitCodeError
		}
		status, err := s.Status()
		if err != nil {
			fmt.Fprintf(out, "Failed to get service status: %v\n", err)
			return core.ExitCodeError
		}
		fmt.Fprintf(out, "Service status: %s\n", statusName(status))
		return core.ExitCodeSuccess
	case "install", "uninstall", "remove", "start", "stop", "restart":
		if cmd == "remove" {
			cmd = "uninstall"
		}
		s, err := newService()
		if err != nil {
			fmt.Fprintln(out, err)
			return core.ExitCodeError
		}
		if err := service.Control(s, cmd); err != nil {
			fmt.Fprintf(out, "Failed to %s service: %v\n", cmd, err)
			return core.ExitCodeError
		}
		fmt.Fprintf(out, "Service %s: ok\n", cmd)
		return core.ExitCodeSuccess
	default:
		fmt.Fprintf(out, "Unknown command %q\n\n", cmd)
		printUsage(out)
		return core.ExitCodeError
	}
}

// runCheck loads the configuration and runs the startup checks without
// starting the server.
func runCheck(out io.Writer) int {
	cfg, err := core.LoadConfig()
	if err != nil {
		fmt.Fprintln(out, err)
		return core.ExitCodeFor(err)
	}
	result := validation.NewValidationSuite(cfg).
		WithOutput(out).
		WithShowProgress(true).
		Validate()
	if !result.Success {
		return core.ExitCodeError
	}
	return core.ExitCodeSuccess
}

func statusName(s service.Status) string {
	switch s {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `DreamInk style server

Usage: dreamink [command]

Commands:
  check      Validate configuration, data directory and model files
  install    Install as a system service
  uninstall  Remove the system service (alias: remove)
  start      Start the system service
  stop       Stop the system service
  restart    Restart the system service
  status     Show the service status
  help       Show this help message

Run without a command to start the server in the foreground.
`)
}
