package main

import (
	"context"
	"fmt"
	"os"

	"github.com/KK-2k06/DreamInk/core"
	"github.com/KK-2k06/DreamInk/core/validation"
	"github.com/KK-2k06/DreamInk/logging"
	"github.com/fatih/color"
	"github.com/kardianos/service"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) > 1 {
		os.Exit(handleCommand(os.Args[1:], os.Stdout))
	}
	if !service.Interactive() {
		os.Exit(runService())
	}
	os.Exit(run(context.Background(), nil))
}

// run loads configuration, starts the server and blocks until it has shut
// down. stop, when non-nil, begins shutdown when closed; the service
// wrapper uses it in place of a signal.
func run(ctx context.Context, stop <-chan struct{}) int {
	cfg, err := core.LoadConfig()
	if err != nil {
		printConfigError(err)
		return core.ExitCodeFor(err)
	}

	logger, err := logging.New(logging.Config{
		Development: cfg.DevMode,
		Level:       cfg.LogLevel,
		FilePath:    cfg.LogFile,
		Rotation:    logging.DefaultFileWriterConfig(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer logger.Close()

	printBanner(os.Stdout, cfg)

	if code := runStartupValidation(cfg, logger.Zap()); code != core.ExitCodeSuccess {
		return code
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Startup failed", zap.Error(err))
		return core.ExitCodeFor(err)
	}

	if err := a.serve(stop); err != nil {
		logger.Error("Server stopped with errors", zap.Error(err))
		return core.ExitCodeError
	}
	logger.Info("Goodbye!")
	return core.ExitCodeSuccess
}

// runStartupValidation checks the data directory, disk space and model
// files before anything heavy is loaded.
func runStartupValidation(cfg *core.Config, logger *zap.Logger) int {
	result := validation.NewValidationSuite(cfg).
		WithShowProgress(cfg.DevMode || service.Interactive()).
		Validate()

	if !result.Success {
		logger.Error("Startup validation failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Duration("duration", result.Duration))
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error))
			}
		}
		return core.ExitCodeError
	}

	logger.Info("Startup validation passed",
		zap.Int("checks_passed", result.PassedSteps),
		zap.Int("warnings", result.Warnings),
		zap.Duration("duration", result.Duration))
	return core.ExitCodeSuccess
}

func printConfigError(err error) {
	red := color.New(color.FgRed, color.Bold)
	if cerr, ok := core.IsConfigError(err); ok {
		red.Fprintf(os.Stderr, "Configuration error [%s]: ", cerr.Code)
		fmt.Fprintln(os.Stderr, cerr.Error())
		return
	}
	red.Fprint(os.Stderr, "Configuration error: ")
	fmt.Fprintln(os.Stderr, err)
}
