package core

import (
	"context"
	"errors"
)

// Process exit codes.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	// ExitCodeConfig is returned when startup stops on a ConfigError.
	ExitCodeConfig = 2
	// ExitCodeSIGINT and ExitCodeSIGTERM follow the 128+signal convention.
	ExitCodeSIGINT  = 130
	ExitCodeSIGTERM = 143
)

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeConfig:
		return "configuration error"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	case ExitCodeSIGTERM:
		return "terminated (SIGTERM)"
	default:
		return "unknown"
	}
}

// ExitCodeFor maps a startup or run error to an exit code.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.As(err, new(*ConfigError)):
		return ExitCodeConfig
	default:
		return ExitCodeError
	}
}

// ShutdownFunc releases one resource during graceful shutdown. It should
// return once ctx expires.
type ShutdownFunc func(ctx context.Context) error
