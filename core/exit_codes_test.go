package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitCodeSuccess},
		{"plain", errors.New("listen: address in use"), ExitCodeError},
		{"config", ErrOutOfRange("PORT", 0, MinPort, MaxPort), ExitCodeConfig},
		{"wrapped config", fmt.Errorf("startup: %w", ErrUnknownPreloadStyle("oil")), ExitCodeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCodeName(t *testing.T) {
	tests := map[int]string{
		ExitCodeSuccess: "success",
		ExitCodeError:   "error",
		ExitCodeConfig:  "configuration error",
		ExitCodeSIGINT:  "interrupted (SIGINT)",
		ExitCodeSIGTERM: "terminated (SIGTERM)",
		42:              "unknown",
	}
	for code, want := range tests {
		if got := ExitCodeName(code); got != want {
			t.Errorf("ExitCodeName(%d) = %q, want %q", code, got, want)
		}
	}
}
