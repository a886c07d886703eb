package validation

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/KK-2k06/DreamInk/core"
	"github.com/fatih/color"
)

// ValidationStep represents a single validation step with its status.
type ValidationStep struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// StepStatus represents the status of a validation step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepPassed
	StepFailed
	StepWarning
	StepSkipped
)

// String returns the string representation of a step status.
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SuiteResult represents the complete result of validation suite execution.
type SuiteResult struct {
	Steps       []ValidationStep
	TotalSteps  int
	PassedSteps int
	FailedSteps int
	Warnings    int
	Duration    time.Duration
	Success     bool
}

// modelStyles are the styles backed by a model file on disk.
var modelStyles = []string{"pixar", "cartoon", "comic", "ghibli"}

// ValidationSuite runs the startup checks against the local filesystem:
// data directory, free space, model files and the ONNX runtime library.
// Missing models are warnings unless the style is preloaded, since styles
// load lazily and a missing file only fails requests for that style.
type ValidationSuite struct {
	cfg          *core.Config
	output       io.Writer
	showProgress bool
	failFast     bool
	minFree      int64
}

// NewValidationSuite creates a ValidationSuite for cfg with default settings.
func NewValidationSuite(cfg *core.Config) *ValidationSuite {
	return &ValidationSuite{
		cfg:          cfg,
		output:       os.Stdout,
		showProgress: true,
		minFree:      MinDataDirFreeBytes,
	}
}

// WithOutput sets the output writer for progress messages.
func (s *ValidationSuite) WithOutput(w io.Writer) *ValidationSuite {
	s.output = w
	return s
}

// WithShowProgress enables or disables progress output.
func (s *ValidationSuite) WithShowProgress(show bool) *ValidationSuite {
	s.showProgress = show
	return s
}

// WithFailFast stops validation on first failure if enabled.
func (s *ValidationSuite) WithFailFast(failFast bool) *ValidationSuite {
	s.failFast = failFast
	return s
}

// WithMinFreeBytes overrides the free space warning threshold.
func (s *ValidationSuite) WithMinFreeBytes(n int64) *ValidationSuite {
	s.minFree = n
	return s
}

// Validate runs all checks in sequence with progress output.
func (s *ValidationSuite) Validate() SuiteResult {
	startTime := time.Now()
	steps := make([]ValidationStep, 0, 3+len(modelStyles))

	if s.showProgress {
		s.printHeader("DreamInk Startup Checks")
	}

	step := s.runStep("Data Directory", func() (StepStatus, string, error) {
		if err := CheckDirWritable(s.cfg.DataDir); err != nil {
			return StepFailed, "not writable", err
		}
		return StepPassed, s.cfg.DataDir, nil
	})
	steps = append(steps, step)
	if s.failFast && step.Status == StepFailed {
		return s.finish(steps, startTime)
	}

	if step.Status == StepPassed {
		step = s.runStep("Free Disk Space", func() (StepStatus, string, error) {
			info, err := GetDiskSpace(s.cfg.DataDir)
			if err != nil {
				return StepWarning, "could not determine free space", nil
			}
			if info.Free < s.minFree {
				return StepWarning, fmt.Sprintf("only %s free", info.FreeFormatted), nil
			}
			return StepPassed, fmt.Sprintf("%s free", info.FreeFormatted), nil
		})
	} else {
		step = s.skip("Free Disk Space", "Skipped due to data directory errors")
	}
	steps = append(steps, step)

	preloaded := make(map[string]bool, len(s.cfg.PreloadStyles))
	for _, st := range s.cfg.PreloadStyles {
		preloaded[st] = true
	}

	for _, style := range modelStyles {
		name := fmt.Sprintf("Model: %s", style)
		if s.cfg.AuthOnly {
			steps = append(steps, s.skip(name, "AUTH_ONLY mode"))
			continue
		}
		path := s.cfg.ModelPath(style)
		step = s.runStep(name, func() (StepStatus, string, error) {
			if err := CheckFileExists(path); err != nil {
				if preloaded[style] {
					return StepFailed, "preloaded model missing", err
				}
				return StepWarning, fmt.Sprintf("missing %s; requests for %s will fail", path, style), nil
			}
			return StepPassed, path, nil
		})
		steps = append(steps, step)
		if s.failFast && step.Status == StepFailed {
			return s.finish(steps, startTime)
		}
	}

	if s.cfg.OnnxRuntimeDylib == "" || s.cfg.AuthOnly {
		steps = append(steps, s.skip("ONNX Runtime Library", "using platform default"))
	} else {
		steps = append(steps, s.runStep("ONNX Runtime Library", func() (StepStatus, string, error) {
			if err := CheckFileExists(s.cfg.OnnxRuntimeDylib); err != nil {
				return StepFailed, "library not found", err
			}
			return StepPassed, s.cfg.OnnxRuntimeDylib, nil
		}))
	}

	return s.finish(steps, startTime)
}

func (s *ValidationSuite) finish(steps []ValidationStep, startTime time.Time) SuiteResult {
	result := s.buildResult(steps, startTime)
	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

func (s *ValidationSuite) skip(name, message string) ValidationStep {
	step := ValidationStep{Name: name, Status: StepSkipped, Message: message}
	if s.showProgress {
		s.printStep(step)
	}
	return step
}

// runStep executes a validation step with timing and progress output.
func (s *ValidationSuite) runStep(name string, fn func() (StepStatus, string, error)) ValidationStep {
	step := ValidationStep{Name: name, Status: StepRunning}

	if s.showProgress {
		s.printStepStart(name)
	}

	startTime := time.Now()
	status, message, err := fn()
	step.Latency = time.Since(startTime)
	step.Status = status
	step.Message = message
	step.Error = err

	if s.showProgress {
		s.printStep(step)
	}

	return step
}

// buildResult creates a SuiteResult from completed steps.
func (s *ValidationSuite) buildResult(steps []ValidationStep, startTime time.Time) SuiteResult {
	result := SuiteResult{
		Steps:      steps,
		TotalSteps: len(steps),
		Duration:   time.Since(startTime),
		Success:    true,
	}

	for _, step := range steps {
		switch step.Status {
		case StepPassed:
			result.PassedSteps++
		case StepFailed:
			result.FailedSteps++
			result.Success = false
		case StepWarning:
			result.Warnings++
		}
	}

	return result
}

// printHeader prints a validation header.
func (s *ValidationSuite) printHeader(title string) {
	fmt.Fprintln(s.output)
	headerColor := color.New(color.FgCyan, color.Bold)
	headerColor.Fprintf(s.output, "━━━ %s ━━━\n", title)
	fmt.Fprintln(s.output)
}

// printStepStart prints the step name before execution (for real-time feedback).
func (s *ValidationSuite) printStepStart(name string) {
	fmt.Fprintf(s.output, "  ◌ %s...", name)
}

// printStep prints a completed validation step with status indicator.
func (s *ValidationSuite) printStep(step ValidationStep) {
	var icon string
	var clr *color.Color

	switch step.Status {
	case StepPassed:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case StepFailed:
		icon = "✗"
		clr = color.New(color.FgRed)
	case StepWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	case StepSkipped:
		icon = "○"
		clr = color.New(color.FgHiBlack)
	default:
		icon = "?"
		clr = color.New(color.FgWhite)
	}

	// Clear the "running" line and print result
	fmt.Fprintf(s.output, "\r")
	clr.Fprintf(s.output, "  %s %s", icon, step.Name)

	// Add message if present
	if step.Message != "" {
		dim := color.New(color.FgHiBlack)
		dim.Fprintf(s.output, " - %s", step.Message)
	}

	fmt.Fprintln(s.output)

	// Print error details for failed steps
	if step.Status == StepFailed && step.Error != nil {
		errColor := color.New(color.FgRed)
		errColor.Fprintf(s.output, "    └─ %s\n", step.Error.Error())
	}
}

// printSummary prints the validation summary.
func (s *ValidationSuite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)

	if result.Success {
		successColor := color.New(color.FgGreen, color.Bold)
		successColor.Fprintf(s.output, "━━━ Validation Passed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d/%d checks passed in %v)",
			result.PassedSteps, result.TotalSteps, result.Duration.Round(time.Millisecond))
		successColor.Fprintln(s.output, " ━━━")
	} else {
		failColor := color.New(color.FgRed, color.Bold)
		failColor.Fprintf(s.output, "━━━ Validation Failed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)",
			result.PassedSteps, result.FailedSteps)
		failColor.Fprintln(s.output, " ━━━")
	}

	fmt.Fprintln(s.output)
}

// GetErrors returns all errors from failed steps.
func (r SuiteResult) GetErrors() []error {
	errors := make([]error, 0)
	for _, step := range r.Steps {
		if step.Error != nil {
			errors = append(errors, step.Error)
		}
	}
	return errors
}

// GetFirstError returns the first error from failed steps, or nil if all passed.
func (r SuiteResult) GetFirstError() error {
	for _, step := range r.Steps {
		if step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// Summary returns a human-readable summary string.
func (r SuiteResult) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation %s: ", map[bool]string{true: "Passed", false: "Failed"}[r.Success]))
	sb.WriteString(fmt.Sprintf("%d/%d checks passed", r.PassedSteps, r.TotalSteps))
	if r.FailedSteps > 0 {
		sb.WriteString(fmt.Sprintf(", %d failed", r.FailedSteps))
	}
	if r.Warnings > 0 {
		sb.WriteString(fmt.Sprintf(", %d warnings", r.Warnings))
	}
	sb.WriteString(fmt.Sprintf(" (took %v)", r.Duration.Round(time.Millisecond)))
	return sb.String()
}
