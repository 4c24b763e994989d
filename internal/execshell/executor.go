package execshell

import (
	"context"
	"errors"
	"fmt"
)

const (
	commandAnnouncementTemplateConstant         = "Running command: %s"
	unrecognizedOutputLoggingTemplateConstant   = "Unrecognized output_logging: %s"
	outputLoggingNoneStringConstant             = "NONE"
	outputLoggingBufferStringConstant           = "BUFFER"
	outputLoggingStreamStringConstant           = "STREAM"
	processRunnerNotConfiguredMessageConstant   = "shell process runner not configured"
	informationSinkNotConfiguredMessageConstant = "information sink not configured"
)

// Sentinel errors reported for executor wiring mistakes.
var (
	ErrProcessRunnerNotConfigured   = errors.New(processRunnerNotConfiguredMessageConstant)
	ErrInformationSinkNotConfigured = errors.New(informationSinkNotConfiguredMessageConstant)
)

// OutputLoggingMode selects how a child process's combined output is handled.
type OutputLoggingMode string

// Recognized output logging modes.
const (
	OutputLoggingNone   OutputLoggingMode = OutputLoggingMode(outputLoggingNoneStringConstant)
	OutputLoggingBuffer OutputLoggingMode = OutputLoggingMode(outputLoggingBufferStringConstant)
	OutputLoggingStream OutputLoggingMode = OutputLoggingMode(outputLoggingStreamStringConstant)
)

// Recognized reports whether the mode belongs to the closed NONE/BUFFER/STREAM set.
func (mode OutputLoggingMode) Recognized() bool {
	switch mode {
	case OutputLoggingNone, OutputLoggingBuffer, OutputLoggingStream:
		return true
	default:
		return false
	}
}

// InformationSink accepts informational text messages emitted during command execution.
//
// Hosts supply any logger-like value satisfying this capability; the executor
// never assumes a richer logging interface.
type InformationSink interface {
	Info(message string)
}

// OutputLineObserver receives output lines as the child process produces them.
type OutputLineObserver interface {
	OutputLineProduced(line string)
}

// CommandDetails captures optional overrides for a shell command invocation.
//
// The zero value inherits the caller's environment and working directory and
// keeps the command announcement enabled. A non-nil EnvironmentVariables map
// becomes the child's entire environment; callers wanting inheritance plus
// overrides must construct the superset explicitly.
type CommandDetails struct {
	EnvironmentVariables   map[string]string
	WorkingDirectory       string
	SuppressCommandLogging bool
}

// ShellCommand describes a script handed to the system shell together with its output policy.
type ShellCommand struct {
	Script        string
	OutputLogging OutputLoggingMode
	Details       CommandDetails
	LineObserver  OutputLineObserver
}

// ExecutionResult captures the observable outcome of a shell command.
type ExecutionResult struct {
	CapturedOutput string
	ExitCode       int
}

// ShellProcessRunner represents the ability to run shell scripts as child processes.
type ShellProcessRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// UnrecognizedOutputLoggingModeError reports an output logging mode outside the recognized set.
type UnrecognizedOutputLoggingModeError struct {
	Mode OutputLoggingMode
}

// Error implements the error interface.
func (modeError UnrecognizedOutputLoggingModeError) Error() string {
	return fmt.Sprintf(unrecognizedOutputLoggingTemplateConstant, string(modeError.Mode))
}

// ShellCommandExecutor runs shell commands and routes their combined output into a sink.
type ShellCommandExecutor struct {
	runner ShellProcessRunner
}

// NewShellCommandExecutor constructs a ShellCommandExecutor around the provided runner.
func NewShellCommandExecutor(runner ShellProcessRunner) (*ShellCommandExecutor, error) {
	if runner == nil {
		return nil, ErrProcessRunnerNotConfigured
	}
	return &ShellCommandExecutor{runner: runner}, nil
}

type sinkLineObserver struct {
	sink InformationSink
}

func (observer sinkLineObserver) OutputLineProduced(line string) {
	observer.sink.Info(line)
}

// Execute runs shellCommand through the system shell and handles its combined
// stdout and stderr according to outputLogging.
//
// The call blocks until the child process terminates and all output has been
// drained. Nonzero exit codes are ordinary data surfaced in the result, never
// an error; the returned error covers an unrecognized mode, missing sink, or a
// failure to spawn the process at all.
func (executor *ShellCommandExecutor) Execute(executionContext context.Context, shellCommand string, outputLogging OutputLoggingMode, sink InformationSink, details CommandDetails) (ExecutionResult, error) {
	if !outputLogging.Recognized() {
		return ExecutionResult{}, UnrecognizedOutputLoggingModeError{Mode: outputLogging}
	}

	if sink == nil {
		return ExecutionResult{}, ErrInformationSinkNotConfigured
	}

	if !details.SuppressCommandLogging {
		sink.Info(fmt.Sprintf(commandAnnouncementTemplateConstant, shellCommand))
	}

	command := ShellCommand{Script: shellCommand, OutputLogging: outputLogging, Details: details}
	if outputLogging == OutputLoggingStream {
		command.LineObserver = sinkLineObserver{sink: sink}
	}

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		return ExecutionResult{}, runError
	}

	if outputLogging == OutputLoggingBuffer && len(executionResult.CapturedOutput) > 0 {
		sink.Info(executionResult.CapturedOutput)
	}

	return executionResult, nil
}
