package execshell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const (
	defaultShellExecutablePathConstant     = "/bin/sh"
	shellScriptFlagConstant                = "-c"
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
	streamedLineSeparatorConstant          = "\n"
	streamedLineSeparatorByteConstant      = byte('\n')
)

// OSShellProcessRunner executes shell scripts using the operating system facilities.
type OSShellProcessRunner struct{}

// NewOSShellProcessRunner constructs a runner backed by os/exec and the default system shell.
func NewOSShellProcessRunner() *OSShellProcessRunner {
	return &OSShellProcessRunner{}
}

// Run executes the supplied shell command honoring its output logging policy.
//
// The script is passed to the shell as its script argument rather than being
// executed as an argv vector, so pipes, redirection, variable expansion, and
// control flow behave exactly as at an interactive shell. Standard error is
// merged into the standard output stream in every mode.
func (runner *OSShellProcessRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, defaultShellExecutablePathConstant, shellScriptFlagConstant, command.Script)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if command.Details.EnvironmentVariables != nil {
		childEnvironment := make([]string, 0, len(command.Details.EnvironmentVariables))
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			childEnvironment = append(childEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
		}
		executable.Env = childEnvironment
	}

	switch command.OutputLogging {
	case OutputLoggingNone:
		return runner.runDiscarding(executable)
	case OutputLoggingStream:
		return runner.runStreaming(executable, command.LineObserver)
	default:
		return runner.runBuffered(executable)
	}
}

func (runner *OSShellProcessRunner) runDiscarding(executable *exec.Cmd) (ExecutionResult, error) {
	executable.Stdout = io.Discard
	executable.Stderr = io.Discard

	exitCode, runError := resolveExitCode(executable.Run())
	if runError != nil {
		return ExecutionResult{}, runError
	}

	return ExecutionResult{ExitCode: exitCode}, nil
}

func (runner *OSShellProcessRunner) runBuffered(executable *exec.Cmd) (ExecutionResult, error) {
	var combinedOutputBuffer bytes.Buffer
	executable.Stdout = &combinedOutputBuffer
	executable.Stderr = &combinedOutputBuffer

	exitCode, runError := resolveExitCode(executable.Run())
	if runError != nil {
		return ExecutionResult{}, runError
	}

	return ExecutionResult{CapturedOutput: combinedOutputBuffer.String(), ExitCode: exitCode}, nil
}

func (runner *OSShellProcessRunner) runStreaming(executable *exec.Cmd, lineObserver OutputLineObserver) (ExecutionResult, error) {
	pipeReader, pipeWriter, pipeError := os.Pipe()
	if pipeError != nil {
		return ExecutionResult{}, pipeError
	}

	executable.Stdout = pipeWriter
	executable.Stderr = pipeWriter

	startError := executable.Start()
	// The parent's write end must close immediately so reads observe EOF once
	// the child's copies close.
	closeWriterError := pipeWriter.Close()
	if startError != nil {
		_ = pipeReader.Close()
		return ExecutionResult{}, startError
	}

	// Lines are read without any length cap so the accumulated text matches a
	// buffered capture of the same run byte for byte, including a final
	// unterminated line.
	var accumulatedOutput strings.Builder
	var readError error
	outputReader := bufio.NewReader(pipeReader)
	for {
		outputLine, lineError := outputReader.ReadString(streamedLineSeparatorByteConstant)
		if len(outputLine) > 0 {
			if lineObserver != nil {
				lineObserver.OutputLineProduced(strings.TrimSuffix(outputLine, streamedLineSeparatorConstant))
			}
			accumulatedOutput.WriteString(outputLine)
		}
		if lineError != nil {
			if !errors.Is(lineError, io.EOF) {
				readError = lineError
			}
			break
		}
	}
	closeReaderError := pipeReader.Close()

	exitCode, waitError := resolveExitCode(executable.Wait())
	if waitError != nil {
		return ExecutionResult{}, waitError
	}
	if readError != nil {
		return ExecutionResult{}, readError
	}
	if closeWriterError != nil {
		return ExecutionResult{}, closeWriterError
	}
	if closeReaderError != nil {
		return ExecutionResult{}, closeReaderError
	}

	return ExecutionResult{CapturedOutput: accumulatedOutput.String(), ExitCode: exitCode}, nil
}

// resolveExitCode maps the outcome of Run or Wait to the child's termination
// status, keeping nonzero exits as data and surfacing spawn failures as errors.
func resolveExitCode(runError error) (int, error) {
	if runError == nil {
		return 0, nil
	}

	exitError := &exec.ExitError{}
	if errors.As(runError, &exitError) {
		return exitError.ExitCode(), nil
	}

	return 0, runError
}
