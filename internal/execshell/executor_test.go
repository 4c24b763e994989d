package execshell_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pipeworks/pipeshell/internal/execshell"
)

const (
	testShellCommandConstant                  = "echo payload"
	testCommandAnnouncementConstant           = "Running command: echo payload"
	testBufferedOutputConstant                = "payload\n"
	testUnrecognizedModeValueConstant         = "INVALID"
	testUnrecognizedModeMessageConstant       = "Unrecognized output_logging: INVALID"
	testRunnerFailureMessageConstant          = "runner failure"
	testSuccessfulInitializationCaseConstant  = "successful_initialization"
	testRunnerValidationCaseConstant          = "runner_validation"
	testAnnouncementEmittedCaseConstant       = "announcement_emitted"
	testAnnouncementSuppressedCaseConstant    = "announcement_suppressed"
	testBufferedOutputLoggedCaseConstant      = "buffered_output_logged"
	testBufferedEmptyOutputCaseConstant       = "buffered_empty_output"
	testDiscardedOutputCaseConstant           = "discarded_output"
	testStreamedLineTemplateConstant          = "line %d"
	testStreamedLineCountConstant             = 3
)

type recordingInformationSink struct {
	messages []string
}

func (sink *recordingInformationSink) Info(message string) {
	sink.messages = append(sink.messages, message)
}

type recordingShellProcessRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	streamedLines    []string
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingShellProcessRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	if command.LineObserver != nil {
		for _, streamedLine := range runner.streamedLines {
			command.LineObserver.OutputLineProduced(streamedLine)
		}
	}
	return runner.executionResult, runner.executionError
}

func TestShellCommandExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		runner        execshell.ShellProcessRunner
		expectedError error
	}{
		{
			name:          testRunnerValidationCaseConstant,
			runner:        nil,
			expectedError: execshell.ErrProcessRunnerNotConfigured,
		},
		{
			name:   testSuccessfulInitializationCaseConstant,
			runner: &recordingShellProcessRunner{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellCommandExecutor(testCase.runner)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, creationError, testCase.expectedError)
				require.Nil(testInstance, executor)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, executor)
		})
	}
}

func TestShellCommandExecutorRejectsUnrecognizedMode(testInstance *testing.T) {
	recordingRunner := &recordingShellProcessRunner{}
	executor, creationError := execshell.NewShellCommandExecutor(recordingRunner)
	require.NoError(testInstance, creationError)

	recordingSink := &recordingInformationSink{}
	_, executionError := executor.Execute(context.Background(), testShellCommandConstant, execshell.OutputLoggingMode(testUnrecognizedModeValueConstant), recordingSink, execshell.CommandDetails{})

	require.Error(testInstance, executionError)
	require.IsType(testInstance, execshell.UnrecognizedOutputLoggingModeError{}, executionError)
	require.Contains(testInstance, executionError.Error(), testUnrecognizedModeMessageConstant)
	require.Empty(testInstance, recordingRunner.recordedCommands)
	require.Empty(testInstance, recordingSink.messages)
}

func TestShellCommandExecutorRequiresInformationSink(testInstance *testing.T) {
	recordingRunner := &recordingShellProcessRunner{}
	executor, creationError := execshell.NewShellCommandExecutor(recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := executor.Execute(context.Background(), testShellCommandConstant, execshell.OutputLoggingBuffer, nil, execshell.CommandDetails{})

	require.ErrorIs(testInstance, executionError, execshell.ErrInformationSinkNotConfigured)
	require.Empty(testInstance, recordingRunner.recordedCommands)
}

func TestShellCommandExecutorSinkBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		outputLogging    execshell.OutputLoggingMode
		details          execshell.CommandDetails
		runnerResult     execshell.ExecutionResult
		expectedMessages []string
	}{
		{
			name:             testAnnouncementEmittedCaseConstant,
			outputLogging:    execshell.OutputLoggingNone,
			runnerResult:     execshell.ExecutionResult{ExitCode: 0},
			expectedMessages: []string{testCommandAnnouncementConstant},
		},
		{
			name:             testAnnouncementSuppressedCaseConstant,
			outputLogging:    execshell.OutputLoggingNone,
			details:          execshell.CommandDetails{SuppressCommandLogging: true},
			runnerResult:     execshell.ExecutionResult{ExitCode: 0},
			expectedMessages: nil,
		},
		{
			name:             testBufferedOutputLoggedCaseConstant,
			outputLogging:    execshell.OutputLoggingBuffer,
			runnerResult:     execshell.ExecutionResult{CapturedOutput: testBufferedOutputConstant, ExitCode: 0},
			expectedMessages: []string{testCommandAnnouncementConstant, testBufferedOutputConstant},
		},
		{
			name:             testBufferedEmptyOutputCaseConstant,
			outputLogging:    execshell.OutputLoggingBuffer,
			runnerResult:     execshell.ExecutionResult{ExitCode: 42},
			expectedMessages: []string{testCommandAnnouncementConstant},
		},
		{
			name:             testDiscardedOutputCaseConstant,
			outputLogging:    execshell.OutputLoggingNone,
			runnerResult:     execshell.ExecutionResult{ExitCode: 7},
			expectedMessages: []string{testCommandAnnouncementConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recordingRunner := &recordingShellProcessRunner{executionResult: testCase.runnerResult}
			executor, creationError := execshell.NewShellCommandExecutor(recordingRunner)
			require.NoError(testInstance, creationError)

			recordingSink := &recordingInformationSink{}
			executionResult, executionError := executor.Execute(context.Background(), testShellCommandConstant, testCase.outputLogging, recordingSink, testCase.details)

			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.runnerResult.ExitCode, executionResult.ExitCode)
			require.Equal(testInstance, testCase.runnerResult.CapturedOutput, executionResult.CapturedOutput)
			require.Equal(testInstance, testCase.expectedMessages, recordingSink.messages)
			require.Len(testInstance, recordingRunner.recordedCommands, 1)
		})
	}
}

func TestShellCommandExecutorStreamsLinesToSink(testInstance *testing.T) {
	streamedLines := make([]string, 0, testStreamedLineCountConstant)
	for lineIndex := 0; lineIndex < testStreamedLineCountConstant; lineIndex++ {
		streamedLines = append(streamedLines, fmt.Sprintf(testStreamedLineTemplateConstant, lineIndex))
	}

	recordingRunner := &recordingShellProcessRunner{streamedLines: streamedLines}
	executor, creationError := execshell.NewShellCommandExecutor(recordingRunner)
	require.NoError(testInstance, creationError)

	recordingSink := &recordingInformationSink{}
	_, executionError := executor.Execute(context.Background(), testShellCommandConstant, execshell.OutputLoggingStream, recordingSink, execshell.CommandDetails{SuppressCommandLogging: true})

	require.NoError(testInstance, executionError)
	require.Equal(testInstance, streamedLines, recordingSink.messages)
	require.Len(testInstance, recordingRunner.recordedCommands, 1)
	require.NotNil(testInstance, recordingRunner.recordedCommands[0].LineObserver)
}

func TestShellCommandExecutorPropagatesRunnerFailure(testInstance *testing.T) {
	recordingRunner := &recordingShellProcessRunner{executionError: errors.New(testRunnerFailureMessageConstant)}
	executor, creationError := execshell.NewShellCommandExecutor(recordingRunner)
	require.NoError(testInstance, creationError)

	recordingSink := &recordingInformationSink{}
	executionResult, executionError := executor.Execute(context.Background(), testShellCommandConstant, execshell.OutputLoggingBuffer, recordingSink, execshell.CommandDetails{})

	require.Error(testInstance, executionError)
	require.Empty(testInstance, executionResult.CapturedOutput)
}
