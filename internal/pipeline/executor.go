package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pipeworks/pipeshell/internal/execshell"
)

const (
	executorDependenciesMessageConstant = "pipeline executor requires a shell executor and an information sink"
	stepExecutionErrorTemplateConstant  = "pipeline step %s failed: %w"
	stepFailedMessageTemplateConstant   = "step %s failed with exit code %d"
	stepCompletedDebugMessageConstant   = "pipeline step completed"
	logFieldStepNameConstant            = "step_name"
	logFieldExitCodeConstant            = "exit_code"
	logFieldOutputLoggingConstant       = "output_logging"
)

// StepEventObserver receives lifecycle notifications for pipeline steps.
type StepEventObserver interface {
	// StepStarted notifies observers that a step is about to run its command.
	StepStarted(stepName string, command string)
	// StepCompleted notifies observers that a step finished with a zero exit code.
	StepCompleted(stepName string, result execshell.ExecutionResult)
	// StepFailed notifies observers that a step finished with a nonzero exit code.
	StepFailed(stepName string, result execshell.ExecutionResult)
	// StepExecutionFailed reports failures that prevented a step's command from running to completion.
	StepExecutionFailed(stepName string, failure error)
}

type noopStepEventObserver struct{}

func (noopStepEventObserver) StepStarted(string, string)                      {}
func (noopStepEventObserver) StepCompleted(string, execshell.ExecutionResult) {}
func (noopStepEventObserver) StepFailed(string, execshell.ExecutionResult)    {}
func (noopStepEventObserver) StepExecutionFailed(string, error)               {}

// Dependencies configures shared collaborators for pipeline execution.
type Dependencies struct {
	ShellExecutor *execshell.ShellCommandExecutor
	Sink          execshell.InformationSink
	Observer      StepEventObserver
	Logger        *zap.Logger
}

// RuntimeOptions captures user-provided execution modifiers.
type RuntimeOptions struct {
	ContinueOnError bool
}

// StepReport records the observable outcome of a single executed step.
type StepReport struct {
	Name           string
	ExitCode       int
	CapturedOutput string
}

// RunReport summarizes an entire pipeline run in execution order.
type RunReport struct {
	Steps []StepReport
}

// StepFailedError reports a step whose command terminated with a nonzero exit code.
type StepFailedError struct {
	StepName string
	ExitCode int
}

// Error implements the error interface.
func (stepError StepFailedError) Error() string {
	return fmt.Sprintf(stepFailedMessageTemplateConstant, stepError.StepName, stepError.ExitCode)
}

// Executor coordinates sequential pipeline step execution.
type Executor struct {
	configuration Configuration
	dependencies  Dependencies
}

// NewExecutor constructs an Executor instance.
func NewExecutor(configuration Configuration, dependencies Dependencies) *Executor {
	if dependencies.Observer == nil {
		dependencies.Observer = noopStepEventObserver{}
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Executor{configuration: configuration, dependencies: dependencies}
}

// Execute runs the configured steps in order.
//
// Nonzero exit codes remain ordinary data at the execshell layer; here they
// become StepFailedError unless the step or the runtime options allow the run
// to continue. The report covers every step that ran, including failed ones.
func (executor *Executor) Execute(executionContext context.Context, runtimeOptions RuntimeOptions) (RunReport, error) {
	if executor.dependencies.ShellExecutor == nil || executor.dependencies.Sink == nil {
		return RunReport{}, errors.New(executorDependenciesMessageConstant)
	}

	if validationError := executor.configuration.Validate(); validationError != nil {
		return RunReport{}, validationError
	}

	report := RunReport{Steps: make([]StepReport, 0, len(executor.configuration.Steps))}
	for stepIndex := range executor.configuration.Steps {
		step := executor.configuration.Steps[stepIndex]
		stepName := strings.TrimSpace(step.Name)

		outputLogging, modeError := step.OutputLoggingMode()
		if modeError != nil {
			executor.dependencies.Observer.StepExecutionFailed(stepName, modeError)
			return report, fmt.Errorf(stepExecutionErrorTemplateConstant, stepName, modeError)
		}

		executor.dependencies.Observer.StepStarted(stepName, step.Command)

		commandDetails := execshell.CommandDetails{
			EnvironmentVariables:   step.Environment,
			WorkingDirectory:       step.WorkingDirectory,
			SuppressCommandLogging: !step.ShouldLogCommand(),
		}

		executionResult, executionError := executor.dependencies.ShellExecutor.Execute(executionContext, step.Command, outputLogging, executor.dependencies.Sink, commandDetails)
		if executionError != nil {
			executor.dependencies.Observer.StepExecutionFailed(stepName, executionError)
			return report, fmt.Errorf(stepExecutionErrorTemplateConstant, stepName, executionError)
		}

		report.Steps = append(report.Steps, StepReport{
			Name:           stepName,
			ExitCode:       executionResult.ExitCode,
			CapturedOutput: executionResult.CapturedOutput,
		})

		executor.dependencies.Logger.Debug(
			stepCompletedDebugMessageConstant,
			zap.String(logFieldStepNameConstant, stepName),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldOutputLoggingConstant, string(outputLogging)),
		)

		if executionResult.ExitCode != 0 {
			executor.dependencies.Observer.StepFailed(stepName, executionResult)
			if step.ContinueOnError || runtimeOptions.ContinueOnError {
				continue
			}
			return report, StepFailedError{StepName: stepName, ExitCode: executionResult.ExitCode}
		}

		executor.dependencies.Observer.StepCompleted(stepName, executionResult)
	}

	return report, nil
}
