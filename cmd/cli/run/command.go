package run

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pipeworks/pipeshell/internal/execshell"
	"github.com/pipeworks/pipeshell/internal/pipeline"
	"github.com/pipeworks/pipeshell/internal/ui"
	"github.com/pipeworks/pipeshell/internal/utils"
)

const (
	commandUseConstant                       = "run [pipeline]"
	commandShortDescriptionConstant          = "Run a pipeline configuration file"
	commandLongDescriptionConstant           = "run executes the shell steps defined in a YAML pipeline file sequentially, relaying their merged output according to each step's output_logging mode."
	continueOnErrorFlagNameConstant          = "continue-on-error"
	continueOnErrorFlagDescriptionConstant   = "Keep executing remaining steps when a step exits nonzero"
	pipelinePathRequiredMessageConstant      = "pipeline configuration path required; provide a positional argument or configure run.pipeline_file"
	loadConfigurationErrorTemplateConstant   = "unable to load pipeline configuration: %w"
	shellExecutorCreationTemplateConstant    = "unable to construct shell executor: %w"
	stepSummaryLineTemplateConstant          = "step %s exited with code %d\n"
)

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	ProcessRunner         execshell.ShellProcessRunner
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Bool(continueOnErrorFlagNameConstant, false, continueOnErrorFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	commandConfiguration := builder.resolveConfiguration()

	pipelinePathCandidate := commandConfiguration.PipelineFile
	if len(arguments) > 0 {
		pipelinePathCandidate = strings.TrimSpace(arguments[0])
	}

	if len(pipelinePathCandidate) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return helpError
		}
		return errors.New(pipelinePathRequiredMessageConstant)
	}

	pipelineConfiguration, configurationError := pipeline.LoadConfiguration(pipelinePathCandidate)
	if configurationError != nil {
		return fmt.Errorf(loadConfigurationErrorTemplateConstant, configurationError)
	}

	logger := resolveLogger(builder.LoggerProvider)

	processRunner := builder.ProcessRunner
	if processRunner == nil {
		processRunner = execshell.NewOSShellProcessRunner()
	}

	shellExecutor, executorCreationError := execshell.NewShellCommandExecutor(processRunner)
	if executorCreationError != nil {
		return fmt.Errorf(shellExecutorCreationTemplateConstant, executorCreationError)
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())

	pipelineDependencies := pipeline.Dependencies{
		ShellExecutor: shellExecutor,
		Sink:          ui.NewWriterInformationSink(outputWriter),
		Observer:      ui.NewConsoleStepEventLogger(logger),
		Logger:        logger,
	}

	pipelineExecutor := pipeline.NewExecutor(pipelineConfiguration, pipelineDependencies)

	continueOnError := commandConfiguration.ContinueOnError
	if command != nil && command.Flags().Changed(continueOnErrorFlagNameConstant) {
		continueOnError, _ = command.Flags().GetBool(continueOnErrorFlagNameConstant)
	}

	runtimeOptions := pipeline.RuntimeOptions{ContinueOnError: continueOnError}

	runReport, executionError := pipelineExecutor.Execute(command.Context(), runtimeOptions)
	for _, stepReport := range runReport.Steps {
		fmt.Fprintf(outputWriter, stepSummaryLineTemplateConstant, stepReport.Name, stepReport.ExitCode)
	}

	return executionError
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}
