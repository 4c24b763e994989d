package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pipeworks/pipeshell/internal/execshell"
)

const (
	configurationLoadErrorTemplateConstant        = "failed to load pipeline configuration: %w"
	configurationParseErrorTemplateConstant       = "failed to parse pipeline configuration: %w"
	configurationPathRequiredMessageConstant      = "pipeline configuration path must be provided"
	configurationEmptyStepsMessageConstant        = "pipeline configuration must define at least one step"
	configurationStepNameRequiredMessageConstant  = "pipeline step names must be non-empty"
	configurationDuplicateStepNameMessageConstant = "pipeline configuration defines duplicate step names"
	configurationStepModeErrorTemplateConstant    = "pipeline step %s: %w"
)

// Configuration describes the ordered pipeline steps loaded from YAML or JSON.
type Configuration struct {
	Steps []StepConfiguration `yaml:"steps" json:"steps"`
}

// StepConfiguration declares a single shell step.
//
// An omitted output_logging defaults to BUFFER and an omitted log_command
// defaults to true, matching the executor contract. An empty command is a
// valid no-op script.
type StepConfiguration struct {
	Name             string            `yaml:"name" json:"name"`
	Command          string            `yaml:"command" json:"command"`
	OutputLogging    string            `yaml:"output_logging" json:"output_logging"`
	Environment      map[string]string `yaml:"env" json:"env"`
	WorkingDirectory string            `yaml:"cwd" json:"cwd"`
	LogCommand       *bool             `yaml:"log_command" json:"log_command"`
	ContinueOnError  bool              `yaml:"continue_on_error" json:"continue_on_error"`
}

// OutputLoggingMode resolves the step's output handling policy.
func (step StepConfiguration) OutputLoggingMode() (execshell.OutputLoggingMode, error) {
	trimmedMode := strings.ToUpper(strings.TrimSpace(step.OutputLogging))
	if len(trimmedMode) == 0 {
		return execshell.OutputLoggingBuffer, nil
	}

	resolvedMode := execshell.OutputLoggingMode(trimmedMode)
	if !resolvedMode.Recognized() {
		return resolvedMode, execshell.UnrecognizedOutputLoggingModeError{Mode: resolvedMode}
	}

	return resolvedMode, nil
}

// ShouldLogCommand reports whether the step announces its command before running.
func (step StepConfiguration) ShouldLogCommand() bool {
	if step.LogCommand == nil {
		return true
	}
	return *step.LogCommand
}

// LoadConfiguration reads the pipeline definition from disk and performs basic validation.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if validationError := configuration.Validate(); validationError != nil {
		return Configuration{}, validationError
	}

	return configuration, nil
}

// Validate checks structural invariants without executing any step.
func (configuration Configuration) Validate() error {
	if len(configuration.Steps) == 0 {
		return errors.New(configurationEmptyStepsMessageConstant)
	}

	seenStepNames := make(map[string]struct{}, len(configuration.Steps))
	for stepIndex := range configuration.Steps {
		trimmedName := strings.TrimSpace(configuration.Steps[stepIndex].Name)
		if len(trimmedName) == 0 {
			return errors.New(configurationStepNameRequiredMessageConstant)
		}
		if _, alreadySeen := seenStepNames[trimmedName]; alreadySeen {
			return errors.New(configurationDuplicateStepNameMessageConstant)
		}
		seenStepNames[trimmedName] = struct{}{}

		if _, modeError := configuration.Steps[stepIndex].OutputLoggingMode(); modeError != nil {
			return fmt.Errorf(configurationStepModeErrorTemplateConstant, trimmedName, modeError)
		}
	}

	return nil
}
