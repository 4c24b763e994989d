package run

import "strings"

const (
	pipelineFileConfigurationKeyConstant    = ".pipeline_file"
	continueOnErrorConfigurationKeyConstant = ".continue_on_error"
	defaultContinueOnErrorConstant          = false
)

// CommandConfiguration captures configuration values for the run command.
type CommandConfiguration struct {
	PipelineFile    string `mapstructure:"pipeline_file"`
	ContinueOnError bool   `mapstructure:"continue_on_error"`
}

// DefaultCommandConfiguration provides default run command settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		PipelineFile:    "",
		ContinueOnError: defaultContinueOnErrorConstant,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + pipelineFileConfigurationKeyConstant:    "",
		configurationKeyPrefix + continueOnErrorConfigurationKeyConstant: defaultContinueOnErrorConstant,
	}
}

// Sanitize normalizes configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.PipelineFile = strings.TrimSpace(configuration.PipelineFile)
	return sanitized
}
