package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pipeworks/pipeshell/internal/utils"
)

const (
	testEnvironmentPrefixConstant      = "TESTPIPESHELL"
	testLogLevelKeyConstant            = "common.log_level"
	testLogLevelEnvironmentKeyConstant = "TESTPIPESHELL_COMMON_LOG_LEVEL"
	testDefaultLogLevelConstant        = "info"
	testFileLogLevelConstant           = "warn"
	testEnvironmentLogLevelConstant    = "error"
	testConfigFileNameConstant         = "config.yaml"
	testConfigContentTemplateConstant  = "common:\n  log_level: %s\n"
	testConfigurationNameConstant      = "config"
	testConfigurationTypeConstant      = "yaml"
)

type configurationFixture struct {
	Common configurationCommonFixture `mapstructure:"common"`
}

type configurationCommonFixture struct {
	LogLevel string `mapstructure:"log_level"`
}

func TestConfigurationLoaderLoadConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name                string
		fileLogLevel        string
		environmentLogLevel string
		expectedLogLevel    string
	}{
		{
			name:             "defaults_are_applied",
			expectedLogLevel: testDefaultLogLevelConstant,
		},
		{
			name:             "config_file_overrides_defaults",
			fileLogLevel:     testFileLogLevelConstant,
			expectedLogLevel: testFileLogLevelConstant,
		},
		{
			name:                "environment_overrides_file",
			fileLogLevel:        testFileLogLevelConstant,
			environmentLogLevel: testEnvironmentLogLevelConstant,
			expectedLogLevel:    testEnvironmentLogLevelConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			temporaryDirectory := testInstance.TempDir()

			configurationFilePath := ""
			if len(testCase.fileLogLevel) > 0 {
				configurationFilePath = filepath.Join(temporaryDirectory, testConfigFileNameConstant)
				configurationContent := fmt.Sprintf(testConfigContentTemplateConstant, testCase.fileLogLevel)
				require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o600))
			}

			if len(testCase.environmentLogLevel) > 0 {
				testInstance.Setenv(testLogLevelEnvironmentKeyConstant, testCase.environmentLogLevel)
			}

			configurationLoader := utils.NewConfigurationLoader(
				testConfigurationNameConstant,
				testConfigurationTypeConstant,
				testEnvironmentPrefixConstant,
				[]string{temporaryDirectory},
			)

			var loadedFixture configurationFixture
			defaultValues := map[string]any{testLogLevelKeyConstant: testDefaultLogLevelConstant}
			loadedMetadata, loadError := configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &loadedFixture)

			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedLogLevel, loadedFixture.Common.LogLevel)
			if len(configurationFilePath) > 0 {
				require.Equal(testInstance, configurationFilePath, loadedMetadata.ConfigFileUsed)
			}
		})
	}
}
