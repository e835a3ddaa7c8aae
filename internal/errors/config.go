package errors

import (
	"fmt"
	"strings"
)

// ConfigurationError is raised when configuration is invalid or missing
type ConfigurationError struct {
	*AppError
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string) *ConfigurationError {
	return &ConfigurationError{
		AppError: &AppError{
			Message:  message,
			ExitCode: ExitConfigError,
		},
	}
}

// MissingEnvVarError is raised when a required environment variable is not set
type MissingEnvVarError struct {
	*AppError
}

// NewMissingEnvVarError creates a new missing environment variable error.
// yamlKey is the dotted config key that can be set instead of the variable.
func NewMissingEnvVarError(varName, yamlKey, description string) *MissingEnvVarError {
	return &MissingEnvVarError{
		AppError: &AppError{
			Message: fmt.Sprintf("Required environment variable '%s' is not set", varName),
			Context: &ErrorContext{
				Operation: "Loading configuration",
				Component: "Environment",
				Details: map[string]interface{}{
					"variable":    varName,
					"description": description,
				},
				Suggestions: []string{
					fmt.Sprintf("Export the variable: export %s='your-value'", varName),
					fmt.Sprintf("Add it to .tripagent/config.yaml as %s", yamlKey),
					"Put it in a .env file in the working directory",
				},
			},
			ExitCode: ExitConfigError,
		},
	}
}

// EnvVarForKey converts a dotted config key to its TRIPAGENT_ environment variable.
// Example: search.api_key -> TRIPAGENT_SEARCH_API_KEY
func EnvVarForKey(key string) string {
	return "TRIPAGENT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// InvalidEnvVarError is raised when a setting has an invalid value
type InvalidEnvVarError struct {
	*AppError
}

// NewInvalidEnvVarError creates a new invalid setting error
func NewInvalidEnvVarError(varName, value, reason string) *InvalidEnvVarError {
	return &InvalidEnvVarError{
		AppError: &AppError{
			Message: fmt.Sprintf("Setting '%s' has an invalid value", varName),
			Context: &ErrorContext{
				Operation: "Validating configuration",
				Component: "Environment",
				Details: map[string]interface{}{
					"variable": varName,
					"value":    value,
					"reason":   reason,
				},
				Suggestions: []string{
					fmt.Sprintf("Check the value of %s in your .env file or config.yaml", varName),
				},
			},
			ExitCode: ExitConfigError,
		},
	}
}

// ConfigFileError is raised when a configuration file cannot be read or parsed
type ConfigFileError struct {
	*AppError
}

// NewConfigFileError creates a new config file error
func NewConfigFileError(filePath string, cause error) *ConfigFileError {
	return &ConfigFileError{
		AppError: &AppError{
			Message: fmt.Sprintf("Failed to load configuration file: %s", filePath),
			Cause:   cause,
			Context: &ErrorContext{
				Operation: "Loading configuration",
				Component: "Config File",
				Details: map[string]interface{}{
					"file_path": filePath,
				},
				Suggestions: []string{
					"Check that the file exists and is readable",
					"Validate YAML syntax",
				},
			},
			ExitCode: ExitConfigError,
		},
	}
}
