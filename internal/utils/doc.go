// Package utils exposes reusable helpers consumed by the CLI entrypoint.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging, plus a small
// flushing writer for streamed console output.
package utils
