// Package utils holds the configuration and logging plumbing shared by the CLI.
//
// ConfigurationLoader layers embedded defaults, config files, RELCLEAN_*
// environment variables, and bound flags through Viper. LoggerFactory builds
// zap loggers in structured or console form.
package utils
