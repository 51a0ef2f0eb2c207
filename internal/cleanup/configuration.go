package cleanup

import (
	"strings"
	"time"
)

const (
	defaultRepositoryPathConstant           = "."
	defaultRemoteNameConstant               = "origin"
	defaultBumpMessagePrefixConstant        = "Bump "
	defaultNightlyMarkerConstant            = "nightly"
	defaultOwnerConstant                    = "electron"
	defaultMainRepositoryConstant           = "electron"
	defaultNightlyRepositoryConstant        = "nightlies"
	defaultTokenEnvironmentVariableConstant = "ELECTRON_GITHUB_TOKEN"
	defaultEnvironmentFileConstant          = ".env"
	defaultRequestTimeout                   = 30 * time.Second
)

// CommandConfiguration captures persisted configuration for the local side of the cleanup.
type CommandConfiguration struct {
	RepositoryPath    string `mapstructure:"repository_path"`
	RemoteName        string `mapstructure:"remote"`
	DryRun            bool   `mapstructure:"dry_run"`
	BumpMessagePrefix string `mapstructure:"bump_message_prefix"`
	NightlyMarker     string `mapstructure:"nightly_marker"`
}

// GitHubConfiguration captures persisted configuration for the GitHub side of the cleanup.
type GitHubConfiguration struct {
	Owner                    string        `mapstructure:"owner"`
	MainRepository           string        `mapstructure:"main_repository"`
	NightlyRepository        string        `mapstructure:"nightly_repository"`
	BaseURL                  string        `mapstructure:"base_url"`
	TokenEnvironmentVariable string        `mapstructure:"token_environment_variable"`
	EnvironmentFile          string        `mapstructure:"env_file"`
	RequestTimeout           time.Duration `mapstructure:"request_timeout"`
}

// DefaultCommandConfiguration provides baseline values for the local cleanup settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath:    defaultRepositoryPathConstant,
		RemoteName:        defaultRemoteNameConstant,
		DryRun:            false,
		BumpMessagePrefix: defaultBumpMessagePrefixConstant,
		NightlyMarker:     defaultNightlyMarkerConstant,
	}
}

// DefaultGitHubConfiguration provides baseline values for the GitHub settings.
func DefaultGitHubConfiguration() GitHubConfiguration {
	return GitHubConfiguration{
		Owner:                    defaultOwnerConstant,
		MainRepository:           defaultMainRepositoryConstant,
		NightlyRepository:        defaultNightlyRepositoryConstant,
		TokenEnvironmentVariable: defaultTokenEnvironmentVariableConstant,
		EnvironmentFile:          defaultEnvironmentFileConstant,
		RequestTimeout:           defaultRequestTimeout,
	}
}

// Sanitize trims configured values and restores defaults for blank entries.
// The bump prefix is kept verbatim because its trailing space separates it from the tag.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.RepositoryPath = valueOrDefault(configuration.RepositoryPath, defaults.RepositoryPath)
	sanitized.RemoteName = valueOrDefault(configuration.RemoteName, defaults.RemoteName)
	sanitized.NightlyMarker = valueOrDefault(configuration.NightlyMarker, defaults.NightlyMarker)
	if len(strings.TrimSpace(configuration.BumpMessagePrefix)) == 0 {
		sanitized.BumpMessagePrefix = defaults.BumpMessagePrefix
	}

	return sanitized
}

// Sanitize trims configured values and restores defaults for blank entries.
// BaseURL and EnvironmentFile may legitimately be empty.
func (configuration GitHubConfiguration) Sanitize() GitHubConfiguration {
	defaults := DefaultGitHubConfiguration()
	sanitized := configuration

	sanitized.Owner = valueOrDefault(configuration.Owner, defaults.Owner)
	sanitized.MainRepository = valueOrDefault(configuration.MainRepository, defaults.MainRepository)
	sanitized.NightlyRepository = valueOrDefault(configuration.NightlyRepository, defaults.NightlyRepository)
	sanitized.TokenEnvironmentVariable = valueOrDefault(configuration.TokenEnvironmentVariable, defaults.TokenEnvironmentVariable)
	sanitized.BaseURL = strings.TrimSpace(configuration.BaseURL)
	sanitized.EnvironmentFile = strings.TrimSpace(configuration.EnvironmentFile)
	if configuration.RequestTimeout <= 0 {
		sanitized.RequestTimeout = defaults.RequestTimeout
	}

	return sanitized
}

// Settings converts the sanitized configurations into service settings.
func (configuration CommandConfiguration) Settings(githubConfiguration GitHubConfiguration) Settings {
	return Settings{
		Owner:             githubConfiguration.Owner,
		MainRepository:    githubConfiguration.MainRepository,
		NightlyRepository: githubConfiguration.NightlyRepository,
		RemoteName:        configuration.RemoteName,
		BumpMessagePrefix: configuration.BumpMessagePrefix,
		NightlyMarker:     configuration.NightlyMarker,
	}
}

func valueOrDefault(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}
