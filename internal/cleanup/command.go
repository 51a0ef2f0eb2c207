package cleanup

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/relclean/internal/execshell"
	"github.com/temirov/relclean/internal/githubapi"
	"github.com/temirov/relclean/internal/githubauth"
	"github.com/temirov/relclean/internal/gitrepo"
	pathutils "github.com/temirov/relclean/internal/utils/path"
)

const (
	commandUseConstant                      = "relclean"
	commandShortDescriptionConstant         = "Clean up the artifacts of a failed release"
	commandLongDescriptionConstant          = "relclean deletes the draft release and its tags from GitHub when a release id is given, then reverts the version bump commit and pushes the revert to the current branch."
	TagFlagName                             = "tag"
	tagFlagUsageConstant                    = "Release tag whose artifacts should be removed (required)"
	ReleaseIdentifierFlagName               = "releaseId"
	releaseIdentifierFlagUsageConstant      = "Identifier of the draft release to delete"
	DryRunFlagName                          = "dry-run"
	dryRunFlagUsageConstant                 = "Report planned actions without deleting, reverting, or pushing"
	RepositoryFlagName                      = "repository"
	repositoryFlagUsageConstant             = "Path to the local checkout holding the bump commit"
	cleanupFailedTemplateConstant           = "release cleanup failed: %w"
	flagReadErrorTemplateConstant           = "unable to read --%s: %w"
	repositoryPathErrorTemplateConstant     = "unable to resolve repository path: %w"
	executorCreationErrorTemplateConstant   = "unable to construct git executor: %w"
	repositoryManagerCreationErrorTemplate  = "unable to construct repository manager: %w"
	githubClientCreationErrorTemplate       = "unable to construct GitHub client: %w"
	serviceCreationErrorTemplateConstant    = "unable to construct cleanup service: %w"
	logMessageEnvironmentFileLoadedConstant = "Environment file loaded"
	logMessageEnvironmentFileFailedConstant = "Environment file could not be loaded"
	logMessageTokenResolvedConstant         = "GitHub token resolved"
	logMessageTokenMissingConstant          = "GitHub token not found; API requests are unauthenticated"
	logFieldEnvironmentFileConstant         = "env_file"
	logFieldTokenVariableConstant           = "token_variable"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// Runner executes a cleanup run.
type Runner interface {
	Run(executionContext context.Context, options Options) (Result, error)
}

// ServiceProvider constructs a cleanup runner from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (Runner, error)

// CommandBuilder assembles the relclean Cobra command. Unset collaborators are built from
// configuration: a git CLI executor, a go-git history searcher, and a go-github client.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	GitHubConfigurationProvider  func() GitHubConfiguration
	GitExecutor                  gitrepo.GitExecutor
	ReleaseManager               ReleaseManager
	CommitLocator                CommitLocator
	ServiceProvider              ServiceProvider
	PathResolver                 *pathutils.RepositoryPathResolver
}

// Build constructs the relclean command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}

	command.Flags().String(TagFlagName, "", tagFlagUsageConstant)
	command.Flags().String(ReleaseIdentifierFlagName, "", releaseIdentifierFlagUsageConstant)
	command.Flags().Bool(DryRunFlagName, false, dryRunFlagUsageConstant)
	command.Flags().String(RepositoryFlagName, "", repositoryFlagUsageConstant)
	if markError := command.MarkFlagRequired(TagFlagName); markError != nil {
		return nil, markError
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	githubConfiguration := builder.resolveGitHubConfiguration()

	options, optionsError := builder.parseOptions(command, configuration)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()

	service, serviceError := builder.resolveService(logger, configuration.Settings(githubConfiguration), githubConfiguration)
	if serviceError != nil {
		return serviceError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	result, runError := service.Run(executionContext, options)
	NewReporter(command.OutOrStdout()).Report(result, runError)
	if runError != nil {
		return fmt.Errorf(cleanupFailedTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, configuration CommandConfiguration) (Options, error) {
	tag, tagError := command.Flags().GetString(TagFlagName)
	if tagError != nil {
		return Options{}, fmt.Errorf(flagReadErrorTemplateConstant, TagFlagName, tagError)
	}
	releaseIdentifier, releaseError := command.Flags().GetString(ReleaseIdentifierFlagName)
	if releaseError != nil {
		return Options{}, fmt.Errorf(flagReadErrorTemplateConstant, ReleaseIdentifierFlagName, releaseError)
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(DryRunFlagName) {
		flagValue, dryRunError := command.Flags().GetBool(DryRunFlagName)
		if dryRunError != nil {
			return Options{}, fmt.Errorf(flagReadErrorTemplateConstant, DryRunFlagName, dryRunError)
		}
		dryRun = flagValue
	}

	repositoryPath := configuration.RepositoryPath
	if command.Flags().Changed(RepositoryFlagName) {
		flagValue, repositoryError := command.Flags().GetString(RepositoryFlagName)
		if repositoryError != nil {
			return Options{}, fmt.Errorf(flagReadErrorTemplateConstant, RepositoryFlagName, repositoryError)
		}
		repositoryPath = flagValue
	}

	pathResolver := builder.PathResolver
	if pathResolver == nil {
		pathResolver = pathutils.NewRepositoryPathResolver()
	}
	resolvedRepositoryPath, resolveError := pathResolver.Resolve(repositoryPath)
	if resolveError != nil {
		return Options{}, fmt.Errorf(repositoryPathErrorTemplateConstant, resolveError)
	}

	return Options{
		Tag:            tag,
		ReleaseID:      releaseIdentifier,
		RepositoryPath: resolvedRepositoryPath,
		DryRun:         dryRun,
	}, nil
}

func (builder *CommandBuilder) resolveService(logger *zap.Logger, settings Settings, githubConfiguration GitHubConfiguration) (Runner, error) {
	gitExecutor := builder.GitExecutor
	if gitExecutor == nil {
		shellExecutor, executorError := builder.newShellExecutor(logger)
		if executorError != nil {
			return nil, fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
		}
		gitExecutor = shellExecutor
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(gitExecutor)
	if managerError != nil {
		return nil, fmt.Errorf(repositoryManagerCreationErrorTemplate, managerError)
	}

	commitLocator := builder.CommitLocator
	if commitLocator == nil {
		commitLocator = gitrepo.NewHistorySearcher()
	}

	releaseManager := builder.ReleaseManager
	if releaseManager == nil {
		githubClient, clientError := newGitHubClient(logger, githubConfiguration)
		if clientError != nil {
			return nil, fmt.Errorf(githubClientCreationErrorTemplate, clientError)
		}
		releaseManager = githubClient
	}

	serviceProvider := builder.ServiceProvider
	if serviceProvider == nil {
		serviceProvider = func(dependencies ServiceDependencies) (Runner, error) {
			return NewService(dependencies)
		}
	}

	service, serviceError := serviceProvider(ServiceDependencies{
		Logger:            logger,
		ReleaseManager:    releaseManager,
		RepositoryManager: repositoryManager,
		CommitLocator:     commitLocator,
		Settings:          settings,
	})
	if serviceError != nil {
		return nil, fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}
	return service, nil
}

func (builder *CommandBuilder) newShellExecutor(logger *zap.Logger) (*execshell.ShellExecutor, error) {
	commandRunner := execshell.NewOSCommandRunner()
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		return execshell.NewHumanReadableShellExecutor(logger, commandRunner)
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}

func newGitHubClient(logger *zap.Logger, githubConfiguration GitHubConfiguration) (*githubapi.Client, error) {
	fileStatus, fileError := githubauth.LoadEnvironmentFile(githubConfiguration.EnvironmentFile)
	switch {
	case fileError != nil:
		logger.Warn(logMessageEnvironmentFileFailedConstant, zap.String(logFieldEnvironmentFileConstant, githubConfiguration.EnvironmentFile), zap.Error(fileError))
	case fileStatus == githubauth.EnvironmentFileLoaded:
		logger.Debug(logMessageEnvironmentFileLoadedConstant, zap.String(logFieldEnvironmentFileConstant, githubConfiguration.EnvironmentFile))
	}

	tokenSource, tokenFound := githubauth.ResolveToken(githubConfiguration.TokenEnvironmentVariable, nil)
	if tokenFound {
		logger.Debug(logMessageTokenResolvedConstant, zap.String(logFieldTokenVariableConstant, tokenSource.VariableName))
	} else {
		logger.Warn(logMessageTokenMissingConstant, zap.String(logFieldTokenVariableConstant, githubConfiguration.TokenEnvironmentVariable))
	}

	return githubapi.NewClient(githubapi.ClientOptions{
		Token:      tokenSource.Token,
		BaseURL:    githubConfiguration.BaseURL,
		HTTPClient: &http.Client{Timeout: githubConfiguration.RequestTimeout},
	})
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveGitHubConfiguration() GitHubConfiguration {
	if builder.GitHubConfigurationProvider == nil {
		return DefaultGitHubConfiguration()
	}
	return builder.GitHubConfigurationProvider().Sanitize()
}
