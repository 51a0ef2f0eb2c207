package cleanup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/relclean/internal/githubapi"
	"github.com/temirov/relclean/internal/gitrepo"
)

const (
	repositoryPathFieldNameConstant        = "repository_path"
	requiredValueMessageConstant           = "value required"
	nonPositiveReleaseMessageConstant      = "release id must be positive"
	repositoryIdentifierTemplateConstant   = "%s/%s"
	releaseIdentifierBase                  = 10
	releaseIdentifierBitSize               = 64
	logMessageDraftDeletedConstant         = "Draft release deleted"
	logMessageDraftDeletionPlannedConstant = "Draft release deletion planned"
	logMessageDraftDeletionFailedConstant  = "Draft release deletion failed"
	logMessagePublishedReleaseConstant     = "Published releases cannot be deleted"
	logMessageInvalidReleaseConstant       = "Release id is invalid"
	logMessageTagDeletedConstant           = "Tag deleted"
	logMessageTagDeletionPlannedConstant   = "Tag deletion planned"
	logMessageTagDeletionFailedConstant    = "Tag deletion failed"
	logMessageBumpCommitFoundConstant      = "Bump commit located"
	logMessageRevertPlannedConstant        = "Bump commit revert planned"
	logMessageRevertPushedConstant         = "Bump commit reverted and pushed"
	logMessageCleanupCompleteConstant      = "Failed release artifact cleanup complete"
	logFieldRepositoryConstant             = "repository"
	logFieldReleaseIdentifierConstant      = "release_id"
	logFieldTagConstant                    = "tag"
	logFieldBranchConstant                 = "branch"
	logFieldRemoteConstant                 = "remote"
	logFieldCommitHashConstant             = "commit_hash"
	logFieldCommitMessageConstant          = "commit_message"
	logFieldNightlyConstant                = "nightly"
	logFieldDryRunConstant                 = "dry_run"
	logFieldStatusCodeConstant             = "status_code"
)

// Settings holds the fixed repository namespaces and conventions of a release pipeline.
type Settings struct {
	Owner             string
	MainRepository    string
	NightlyRepository string
	RemoteName        string
	BumpMessagePrefix string
	NightlyMarker     string
}

// ServiceDependencies describes required collaborators for cleanup.
type ServiceDependencies struct {
	Logger            *zap.Logger
	ReleaseManager    ReleaseManager
	RepositoryManager RepositoryManager
	CommitLocator     CommitLocator
	Settings          Settings
}

// Options configures a single cleanup run.
type Options struct {
	Tag            string
	ReleaseID      string
	RepositoryPath string
	DryRun         bool
}

// DraftOutcome records the draft deletion step.
type DraftOutcome struct {
	Attempted  bool
	Owner      string
	Repository string
	ReleaseID  int64
	Deleted    bool
	Error      error
}

// TagOutcome records a tag deletion in one repository.
type TagOutcome struct {
	Owner      string
	Repository string
	Deleted    bool
	Error      error
}

// RevertOutcome records the bump commit revert step.
type RevertOutcome struct {
	Branch     string
	RemoteName string
	Commit     gitrepo.Commit
	Reverted   bool
	Pushed     bool
}

// Result captures the observable outcomes of a cleanup run.
type Result struct {
	Tag     string
	Nightly bool
	DryRun  bool
	Draft   DraftOutcome
	Tags    []TagOutcome
	Revert  RevertOutcome
}

// Service removes the artifacts of a failed release.
type Service struct {
	logger            *zap.Logger
	releaseManager    ReleaseManager
	repositoryManager RepositoryManager
	commitLocator     CommitLocator
	settings          Settings
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.ReleaseManager == nil {
		return nil, ErrReleaseManagerNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if dependencies.CommitLocator == nil {
		return nil, ErrCommitLocatorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := dependencies.Settings
	defaults := DefaultCommandConfiguration().Settings(DefaultGitHubConfiguration())
	settings.Owner = valueOrDefault(settings.Owner, defaults.Owner)
	settings.MainRepository = valueOrDefault(settings.MainRepository, defaults.MainRepository)
	settings.NightlyRepository = valueOrDefault(settings.NightlyRepository, defaults.NightlyRepository)
	settings.RemoteName = valueOrDefault(settings.RemoteName, defaults.RemoteName)
	settings.NightlyMarker = valueOrDefault(settings.NightlyMarker, defaults.NightlyMarker)
	if len(strings.TrimSpace(settings.BumpMessagePrefix)) == 0 {
		settings.BumpMessagePrefix = defaults.BumpMessagePrefix
	}

	return &Service{
		logger:            logger,
		releaseManager:    dependencies.ReleaseManager,
		repositoryManager: dependencies.RepositoryManager,
		commitLocator:     dependencies.CommitLocator,
		settings:          settings,
	}, nil
}

// IsNightly reports whether the tag belongs to the nightly channel.
func (service *Service) IsNightly(tag string) bool {
	return strings.Contains(tag, service.settings.NightlyMarker)
}

// Run deletes the draft release and its tags when a release id is given, then always reverts
// and pushes the bump commit. Draft and tag failures are recorded in the result; branch,
// bump commit, revert, and push failures are returned after the partial result is filled in.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	trimmedTag := strings.TrimSpace(options.Tag)
	if len(trimmedTag) == 0 {
		return Result{}, ErrTagRequired
	}
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		return Result{}, InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	result := Result{Tag: trimmedTag, Nightly: service.IsNightly(trimmedTag), DryRun: options.DryRun}

	releaseIdentifier := strings.TrimSpace(options.ReleaseID)
	if len(releaseIdentifier) > 0 {
		draftRepository := service.settings.MainRepository
		if result.Nightly {
			draftRepository = service.settings.NightlyRepository
		}

		result.Draft = service.DeleteDraft(executionContext, releaseIdentifier, draftRepository, options.DryRun)
		if result.Draft.Deleted {
			result.Tags = service.deleteTags(executionContext, trimmedTag, service.tagRepositories(result.Nightly), options.DryRun)
		}
	}

	revertOutcome, revertError := service.RevertBumpCommit(executionContext, trimmedTag, repositoryPath, options.DryRun)
	result.Revert = revertOutcome
	if revertError != nil {
		return result, revertError
	}

	service.logger.Info(
		logMessageCleanupCompleteConstant,
		zap.String(logFieldTagConstant, trimmedTag),
		zap.Bool(logFieldNightlyConstant, result.Nightly),
		zap.Bool(logFieldDryRunConstant, options.DryRun),
	)
	return result, nil
}

// DeleteDraft removes the release when it is still a draft. Failures are logged and recorded
// in the outcome; Deleted is false whenever the release was left in place.
func (service *Service) DeleteDraft(executionContext context.Context, releaseIdentifier string, repository string, dryRun bool) DraftOutcome {
	outcome := DraftOutcome{Attempted: true, Owner: service.settings.Owner, Repository: repository}
	repositoryIdentifier := fmt.Sprintf(repositoryIdentifierTemplateConstant, outcome.Owner, repository)

	parsedIdentifier, parseError := parseReleaseIdentifier(releaseIdentifier)
	if parseError != nil {
		outcome.Error = parseError
		service.logger.Warn(
			logMessageInvalidReleaseConstant,
			zap.String(logFieldRepositoryConstant, repositoryIdentifier),
			zap.String(logFieldReleaseIdentifierConstant, releaseIdentifier),
			zap.Error(parseError),
		)
		return outcome
	}
	outcome.ReleaseID = parsedIdentifier

	reference := githubapi.ReleaseReference{Owner: outcome.Owner, Repository: repository, ReleaseID: parsedIdentifier}
	release, fetchError := service.releaseManager.GetRelease(executionContext, reference)
	if fetchError != nil {
		outcome.Error = fetchError
		service.logDraftFailure(repositoryIdentifier, parsedIdentifier, fetchError)
		return outcome
	}

	if !release.Draft {
		notDraftError := NotDraftError{Repository: repositoryIdentifier, ReleaseID: parsedIdentifier}
		outcome.Error = notDraftError
		service.logger.Error(
			logMessagePublishedReleaseConstant,
			zap.String(logFieldRepositoryConstant, repositoryIdentifier),
			zap.Int64(logFieldReleaseIdentifierConstant, parsedIdentifier),
			zap.String(logFieldTagConstant, release.TagName),
		)
		return outcome
	}

	if dryRun {
		outcome.Deleted = true
		service.logger.Info(
			logMessageDraftDeletionPlannedConstant,
			zap.String(logFieldRepositoryConstant, repositoryIdentifier),
			zap.Int64(logFieldReleaseIdentifierConstant, parsedIdentifier),
		)
		return outcome
	}

	if deleteError := service.releaseManager.DeleteRelease(executionContext, reference); deleteError != nil {
		outcome.Error = deleteError
		service.logDraftFailure(repositoryIdentifier, parsedIdentifier, deleteError)
		return outcome
	}

	outcome.Deleted = true
	service.logger.Info(
		logMessageDraftDeletedConstant,
		zap.String(logFieldRepositoryConstant, repositoryIdentifier),
		zap.Int64(logFieldReleaseIdentifierConstant, parsedIdentifier),
	)
	return outcome
}

// DeleteTag removes refs/tags/<tag> from the repository. Failures are logged and recorded,
// never returned.
func (service *Service) DeleteTag(executionContext context.Context, tag string, repository string, dryRun bool) TagOutcome {
	outcome := TagOutcome{Owner: service.settings.Owner, Repository: repository}
	repositoryIdentifier := fmt.Sprintf(repositoryIdentifierTemplateConstant, outcome.Owner, repository)

	if dryRun {
		outcome.Deleted = true
		service.logger.Info(
			logMessageTagDeletionPlannedConstant,
			zap.String(logFieldRepositoryConstant, repositoryIdentifier),
			zap.String(logFieldTagConstant, tag),
		)
		return outcome
	}

	deleteError := service.releaseManager.DeleteTag(executionContext, githubapi.TagReference{Owner: outcome.Owner, Repository: repository, TagName: tag})
	if deleteError != nil {
		outcome.Error = deleteError
		service.logger.Warn(
			logMessageTagDeletionFailedConstant,
			zap.String(logFieldRepositoryConstant, repositoryIdentifier),
			zap.String(logFieldTagConstant, tag),
			zap.Error(deleteError),
		)
		return outcome
	}

	outcome.Deleted = true
	service.logger.Info(
		logMessageTagDeletedConstant,
		zap.String(logFieldRepositoryConstant, repositoryIdentifier),
		zap.String(logFieldTagConstant, tag),
	)
	return outcome
}

// RevertBumpCommit reverts the newest "Bump <tag>" commit and pushes HEAD to the current branch.
// In dry-run mode the branch and commit are resolved but nothing is reverted or pushed.
func (service *Service) RevertBumpCommit(executionContext context.Context, tag string, repositoryPath string, dryRun bool) (RevertOutcome, error) {
	outcome := RevertOutcome{RemoteName: service.settings.RemoteName}

	branchName, branchError := service.repositoryManager.GetCurrentBranch(executionContext, repositoryPath)
	if branchError != nil {
		return outcome, BranchResolutionError{RepositoryPath: repositoryPath, Cause: branchError}
	}
	outcome.Branch = branchName

	messageFragment := service.settings.BumpMessagePrefix + tag
	bumpCommit, lookupError := service.commitLocator.FindLatestCommit(executionContext, repositoryPath, messageFragment)
	if lookupError != nil {
		return outcome, BumpCommitNotFoundError{MessageFragment: messageFragment, RepositoryPath: repositoryPath, Cause: lookupError}
	}
	outcome.Commit = bumpCommit

	service.logger.Info(
		logMessageBumpCommitFoundConstant,
		zap.String(logFieldCommitHashConstant, bumpCommit.Hash),
		zap.String(logFieldCommitMessageConstant, bumpCommit.Message),
		zap.String(logFieldBranchConstant, branchName),
	)

	if dryRun {
		service.logger.Info(
			logMessageRevertPlannedConstant,
			zap.String(logFieldCommitHashConstant, bumpCommit.Hash),
			zap.String(logFieldRemoteConstant, outcome.RemoteName),
			zap.String(logFieldBranchConstant, branchName),
		)
		return outcome, nil
	}

	if revertError := service.repositoryManager.RevertCommit(executionContext, repositoryPath, bumpCommit.Hash); revertError != nil {
		return outcome, RevertError{CommitHash: bumpCommit.Hash, Cause: revertError}
	}
	outcome.Reverted = true

	pushError := service.repositoryManager.PushHead(executionContext, gitrepo.PushOptions{
		RepositoryPath: repositoryPath,
		RemoteName:     outcome.RemoteName,
		BranchName:     branchName,
		FollowTags:     true,
	})
	if pushError != nil {
		return outcome, PushError{RemoteName: outcome.RemoteName, BranchName: branchName, Cause: pushError}
	}
	outcome.Pushed = true

	service.logger.Info(
		logMessageRevertPushedConstant,
		zap.String(logFieldCommitHashConstant, bumpCommit.Hash),
		zap.String(logFieldRemoteConstant, outcome.RemoteName),
		zap.String(logFieldBranchConstant, branchName),
	)
	return outcome, nil
}

func (service *Service) tagRepositories(nightly bool) []string {
	if nightly {
		return []string{service.settings.NightlyRepository, service.settings.MainRepository}
	}
	return []string{service.settings.MainRepository}
}

func (service *Service) deleteTags(executionContext context.Context, tag string, repositories []string, dryRun bool) []TagOutcome {
	outcomes := make([]TagOutcome, len(repositories))

	var group errgroup.Group
	for repositoryIndex, repository := range repositories {
		group.Go(func() error {
			outcomes[repositoryIndex] = service.DeleteTag(executionContext, tag, repository, dryRun)
			return nil
		})
	}
	_ = group.Wait()

	return outcomes
}

func (service *Service) logDraftFailure(repositoryIdentifier string, releaseIdentifier int64, failure error) {
	fields := []zap.Field{
		zap.String(logFieldRepositoryConstant, repositoryIdentifier),
		zap.Int64(logFieldReleaseIdentifierConstant, releaseIdentifier),
		zap.Error(failure),
	}
	var apiError githubapi.APIError
	if errors.As(failure, &apiError) && apiError.StatusCode > 0 {
		fields = append(fields, zap.Int(logFieldStatusCodeConstant, apiError.StatusCode))
	}
	service.logger.Error(logMessageDraftDeletionFailedConstant, fields...)
}

func parseReleaseIdentifier(releaseIdentifier string) (int64, error) {
	parsedIdentifier, parseError := strconv.ParseInt(releaseIdentifier, releaseIdentifierBase, releaseIdentifierBitSize)
	if parseError != nil {
		return 0, InvalidReleaseIdentifierError{Value: releaseIdentifier, Cause: parseError}
	}
	if parsedIdentifier <= 0 {
		return 0, InvalidReleaseIdentifierError{Value: releaseIdentifier, Cause: errors.New(nonPositiveReleaseMessageConstant)}
	}
	return parsedIdentifier, nil
}
