package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/relclean/internal/execshell"
)

const (
	requiredValueMessageConstant              = "value required"
	executorNotConfiguredMessageConstant      = "git executor not configured"
	detachedHeadMessageConstant               = "repository is in a detached HEAD state"
	invalidInputErrorTemplateConstant         = "%s: %s"
	currentBranchFailureTemplateConstant      = "unable to determine current branch in %s: %w"
	revertFailureTemplateConstant             = "unable to revert commit %s in %s: %w"
	pushFailureTemplateConstant               = "unable to push to %s/%s from %s: %w"
	repositoryPathFieldNameConstant           = "repository_path"
	commitHashFieldNameConstant               = "commit_hash"
	remoteNameFieldNameConstant               = "remote_name"
	branchNameFieldNameConstant               = "branch_name"
	gitRevParseSubcommandConstant             = "rev-parse"
	gitAbbrevRefFlagConstant                  = "--abbrev-ref"
	gitHeadReferenceConstant                  = "HEAD"
	gitRevertSubcommandConstant               = "revert"
	gitNoEditFlagConstant                     = "--no-edit"
	gitPushSubcommandConstant                 = "push"
	gitFollowTagsFlagConstant                 = "--follow-tags"
	headRefspecTemplateConstant               = "HEAD:%s"
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisabledValue = "0"
)

// ErrExecutorNotConfigured indicates the repository manager was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrDetachedHead indicates HEAD does not point at a branch.
var ErrDetachedHead = errors.New(detachedHeadMessageConstant)

// InvalidInputError surfaces validation issues for repository operations.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// GitExecutor is the subset of execshell.ShellExecutor used for repository mutations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// PushOptions describes a push of the local HEAD to a remote branch.
type PushOptions struct {
	RepositoryPath string
	RemoteName     string
	BranchName     string
	FollowTags     bool
}

// RepositoryManager runs git commands against a local checkout.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// GetCurrentBranch resolves the checked-out branch name.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return "", InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: trimmedRepositoryPath,
	})
	if executionError != nil {
		return "", fmt.Errorf(currentBranchFailureTemplateConstant, trimmedRepositoryPath, executionError)
	}

	branchName := strings.TrimSpace(executionResult.StandardOutput)
	if len(branchName) == 0 || branchName == gitHeadReferenceConstant {
		return "", fmt.Errorf(currentBranchFailureTemplateConstant, trimmedRepositoryPath, ErrDetachedHead)
	}
	return branchName, nil
}

// RevertCommit creates a revert commit for the provided hash without opening an editor.
func (manager *RepositoryManager) RevertCommit(executionContext context.Context, repositoryPath string, commitHash string) error {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedCommitHash := strings.TrimSpace(commitHash)
	if len(trimmedCommitHash) == 0 {
		return InvalidInputError{FieldName: commitHashFieldNameConstant, Message: requiredValueMessageConstant}
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevertSubcommandConstant, gitNoEditFlagConstant, trimmedCommitHash},
		WorkingDirectory: trimmedRepositoryPath,
	})
	if executionError != nil {
		return fmt.Errorf(revertFailureTemplateConstant, trimmedCommitHash, trimmedRepositoryPath, executionError)
	}
	return nil
}

// PushHead pushes the local HEAD to the named branch on the remote.
func (manager *RepositoryManager) PushHead(executionContext context.Context, options PushOptions) error {
	trimmedRepositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedRemoteName := strings.TrimSpace(options.RemoteName)
	if len(trimmedRemoteName) == 0 {
		return InvalidInputError{FieldName: remoteNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	trimmedBranchName := strings.TrimSpace(options.BranchName)
	if len(trimmedBranchName) == 0 {
		return InvalidInputError{FieldName: branchNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{gitPushSubcommandConstant, trimmedRemoteName, fmt.Sprintf(headRefspecTemplateConstant, trimmedBranchName)}
	if options.FollowTags {
		arguments = append(arguments, gitFollowTagsFlagConstant)
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     trimmedRepositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisabledValue},
	})
	if executionError != nil {
		return fmt.Errorf(pushFailureTemplateConstant, trimmedRemoteName, trimmedBranchName, trimmedRepositoryPath, executionError)
	}
	return nil
}
