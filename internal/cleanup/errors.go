package cleanup

import (
	"errors"
	"fmt"
)

const (
	releaseManagerMissingMessageConstant    = "release manager not configured"
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	commitLocatorMissingMessageConstant     = "commit locator not configured"
	tagRequiredMessageConstant              = "release tag required"
	invalidInputErrorTemplateConstant       = "%s: %s"
	invalidReleaseIdentifierTemplate        = "invalid release id %q: %v"
	notDraftErrorTemplateConstant           = "release %d in %s is published; published releases cannot be deleted"
	branchResolutionErrorTemplateConstant   = "unable to determine current branch in %s: %v"
	bumpCommitNotFoundErrorTemplate         = "unable to locate commit matching %q in %s: %v"
	revertErrorTemplateConstant             = "unable to revert bump commit %s: %v"
	pushErrorTemplateConstant               = "unable to push revert to %s/%s: %v"
)

var (
	// ErrReleaseManagerNotConfigured indicates the service was built without a GitHub client.
	ErrReleaseManagerNotConfigured = errors.New(releaseManagerMissingMessageConstant)
	// ErrRepositoryManagerNotConfigured indicates the service was built without a git command runner.
	ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)
	// ErrCommitLocatorNotConfigured indicates the service was built without a history searcher.
	ErrCommitLocatorNotConfigured = errors.New(commitLocatorMissingMessageConstant)
	// ErrTagRequired indicates the cleanup was requested without a release tag.
	ErrTagRequired = errors.New(tagRequiredMessageConstant)
)

// InvalidInputError describes option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// InvalidReleaseIdentifierError reports a release id that is not a positive integer.
type InvalidReleaseIdentifierError struct {
	Value string
	Cause error
}

// Error describes the malformed release id.
func (identifierError InvalidReleaseIdentifierError) Error() string {
	return fmt.Sprintf(invalidReleaseIdentifierTemplate, identifierError.Value, identifierError.Cause)
}

// Unwrap exposes the parse failure.
func (identifierError InvalidReleaseIdentifierError) Unwrap() error {
	return identifierError.Cause
}

// NotDraftError reports an attempt to delete a release that has already been published.
type NotDraftError struct {
	Repository string
	ReleaseID  int64
}

// Error describes the published release.
func (notDraftError NotDraftError) Error() string {
	return fmt.Sprintf(notDraftErrorTemplateConstant, notDraftError.ReleaseID, notDraftError.Repository)
}

// BranchResolutionError reports that the checked-out branch could not be determined.
type BranchResolutionError struct {
	RepositoryPath string
	Cause          error
}

func (resolutionError BranchResolutionError) Error() string {
	return fmt.Sprintf(branchResolutionErrorTemplateConstant, resolutionError.RepositoryPath, resolutionError.Cause)
}

func (resolutionError BranchResolutionError) Unwrap() error {
	return resolutionError.Cause
}

// BumpCommitNotFoundError reports that history holds no commit for the release bump.
type BumpCommitNotFoundError struct {
	MessageFragment string
	RepositoryPath  string
	Cause           error
}

func (notFoundError BumpCommitNotFoundError) Error() string {
	return fmt.Sprintf(bumpCommitNotFoundErrorTemplate, notFoundError.MessageFragment, notFoundError.RepositoryPath, notFoundError.Cause)
}

func (notFoundError BumpCommitNotFoundError) Unwrap() error {
	return notFoundError.Cause
}

// RevertError reports a failed git revert.
type RevertError struct {
	CommitHash string
	Cause      error
}

func (revertError RevertError) Error() string {
	return fmt.Sprintf(revertErrorTemplateConstant, revertError.CommitHash, revertError.Cause)
}

func (revertError RevertError) Unwrap() error {
	return revertError.Cause
}

// PushError reports a failed push of the revert commit.
type PushError struct {
	RemoteName string
	BranchName string
	Cause      error
}

func (pushError PushError) Error() string {
	return fmt.Sprintf(pushErrorTemplateConstant, pushError.RemoteName, pushError.BranchName, pushError.Cause)
}

func (pushError PushError) Unwrap() error {
	return pushError.Cause
}
