package cleanup

import (
	"context"

	"github.com/temirov/relclean/internal/githubapi"
	"github.com/temirov/relclean/internal/gitrepo"
)

// ReleaseManager exposes the GitHub release and reference operations used during cleanup.
type ReleaseManager interface {
	GetRelease(executionContext context.Context, reference githubapi.ReleaseReference) (githubapi.Release, error)
	DeleteRelease(executionContext context.Context, reference githubapi.ReleaseReference) error
	DeleteTag(executionContext context.Context, reference githubapi.TagReference) error
}

// RepositoryManager exposes the local git mutations used to undo a version bump.
type RepositoryManager interface {
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	RevertCommit(executionContext context.Context, repositoryPath string, commitHash string) error
	PushHead(executionContext context.Context, options gitrepo.PushOptions) error
}

// CommitLocator finds commits by message.
type CommitLocator interface {
	FindLatestCommit(executionContext context.Context, repositoryPath string, messageFragment string) (gitrepo.Commit, error)
}
