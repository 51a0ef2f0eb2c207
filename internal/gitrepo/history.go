package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

const (
	messageFragmentFieldNameConstant      = "message_fragment"
	repositoryOpenFailureTemplateConstant = "unable to open repository %s: %w"
	headResolutionFailureTemplateConstant = "unable to resolve HEAD in %s: %w"
	historyReadFailureTemplateConstant    = "unable to read history of %s: %w"
	commitNotFoundTemplateConstant        = "no commit matching %q found in %s"
	commitSubjectSeparatorConstant        = "\n"
)

// Commit identifies a commit discovered in repository history.
type Commit struct {
	Hash    string
	Message string
}

// CommitNotFoundError indicates no commit in history matched the requested message fragment.
type CommitNotFoundError struct {
	RepositoryPath  string
	MessageFragment string
}

// Error describes the missing commit.
func (notFoundError CommitNotFoundError) Error() string {
	return fmt.Sprintf(commitNotFoundTemplateConstant, notFoundError.MessageFragment, notFoundError.RepositoryPath)
}

// HistorySearcher locates commits by walking history with go-git.
type HistorySearcher struct{}

// NewHistorySearcher constructs a HistorySearcher.
func NewHistorySearcher() *HistorySearcher {
	return &HistorySearcher{}
}

// FindLatestCommit returns the newest commit reachable from HEAD whose message contains messageFragment.
func (searcher *HistorySearcher) FindLatestCommit(executionContext context.Context, repositoryPath string, messageFragment string) (Commit, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return Commit{}, InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(messageFragment)) == 0 {
		return Commit{}, InvalidInputError{FieldName: messageFragmentFieldNameConstant, Message: requiredValueMessageConstant}
	}

	repository, openError := git.PlainOpenWithOptions(trimmedRepositoryPath, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return Commit{}, fmt.Errorf(repositoryOpenFailureTemplateConstant, trimmedRepositoryPath, openError)
	}

	headReference, headError := repository.Head()
	if headError != nil {
		return Commit{}, fmt.Errorf(headResolutionFailureTemplateConstant, trimmedRepositoryPath, headError)
	}

	commitIterator, logError := repository.Log(&git.LogOptions{From: headReference.Hash(), Order: git.LogOrderCommitterTime})
	if logError != nil {
		return Commit{}, fmt.Errorf(historyReadFailureTemplateConstant, trimmedRepositoryPath, logError)
	}
	defer commitIterator.Close()

	var matchedCommit *object.Commit
	iterationError := commitIterator.ForEach(func(candidate *object.Commit) error {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if strings.Contains(candidate.Message, messageFragment) {
			matchedCommit = candidate
			return storer.ErrStop
		}
		return nil
	})
	if iterationError != nil && !errors.Is(iterationError, storer.ErrStop) {
		return Commit{}, fmt.Errorf(historyReadFailureTemplateConstant, trimmedRepositoryPath, iterationError)
	}

	if matchedCommit == nil {
		return Commit{}, CommitNotFoundError{RepositoryPath: trimmedRepositoryPath, MessageFragment: messageFragment}
	}

	return Commit{Hash: matchedCommit.Hash.String(), Message: commitSubject(matchedCommit.Message)}, nil
}

func commitSubject(message string) string {
	subject, _, _ := strings.Cut(strings.TrimSpace(message), commitSubjectSeparatorConstant)
	return strings.TrimSpace(subject)
}
