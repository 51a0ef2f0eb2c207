// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// RepositoryManager shells out to git for branch resolution, reverts, and
// pushes. HistorySearcher reads commit history in process through go-git so
// commit messages never have to be parsed out of formatted git log output.
package gitrepo
