package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tildeSymbolConstant                   = "~"
	tildeForwardSlashPrefixConstant       = "~/"
	repositoryPathRequiredMessageConstant = "repository path required"
	homeDirectoryFailureTemplateConstant  = "unable to expand %s: %w"
	absolutePathFailureTemplateConstant   = "unable to resolve %s: %w"
	notDirectoryTemplateConstant          = "%s is not a directory"
)

// ErrRepositoryPathRequired indicates an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// RepositoryPathResolver turns user-supplied checkout paths into absolute directories.
type RepositoryPathResolver struct {
	homeDirectoryProvider HomeDirectoryProvider
}

// NewRepositoryPathResolver constructs a resolver using the operating system home lookup.
func NewRepositoryPathResolver() *RepositoryPathResolver {
	return NewRepositoryPathResolverWithProvider(os.UserHomeDir)
}

// NewRepositoryPathResolverWithProvider constructs a resolver with a custom home lookup.
func NewRepositoryPathResolverWithProvider(provider HomeDirectoryProvider) *RepositoryPathResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &RepositoryPathResolver{homeDirectoryProvider: provider}
}

// Resolve trims the candidate, expands a leading tilde, and returns the cleaned absolute path
// of an existing directory.
func (resolver *RepositoryPathResolver) Resolve(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return "", ErrRepositoryPathRequired
	}

	expandedPath, expansionError := resolver.expandHome(trimmedPath)
	if expansionError != nil {
		return "", fmt.Errorf(homeDirectoryFailureTemplateConstant, trimmedPath, expansionError)
	}

	absolutePath, absoluteError := filepath.Abs(expandedPath)
	if absoluteError != nil {
		return "", fmt.Errorf(absolutePathFailureTemplateConstant, trimmedPath, absoluteError)
	}

	pathInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		return "", fmt.Errorf(absolutePathFailureTemplateConstant, trimmedPath, statError)
	}
	if !pathInfo.IsDir() {
		return "", fmt.Errorf(notDirectoryTemplateConstant, absolutePath)
	}

	return filepath.Clean(absolutePath), nil
}

func (resolver *RepositoryPathResolver) expandHome(candidatePath string) (string, error) {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath, nil
	}

	relativePath := ""
	switch {
	case candidatePath == tildeSymbolConstant:
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		relativePath = strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant)
	case strings.HasPrefix(candidatePath, tildeSymbolConstant+string(os.PathSeparator)):
		relativePath = strings.TrimPrefix(candidatePath, tildeSymbolConstant+string(os.PathSeparator))
	default:
		// ~user forms are left to the shell.
		return candidatePath, nil
	}

	homeDirectory, homeError := resolver.homeDirectoryProvider()
	if homeError != nil {
		return "", homeError
	}
	return filepath.Join(homeDirectory, relativePath), nil
}
