package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationCommandTimeout   = 2 * time.Minute
	integrationGitTimeout       = 30 * time.Second
	integrationTokenConstant    = "integration-token"
	integrationBranchConstant   = "main"
	integrationRemoteDirectory  = "remote.git"
	integrationCloneDirectory   = "checkout"
	integrationCommitterName    = "Release Bot"
	integrationCommitterEmail   = "bot@example.com"
	integrationTagFileName      = "VERSION"
	integrationBaseURLVariable  = "RELCLEAN_GITHUB_BASE_URL"
	integrationTokenVariable    = "ELECTRON_GITHUB_TOKEN"
	integrationNotFoundResponse = "Not Found"
)

type integrationResult struct {
	output   string
	exitCode int
}

func repositoryRootDirectory(testInstance *testing.T) string {
	testInstance.Helper()
	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(currentWorkingDirectory)
}

func runIntegrationCommand(testInstance *testing.T, environment map[string]string, arguments ...string) integrationResult {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "go", append([]string{"run", "."}, arguments...)...)
	command.Dir = repositoryRootDirectory(testInstance)
	commandEnvironment := append([]string{}, os.Environ()...)
	for environmentName, environmentValue := range environment {
		commandEnvironment = append(commandEnvironment, environmentName+"="+environmentValue)
	}
	command.Env = commandEnvironment

	outputBytes, runError := command.CombinedOutput()
	result := integrationResult{output: string(outputBytes)}
	if runError != nil {
		var exitError *exec.ExitError
		require.ErrorAs(testInstance, runError, &exitError, result.output)
		result.exitCode = exitError.ExitCode()
	}
	return result
}

func filterStructuredOutput(rawOutput string) string {
	lines := strings.Split(rawOutput, "\n")
	var filtered []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "{") {
			continue
		}
		filtered = append(filtered, line)
	}
	if len(filtered) == 0 {
		return ""
	}
	return strings.Join(filtered, "\n") + "\n"
}

func requireGit(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}
}

func runGit(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationGitTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "git", arguments...)
	command.Dir = workingDirectory
	command.Env = append(append([]string{}, os.Environ()...), "GIT_TERMINAL_PROMPT=0")
	outputBytes, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(outputBytes))
	return strings.TrimSpace(string(outputBytes))
}

// createReleaseCheckout builds a bare remote and a clone whose last pushed commit is "Bump <tag>".
func createReleaseCheckout(testInstance *testing.T, tag string, commitMessages ...string) (string, string) {
	testInstance.Helper()

	workspace := testInstance.TempDir()
	remotePath := filepath.Join(workspace, integrationRemoteDirectory)
	clonePath := filepath.Join(workspace, integrationCloneDirectory)
	require.NoError(testInstance, os.MkdirAll(clonePath, 0o755))

	runGit(testInstance, workspace, "init", "--bare", remotePath)
	runGit(testInstance, remotePath, "symbolic-ref", "HEAD", "refs/heads/"+integrationBranchConstant)

	runGit(testInstance, clonePath, "init")
	runGit(testInstance, clonePath, "symbolic-ref", "HEAD", "refs/heads/"+integrationBranchConstant)
	runGit(testInstance, clonePath, "config", "user.name", integrationCommitterName)
	runGit(testInstance, clonePath, "config", "user.email", integrationCommitterEmail)
	runGit(testInstance, clonePath, "config", "commit.gpgsign", "false")

	for _, message := range append(commitMessages, "Bump "+tag) {
		require.NoError(testInstance, os.WriteFile(filepath.Join(clonePath, integrationTagFileName), []byte(message+"\n"), 0o644))
		runGit(testInstance, clonePath, "add", integrationTagFileName)
		runGit(testInstance, clonePath, "commit", "-m", message)
	}

	runGit(testInstance, clonePath, "remote", "add", "origin", remotePath)
	runGit(testInstance, clonePath, "push", "origin", "HEAD:"+integrationBranchConstant)
	return clonePath, remotePath
}

func remoteHeadSubject(testInstance *testing.T, remotePath string) string {
	testInstance.Helper()
	return runGit(testInstance, remotePath, "log", "-1", "--format=%s", integrationBranchConstant)
}

type fakeRelease struct {
	TagName string
	Draft   bool
}

type fakeGitHubServer struct {
	mutex          sync.Mutex
	releases       map[string]fakeRelease
	requests       []string
	authorizations []string
	server         *httptest.Server
}

// newFakeGitHubServer serves releases keyed by "<owner>/<repository>/<id>" and accepts every tag deletion.
func newFakeGitHubServer(testInstance *testing.T, releases map[string]fakeRelease) *fakeGitHubServer {
	testInstance.Helper()

	fake := &fakeGitHubServer{releases: releases}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.handle))
	testInstance.Cleanup(fake.server.Close)
	return fake
}

func (fake *fakeGitHubServer) handle(responseWriter http.ResponseWriter, request *http.Request) {
	fake.mutex.Lock()
	fake.requests = append(fake.requests, request.Method+" "+request.URL.Path)
	fake.authorizations = append(fake.authorizations, request.Header.Get("Authorization"))
	fake.mutex.Unlock()

	pathSegments := strings.Split(strings.Trim(request.URL.Path, "/"), "/")
	switch {
	case len(pathSegments) == 5 && pathSegments[0] == "repos" && pathSegments[3] == "releases":
		releaseKey := strings.Join([]string{pathSegments[1], pathSegments[2], pathSegments[4]}, "/")
		release, found := fake.releases[releaseKey]
		if !found {
			writeJSON(responseWriter, http.StatusNotFound, map[string]any{"message": integrationNotFoundResponse})
			return
		}
		if request.Method == http.MethodDelete {
			responseWriter.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(responseWriter, http.StatusOK, map[string]any{"id": json.Number(pathSegments[4]), "tag_name": release.TagName, "draft": release.Draft})
	case request.Method == http.MethodDelete && len(pathSegments) >= 6 && pathSegments[3] == "git" && pathSegments[5] == "tags":
		responseWriter.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(responseWriter, http.StatusNotFound, map[string]any{"message": integrationNotFoundResponse})
	}
}

func (fake *fakeGitHubServer) recordedRequests() []string {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return append([]string(nil), fake.requests...)
}

func (fake *fakeGitHubServer) recordedAuthorizations() []string {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return append([]string(nil), fake.authorizations...)
}

func (fake *fakeGitHubServer) environment() map[string]string {
	return map[string]string{
		integrationBaseURLVariable: fake.server.URL,
		integrationTokenVariable:   integrationTokenConstant,
	}
}

func writeJSON(responseWriter http.ResponseWriter, statusCode int, payload any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)
	_ = json.NewEncoder(responseWriter).Encode(payload)
}
