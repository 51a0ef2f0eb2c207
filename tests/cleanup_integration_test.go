package tests

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	integrationSubtestNameTemplateConstant = "%d_%s"
	integrationStableTagConstant           = "v1.0.0"
	integrationNightlyTagConstant          = "v2.0.0-nightly.20260101"
	integrationCompleteLineConstant        = "✓ failed release artifact cleanup complete\n"
)

func TestCleanupIntegrationRemovesReleaseArtifacts(testInstance *testing.T) {
	requireGit(testInstance)

	testCases := []struct {
		name             string
		tag              string
		releaseKey       string
		expectedRequests []string
		expectedLines    []string
	}{
		{
			name:       "stable_release",
			tag:        integrationStableTagConstant,
			releaseKey: "electron/electron/42",
			expectedRequests: []string{
				"GET /repos/electron/electron/releases/42",
				"DELETE /repos/electron/electron/releases/42",
				"DELETE /repos/electron/electron/git/refs/tags/v1.0.0",
			},
			expectedLines: []string{
				"✓ deleted draft 42 from electron/electron\n",
				"✓ deleted tag v1.0.0 from electron/electron\n",
			},
		},
		{
			name:       "nightly_release",
			tag:        integrationNightlyTagConstant,
			releaseKey: "electron/nightlies/42",
			expectedRequests: []string{
				"GET /repos/electron/nightlies/releases/42",
				"DELETE /repos/electron/nightlies/releases/42",
				"DELETE /repos/electron/nightlies/git/refs/tags/v2.0.0-nightly.20260101",
				"DELETE /repos/electron/electron/git/refs/tags/v2.0.0-nightly.20260101",
			},
			expectedLines: []string{
				"✓ deleted draft 42 from electron/nightlies\n",
				"✓ deleted tag v2.0.0-nightly.20260101 from electron/nightlies\n",
				"✓ deleted tag v2.0.0-nightly.20260101 from electron/electron\n",
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			clonePath, remotePath := createReleaseCheckout(testInstance, testCase.tag, "Initial commit")
			fake := newFakeGitHubServer(testInstance, map[string]fakeRelease{
				testCase.releaseKey: {TagName: testCase.tag, Draft: true},
			})

			result := runIntegrationCommand(testInstance, fake.environment(), "--tag", testCase.tag, "--releaseId", "42", "--repository", clonePath)
			require.Equal(testInstance, 0, result.exitCode, result.output)

			require.ElementsMatch(testInstance, testCase.expectedRequests, fake.recordedRequests())
			for _, authorization := range fake.recordedAuthorizations() {
				require.Equal(testInstance, "Bearer "+integrationTokenConstant, authorization)
			}

			filteredOutput := filterStructuredOutput(result.output)
			for _, expectedLine := range testCase.expectedLines {
				require.Contains(testInstance, filteredOutput, expectedLine)
			}
			require.Contains(testInstance, filteredOutput, "(Bump "+testCase.tag+") and pushed to origin/main\n")
			require.Contains(testInstance, filteredOutput, integrationCompleteLineConstant)

			require.Equal(testInstance, fmt.Sprintf("Revert \"Bump %s\"", testCase.tag), remoteHeadSubject(testInstance, remotePath))
		})
	}
}

func TestCleanupIntegrationRevertsWhenDraftIsKept(testInstance *testing.T) {
	requireGit(testInstance)

	testCases := []struct {
		name              string
		releaseArguments  []string
		releases          map[string]fakeRelease
		expectedRequests  []string
		expectedFailure   string
		unexpectedSnippet string
	}{
		{
			name:              "no_release_identifier",
			releases:          map[string]fakeRelease{},
			expectedRequests:  []string{},
			unexpectedSnippet: "draft",
		},
		{
			name:             "published_release",
			releaseArguments: []string{"--releaseId", "7"},
			releases:         map[string]fakeRelease{"electron/electron/7": {TagName: integrationStableTagConstant, Draft: false}},
			expectedRequests: []string{"GET /repos/electron/electron/releases/7"},
			expectedFailure:  "✗ could not delete draft release from electron/electron: release 7 in electron/electron is published",
		},
		{
			name:             "missing_release",
			releaseArguments: []string{"--releaseId", "8"},
			releases:         map[string]fakeRelease{},
			expectedRequests: []string{"GET /repos/electron/electron/releases/8"},
			expectedFailure:  "✗ could not delete draft release from electron/electron: GetRelease electron/electron failed with status 404",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(integrationSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			clonePath, remotePath := createReleaseCheckout(testInstance, integrationStableTagConstant, "Initial commit")
			fake := newFakeGitHubServer(testInstance, testCase.releases)

			arguments := append([]string{"--tag", integrationStableTagConstant, "--repository", clonePath}, testCase.releaseArguments...)
			result := runIntegrationCommand(testInstance, fake.environment(), arguments...)
			require.Equal(testInstance, 0, result.exitCode, result.output)

			require.ElementsMatch(testInstance, testCase.expectedRequests, fake.recordedRequests())
			filteredOutput := filterStructuredOutput(result.output)
			if len(testCase.expectedFailure) > 0 {
				require.Contains(testInstance, filteredOutput, testCase.expectedFailure)
			}
			if len(testCase.unexpectedSnippet) > 0 {
				require.NotContains(testInstance, filteredOutput, testCase.unexpectedSnippet)
			}
			require.NotContains(testInstance, filteredOutput, "deleted tag")
			require.Contains(testInstance, filteredOutput, integrationCompleteLineConstant)
			require.Equal(testInstance, "Revert \"Bump v1.0.0\"", remoteHeadSubject(testInstance, remotePath))
		})
	}
}

func TestCleanupIntegrationFailsWithoutBumpCommit(testInstance *testing.T) {
	requireGit(testInstance)

	clonePath, remotePath := createReleaseCheckout(testInstance, "v0.9.0", "Initial commit")
	fake := newFakeGitHubServer(testInstance, map[string]fakeRelease{})

	result := runIntegrationCommand(testInstance, fake.environment(), "--tag", integrationStableTagConstant, "--repository", clonePath)
	require.NotEqual(testInstance, 0, result.exitCode, result.output)
	require.Contains(testInstance, result.output, "unable to locate commit matching \"Bump v1.0.0\"")
	require.NotContains(testInstance, result.output, integrationCompleteLineConstant)
	require.Equal(testInstance, "Bump v0.9.0", remoteHeadSubject(testInstance, remotePath))
}

func TestCleanupIntegrationDryRunLeavesRemoteUntouched(testInstance *testing.T) {
	requireGit(testInstance)

	clonePath, remotePath := createReleaseCheckout(testInstance, integrationNightlyTagConstant, "Initial commit")
	fake := newFakeGitHubServer(testInstance, map[string]fakeRelease{
		"electron/nightlies/42": {TagName: integrationNightlyTagConstant, Draft: true},
	})

	result := runIntegrationCommand(testInstance, fake.environment(), "--tag", integrationNightlyTagConstant, "--releaseId", "42", "--repository", clonePath, "--dry-run")
	require.Equal(testInstance, 0, result.exitCode, result.output)

	require.Equal(testInstance, []string{"GET /repos/electron/nightlies/releases/42"}, fake.recordedRequests())
	filteredOutput := filterStructuredOutput(result.output)
	require.Contains(testInstance, filteredOutput, "✓ would delete draft 42 from electron/nightlies\n")
	require.Contains(testInstance, filteredOutput, "✓ would delete tag v2.0.0-nightly.20260101 from electron/electron\n")
	require.Contains(testInstance, filteredOutput, "✓ failed release artifact cleanup planned (dry run)\n")
	require.Equal(testInstance, "Bump "+integrationNightlyTagConstant, remoteHeadSubject(testInstance, remotePath))
}

func TestCleanupIntegrationRequiresTag(testInstance *testing.T) {
	result := runIntegrationCommand(testInstance, nil, "--releaseId", "42")
	require.NotEqual(testInstance, 0, result.exitCode, result.output)
	require.Contains(testInstance, result.output, "required flag(s) \"tag\" not set")
}
