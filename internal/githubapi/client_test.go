package githubapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-github/v75/github"
	"github.com/stretchr/testify/require"

	"github.com/temirov/relclean/internal/githubapi"
)

const (
	testOwnerConstant            = "electron"
	testRepositoryConstant       = "nightlies"
	testTokenConstant            = "secret-token"
	testReleaseIDConstant        = int64(123)
	testTagNameConstant          = "v1.0.0-nightly.20260101"
	testReleasePathConstant      = "/repos/electron/nightlies/releases/123"
	testTagReferencePathConstant = "/repos/electron/nightlies/git/refs/tags/v1.0.0-nightly.20260101"
)

type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
}

type fakeGitHubServer struct {
	mutex    sync.Mutex
	requests []recordedRequest
	server   *httptest.Server
}

func newFakeGitHubServer(testInstance *testing.T, handler http.HandlerFunc) *fakeGitHubServer {
	testInstance.Helper()
	fake := &fakeGitHubServer{}
	fake.server = httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		fake.mutex.Lock()
		fake.requests = append(fake.requests, recordedRequest{
			Method:        request.Method,
			Path:          request.URL.Path,
			Authorization: request.Header.Get("Authorization"),
		})
		fake.mutex.Unlock()
		handler(responseWriter, request)
	}))
	testInstance.Cleanup(fake.server.Close)
	return fake
}

func (fake *fakeGitHubServer) recorded() []recordedRequest {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return append([]recordedRequest(nil), fake.requests...)
}

func newTestClient(testInstance *testing.T, fake *fakeGitHubServer, token string) *githubapi.Client {
	testInstance.Helper()
	client, creationError := githubapi.NewClient(githubapi.ClientOptions{
		Token:      token,
		BaseURL:    fake.server.URL,
		HTTPClient: fake.server.Client(),
	})
	require.NoError(testInstance, creationError)
	return client
}

func writeJSON(responseWriter http.ResponseWriter, statusCode int, payload any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)
	_ = json.NewEncoder(responseWriter).Encode(payload)
}

func TestGetReleaseReturnsMetadata(testInstance *testing.T) {
	testCases := []struct {
		name         string
		token        string
		draft        bool
		expectedAuth string
	}{
		{name: "draft_authenticated", token: testTokenConstant, draft: true, expectedAuth: "Bearer " + testTokenConstant},
		{name: "published_unauthenticated", draft: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fake := newFakeGitHubServer(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
				writeJSON(responseWriter, http.StatusOK, map[string]any{
					"id":       testReleaseIDConstant,
					"tag_name": testTagNameConstant,
					"name":     "nightly",
					"draft":    testCase.draft,
				})
			})
			client := newTestClient(testInstance, fake, testCase.token)

			release, fetchError := client.GetRelease(context.Background(), githubapi.ReleaseReference{
				Owner:      testOwnerConstant,
				Repository: testRepositoryConstant,
				ReleaseID:  testReleaseIDConstant,
			})
			require.NoError(testInstance, fetchError)
			require.Equal(testInstance, githubapi.Release{ID: testReleaseIDConstant, TagName: testTagNameConstant, Name: "nightly", Draft: testCase.draft}, release)

			requests := fake.recorded()
			require.Len(testInstance, requests, 1)
			require.Equal(testInstance, http.MethodGet, requests[0].Method)
			require.Equal(testInstance, testReleasePathConstant, requests[0].Path)
			require.Equal(testInstance, testCase.expectedAuth, requests[0].Authorization)
		})
	}
}

func TestGetReleaseWrapsAPIErrors(testInstance *testing.T) {
	fake := newFakeGitHubServer(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		writeJSON(responseWriter, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})
	client := newTestClient(testInstance, fake, testTokenConstant)

	_, fetchError := client.GetRelease(context.Background(), githubapi.ReleaseReference{
		Owner:      testOwnerConstant,
		Repository: testRepositoryConstant,
		ReleaseID:  testReleaseIDConstant,
	})

	var apiError githubapi.APIError
	require.ErrorAs(testInstance, fetchError, &apiError)
	require.Equal(testInstance, http.StatusNotFound, apiError.StatusCode)
	require.Equal(testInstance, githubapi.OperationName("GetRelease"), apiError.Operation)
	require.Equal(testInstance, testRepositoryConstant, apiError.Repository)
	require.Contains(testInstance, apiError.Error(), "status 404")

	var githubError *github.ErrorResponse
	require.ErrorAs(testInstance, fetchError, &githubError)
}

func TestDeleteReleaseIssuesDelete(testInstance *testing.T) {
	fake := newFakeGitHubServer(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(testInstance, fake, testTokenConstant)

	deleteError := client.DeleteRelease(context.Background(), githubapi.ReleaseReference{
		Owner:      testOwnerConstant,
		Repository: testRepositoryConstant,
		ReleaseID:  testReleaseIDConstant,
	})
	require.NoError(testInstance, deleteError)

	requests := fake.recorded()
	require.Len(testInstance, requests, 1)
	require.Equal(testInstance, http.MethodDelete, requests[0].Method)
	require.Equal(testInstance, testReleasePathConstant, requests[0].Path)
}

func TestDeleteTagTargetsTagReference(testInstance *testing.T) {
	testCases := []struct {
		name           string
		statusCode     int
		expectAPIError bool
	}{
		{name: "deleted", statusCode: http.StatusNoContent},
		{name: "unprocessable", statusCode: http.StatusUnprocessableEntity, expectAPIError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fake := newFakeGitHubServer(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
				if testCase.statusCode == http.StatusNoContent {
					responseWriter.WriteHeader(http.StatusNoContent)
					return
				}
				writeJSON(responseWriter, testCase.statusCode, map[string]string{"message": "Reference does not exist"})
			})
			client := newTestClient(testInstance, fake, testTokenConstant)

			deleteError := client.DeleteTag(context.Background(), githubapi.TagReference{
				Owner:      testOwnerConstant,
				Repository: testRepositoryConstant,
				TagName:    testTagNameConstant,
			})

			requests := fake.recorded()
			require.Len(testInstance, requests, 1)
			require.Equal(testInstance, http.MethodDelete, requests[0].Method)
			require.Equal(testInstance, testTagReferencePathConstant, requests[0].Path)

			if testCase.expectAPIError {
				var apiError githubapi.APIError
				require.ErrorAs(testInstance, deleteError, &apiError)
				require.Equal(testInstance, testCase.statusCode, apiError.StatusCode)
				require.Equal(testInstance, githubapi.OperationName("DeleteTagReference"), apiError.Operation)
				return
			}
			require.NoError(testInstance, deleteError)
		})
	}
}

func TestClientValidatesInputsWithoutRequests(testInstance *testing.T) {
	fake := newFakeGitHubServer(testInstance, func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(testInstance, fake, "")

	testCases := []struct {
		name              string
		invoke            func() error
		expectedFieldName string
	}{
		{
			name: "missing_owner",
			invoke: func() error {
				_, fetchError := client.GetRelease(context.Background(), githubapi.ReleaseReference{Repository: testRepositoryConstant, ReleaseID: 1})
				return fetchError
			},
			expectedFieldName: "owner",
		},
		{
			name: "non_positive_release",
			invoke: func() error {
				return client.DeleteRelease(context.Background(), githubapi.ReleaseReference{Owner: testOwnerConstant, Repository: testRepositoryConstant})
			},
			expectedFieldName: "release_id",
		},
		{
			name: "missing_tag",
			invoke: func() error {
				return client.DeleteTag(context.Background(), githubapi.TagReference{Owner: testOwnerConstant, Repository: testRepositoryConstant, TagName: " "})
			},
			expectedFieldName: "tag_name",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var inputError githubapi.InvalidInputError
			require.ErrorAs(testInstance, testCase.invoke(), &inputError)
			require.Equal(testInstance, testCase.expectedFieldName, inputError.FieldName)
		})
	}

	require.Empty(testInstance, fake.recorded())
}

func TestNewClientRejectsInvalidBaseURL(testInstance *testing.T) {
	_, creationError := githubapi.NewClient(githubapi.ClientOptions{BaseURL: "http://[::1"})
	var inputError githubapi.InvalidInputError
	require.ErrorAs(testInstance, creationError, &inputError)
	require.Equal(testInstance, "base_url", inputError.FieldName)
}
