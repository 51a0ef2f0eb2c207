package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
)

const (
	ownerFieldNameConstant                  = "owner"
	repositoryFieldNameConstant             = "repository"
	releaseIdentifierFieldNameConstant      = "release_id"
	tagNameFieldNameConstant                = "tag_name"
	baseURLFieldNameConstant                = "base_url"
	requiredValueMessageConstant            = "value required"
	positiveValueMessageConstant            = "must be positive"
	invalidURLMessageTemplateConstant       = "invalid url: %v"
	invalidInputErrorTemplateConstant       = "%s: %s"
	apiErrorTemplateConstant                = "%s %s/%s failed: %v"
	apiErrorWithStatusTemplateConstant      = "%s %s/%s failed with status %d: %v"
	tagReferenceTemplateConstant            = "tags/%s"
	urlPathSeparatorConstant                = "/"
	getReleaseOperationNameConstant         = OperationName("GetRelease")
	deleteReleaseOperationNameConstant      = OperationName("DeleteRelease")
	deleteTagReferenceOperationNameConstant = OperationName("DeleteTagReference")
)

// OperationName describes a named GitHub API call issued by the client.
type OperationName string

// ReleaseReference identifies a release by numeric id.
type ReleaseReference struct {
	Owner      string
	Repository string
	ReleaseID  int64
}

// TagReference identifies a tag by name.
type TagReference struct {
	Owner      string
	Repository string
	TagName    string
}

// Release contains the release metadata needed to decide whether it can be deleted.
type Release struct {
	ID      int64
	TagName string
	Name    string
	Draft   bool
}

// ClientOptions configures the GitHub API client.
type ClientOptions struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// APIError wraps a failed GitHub API request.
type APIError struct {
	Operation  OperationName
	Owner      string
	Repository string
	StatusCode int
	Cause      error
}

// Error describes the failed request.
func (apiError APIError) Error() string {
	if apiError.StatusCode > 0 {
		return fmt.Sprintf(apiErrorWithStatusTemplateConstant, apiError.Operation, apiError.Owner, apiError.Repository, apiError.StatusCode, apiError.Cause)
	}
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.Operation, apiError.Owner, apiError.Repository, apiError.Cause)
}

// Unwrap exposes the underlying go-github error.
func (apiError APIError) Unwrap() error {
	return apiError.Cause
}

// Client performs release and reference operations against the GitHub REST API.
type Client struct {
	githubClient *github.Client
}

// NewClient constructs a Client. An empty token yields an unauthenticated client.
func NewClient(options ClientOptions) (*Client, error) {
	githubClient := github.NewClient(options.HTTPClient)

	trimmedToken := strings.TrimSpace(options.Token)
	if len(trimmedToken) > 0 {
		githubClient = githubClient.WithAuthToken(trimmedToken)
	}

	trimmedBaseURL := strings.TrimSpace(options.BaseURL)
	if len(trimmedBaseURL) > 0 {
		if !strings.HasSuffix(trimmedBaseURL, urlPathSeparatorConstant) {
			trimmedBaseURL += urlPathSeparatorConstant
		}
		parsedBaseURL, parseError := url.Parse(trimmedBaseURL)
		if parseError != nil {
			return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: fmt.Sprintf(invalidURLMessageTemplateConstant, parseError)}
		}
		githubClient.BaseURL = parsedBaseURL
	}

	return &Client{githubClient: githubClient}, nil
}

// GetRelease fetches release metadata.
func (client *Client) GetRelease(executionContext context.Context, reference ReleaseReference) (Release, error) {
	if validationError := validateReleaseReference(reference); validationError != nil {
		return Release{}, validationError
	}

	release, response, requestError := client.githubClient.Repositories.GetRelease(executionContext, reference.Owner, reference.Repository, reference.ReleaseID)
	if requestError != nil {
		return Release{}, newAPIError(getReleaseOperationNameConstant, reference.Owner, reference.Repository, response, requestError)
	}

	return Release{
		ID:      release.GetID(),
		TagName: release.GetTagName(),
		Name:    release.GetName(),
		Draft:   release.GetDraft(),
	}, nil
}

// DeleteRelease removes the release entry. The underlying tag is left untouched.
func (client *Client) DeleteRelease(executionContext context.Context, reference ReleaseReference) error {
	if validationError := validateReleaseReference(reference); validationError != nil {
		return validationError
	}

	response, requestError := client.githubClient.Repositories.DeleteRelease(executionContext, reference.Owner, reference.Repository, reference.ReleaseID)
	if requestError != nil {
		return newAPIError(deleteReleaseOperationNameConstant, reference.Owner, reference.Repository, response, requestError)
	}
	return nil
}

// DeleteTag removes the refs/tags/<tag> reference.
func (client *Client) DeleteTag(executionContext context.Context, reference TagReference) error {
	if validationError := validateRepository(reference.Owner, reference.Repository); validationError != nil {
		return validationError
	}
	trimmedTagName := strings.TrimSpace(reference.TagName)
	if len(trimmedTagName) == 0 {
		return InvalidInputError{FieldName: tagNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	response, requestError := client.githubClient.Git.DeleteRef(executionContext, reference.Owner, reference.Repository, fmt.Sprintf(tagReferenceTemplateConstant, trimmedTagName))
	if requestError != nil {
		return newAPIError(deleteTagReferenceOperationNameConstant, reference.Owner, reference.Repository, response, requestError)
	}
	return nil
}

func validateReleaseReference(reference ReleaseReference) error {
	if validationError := validateRepository(reference.Owner, reference.Repository); validationError != nil {
		return validationError
	}
	if reference.ReleaseID <= 0 {
		return InvalidInputError{FieldName: releaseIdentifierFieldNameConstant, Message: positiveValueMessageConstant}
	}
	return nil
}

func validateRepository(owner string, repository string) error {
	if len(strings.TrimSpace(owner)) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(repository)) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func newAPIError(operation OperationName, owner string, repository string, response *github.Response, cause error) APIError {
	apiError := APIError{Operation: operation, Owner: owner, Repository: repository, Cause: cause}
	if response != nil && response.Response != nil {
		apiError.StatusCode = response.StatusCode
	}
	return apiError
}
