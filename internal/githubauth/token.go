package githubauth

import (
	"os"
	"strings"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var fallbackTokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// TokenSource reports where a resolved token was found.
type TokenSource struct {
	VariableName string
	Token        string
}

// ResolveToken returns the first non-empty token, checking preferredVariable before the
// GH_TOKEN, GITHUB_TOKEN and GITHUB_API_TOKEN fallbacks. The provided environment map wins
// over the process environment for every name.
func ResolveToken(preferredVariable string, environment map[string]string) (TokenSource, bool) {
	candidateNames := tokenPreference(preferredVariable)
	for _, variableName := range candidateNames {
		if value, found := lookup(environment, variableName); found {
			return TokenSource{VariableName: variableName, Token: value}, true
		}
	}
	for _, variableName := range candidateNames {
		if value, found := os.LookupEnv(variableName); found {
			value = strings.TrimSpace(value)
			if len(value) > 0 {
				return TokenSource{VariableName: variableName, Token: value}, true
			}
		}
	}
	return TokenSource{}, false
}

func tokenPreference(preferredVariable string) []string {
	trimmedPreferredVariable := strings.TrimSpace(preferredVariable)
	if len(trimmedPreferredVariable) == 0 {
		return fallbackTokenPreference
	}
	candidateNames := []string{trimmedPreferredVariable}
	for _, variableName := range fallbackTokenPreference {
		if variableName != trimmedPreferredVariable {
			candidateNames = append(candidateNames, variableName)
		}
	}
	return candidateNames
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
