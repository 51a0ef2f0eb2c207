package githubauth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// EnvContinuousIntegration marks CI runners, where credentials come from the runner itself.
	EnvContinuousIntegration = "CI"

	environmentFileLoadFailureTemplateConstant = "unable to load environment file %s: %w"
)

// EnvironmentFileStatus describes the outcome of LoadEnvironmentFile.
type EnvironmentFileStatus int

// Possible EnvironmentFileStatus values.
const (
	EnvironmentFileLoaded EnvironmentFileStatus = iota
	EnvironmentFileMissing
	EnvironmentFileSkipped
)

// LoadEnvironmentFile reads KEY=VALUE pairs from filePath into the process environment.
// Variables that are already set keep their values. Loading is skipped when CI is set or
// when no path is configured, and a missing file is not an error.
func LoadEnvironmentFile(filePath string) (EnvironmentFileStatus, error) {
	trimmedFilePath := strings.TrimSpace(filePath)
	if len(trimmedFilePath) == 0 {
		return EnvironmentFileSkipped, nil
	}
	if _, runningInContinuousIntegration := os.LookupEnv(EnvContinuousIntegration); runningInContinuousIntegration {
		return EnvironmentFileSkipped, nil
	}

	if loadError := godotenv.Load(trimmedFilePath); loadError != nil {
		if errors.Is(loadError, os.ErrNotExist) {
			return EnvironmentFileMissing, nil
		}
		return EnvironmentFileMissing, fmt.Errorf(environmentFileLoadFailureTemplateConstant, trimmedFilePath, loadError)
	}
	return EnvironmentFileLoaded, nil
}
