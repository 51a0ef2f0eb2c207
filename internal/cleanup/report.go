package cleanup

import (
	"fmt"
	"io"
)

const (
	successMarkerConstant                  = "✓"
	failureMarkerConstant                  = "✗"
	shortHashLengthConstant                = 7
	draftDeletedTemplateConstant           = "%s deleted draft %d from %s/%s\n"
	draftPlannedTemplateConstant           = "%s would delete draft %d from %s/%s\n"
	draftFailedTemplateConstant            = "%s could not delete draft release from %s/%s: %v\n"
	tagDeletedTemplateConstant             = "%s deleted tag %s from %s/%s\n"
	tagPlannedTemplateConstant             = "%s would delete tag %s from %s/%s\n"
	tagFailedTemplateConstant              = "%s could not delete tag %s from %s/%s: %v\n"
	revertPushedTemplateConstant           = "%s reverted %s (%s) and pushed to %s/%s\n"
	revertPlannedTemplateConstant          = "%s would revert %s (%s) and push to %s/%s\n"
	revertNotPushedTemplateConstant        = "%s reverted %s (%s) but could not push to %s/%s\n"
	cleanupCompleteTemplateConstant        = "%s failed release artifact cleanup complete\n"
	cleanupPlannedCompleteTemplateConstant = "%s failed release artifact cleanup planned (dry run)\n"
)

// Reporter prints one line per cleanup step.
type Reporter struct {
	output io.Writer
}

// NewReporter constructs a Reporter writing to output.
func NewReporter(output io.Writer) *Reporter {
	return &Reporter{output: output}
}

// Report writes the outcome of every step that ran. Fatal errors are left to the caller;
// runError only suppresses the completion line.
func (reporter *Reporter) Report(result Result, runError error) {
	if reporter == nil || reporter.output == nil {
		return
	}

	if result.Draft.Attempted {
		reporter.reportDraft(result.Draft, result.DryRun)
	}
	for _, tagOutcome := range result.Tags {
		reporter.reportTag(result.Tag, tagOutcome, result.DryRun)
	}
	reporter.reportRevert(result.Revert, result.DryRun, runError)

	if runError != nil {
		return
	}
	if result.DryRun {
		fmt.Fprintf(reporter.output, cleanupPlannedCompleteTemplateConstant, successMarkerConstant)
		return
	}
	fmt.Fprintf(reporter.output, cleanupCompleteTemplateConstant, successMarkerConstant)
}

func (reporter *Reporter) reportDraft(outcome DraftOutcome, dryRun bool) {
	switch {
	case outcome.Deleted && dryRun:
		fmt.Fprintf(reporter.output, draftPlannedTemplateConstant, successMarkerConstant, outcome.ReleaseID, outcome.Owner, outcome.Repository)
	case outcome.Deleted:
		fmt.Fprintf(reporter.output, draftDeletedTemplateConstant, successMarkerConstant, outcome.ReleaseID, outcome.Owner, outcome.Repository)
	default:
		fmt.Fprintf(reporter.output, draftFailedTemplateConstant, failureMarkerConstant, outcome.Owner, outcome.Repository, outcome.Error)
	}
}

func (reporter *Reporter) reportTag(tag string, outcome TagOutcome, dryRun bool) {
	switch {
	case outcome.Deleted && dryRun:
		fmt.Fprintf(reporter.output, tagPlannedTemplateConstant, successMarkerConstant, tag, outcome.Owner, outcome.Repository)
	case outcome.Deleted:
		fmt.Fprintf(reporter.output, tagDeletedTemplateConstant, successMarkerConstant, tag, outcome.Owner, outcome.Repository)
	default:
		fmt.Fprintf(reporter.output, tagFailedTemplateConstant, failureMarkerConstant, tag, outcome.Owner, outcome.Repository, outcome.Error)
	}
}

func (reporter *Reporter) reportRevert(outcome RevertOutcome, dryRun bool, runError error) {
	shortHash := abbreviateHash(outcome.Commit.Hash)
	switch {
	case outcome.Pushed:
		fmt.Fprintf(reporter.output, revertPushedTemplateConstant, successMarkerConstant, shortHash, outcome.Commit.Message, outcome.RemoteName, outcome.Branch)
	case outcome.Reverted:
		fmt.Fprintf(reporter.output, revertNotPushedTemplateConstant, failureMarkerConstant, shortHash, outcome.Commit.Message, outcome.RemoteName, outcome.Branch)
	case dryRun && runError == nil && len(outcome.Commit.Hash) > 0:
		fmt.Fprintf(reporter.output, revertPlannedTemplateConstant, successMarkerConstant, shortHash, outcome.Commit.Message, outcome.RemoteName, outcome.Branch)
	}
}

func abbreviateHash(hash string) string {
	if len(hash) <= shortHashLengthConstant {
		return hash
	}
	return hash[:shortHashLengthConstant]
}
