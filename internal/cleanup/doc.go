// Package cleanup removes the artifacts left behind by a failed release.
//
// Service deletes the draft GitHub release and its tags when a release id is
// known, then reverts the version bump commit and pushes the revert. CommandBuilder
// wires the service into the relclean Cobra command and Reporter prints one line
// per step.
package cleanup
