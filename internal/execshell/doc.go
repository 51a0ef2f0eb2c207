// Package execshell runs external tools such as git with consistent logging.
//
// ShellExecutor turns non-zero exit codes into CommandFailedError values and
// logs each invocation either as structured zap fields or as sentences built
// by CommandMessageFormatter. OSCommandRunner is the os/exec backed runner;
// tests substitute their own CommandRunner.
package execshell
