// Package githubapi wraps the GitHub REST API for release cleanup.
//
// Client exposes typed operations over go-github for reading and deleting
// releases and deleting tag references. Failures surface as APIError values
// so callers can log them and decide whether they are fatal.
package githubapi
