// Package githubapi adapts the GitHub REST API to the Provider interface
// consumed by the scanner and indexer. Rate limits and transient server
// errors are retried with exponential backoff behind the interface.
package githubapi
