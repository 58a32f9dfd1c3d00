// Package github implements the search provider port over the GitHub
// search API, with proactive throttling and bounded adaptive backoff for
// rate-limited and transient failures.
package github
