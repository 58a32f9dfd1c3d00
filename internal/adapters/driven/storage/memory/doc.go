// Package memory implements the ephemeral storage strategy: go-cache
// backed metadata and leaderboard stores selected in debug mode, where
// mining results must never reach the durable dataset store, plus an
// in-memory object store for tests.
package memory
