// Package domain holds the core types of the PR mining pipeline: roster
// agents, raw search matches, persisted metadata records and leaderboard
// entries. It has no dependencies on adapters or external services.
package domain
