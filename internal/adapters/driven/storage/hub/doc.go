// Package hub implements the durable storage strategy over the external
// dataset store: day-sharded JSONL metadata per agent, per-agent JSON
// roster files and a CSV leaderboard snapshot per year. It talks to the
// store exclusively through the ObjectStore port.
package hub
