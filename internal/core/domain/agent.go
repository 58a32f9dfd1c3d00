package domain

// Agent is a roster entry whose authored pull requests are tracked.
// The roster is owned by the external store; agents are read-only here.
type Agent struct {
	// Identifier is the GitHub login or bot account name. Unique key.
	Identifier string `json:"github_identifier"`

	// Name is the display name shown on the leaderboard.
	Name string `json:"agent_name"`

	// Organization is the organisation behind the agent.
	Organization string `json:"organization"`
}
