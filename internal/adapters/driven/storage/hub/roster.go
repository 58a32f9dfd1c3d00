package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
	"github.com/swe-arena/pr-miner/internal/logger"
)

// Ensure Roster implements the interface.
var _ driven.RosterStore = (*Roster)(nil)

// Roster loads the tracked agents from per-agent JSON files in the roster
// repo.
type Roster struct {
	store driven.ObjectStore
	repo  string
}

// NewRoster creates a roster reader over repo.
func NewRoster(store driven.ObjectStore, repo string) *Roster {
	return &Roster{store: store, repo: repo}
}

// agentFile carries the legacy "developer" key alongside "organization";
// older roster entries used the former.
type agentFile struct {
	Name         string `json:"agent_name"`
	Organization string `json:"organization"`
	Developer    string `json:"developer"`
	Identifier   string `json:"github_identifier"`
}

// Agents fetches the roster. A file that fails to download or parse is
// skipped with a warning.
func (r *Roster) Agents(ctx context.Context) ([]domain.Agent, error) {
	files, err := r.store.ListFiles(ctx, r.repo)
	if err != nil {
		return nil, fmt.Errorf("list roster files: %w", err)
	}

	var agents []domain.Agent
	for _, f := range files {
		if !strings.HasSuffix(f, ".json") {
			continue
		}
		data, dlErr := r.store.Download(ctx, r.repo, f)
		if dlErr != nil {
			logger.Warn("roster: could not load %s: %v", f, dlErr)
			continue
		}

		var af agentFile
		if jsonErr := json.Unmarshal(data, &af); jsonErr != nil {
			logger.Warn("roster: could not parse %s: %v", f, jsonErr)
			continue
		}
		if af.Organization == "" {
			af.Organization = af.Developer
		}

		agents = append(agents, domain.Agent{
			Identifier:   af.Identifier,
			Name:         af.Name,
			Organization: af.Organization,
		})
	}

	logger.Info("roster: loaded %d agents from %s", len(agents), r.repo)
	return agents, nil
}
