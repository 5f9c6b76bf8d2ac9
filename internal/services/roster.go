package services

import (
	"sort"

	"github.com/iolph/wpr/internal/config"
	"github.com/iolph/wpr/internal/validator"
)

// RosterService answers membership questions against the static team
// roster from config. Peer evaluations are restricted to same-team
// members, excluding the evaluator.
type RosterService struct {
	teams map[string][]string
}

func NewRosterService(cfg *config.RosterConfig) *RosterService {
	return &RosterService{teams: cfg.Teams}
}

// Teams returns the team names, sorted for stable output.
func (s *RosterService) Teams() []string {
	names := make([]string, 0, len(s.teams))
	for team := range s.teams {
		names = append(names, team)
	}
	sort.Strings(names)
	return names
}

// TeamFor returns the team of a member, or "" if the member is unknown.
// Display-decorated names ("Ana (Frontend Team)") are accepted.
func (s *RosterService) TeamFor(member string) string {
	bare := validator.StripTeamSuffix(member)
	for team, members := range s.teams {
		for _, m := range members {
			if m == bare {
				return team
			}
		}
	}
	return ""
}

// IsMember reports whether name belongs to the roster.
func (s *RosterService) IsMember(name string) bool {
	return s.TeamFor(name) != ""
}

// AllMembers returns every roster member in "Name (Team)" display form,
// sorted by team then name.
func (s *RosterService) AllMembers() []string {
	var all []string
	for _, team := range s.Teams() {
		members := append([]string(nil), s.teams[team]...)
		sort.Strings(members)
		for _, m := range members {
			all = append(all, m+" ("+team+")")
		}
	}
	return all
}

// Teammates returns the same-team peers of member, excluding member
// itself. Unknown members get an empty list.
func (s *RosterService) Teammates(member string) []string {
	bare := validator.StripTeamSuffix(member)
	team := s.TeamFor(bare)
	if team == "" {
		return []string{}
	}

	peers := []string{}
	for _, m := range s.teams[team] {
		if m != bare {
			peers = append(peers, m)
		}
	}
	sort.Strings(peers)
	return peers
}

// SameTeam reports whether two members share a team.
func (s *RosterService) SameTeam(a, b string) bool {
	teamA := s.TeamFor(a)
	return teamA != "" && teamA == s.TeamFor(b)
}
