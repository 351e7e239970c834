package epl

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samonide/epl-prediction/internal/logger"
	"github.com/samonide/epl-prediction/pkg/util"
)

// Compile-time check to ensure Team implements Persistable interface
var _ Persistable = (*Team)(nil)

// Team is one club seen anywhere in the dataset. The id is the join key
// used by every feature builder; the name is display only and can change
// between seasons.
type Team struct {
	ID        string    `json:"id" column:"id" dbtype:"TEXT" primary:"true" index:"true"`
	Name      string    `json:"name" column:"name" dbtype:"TEXT NOT NULL" index:"true"`
	FirstSeen string    `json:"firstSeen" column:"firstSeen" dbtype:"TEXT"`
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

func (t *Team) GetPrimaryKey() map[string]interface{} {
	return map[string]any{"id": t.ID}
}

func (t *Team) SetPrimaryKey(pk map[string]interface{}) error {
	if id, ok := pk["id"].(string); ok {
		t.ID = id
		return nil
	}
	return fmt.Errorf("primary key 'id' not found")
}

func (t *Team) GetTableName() string { return "team" }

func (t *Team) BeforeSave() error {
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}

func (t *Team) AfterSave() error    { return nil }
func (t *Team) BeforeDelete() error { return nil }
func (t *Team) AfterDelete() error  { return nil }

// TeamsFromMatches collects every distinct team id from the match list,
// tagged with the earliest season it appears in. The most recent season's
// display name wins when a club renames.
func TeamsFromMatches(matches []*Match) []*Team {
	byID := map[string]*Team{}
	lastSeen := map[string]int{}
	for _, m := range matches {
		sides := []struct{ id, name string }{
			{m.HomeID, m.HomeTeamName},
			{m.AwayID, m.AwayTeamName},
		}
		for _, side := range sides {
			if side.id == "" || side.name == "" {
				continue
			}
			year := SeasonFirstYear(m.Season)
			t, ok := byID[side.id]
			if !ok {
				byID[side.id] = &Team{ID: side.id, Name: side.name, FirstSeen: m.Season}
				lastSeen[side.id] = year
				continue
			}
			if m.Season != "" && (t.FirstSeen == "" || year < SeasonFirstYear(t.FirstSeen)) {
				t.FirstSeen = m.Season
			}
			if year >= lastSeen[side.id] {
				t.Name = side.name
				lastSeen[side.id] = year
			}
		}
	}
	teams := make([]*Team, 0, len(byID))
	for _, t := range byID {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams
}

// ResolveTeam maps user input to a known team. The lookup tries an exact
// case-insensitive match, then a substring match, then a Levenshtein
// fuzzy match, and reports UnresolvableEntityError when all three fail.
func ResolveTeam(input string, teams []*Team) (*Team, error) {
	needle := strings.TrimSpace(input)
	if needle == "" {
		return nil, &UnresolvableEntityError{Name: input}
	}

	lower := strings.ToLower(needle)
	for _, t := range teams {
		if strings.ToLower(t.Name) == lower {
			return t, nil
		}
	}

	var substringHits []*Team
	for _, t := range teams {
		if strings.Contains(strings.ToLower(t.Name), lower) {
			substringHits = append(substringHits, t)
		}
	}
	if len(substringHits) == 1 {
		logger.Debug("Resolved team by substring", input, substringHits[0].Name)
		return substringHits[0], nil
	}

	bestScore := 0.0
	var best *Team
	for _, t := range teams {
		score := util.FuzzyMatchScore(needle, t.Name)
		if score > bestScore {
			bestScore = score
			best = t
		}
	}
	if best != nil && bestScore >= 0.6 {
		logger.Info("Fuzzy matched team name", input, best.Name, bestScore)
		return best, nil
	}

	return nil, &UnresolvableEntityError{Name: input}
}

// ResolveTeamName is the name-only convenience over ResolveTeam
func ResolveTeamName(input string, teams []*Team) (string, error) {
	t, err := ResolveTeam(input, teams)
	if err != nil {
		return "", err
	}
	return t.Name, nil
}
