package epl

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samonide/epl-prediction/internal/logger"
	"github.com/samonide/epl-prediction/pkg/util"
)

// SourceRow is one raw record from a season file before normalization
type SourceRow map[string]any

// The source files use two shapes. Schedule-shaped rows carry one record
// per team per match ("team", "opponent", "home_away") so every match
// appears twice; only the home-perspective row is kept. Table-shaped rows
// carry one record per match ("home_team", "away_team").

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"Jan 2, 2006",
}

// farFuture is the ordering sentinel for undated fixtures so they sort
// after every dated match
var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// NormalizeSeason turns the raw rows of one season file into Match
// records. Rows missing either team name are dropped and counted; an
// empty result is an error rather than an empty dataset.
func NormalizeSeason(season string, rows []SourceRow) ([]*Match, error) {
	canonical, err := ParseSeason(season)
	if err != nil {
		return nil, err
	}

	var matches []*Match
	dropped := 0

	for _, row := range rows {
		if ha, ok := row["home_away"]; ok {
			side, _ := util.GetAsString(ha)
			if !strings.EqualFold(side, "home") {
				continue
			}
		}

		m, ok := normalizeRow(canonical, row)
		if !ok {
			dropped++
			continue
		}
		matches = append(matches, m)
	}

	if dropped > 0 {
		logger.Warn("Dropped malformed rows from season file", canonical, dropped)
	}
	if len(matches) == 0 {
		return nil, &DataInsufficiencyError{Reason: fmt.Sprintf("season %s produced no usable matches", canonical)}
	}

	SortMatches(matches)
	return matches, nil
}

func normalizeRow(season string, row SourceRow) (*Match, bool) {
	var home, away string
	var homeIDKey, awayIDKey string
	var homeGoalsKey, awayGoalsKey string

	if _, schedule := row["home_away"]; schedule {
		home, _ = util.GetAsString(row["team"])
		away, _ = util.GetAsString(row["opponent"])
		homeIDKey, awayIDKey = "team_id", "opponent_id"
		homeGoalsKey, awayGoalsKey = "gf", "ga"
	} else {
		home, _ = util.GetAsString(row["home_team"])
		away, _ = util.GetAsString(row["away_team"])
		homeIDKey, awayIDKey = "home_team_id", "away_team_id"
		homeGoalsKey, awayGoalsKey = "home_goals", "away_goals"
	}

	home = strings.TrimSpace(home)
	away = strings.TrimSpace(away)
	if home == "" || away == "" {
		return nil, false
	}

	m := NewMatch(home, away)
	m.Season = season

	// NewMatch seeds name-derived ids; source ids take precedence
	if v, ok := row[homeIDKey]; ok && v != nil {
		if id, err := util.GetAsString(v); err == nil && strings.TrimSpace(id) != "" {
			m.HomeID = strings.TrimSpace(id)
		}
	}
	if v, ok := row[awayIDKey]; ok && v != nil {
		if id, err := util.GetAsString(v); err == nil && strings.TrimSpace(id) != "" {
			m.AwayID = strings.TrimSpace(id)
		}
	}

	if v, ok := row[homeGoalsKey]; ok && v != nil {
		if g, err := util.GetAsInteger(v); err == nil && g >= 0 {
			m.HomeGoals = g
		}
	}
	if v, ok := row[awayGoalsKey]; ok && v != nil {
		if g, err := util.GetAsInteger(v); err == nil && g >= 0 {
			m.AwayGoals = g
		}
	}

	// A score for only one side is a malformed result, treat as unplayed
	if (m.HomeGoals >= 0) != (m.AwayGoals >= 0) {
		m.HomeGoals, m.AwayGoals = -1, -1
	}

	if v, ok := row["week"]; ok && v != nil {
		if w, err := util.GetAsInteger(v); err == nil {
			m.Week = w
		}
	} else if v, ok := row["round"]; ok && v != nil {
		if w, err := util.GetAsInteger(v); err == nil {
			m.Week = w
		}
	}

	if v, ok := row["date"]; ok && v != nil {
		if s, err := util.GetAsString(v); err == nil {
			if t, ok := parseDate(s); ok {
				m.UTCTime = t
				m.HasDate = true
			}
		}
	}

	if v, ok := row["xg"]; ok && v != nil {
		if x, err := util.GetAsFloat(v); err == nil {
			m.HomeXg = x
		}
	}
	if v, ok := row["xga"]; ok && v != nil {
		if x, err := util.GetAsFloat(v); err == nil {
			m.AwayXg = x
		}
	}

	m.ID = MatchID(season, m.Week, m.HomeID, m.AwayID)
	return m, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// MatchID builds the deterministic primary key for a fixture from the
// season, week and the two team ids
func MatchID(season string, week int, homeID, awayID string) string {
	return fmt.Sprintf("%s|%02d|%s|%s", season, week, slug(homeID), slug(awayID))
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// OrderTime returns the timestamp used for chronological ordering, with
// undated fixtures pushed past every dated one
func (m *Match) OrderTime() time.Time {
	if !m.HasDate {
		return farFuture
	}
	return m.UTCTime
}

// SortMatches orders matches by date then week, keeping the incoming
// order for full ties. Every feature builder depends on this ordering.
func SortMatches(matches []*Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		ti, tj := matches[i].OrderTime(), matches[j].OrderTime()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return matches[i].Week < matches[j].Week
	})
}
