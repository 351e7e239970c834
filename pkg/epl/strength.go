package epl

import (
	"fmt"
	"math"
	"time"
)

// Compile-time check to ensure TeamSeasonStats implements Persistable interface
var _ Persistable = (*TeamSeasonStats)(nil)

// TeamSeasonStats aggregates one team's season: played matches, points,
// and per-match expected goals for and against. Xg values are -1.0 when
// the source carries no expected-goals data for the season.
type TeamSeasonStats struct {
	TeamID    string    `json:"teamId" column:"teamId" dbtype:"TEXT" primary:"true" index:"true"`
	Season    string    `json:"season" column:"season" dbtype:"TEXT" primary:"true" index:"true"`
	Team      string    `json:"team" column:"team" dbtype:"TEXT NOT NULL" index:"true"`
	Played    int       `json:"played" column:"played" dbtype:"INTEGER DEFAULT 0"`
	Points    float64   `json:"points" column:"points" dbtype:"REAL DEFAULT 0"`
	XgFor     float64   `json:"xgFor" column:"xgFor" dbtype:"REAL DEFAULT -1.0"`
	XgAgainst float64   `json:"xgAgainst" column:"xgAgainst" dbtype:"REAL DEFAULT -1.0"`
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

func (s *TeamSeasonStats) GetPrimaryKey() map[string]interface{} {
	return map[string]any{"teamId": s.TeamID, "season": s.Season}
}

func (s *TeamSeasonStats) SetPrimaryKey(pk map[string]interface{}) error {
	teamID, ok1 := pk["teamId"].(string)
	season, ok2 := pk["season"].(string)
	if !ok1 || !ok2 {
		return fmt.Errorf("primary key needs 'teamId' and 'season'")
	}
	s.TeamID, s.Season = teamID, season
	return nil
}

func (s *TeamSeasonStats) GetTableName() string { return "team_season_stats" }

func (s *TeamSeasonStats) BeforeSave() error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	return nil
}

func (s *TeamSeasonStats) AfterSave() error    { return nil }
func (s *TeamSeasonStats) BeforeDelete() error { return nil }
func (s *TeamSeasonStats) AfterDelete() error  { return nil }

// Ppg returns points per played match, NaN before any match is played
func (s *TeamSeasonStats) Ppg() float64 {
	if s.Played == 0 {
		return math.NaN()
	}
	return s.Points / float64(s.Played)
}

// HasXg reports whether the season carries expected-goals data
func (s *TeamSeasonStats) HasXg() bool {
	return s.XgFor >= 0 && s.XgAgainst >= 0
}

// Strength blends attacking xG, points pace and defensive xG into one
// score. Without xG data for the season the score is NaN and downstream
// imputation takes over.
func (s *TeamSeasonStats) Strength() float64 {
	ppg := s.Ppg()
	if !s.HasXg() || math.IsNaN(ppg) {
		return math.NaN()
	}
	return Config.StrengthXGForWeight*s.XgFor +
		Config.StrengthPPGWeight*ppg -
		Config.StrengthXGAgWeight*s.XgAgainst
}

// ComputeTeamSeasonStats builds the per-team per-season aggregates from
// the normalized match list, keyed "teamId|season". Points come from
// played matches; xG comes from the per-match source values where
// present, averaged per match.
func ComputeTeamSeasonStats(matches []*Match) map[string]*TeamSeasonStats {
	stats := map[string]*TeamSeasonStats{}
	xgSums := map[string][2]float64{}
	xgCounts := map[string]int{}

	get := func(teamID, name, season string) *TeamSeasonStats {
		key := teamID + "|" + season
		s, ok := stats[key]
		if !ok {
			s = &TeamSeasonStats{TeamID: teamID, Team: name, Season: season, XgFor: -1.0, XgAgainst: -1.0}
			stats[key] = s
		}
		return s
	}

	for _, m := range matches {
		hs := get(m.HomeID, m.HomeTeamName, m.Season)
		as := get(m.AwayID, m.AwayTeamName, m.Season)

		if m.Played() {
			hs.Played++
			as.Played++
			hs.Points += m.HomePoints()
			as.Points += m.AwayPoints()
		}

		if m.HomeXg >= 0 && m.AwayXg >= 0 {
			hKey := m.HomeID + "|" + m.Season
			aKey := m.AwayID + "|" + m.Season
			h := xgSums[hKey]
			h[0] += m.HomeXg
			h[1] += m.AwayXg
			xgSums[hKey] = h
			xgCounts[hKey]++
			a := xgSums[aKey]
			a[0] += m.AwayXg
			a[1] += m.HomeXg
			xgSums[aKey] = a
			xgCounts[aKey]++
		}
	}

	for key, s := range stats {
		if n := xgCounts[key]; n > 0 {
			sums := xgSums[key]
			s.XgFor = sums[0] / float64(n)
			s.XgAgainst = sums[1] / float64(n)
		}
	}

	return stats
}

// ApplyStrengthFeatures stamps every match with the season strength of
// both sides and the expected-goals differential. Both are NaN whenever
// the season lacks xG data for either team.
func ApplyStrengthFeatures(matches []*Match, stats map[string]*TeamSeasonStats) {
	for _, m := range matches {
		hs := stats[m.HomeID+"|"+m.Season]
		as := stats[m.AwayID+"|"+m.Season]
		if hs == nil || as == nil {
			continue
		}

		m.HomeStrength = hs.Strength()
		m.AwayStrength = as.Strength()
		if !math.IsNaN(m.HomeStrength) && !math.IsNaN(m.AwayStrength) {
			m.StrengthDiff = m.HomeStrength - m.AwayStrength
		}

		if hs.HasXg() && as.HasXg() {
			m.XgDifferential = (hs.XgFor + as.XgAgainst) - (as.XgFor + hs.XgAgainst)
		}
	}
}
