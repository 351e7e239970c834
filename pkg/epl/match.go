package epl

import (
	"fmt"
	"math"
	"time"
)

// Compile-time check to ensure Match implements Persistable interface
var _ Persistable = (*Match)(nil)

// Match is one fixture row after normalization. The persisted columns are
// the raw facts from the source files. The feature fields carry no dbtype
// tag so the persistence layer ignores them; they are recomputed from the
// raw columns on every dataset build and hold NaN while unknown.
type Match struct {
	// Primary key
	ID string `json:"id" column:"id" dbtype:"TEXT" primary:"true" index:"true"`

	// Info
	UTCTime time.Time `json:"utcTime" column:"utcTime" dbtype:"DATETIME" index:"true"`
	Week    int       `json:"week" column:"week" dbtype:"INTEGER DEFAULT -1" index:"true"`
	Season  string    `json:"season" column:"season" dbtype:"TEXT" index:"true"`
	HasDate bool      `json:"hasDate" column:"hasDate" dbtype:"INTEGER DEFAULT 0"`

	// Team ids are the join key; display names are not unique across
	// seasons. Sources without ids get a name-derived fallback.
	HomeID       string `json:"homeId" column:"homeId" dbtype:"TEXT NOT NULL" index:"true"`
	AwayID       string `json:"awayId" column:"awayId" dbtype:"TEXT NOT NULL" index:"true"`
	HomeTeamName string `json:"homeTeamName" column:"homeTeamName" dbtype:"TEXT NOT NULL" index:"true"`
	AwayTeamName string `json:"awayTeamName" column:"awayTeamName" dbtype:"TEXT NOT NULL" index:"true"`

	// Result, -1 while unplayed
	HomeGoals int `json:"homeGoals" column:"homeGoals" dbtype:"INTEGER DEFAULT -1"`
	AwayGoals int `json:"awayGoals" column:"awayGoals" dbtype:"INTEGER DEFAULT -1"`

	// Expected goals from the source aggregates, -1.0 when the source
	// carries none for this season
	HomeXg float64 `json:"homeXg,omitempty" column:"homeXg" dbtype:"REAL DEFAULT -1.0"`
	AwayXg float64 `json:"awayXg,omitempty" column:"awayXg" dbtype:"REAL DEFAULT -1.0"`

	// Average bookmaker odds, -1.0 when no odds file covers this match
	HomeOdds float64 `json:"homeOdds,omitempty" column:"homeOdds" dbtype:"REAL DEFAULT -1.0"`
	DrawOdds float64 `json:"drawOdds,omitempty" column:"drawOdds" dbtype:"REAL DEFAULT -1.0"`
	AwayOdds float64 `json:"awayOdds,omitempty" column:"awayOdds" dbtype:"REAL DEFAULT -1.0"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`

	// Engineered features, strictly from information available before
	// kick-off. NaN means unknown.
	HomeElo          float64 `json:"homeElo,omitempty"`
	AwayElo          float64 `json:"awayElo,omitempty"`
	EloDiff          float64 `json:"eloDiff,omitempty"`
	HomeFormPts      float64 `json:"homeFormPts,omitempty"`
	AwayFormPts      float64 `json:"awayFormPts,omitempty"`
	HomeFormGd       float64 `json:"homeFormGd,omitempty"`
	AwayFormGd       float64 `json:"awayFormGd,omitempty"`
	HomeGoalsForAvg  float64 `json:"homeGoalsForAvg,omitempty"`
	AwayGoalsForAvg  float64 `json:"awayGoalsForAvg,omitempty"`
	HomeGoalsAgAvg   float64 `json:"homeGoalsAgAvg,omitempty"`
	AwayGoalsAgAvg   float64 `json:"awayGoalsAgAvg,omitempty"`
	HomeHomePpg      float64 `json:"homeHomePpg,omitempty"`
	AwayAwayPpg      float64 `json:"awayAwayPpg,omitempty"`
	HomeRestDays     float64 `json:"homeRestDays,omitempty"`
	AwayRestDays     float64 `json:"awayRestDays,omitempty"`
	H2hHomePts       float64 `json:"h2hHomePts,omitempty"`
	HomeStrength     float64 `json:"homeStrength,omitempty"`
	AwayStrength     float64 `json:"awayStrength,omitempty"`
	StrengthDiff     float64 `json:"strengthDiff,omitempty"`
	XgDifferential   float64 `json:"xgDifferential,omitempty"`
	PredictedOutcome string  `json:"predictedOutcome,omitempty"`
	HomeWinProb      float64 `json:"homeWinProb,omitempty"`
	DrawProb         float64 `json:"drawProb,omitempty"`
	AwayWinProb      float64 `json:"awayWinProb,omitempty"`
}

// NewMatch creates a match with the unknown sentinels in place
func NewMatch(home, away string) *Match {
	m := &Match{
		HomeID:       slug(home),
		AwayID:       slug(away),
		HomeTeamName: home,
		AwayTeamName: away,
		Week:         -1,
		HomeGoals:    -1,
		AwayGoals:    -1,
		HomeXg:       -1.0,
		AwayXg:       -1.0,
		HomeOdds:     -1.0,
		DrawOdds:     -1.0,
		AwayOdds:     -1.0,
	}
	m.ResetFeatures()
	return m
}

// ResetFeatures puts every engineered feature back to NaN
func (m *Match) ResetFeatures() {
	nan := math.NaN()
	m.HomeElo, m.AwayElo, m.EloDiff = nan, nan, nan
	m.HomeFormPts, m.AwayFormPts = nan, nan
	m.HomeFormGd, m.AwayFormGd = nan, nan
	m.HomeGoalsForAvg, m.AwayGoalsForAvg = nan, nan
	m.HomeGoalsAgAvg, m.AwayGoalsAgAvg = nan, nan
	m.HomeHomePpg, m.AwayAwayPpg = nan, nan
	m.HomeRestDays, m.AwayRestDays = nan, nan
	m.H2hHomePts = nan
	m.HomeStrength, m.AwayStrength, m.StrengthDiff = nan, nan, nan
	m.XgDifferential = nan
	m.HomeWinProb, m.DrawProb, m.AwayWinProb = nan, nan, nan
}

// Played reports whether both goal counts are recorded
func (m *Match) Played() bool {
	return m.HomeGoals >= 0 && m.AwayGoals >= 0
}

// Outcome returns "H", "D" or "A" for a played match, "" otherwise
func (m *Match) Outcome() string {
	if !m.Played() {
		return ""
	}
	switch {
	case m.HomeGoals > m.AwayGoals:
		return "H"
	case m.HomeGoals < m.AwayGoals:
		return "A"
	default:
		return "D"
	}
}

// HomePoints returns the home side's points from a played match
func (m *Match) HomePoints() float64 {
	switch m.Outcome() {
	case "H":
		return Config.PointsWin
	case "D":
		return Config.PointsDraw
	default:
		return Config.PointsLoss
	}
}

// AwayPoints returns the away side's points from a played match
func (m *Match) AwayPoints() float64 {
	switch m.Outcome() {
	case "A":
		return Config.PointsWin
	case "D":
		return Config.PointsDraw
	default:
		return Config.PointsLoss
	}
}

// Feature returns the engineered feature for a column name. Inference and
// the matrix builder both go through this so the column order recorded at
// training time always lines up with the vector built here.
func (m *Match) Feature(column string) (float64, error) {
	switch column {
	case "elo_diff":
		return m.EloDiff, nil
	case "home_ppg_last5":
		return m.HomeFormPts, nil
	case "away_ppg_last5":
		return m.AwayFormPts, nil
	case "home_gd_avg_last5":
		return m.HomeFormGd, nil
	case "away_gd_avg_last5":
		return m.AwayFormGd, nil
	case "home_gf_avg_last5":
		return m.HomeGoalsForAvg, nil
	case "home_ga_avg_last5":
		return m.HomeGoalsAgAvg, nil
	case "away_gf_avg_last5":
		return m.AwayGoalsForAvg, nil
	case "away_ga_avg_last5":
		return m.AwayGoalsAgAvg, nil
	case "home_home_ppg_last5":
		return m.HomeHomePpg, nil
	case "away_away_ppg_last5":
		return m.AwayAwayPpg, nil
	case "h2h_home_ppg_last5":
		return m.H2hHomePts, nil
	case "strength_differential":
		return m.StrengthDiff, nil
	case "xg_differential":
		return m.XgDifferential, nil
	case "home_rest_days":
		return m.HomeRestDays, nil
	case "away_rest_days":
		return m.AwayRestDays, nil
	default:
		return 0, fmt.Errorf("unknown feature column %q", column)
	}
}

// FeatureVector assembles the row for the given column order
func (m *Match) FeatureVector(columns []string) ([]float64, error) {
	row := make([]float64, len(columns))
	for i, col := range columns {
		v, err := m.Feature(col)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// Clone returns a deep copy so synthetic recomputation cannot touch the
// caller's dataset
func (m *Match) Clone() *Match {
	c := *m
	return &c
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetPrimaryKey returns the primary key as a map
func (m *Match) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"id": m.ID,
	}
}

// SetPrimaryKey sets the primary key from a map
func (m *Match) SetPrimaryKey(pk map[string]interface{}) error {
	if id, ok := pk["id"]; ok {
		if idStr, ok := id.(string); ok {
			m.ID = idStr
			return nil
		}
		return fmt.Errorf("primary key 'id' must be a string")
	}
	return fmt.Errorf("primary key 'id' not found")
}

// GetTableName returns the table name for matches
func (m *Match) GetTableName() string {
	return "match"
}

// BeforeSave is called before saving the match
func (m *Match) BeforeSave() error {
	if m.ID == "" {
		return fmt.Errorf("cannot save match without an id")
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the match
func (m *Match) AfterSave() error {
	return nil
}

// BeforeDelete is called before deleting the match
func (m *Match) BeforeDelete() error {
	return nil
}

// AfterDelete is called after deleting the match
func (m *Match) AfterDelete() error {
	return nil
}
