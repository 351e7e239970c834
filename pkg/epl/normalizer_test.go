package epl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSeasonTableShape(t *testing.T) {
	rows := []SourceRow{
		{"home_team": "Arsenal", "away_team": "Chelsea", "home_goals": 2.0, "away_goals": 1.0, "date": "2023-08-12", "week": 1.0},
		{"home_team": "Spurs", "away_team": "Arsenal", "week": 2.0},
	}

	matches, err := NormalizeSeason("2023/24", rows)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	first := matches[0]
	assert.Equal(t, "2023-2024", first.Season)
	assert.Equal(t, "Arsenal", first.HomeTeamName)
	assert.Equal(t, 2, first.HomeGoals)
	assert.Equal(t, 1, first.AwayGoals)
	assert.True(t, first.Played())
	assert.Equal(t, "H", first.Outcome())
	assert.True(t, first.HasDate)

	second := matches[1]
	assert.False(t, second.Played())
	assert.False(t, second.HasDate)
}

func TestNormalizeSeasonScheduleShapeDeduplicates(t *testing.T) {
	rows := []SourceRow{
		{"team": "Arsenal", "opponent": "Chelsea", "home_away": "home", "gf": 2.0, "ga": 0.0, "date": "2023-08-12", "week": 1.0},
		{"team": "Chelsea", "opponent": "Arsenal", "home_away": "away", "gf": 0.0, "ga": 2.0, "date": "2023-08-12", "week": 1.0},
	}

	matches, err := NormalizeSeason("2023-2024", rows)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "Arsenal", m.HomeTeamName)
	assert.Equal(t, "Chelsea", m.AwayTeamName)
	assert.Equal(t, 2, m.HomeGoals)
	assert.Equal(t, 0, m.AwayGoals)
}

func TestNormalizeSeasonPrefersSourceTeamIds(t *testing.T) {
	rows := []SourceRow{
		{"home_team": "Leeds", "away_team": "Chelsea", "home_team_id": "leeds-united", "week": 1.0},
		{"team": "Arsenal", "opponent": "Spurs", "home_away": "home", "team_id": "afc", "opponent_id": "thfc", "week": 2.0},
	}

	matches, err := NormalizeSeason("2023-2024", rows)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Source ids win; a row without one falls back to the slugged name
	assert.Equal(t, "leeds-united", matches[0].HomeID)
	assert.Equal(t, "chelsea", matches[0].AwayID)
	assert.Equal(t, "afc", matches[1].HomeID)
	assert.Equal(t, "thfc", matches[1].AwayID)

	// Match ids are built from the team ids
	assert.Equal(t, MatchID("2023-2024", 1, "leeds-united", "chelsea"), matches[0].ID)
	assert.Equal(t, MatchID("2023-2024", 2, "afc", "thfc"), matches[1].ID)
}

func TestNormalizeSeasonDropsRowsMissingTeams(t *testing.T) {
	rows := []SourceRow{
		{"home_team": "Arsenal", "away_team": "Chelsea", "week": 1.0},
		{"home_team": "", "away_team": "Chelsea", "week": 2.0},
		{"away_team": "Spurs", "week": 3.0},
	}

	matches, err := NormalizeSeason("2023-2024", rows)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestNormalizeSeasonErrorsWhenNothingSurvives(t *testing.T) {
	rows := []SourceRow{
		{"home_team": "", "away_team": ""},
	}

	_, err := NormalizeSeason("2023-2024", rows)
	var insufficient *DataInsufficiencyError
	assert.ErrorAs(t, err, &insufficient)
}

func TestNormalizeSeasonHalfRecordedScoreBecomesUnplayed(t *testing.T) {
	rows := []SourceRow{
		{"home_team": "Arsenal", "away_team": "Chelsea", "home_goals": 2.0, "week": 1.0},
	}

	matches, err := NormalizeSeason("2023-2024", rows)
	require.NoError(t, err)
	assert.False(t, matches[0].Played())
	assert.Equal(t, -1, matches[0].HomeGoals)
}

func TestSortMatchesPushesUndatedToTheEnd(t *testing.T) {
	dated := playedMatch("2023-2024", 5, "Arsenal", "Chelsea", 1, 0)
	undated := NewMatch("Spurs", "Everton")
	undated.Season = "2023-2024"
	undated.Week = 1
	later := playedMatch("2023-2024", 9, "Spurs", "Arsenal", 0, 0)

	matches := []*Match{undated, later, dated}
	SortMatches(matches)

	assert.Same(t, dated, matches[0])
	assert.Same(t, later, matches[1])
	assert.Same(t, undated, matches[2])
}

func TestSortMatchesIsStableWithinTies(t *testing.T) {
	a := NewMatch("A", "B")
	a.Week = 3
	b := NewMatch("C", "D")
	b.Week = 3

	matches := []*Match{a, b}
	SortMatches(matches)

	assert.Same(t, a, matches[0])
	assert.Same(t, b, matches[1])
}

func TestParseDateLayouts(t *testing.T) {
	for _, input := range []string{"2023-08-12", "2023-08-12T15:00:00Z", "12/08/2023"} {
		parsed, ok := parseDate(input)
		assert.True(t, ok, input)
		assert.Equal(t, time.August, parsed.Month(), input)
	}

	_, ok := parseDate("not a date")
	assert.False(t, ok)
}
