package epl

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeSeasons builds a small but complete dataset: two finished seasons,
// one in-progress season with upcoming fixtures
func threeSeasons() []*Match {
	teams := []string{"Arsenal", "Chelsea", "Spurs", "Everton"}
	var matches []*Match

	for s, season := range []string{"2021-2022", "2022-2023", "2023-2024"} {
		day := 0
		for round := 0; round < 3; round++ {
			for i := 0; i < len(teams); i++ {
				for j := 0; j < len(teams); j++ {
					if i == j {
						continue
					}
					day += 2
					// Leave the tail of the final season unplayed
					if s == 2 && round == 2 {
						matches = append(matches, fixtureMatch(season, day, teams[i], teams[j]))
						continue
					}
					hg := (i*3 + j + round + s) % 4
					ag := (j*2 + i + round) % 3
					matches = append(matches, playedMatch(season, day, teams[i], teams[j], hg, ag))
				}
			}
		}
	}
	return matches
}

func TestBuildDatasetIsIdempotent(t *testing.T) {
	matches := threeSeasons()
	ds, err := BuildDataset(matches)
	require.NoError(t, err)

	snapshot := make([][]float64, len(ds.Matches))
	for i, m := range ds.Matches {
		row, err := m.FeatureVector(FeatureColumns)
		require.NoError(t, err)
		snapshot[i] = row
	}

	require.NoError(t, ds.Rebuild())

	for i, m := range ds.Matches {
		row, err := m.FeatureVector(FeatureColumns)
		require.NoError(t, err)
		for j := range row {
			if math.IsNaN(snapshot[i][j]) {
				assert.True(t, math.IsNaN(row[j]))
			} else {
				assert.Equal(t, snapshot[i][j], row[j])
			}
		}
	}
}

func TestBuildDatasetCollectsTeams(t *testing.T) {
	ds, err := BuildDataset(threeSeasons())
	require.NoError(t, err)

	require.Len(t, ds.Teams, 4)
	assert.Equal(t, "Arsenal", ds.Teams[0].Name)
	assert.Equal(t, "2021-2022", ds.Teams[0].FirstSeen)
}

func TestBuildDatasetRejectsEmptyInput(t *testing.T) {
	_, err := BuildDataset(nil)
	var insufficient *DataInsufficiencyError
	assert.ErrorAs(t, err, &insufficient)
}

func TestStrengthFeaturesNaNWithoutXg(t *testing.T) {
	ds, err := BuildDataset(threeSeasons())
	require.NoError(t, err)

	for _, m := range ds.Matches {
		assert.True(t, math.IsNaN(m.StrengthDiff))
		assert.True(t, math.IsNaN(m.XgDifferential))
	}
}

func TestStrengthFeaturesWithXg(t *testing.T) {
	matches := []*Match{
		playedMatch("2023-2024", 1, "Arsenal", "Chelsea", 2, 0),
		playedMatch("2023-2024", 8, "Chelsea", "Arsenal", 1, 1),
	}
	matches[0].HomeXg, matches[0].AwayXg = 2.1, 0.7
	matches[1].HomeXg, matches[1].AwayXg = 1.0, 1.2

	ds, err := BuildDataset(matches)
	require.NoError(t, err)

	arsenal := ds.Stats["arsenal|2023-2024"]
	require.NotNil(t, arsenal)
	assert.Equal(t, 2, arsenal.Played)
	assert.Equal(t, 4.0, arsenal.Points)
	// Arsenal xg: 2.1 at home, 1.2 away
	assert.InDelta(t, 1.65, arsenal.XgFor, 1e-9)
	assert.InDelta(t, 0.85, arsenal.XgAgainst, 1e-9)

	expected := 0.4*1.65 + 0.6*2.0 - 0.3*0.85
	assert.InDelta(t, expected, arsenal.Strength(), 1e-9)

	for _, m := range ds.Matches {
		assert.False(t, math.IsNaN(m.StrengthDiff))
		assert.False(t, math.IsNaN(m.XgDifferential))
	}
}

func TestXgDifferentialFormula(t *testing.T) {
	stats := map[string]*TeamSeasonStats{
		"a|2023-2024": {TeamID: "a", Team: "A", Season: "2023-2024", Played: 1, Points: 3, XgFor: 2.0, XgAgainst: 0.5},
		"b|2023-2024": {TeamID: "b", Team: "B", Season: "2023-2024", Played: 1, Points: 0, XgFor: 1.0, XgAgainst: 1.5},
	}
	m := fixtureMatch("2023-2024", 1, "A", "B")

	ApplyStrengthFeatures([]*Match{m}, stats)

	// (home for + away against) - (away for + home against)
	assert.InDelta(t, (2.0+1.5)-(1.0+0.5), m.XgDifferential, 1e-9)
}
