package epl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTeams() []*Team {
	return []*Team{
		{Name: "Arsenal"},
		{Name: "Manchester City"},
		{Name: "Manchester United"},
		{Name: "Tottenham Hotspur"},
	}
}

func TestResolveTeamNameExact(t *testing.T) {
	name, err := ResolveTeamName("arsenal", testTeams())
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", name)
}

func TestResolveTeamNameUniqueSubstring(t *testing.T) {
	name, err := ResolveTeamName("tottenham", testTeams())
	require.NoError(t, err)
	assert.Equal(t, "Tottenham Hotspur", name)
}

func TestResolveTeamNameAmbiguousSubstringFallsThrough(t *testing.T) {
	// "manchester" matches two teams, so the substring step cannot decide;
	// the fuzzy step picks whichever scores best rather than erroring
	name, err := ResolveTeamName("manchester city", testTeams())
	require.NoError(t, err)
	assert.Equal(t, "Manchester City", name)
}

func TestResolveTeamNameFuzzy(t *testing.T) {
	name, err := ResolveTeamName("Arsenl", testTeams())
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", name)
}

func TestResolveTeamNameUnresolvable(t *testing.T) {
	_, err := ResolveTeamName("Real Madrid", testTeams())
	var unresolvable *UnresolvableEntityError
	require.ErrorAs(t, err, &unresolvable)
	assert.Equal(t, "Real Madrid", unresolvable.Name)

	_, err = ResolveTeamName("   ", testTeams())
	assert.ErrorAs(t, err, &unresolvable)
}

func TestTeamsFromMatchesTracksEarliestSeason(t *testing.T) {
	matches := []*Match{
		playedMatch("2022-2023", 1, "Arsenal", "Chelsea", 1, 0),
		playedMatch("2021-2022", 1, "Chelsea", "Spurs", 1, 0),
	}

	teams := TeamsFromMatches(matches)
	require.Len(t, teams, 3)

	byName := map[string]*Team{}
	for _, team := range teams {
		byName[team.Name] = team
	}
	assert.Equal(t, "2022-2023", byName["Arsenal"].FirstSeen)
	assert.Equal(t, "2021-2022", byName["Chelsea"].FirstSeen)
}

func TestTeamsFromMatchesMergesRenamedClubByID(t *testing.T) {
	old := playedMatch("2021-2022", 1, "Leeds", "Chelsea", 1, 0)
	old.HomeID = "leeds-united"
	renamed := playedMatch("2023-2024", 1, "Leeds United", "Chelsea", 1, 0)
	renamed.HomeID = "leeds-united"

	teams := TeamsFromMatches([]*Match{old, renamed})
	require.Len(t, teams, 2)

	var leeds *Team
	for _, team := range teams {
		if team.ID == "leeds-united" {
			leeds = team
		}
	}
	require.NotNil(t, leeds)

	// One club: the latest display name, the earliest season
	assert.Equal(t, "Leeds United", leeds.Name)
	assert.Equal(t, "2021-2022", leeds.FirstSeen)
}

func TestResolveTeamCarriesTheID(t *testing.T) {
	teams := []*Team{
		{ID: "afc", Name: "Arsenal"},
		{ID: "thfc", Name: "Tottenham Hotspur"},
	}

	resolved, err := ResolveTeam("tottenham", teams)
	require.NoError(t, err)
	assert.Equal(t, "thfc", resolved.ID)
}
