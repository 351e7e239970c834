package epl

import (
	"time"
)

// playedMatch builds a finished match on the given day offset within the
// season's opening August
func playedMatch(season string, day int, home, away string, hg, ag int) *Match {
	m := fixtureMatch(season, day, home, away)
	m.HomeGoals = hg
	m.AwayGoals = ag
	return m
}

// fixtureMatch builds an unplayed, dated match
func fixtureMatch(season string, day int, home, away string) *Match {
	m := NewMatch(home, away)
	m.Season = season
	m.Week = day
	m.UTCTime = seasonStart(season).AddDate(0, 0, day)
	m.HasDate = true
	m.ID = MatchID(season, m.Week, home, away)
	return m
}

func seasonStart(season string) time.Time {
	year := SeasonFirstYear(season)
	return time.Date(year, time.August, 1, 15, 0, 0, 0, time.UTC)
}
