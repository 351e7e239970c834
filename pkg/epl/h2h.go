package epl

import (
	"sort"
	"strings"
)

// pairKey gives both orientations of a fixture the same history bucket
func pairKey(a, b string) string {
	names := []string{strings.ToLower(a), strings.ToLower(b)}
	sort.Strings(names)
	return names[0] + "|" + names[1]
}

// ApplyHeadToHeadFeatures stamps each match with the trailing mean of the
// points taken by whichever side was at home in the pair's prior meetings.
// The value deliberately mixes perspectives across orientations: it reads
// as "how the home side tends to fare in this fixture" rather than as a
// per-team statistic. Matches must already be in chronological order.
func ApplyHeadToHeadFeatures(matches []*Match, window int) {
	history := map[string][]float64{}

	for _, m := range matches {
		key := pairKey(m.HomeID, m.AwayID)

		prior := history[key]
		if len(prior) > 0 {
			m.H2hHomePts = mean(prior)
		}

		if m.Played() {
			prior = append(prior, m.HomePoints())
			if len(prior) > window {
				prior = prior[len(prior)-window:]
			}
			history[key] = prior
		}
	}
}
