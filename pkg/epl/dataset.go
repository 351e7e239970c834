package epl

import (
	"github.com/samonide/epl-prediction/internal/logger"
)

// Dataset is the fully engineered match list plus the entities derived
// from it
type Dataset struct {
	Matches []*Match
	Teams   []*Team
	Stats   map[string]*TeamSeasonStats
}

// BuildDataset runs the full feature pass over normalized matches: sort,
// reset, then Elo, form, head-to-head and strength in that order. The
// pass is deterministic and idempotent, rebuilding from the raw columns
// every time.
func BuildDataset(matches []*Match) (*Dataset, error) {
	if len(matches) == 0 {
		return nil, &DataInsufficiencyError{Reason: "no matches to build a dataset from"}
	}

	SortMatches(matches)
	for _, m := range matches {
		m.ResetFeatures()
	}

	ApplyEloFeatures(matches)
	ApplyFormFeatures(matches, Config.FormWindow)
	ApplyHeadToHeadFeatures(matches, Config.FormWindow)

	stats := ComputeTeamSeasonStats(matches)
	ApplyStrengthFeatures(matches, stats)

	teams := TeamsFromMatches(matches)
	if len(teams) == 0 {
		return nil, &DataInsufficiencyError{Reason: "no resolvable teams in the dataset"}
	}

	logger.Info("Dataset built", len(matches), "matches", len(teams), "teams")
	return &Dataset{Matches: matches, Teams: teams, Stats: stats}, nil
}

// Rebuild reruns the feature pass over the dataset's own matches. The
// synthetic single-match path clones the match list, appends the
// synthetic fixture, and rebuilds so the real dataset is never touched.
func (d *Dataset) Rebuild() error {
	nd, err := BuildDataset(d.Matches)
	if err != nil {
		return err
	}
	*d = *nd
	return nil
}

// CloneMatches deep-copies the match list
func (d *Dataset) CloneMatches() []*Match {
	out := make([]*Match, len(d.Matches))
	for i, m := range d.Matches {
		out[i] = m.Clone()
	}
	return out
}

// LoadPersistedDataset rebuilds the dataset from previously persisted
// matches, so a process can warm-start from the database when the raw
// season files are unavailable.
func LoadPersistedDataset() (*Dataset, error) {
	if err := InitDatabase(); err != nil {
		return nil, err
	}

	rows, err := FindAll(&Match{})
	if err != nil {
		return nil, err
	}

	matches := make([]*Match, 0, len(rows))
	for _, r := range rows {
		if m, ok := r.(*Match); ok {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return nil, &DataInsufficiencyError{Reason: "no persisted matches to load"}
	}

	logger.Info("Loaded persisted matches", len(matches))
	return BuildDataset(matches)
}

// Persist writes matches, teams and season aggregates through the
// reflection layer in one transaction each
func (d *Dataset) Persist() error {
	if err := InitDatabase(); err != nil {
		return err
	}

	objs := make([]Persistable, 0, len(d.Matches))
	for _, m := range d.Matches {
		objs = append(objs, m)
	}
	if err := BulkSave(objs); err != nil {
		return err
	}

	objs = objs[:0]
	for _, t := range d.Teams {
		objs = append(objs, t)
	}
	if err := BulkSave(objs); err != nil {
		return err
	}

	objs = objs[:0]
	for _, s := range d.Stats {
		objs = append(objs, s)
	}
	if err := BulkSave(objs); err != nil {
		return err
	}

	logger.Info("Dataset persisted", len(d.Matches), "matches")
	return nil
}
