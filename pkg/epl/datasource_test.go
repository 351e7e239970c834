package epl

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeasonFile(t *testing.T, dir, name string, rows []SourceRow) {
	t.Helper()
	data, err := json.Marshal(rows)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func TestDatasourceLoadsSeasonFiles(t *testing.T) {
	dir := t.TempDir()
	writeSeasonFile(t, dir, "epl-2022-2023.json", []SourceRow{
		{"home_team": "Arsenal", "away_team": "Chelsea", "home_goals": 2.0, "away_goals": 0.0, "date": "2022-08-13", "week": 1.0},
	})
	writeSeasonFile(t, dir, "epl-2023-2024.json", []SourceRow{
		{"home_team": "Chelsea", "away_team": "Arsenal", "home_goals": 1.0, "away_goals": 1.0, "date": "2023-08-12", "week": 1.0},
	})

	ds := NewDatasource(dir, NewMemoryCache())
	require.NoError(t, ds.Load())

	require.Len(t, ds.Matches, 2)
	assert.Equal(t, "2022-2023", ds.Matches[0].Season)
	assert.Equal(t, "2023-2024", ds.Matches[1].Season)
}

func TestDatasourceReadsGzippedSeasons(t *testing.T) {
	dir := t.TempDir()
	rows := []SourceRow{
		{"home_team": "Arsenal", "away_team": "Spurs", "home_goals": 3.0, "away_goals": 1.0, "week": 1.0},
	}
	data, err := json.Marshal(rows)
	require.NoError(t, err)

	f, err := os.Create(filepath.Join(dir, "epl-2023-2024.json.gz"))
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	ds := NewDatasource(dir, NewMemoryCache())
	require.NoError(t, ds.Load())
	require.Len(t, ds.Matches, 1)
	assert.Equal(t, "Arsenal", ds.Matches[0].HomeTeamName)
}

func TestDatasourceUsesCacheOnSecondLoad(t *testing.T) {
	dir := t.TempDir()
	writeSeasonFile(t, dir, "epl-2023-2024.json", []SourceRow{
		{"home_team": "Arsenal", "away_team": "Chelsea", "week": 1.0},
	})

	cache := NewMemoryCache()
	ds := NewDatasource(dir, cache)
	require.NoError(t, ds.Load())

	// Replace the raw file with garbage: a warm cache must keep working
	require.NoError(t, os.WriteFile(filepath.Join(dir, "epl-2023-2024.json"), []byte("garbage"), 0644))

	ds2 := NewDatasource(dir, cache)
	require.NoError(t, ds2.Load())
	assert.Len(t, ds2.Matches, 1)
}

func TestDatasourceCacheKeepsTeamIds(t *testing.T) {
	dir := t.TempDir()
	writeSeasonFile(t, dir, "epl-2023-2024.json", []SourceRow{
		{"home_team": "Leeds", "away_team": "Chelsea", "home_team_id": "leeds-united", "week": 1.0},
	})

	cache := NewMemoryCache()
	ds := NewDatasource(dir, cache)
	require.NoError(t, ds.Load())
	require.Equal(t, "leeds-united", ds.Matches[0].HomeID)

	// Force the second load through the cache
	require.NoError(t, os.WriteFile(filepath.Join(dir, "epl-2023-2024.json"), []byte("garbage"), 0644))

	ds2 := NewDatasource(dir, cache)
	require.NoError(t, ds2.Load())
	assert.Equal(t, "leeds-united", ds2.Matches[0].HomeID)
	assert.Equal(t, "chelsea", ds2.Matches[0].AwayID)
}

func TestDatasourceErrorsOnEmptyDirectory(t *testing.T) {
	ds := NewDatasource(t.TempDir(), NewMemoryCache())
	err := ds.Load()
	var insufficient *DataInsufficiencyError
	assert.ErrorAs(t, err, &insufficient)
}

func TestDatasourceMergesOddsFiles(t *testing.T) {
	dir := t.TempDir()
	writeSeasonFile(t, dir, "epl-2023-2024.json", []SourceRow{
		{"home_team": "Arsenal", "away_team": "Chelsea", "home_goals": 1.0, "away_goals": 0.0, "week": 1.0},
	})
	// Spreadsheet exports prefix the header row with a byte order mark
	csv := "\uFEFFHomeTeam,AwayTeam,AvgH,AvgD,AvgA\nArsenal,Chelsea,1.8,3.6,4.2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "odds-2023-2024.csv"), []byte(csv), 0644))

	ds := NewDatasource(dir, NewMemoryCache())
	require.NoError(t, ds.Load())

	m := ds.Matches[0]
	assert.Equal(t, 1.8, m.HomeOdds)
	assert.Equal(t, 3.6, m.DrawOdds)
	assert.Equal(t, 4.2, m.AwayOdds)
}

func TestAverageOddsFallsBackToBookmakerColumns(t *testing.T) {
	row := map[string]string{
		"B365H": "2.0", "B365D": "3.0", "B365A": "4.0",
		"WHH": "2.2", "WHD": "3.2", "WHA": "3.8",
	}
	h, d, a := averageOdds(row)
	assert.InDelta(t, 2.1, h, 1e-9)
	assert.InDelta(t, 3.1, d, 1e-9)
	assert.InDelta(t, 3.9, a, 1e-9)

	h, d, a = averageOdds(map[string]string{})
	assert.Equal(t, -1.0, h)
	assert.Equal(t, -1.0, d)
	assert.Equal(t, -1.0, a)
}

func TestFileCacheTTLExpiry(t *testing.T) {
	cache := &FileCache{Dir: t.TempDir(), TTL: 0}
	require.NoError(t, cache.Put("k", []byte("v")))

	data, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), data)

	expiring := &FileCache{Dir: cache.Dir, TTL: time.Nanosecond}
	time.Sleep(10 * time.Millisecond)
	_, ok = expiring.Get("k")
	assert.False(t, ok)
}
