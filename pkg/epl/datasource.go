package epl

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samonide/epl-prediction/internal/logger"
)

// Datasource loads season files and odds files from the assets directory
// and produces the normalized match list. Parsed seasons go through the
// injected cache so repeat runs skip the raw parse.
type Datasource struct {
	AssetsPath string
	Cache      Cache
	Matches    []*Match
}

var (
	datasourceInstance *Datasource
	datasourceOnce     sync.Once
)

// GetDatasourceInstance returns the singleton datasource over the
// configured assets directory
func GetDatasourceInstance() *Datasource {
	datasourceOnce.Do(func() {
		datasourceInstance = NewDatasource(Config.AssetsPath, NewFileCache(Config.CacheTTL))
		if err := datasourceInstance.Load(); err != nil {
			logger.Error("Error loading data", err)
		}
	})
	return datasourceInstance
}

// NewDatasource builds a datasource with an explicit cache, mainly for
// tests
func NewDatasource(assetsPath string, cache Cache) *Datasource {
	return &Datasource{AssetsPath: assetsPath, Cache: cache}
}

var seasonFilePattern = regexp.MustCompile(`^(?:epl[-_])?(\d{4}[-_]\d{2,4})\.json(\.gz)?$`)
var oddsFilePattern = regexp.MustCompile(`^odds[-_](\d{4}[-_]\d{2,4})\.csv$`)

// Load scans the assets directory for season JSON files and odds CSV
// files, normalizes everything, and keeps the merged chronological list
func (ds *Datasource) Load() error {
	entries, err := os.ReadDir(ds.AssetsPath)
	if err != nil {
		return fmt.Errorf("failed to read assets directory %s: %w", ds.AssetsPath, err)
	}

	var all []*Match
	oddsFiles := map[string]string{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		if m := oddsFilePattern.FindStringSubmatch(name); m != nil {
			season, err := ParseSeason(strings.ReplaceAll(m[1], "_", "-"))
			if err != nil {
				logger.Warn("Skipping odds file with bad season", name, err)
				continue
			}
			oddsFiles[season] = filepath.Join(ds.AssetsPath, name)
			continue
		}

		m := seasonFilePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		season := strings.ReplaceAll(m[1], "_", "-")

		matches, err := ds.loadSeasonFile(filepath.Join(ds.AssetsPath, name), season)
		if err != nil {
			return fmt.Errorf("failed to load season file %s: %w", name, err)
		}
		all = append(all, matches...)
	}

	if len(all) == 0 {
		return &DataInsufficiencyError{Reason: fmt.Sprintf("no season files found under %s", ds.AssetsPath)}
	}

	for season, path := range oddsFiles {
		if err := ds.mergeOddsFile(all, season, path); err != nil {
			logger.Warn("Failed to merge odds file", path, err)
		}
	}

	SortMatches(all)
	ds.Matches = all
	logger.Info("Loaded matches from assets", len(all))
	return nil
}

// cachedMatch is the raw-column snapshot stored in the cache. Feature
// fields never go in: they are NaN until the feature pass and are always
// recomputed from these columns.
type cachedMatch struct {
	ID        string    `json:"id"`
	UTCTime   time.Time `json:"utcTime"`
	Week      int       `json:"week"`
	Season    string    `json:"season"`
	HasDate   bool      `json:"hasDate"`
	HomeID    string    `json:"homeId"`
	AwayID    string    `json:"awayId"`
	Home      string    `json:"home"`
	Away      string    `json:"away"`
	HomeGoals int       `json:"homeGoals"`
	AwayGoals int       `json:"awayGoals"`
	HomeXg    float64   `json:"homeXg"`
	AwayXg    float64   `json:"awayXg"`
	HomeOdds  float64   `json:"homeOdds"`
	DrawOdds  float64   `json:"drawOdds"`
	AwayOdds  float64   `json:"awayOdds"`
}

func toCached(matches []*Match) []cachedMatch {
	out := make([]cachedMatch, len(matches))
	for i, m := range matches {
		out[i] = cachedMatch{
			ID: m.ID, UTCTime: m.UTCTime, Week: m.Week, Season: m.Season,
			HasDate: m.HasDate, HomeID: m.HomeID, AwayID: m.AwayID,
			Home: m.HomeTeamName, Away: m.AwayTeamName,
			HomeGoals: m.HomeGoals, AwayGoals: m.AwayGoals,
			HomeXg: m.HomeXg, AwayXg: m.AwayXg,
			HomeOdds: m.HomeOdds, DrawOdds: m.DrawOdds, AwayOdds: m.AwayOdds,
		}
	}
	return out
}

func fromCached(cached []cachedMatch) []*Match {
	out := make([]*Match, len(cached))
	for i, c := range cached {
		m := NewMatch(c.Home, c.Away)
		m.ID = c.ID
		if c.HomeID != "" {
			m.HomeID = c.HomeID
		}
		if c.AwayID != "" {
			m.AwayID = c.AwayID
		}
		m.UTCTime = c.UTCTime
		m.Week = c.Week
		m.Season = c.Season
		m.HasDate = c.HasDate
		m.HomeGoals, m.AwayGoals = c.HomeGoals, c.AwayGoals
		m.HomeXg, m.AwayXg = c.HomeXg, c.AwayXg
		m.HomeOdds, m.DrawOdds, m.AwayOdds = c.HomeOdds, c.DrawOdds, c.AwayOdds
		out[i] = m
	}
	return out
}

// loadSeasonFile parses one season's raw rows, going through the cache
// for the normalized form
func (ds *Datasource) loadSeasonFile(path, season string) ([]*Match, error) {
	cacheKey := "normalized-" + filepath.Base(path)
	if ds.Cache != nil {
		if data, ok := ds.Cache.Get(cacheKey); ok {
			var cached []cachedMatch
			if err := json.Unmarshal(data, &cached); err == nil {
				logger.Debug("Loaded season from cache", season, len(cached))
				return fromCached(cached), nil
			}
			logger.Warn("Discarding unreadable cache entry", cacheKey)
		}
	}

	raw, err := readMaybeGzip(path)
	if err != nil {
		return nil, err
	}

	rows, err := decodeSeasonRows(raw)
	if err != nil {
		return nil, err
	}

	matches, err := NormalizeSeason(season, rows)
	if err != nil {
		return nil, err
	}

	if ds.Cache != nil {
		if data, err := json.Marshal(toCached(matches)); err == nil {
			if err := ds.Cache.Put(cacheKey, data); err != nil {
				logger.Warn("Failed to write cache entry", cacheKey, err)
			}
		}
	}

	return matches, nil
}

func readMaybeGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}

// decodeSeasonRows accepts either a bare array of rows or an object
// wrapping the rows under "matches"
func decodeSeasonRows(data []byte) ([]SourceRow, error) {
	var rows []SourceRow
	if err := json.Unmarshal(data, &rows); err == nil {
		return rows, nil
	}

	var wrapper struct {
		Matches []SourceRow `json:"matches"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("season file is neither a row array nor a matches object: %w", err)
	}
	return wrapper.Matches, nil
}

// mergeOddsFile attaches average bookmaker odds to the season's matches,
// matched on team names
func (ds *Datasource) mergeOddsFile(matches []*Match, season, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse odds CSV: %w", err)
	}
	if len(records) < 2 {
		return nil
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	index := map[string]*Match{}
	for _, m := range matches {
		if m.Season == season {
			index[slug(m.HomeTeamName)+"|"+slug(m.AwayTeamName)] = m
		}
	}

	merged := 0
	for _, record := range records[1:] {
		row := map[string]string{}
		for j, value := range record {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(value)
			}
		}

		home := firstNonBlank(row, "HomeTeam", "home_team")
		away := firstNonBlank(row, "AwayTeam", "away_team")
		if home == "" || away == "" {
			continue
		}

		m, ok := index[slug(home)+"|"+slug(away)]
		if !ok {
			continue
		}

		ho, do, ao := averageOdds(row)
		if ho > 0 && do > 0 && ao > 0 {
			m.HomeOdds, m.DrawOdds, m.AwayOdds = ho, do, ao
			merged++
		}
	}

	logger.Info("Merged odds", season, merged, "matches")
	return nil
}

func firstNonBlank(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}

// averageOdds pulls pre-averaged columns when present, otherwise averages
// the individual bookmaker columns. Returns -1 values when nothing usable
// exists in the row.
func averageOdds(row map[string]string) (float64, float64, float64) {
	for _, prefix := range []string{"AvgC", "Avg"} {
		if h, err := strconv.ParseFloat(row[prefix+"H"], 64); err == nil {
			d, errD := strconv.ParseFloat(row[prefix+"D"], 64)
			a, errA := strconv.ParseFloat(row[prefix+"A"], 64)
			if errD == nil && errA == nil {
				return h, d, a
			}
		}
	}

	bookies := []string{"B365", "BF", "BW", "IW", "LB", "PS", "VC", "WH"}
	var hTotal, dTotal, aTotal float64
	count := 0
	for _, b := range bookies {
		h, errH := strconv.ParseFloat(row[b+"H"], 64)
		d, errD := strconv.ParseFloat(row[b+"D"], 64)
		a, errA := strconv.ParseFloat(row[b+"A"], 64)
		if errH != nil || errD != nil || errA != nil {
			continue
		}
		hTotal += h
		dTotal += d
		aTotal += a
		count++
	}
	if count == 0 {
		return -1.0, -1.0, -1.0
	}

	round2 := func(v float64) float64 { return math.Round(v*100) / 100 }
	return round2(hTotal / float64(count)), round2(dTotal / float64(count)), round2(aTotal / float64(count))
}
