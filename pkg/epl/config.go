package epl

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EplConfig contains all configurable parameters that influence dataset
// construction, training and inference.
// This centralizes all magic numbers and constants for easy adjustment
type EplConfig struct {
	// Filesystem locations
	AssetsPath string        // base directory for on-disk assets
	CachePath  string        // directory holding cached season/odds files
	DbPath     string        // sqlite database location
	BundlePath string        // persisted model bundle location
	CacheTTL   time.Duration // lifetime of cached normalized seasons (default: 7 days)

	// === ELO RATING PARAMETERS ===

	EloKFactor       float64 // rating exchange factor per match (default: 20.0)
	EloHomeAdvantage float64 // rating points added to home side in the expectation only (default: 50.0)
	EloInitialRating float64 // rating assigned to unseen teams (default: 1500.0)

	// === ROLLING FORM PARAMETERS ===

	FormWindow int // trailing window for form/H2H aggregates (default: 5)

	// Points awarded per result
	PointsWin  float64 // default: 3.0
	PointsDraw float64 // default: 1.0
	PointsLoss float64 // default: 0.0

	// === STRENGTH COMPOSITE WEIGHTS ===

	StrengthXGForWeight float64 // weight of xG-for in the composite (default: 0.4)
	StrengthPPGWeight   float64 // weight of the points proxy (default: 0.6)
	StrengthXGAgWeight  float64 // subtractive weight of xG-against (default: 0.3)

	// === TRAINING PARAMETERS ===

	ForestTrees           int     // random forest size (default: 200)
	ForestMaxDepth        int     // tree depth limit (default: 10)
	ForestMinSamplesSplit int     // minimum samples to split a node (default: 5)
	ForestMinSamplesLeaf  int     // minimum samples per leaf (default: 2)
	ForestSeed            int64   // rng seed for bootstrap/feature sampling (default: 42)
	LogisticMaxIter       int     // gradient descent iterations (default: 400)
	LogisticC             float64 // inverse L2 regularization strength (default: 1.0)
	HoldoutFraction       float64 // chronological holdout when only one season exists (default: 0.2)

	// === INFERENCE PARAMETERS ===

	DefaultTopFixtures int     // fixtures returned when no count requested (default: 10)
	OddsModelWeight    float64 // model share in the model/market probability blend (default: 0.7)
	SyntheticLeadDays  int     // days ahead of "today" for synthesized fixtures (default: 7)
}

// DefaultConfig returns the default configuration with all standard values
func DefaultConfig() *EplConfig {
	assetsPath := defaultAssetsPath()
	config := &EplConfig{
		AssetsPath: assetsPath,
		CachePath:  filepath.Join(assetsPath, "cache"),
		DbPath:     filepath.Join(assetsPath, "epl.db"),
		BundlePath: filepath.Join(assetsPath, "epl_result_model.json"),
		CacheTTL:   7 * 24 * time.Hour,

		EloKFactor:       20.0,
		EloHomeAdvantage: 50.0,
		EloInitialRating: 1500.0,

		FormWindow: 5,
		PointsWin:  3.0,
		PointsDraw: 1.0,
		PointsLoss: 0.0,

		StrengthXGForWeight: 0.4,
		StrengthPPGWeight:   0.6,
		StrengthXGAgWeight:  0.3,

		ForestTrees:           200,
		ForestMaxDepth:        10,
		ForestMinSamplesSplit: 5,
		ForestMinSamplesLeaf:  2,
		ForestSeed:            42,
		LogisticMaxIter:       400,
		LogisticC:             1.0,
		HoldoutFraction:       0.2,

		DefaultTopFixtures: 10,
		OddsModelWeight:    0.7,
		SyntheticLeadDays:  7,
	}
	return config
}

func defaultAssetsPath() string {
	if p := os.Getenv("EPL_PREDICTION_HOME"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".epl-prediction"
	}
	return filepath.Join(home, ".epl-prediction")
}

// Global configuration instance
var Config *EplConfig

func init() {
	Config = DefaultConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *EplConfig) {
	Config = newConfig
}

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *EplConfig) error {
	if config.EloKFactor <= 0 {
		return fmt.Errorf("EloKFactor must be positive, got: %f", config.EloKFactor)
	}

	if config.FormWindow < 1 {
		return fmt.Errorf("FormWindow must be at least 1, got: %d", config.FormWindow)
	}

	if config.ForestTrees < 1 {
		return fmt.Errorf("ForestTrees must be at least 1, got: %d", config.ForestTrees)
	}

	if config.HoldoutFraction <= 0.0 || config.HoldoutFraction >= 1.0 {
		return fmt.Errorf("HoldoutFraction must be in (0, 1), got: %f", config.HoldoutFraction)
	}

	if config.OddsModelWeight < 0.0 || config.OddsModelWeight > 1.0 {
		return fmt.Errorf("OddsModelWeight must be between 0.0 and 1.0, got: %f", config.OddsModelWeight)
	}

	return nil
}

// === HELPER FUNCTIONS FOR EASY ACCESS ===

// GetFormWindow returns the trailing window used by form and H2H features
func GetFormWindow() int {
	return Config.FormWindow
}

// GetOddsModelWeight returns the model share of the model/market blend
func GetOddsModelWeight() float64 {
	return Config.OddsModelWeight
}
