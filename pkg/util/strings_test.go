package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, LevenshteinDistance("arsenal", "arsenal"))
	assert.Equal(t, 1, LevenshteinDistance("arsenal", "arsenl"))
	assert.Equal(t, 7, LevenshteinDistance("", "arsenal"))
}

func TestFuzzyMatchFindsSubstrings(t *testing.T) {
	assert.Equal(t, 0, FuzzyMatch("spurs", "Tottenham spurs FC"))
	assert.Equal(t, 1, FuzzyMatch("chelsee", "Chelsea"))
}

func TestFuzzyMatchScore(t *testing.T) {
	assert.Equal(t, 1.0, FuzzyMatchScore("", ""))
	assert.Equal(t, 0.0, FuzzyMatchScore("", "Arsenal"))
	assert.Greater(t, FuzzyMatchScore("Arsenal", "Arsenl"), 0.6)
	assert.Less(t, FuzzyMatchScore("Arsenal", "xxxxxxxxxxxxxxxx"), 0.5)
}

func TestFuzzyMatchScoreUnrelatedNamesStayLow(t *testing.T) {
	// A short candidate must not score well against a longer unrelated
	// name just because short windows are cheap to edit
	assert.Less(t, FuzzyMatchScore("Real Madrid", "Spurs"), 0.5)
	assert.Less(t, FuzzyMatchScore("Bayern Munich", "Everton"), 0.5)
	assert.Less(t, FuzzyMatchScore("Ajax", "Manchester United"), 0.5)
}

func TestGetAsInteger(t *testing.T) {
	for _, input := range []any{42, int64(42), 42.0, "42", " 42 "} {
		v, err := GetAsInteger(input)
		assert.NoError(t, err)
		assert.Equal(t, 42, v)
	}

	_, err := GetAsInteger(42.5)
	assert.Error(t, err)
	_, err = GetAsInteger(nil)
	assert.Error(t, err)
}

func TestGetAsFloat(t *testing.T) {
	for _, input := range []any{1.5, "1.5"} {
		v, err := GetAsFloat(input)
		assert.NoError(t, err)
		assert.Equal(t, 1.5, v)
	}

	_, err := GetAsFloat(nil)
	assert.Error(t, err)
}

func TestGetAsString(t *testing.T) {
	v, err := GetAsString(3)
	assert.NoError(t, err)
	assert.Equal(t, "3", v)

	v, err = GetAsString("already")
	assert.NoError(t, err)
	assert.Equal(t, "already", v)

	_, err = GetAsString(nil)
	assert.Error(t, err)
}
