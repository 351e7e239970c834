package epl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeasonFormats(t *testing.T) {
	cases := map[string]string{
		"2023-2024": "2023-2024",
		"2023/2024": "2023-2024",
		"2023/24":   "2023-2024",
		"2023-24":   "2023-2024",
		"2023":      "2023-2024",
		" 2023 ":    "2023-2024",
		"1999/00":   "1999-2000",
	}

	for input, want := range cases {
		got, err := ParseSeason(input)
		assert.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestParseSeasonRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "banana", "2023-2025", "23/24/25"} {
		_, err := ParseSeason(input)
		assert.Error(t, err, input)
	}
}

func TestSeasonFirstYear(t *testing.T) {
	assert.Equal(t, 2023, SeasonFirstYear("2023-2024"))
	assert.Equal(t, 0, SeasonFirstYear("junk"))
}
