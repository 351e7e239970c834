package epl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var seasonPattern = regexp.MustCompile(`^(\d{4})\s*[-/]\s*(\d{2}|\d{4})$`)

// ParseSeason normalizes the season formats seen in the wild ("2023-2024",
// "2023/2024", "2023/24", "2023-24", bare "2023") to the canonical
// "YYYY-YYYY" form. A bare year is taken as the opening year.
func ParseSeason(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty season string")
	}

	if m := seasonPattern.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		if len(m[2]) == 2 {
			second = (first/100)*100 + second
			if second < first {
				second += 100
			}
		}
		if second != first+1 {
			return "", fmt.Errorf("season years are not consecutive in %q", raw)
		}
		return fmt.Sprintf("%d-%d", first, second), nil
	}

	if year, err := strconv.Atoi(s); err == nil && year >= 1888 && year <= 2200 {
		return fmt.Sprintf("%d-%d", year, year+1), nil
	}

	return "", fmt.Errorf("unrecognised season format %q", raw)
}

// SeasonFirstYear returns the opening year of a canonical season string,
// or 0 when it cannot be parsed
func SeasonFirstYear(season string) int {
	head, _, _ := strings.Cut(season, "-")
	year, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return year
}
