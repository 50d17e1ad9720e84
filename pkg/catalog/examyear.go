package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	singleYearRegex = regexp.MustCompile(`^(\d{4})$`)
	yearRangeRegex  = regexp.MustCompile(`^(\d{4})-(\d{2}|\d{4})$`)
)

// ParseExamYear accepts "2024", "2024-25", or "2024-2025" (en and em dashes
// included) and returns the starting year plus the normalized academic-year
// string when a range was given.
func ParseExamYear(value string) (int, string, error) {
	s := strings.NewReplacer("–", "-", "—", "-", " ", "").Replace(strings.TrimSpace(value))

	if m := singleYearRegex.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year, "", nil
	}

	if m := yearRangeRegex.FindStringSubmatch(s); m != nil {
		start, _ := strconv.Atoi(m[1])
		var end int
		if len(m[2]) == 4 {
			end, _ = strconv.Atoi(m[2])
		} else {
			// Two-digit suffix shares the century with the start year.
			suffix, _ := strconv.Atoi(m[2])
			end = start/100*100 + suffix
		}
		if end < start {
			end = start + 1
		}
		return start, fmt.Sprintf("%d-%d", start, end), nil
	}

	return 0, "", fmt.Errorf("invalid exam year %q", value)
}
