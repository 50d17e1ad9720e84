package catalog

import (
	"sort"
	"strings"

	"github.com/Sam33128/Gita-pyqvault/pkg/types"
)

// Filter narrows a catalog query. Nil or zero-value fields impose no
// constraint.
type Filter struct {
	Subject  string `json:"subject,omitempty"`
	Year     *int   `json:"year,omitempty"`
	Semester *int   `json:"semester,omitempty"`
	ExamType string `json:"exam_type,omitempty"`
}

// Matches reports whether the record satisfies every present filter field.
// Subject comparison is case-insensitive.
func (f Filter) Matches(p types.Paper) bool {
	if f.Year != nil && p.Year != *f.Year {
		return false
	}
	if f.Semester != nil && p.Semester != *f.Semester {
		return false
	}
	if f.Subject != "" && !strings.EqualFold(p.Subject, f.Subject) {
		return false
	}
	if f.ExamType != "" && p.ExamType != f.ExamType {
		return false
	}
	return true
}

// Query returns the records matching the filter, in stored order. An empty
// filter returns the whole catalog; no matches returns an empty slice.
func Query(papers []types.Paper, f Filter) []types.Paper {
	matched := []types.Paper{}
	for _, p := range papers {
		if f.Matches(p) {
			matched = append(matched, p)
		}
	}
	return matched
}

// SortNewestFirst orders papers by exam session (newest first), then
// subject, then exam type.
func SortNewestFirst(papers []types.Paper) {
	sort.SliceStable(papers, func(i, j int) bool {
		if papers[i].ExamYear != papers[j].ExamYear {
			return papers[i].ExamYear > papers[j].ExamYear
		}
		if papers[i].Subject != papers[j].Subject {
			return papers[i].Subject < papers[j].Subject
		}
		return papers[i].ExamType < papers[j].ExamType
	})
}

// Subjects returns the sorted distinct subjects present in the catalog,
// restricted to the given course year and semester when provided. Used for
// the filter form's suggestion list.
func Subjects(papers []types.Paper, year, semester *int) []string {
	seen := make(map[string]struct{})
	for _, p := range papers {
		if year != nil && p.Year != *year {
			continue
		}
		if semester != nil && p.Semester != *semester {
			continue
		}
		seen[p.Subject] = struct{}{}
	}

	subjects := make([]string, 0, len(seen))
	for s := range seen {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects
}

// SemestersForYear maps a course year to its semesters: 1st year carries
// semesters 1-2, 2nd 3-4, 3rd 5-6, 4th 7-8. Unknown years return nil.
func SemestersForYear(year int) []int {
	if year < 1 || year > 4 {
		return nil
	}
	return []int{year*2 - 1, year * 2}
}
