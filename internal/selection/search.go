package selection

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/openmohaa/hiscores-dash/internal/models"
)

// Match is one picker search hit.
type Match struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Index    int    `json:"index"`
	Distance int    `json:"distance"`
}

// Search looks up items in the current tab by name. Substring matches come
// back in list order; when there are none, names within a small edit
// distance of the query are returned closest first.
func (c *Controller) Search(query string) []Match {
	c.mu.Lock()
	filtered := c.filteredLocked()
	c.mu.Unlock()

	return searchItems(filtered, query)
}

func searchItems(items []models.DisplayItem, query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Match{}
	}

	out := []Match{}
	for i, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, Match{ID: it.ID, Name: it.Name, Index: i})
		}
	}
	if len(out) > 0 {
		return out
	}

	limit := distanceLimit(len(q))
	for i, it := range items {
		dist := closestDistance(strings.ToLower(it.Name), q)
		if dist > limit {
			continue
		}
		out = append(out, Match{ID: it.ID, Name: it.Name, Index: i, Distance: dist})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

// closestDistance compares q against the whole name and each word of it, so
// "vorkth" finds "Vorkath" and "gauntlt" finds "The Gauntlet".
func closestDistance(name, q string) int {
	best := levenshtein.ComputeDistance(name, q)
	for _, word := range strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '-' || r == '(' || r == ')' || r == ':'
	}) {
		best = min(best, levenshtein.ComputeDistance(word, q))
	}
	return best
}

func distanceLimit(length int) int {
	switch {
	case length < 3:
		return 0
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
