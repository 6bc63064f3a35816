package engine

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// PageSize is the fixed leaderboard page length.
const PageSize = 10

// Entry is one player's row on the leaderboard. Rank is filled in by Rank.
type Entry struct {
	PlayerID   string   `json:"player_id"`
	Username   string   `json:"username"`
	Rank       int      `json:"rank"`
	Level      int      `json:"level"`
	Title      string   `json:"title"`
	XPTotal    int      `json:"xp_total"`
	BadgeCount int      `json:"badge_count"`
	Badges     []string `json:"badges,omitempty"`
	Region     string   `json:"region,omitempty"`
}

// Filter narrows the leaderboard. Empty fields match everything; set fields combine with AND.
type Filter struct {
	Region string
	Search string
}

// Leaderboard is one page of a ranked, filtered view.
type Leaderboard struct {
	Entries      []Entry `json:"entries"`
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalEntries int     `json:"total_entries"`
	// CallerRank is 0 when the caller is not in the filtered set.
	CallerRank  int    `json:"caller_rank"`
	CallerEntry *Entry `json:"caller_entry,omitempty"`
}

// Rank filters entries, orders them by xp (desc) then player id (asc), numbers
// the filtered set 1..n and returns the requested page. Ranks are always relative
// to the filter, never global. A page past the end is empty, not an error.
func Rank(entries []Entry, f Filter, page int, callerID string) (Leaderboard, error) {
	if page < 1 {
		return Leaderboard{}, invalidArgf("page must be >= 1, got %d", page)
	}

	filtered := applyFilter(entries, f)
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].XPTotal != filtered[j].XPTotal {
			return filtered[i].XPTotal > filtered[j].XPTotal
		}
		return filtered[i].PlayerID < filtered[j].PlayerID
	})

	out := Leaderboard{
		Page:         page,
		TotalEntries: len(filtered),
		TotalPages:   (len(filtered) + PageSize - 1) / PageSize,
		Entries:      []Entry{},
	}
	for i := range filtered {
		filtered[i].Rank = i + 1
		if filtered[i].Title == "" {
			filtered[i].Title = TitleForLevel(filtered[i].Level)
		}
		if callerID != "" && filtered[i].PlayerID == callerID {
			caller := filtered[i]
			out.CallerRank = caller.Rank
			out.CallerEntry = &caller
		}
	}

	start := (page - 1) * PageSize
	if start < len(filtered) {
		end := start + PageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		out.Entries = filtered[start:end]
	}
	return out, nil
}

// LocatePlayer returns the 1-based rank of playerID within the filtered view, or 0.
func LocatePlayer(entries []Entry, f Filter, playerID string) int {
	lb, err := Rank(entries, f, 1, playerID)
	if err != nil {
		return 0
	}
	return lb.CallerRank
}

// applyFilter copies matching entries so callers' slices are never reordered or mutated.
func applyFilter(entries []Entry, f Filter) []Entry {
	fold := cases.Fold()
	region := strings.TrimSpace(f.Region)
	query := fold.String(strings.TrimSpace(f.Search))

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if region != "" && e.Region != region {
			continue
		}
		if query != "" && !strings.Contains(fold.String(e.Username), query) {
			continue
		}
		if e.Badges != nil {
			e.Badges = append([]string(nil), e.Badges...)
		}
		out = append(out, e)
	}
	return out
}
