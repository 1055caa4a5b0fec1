// Package leaderboard turns the tracked-user set into a ranked display order.
package leaderboard

import (
	"context"
	"sort"

	"github.com/deufel/golftracker/internal/domain"
)

// notFoundScore sorts unresolved users after every real entry. Legitimate
// fantasy point totals are never negative.
const notFoundScore = -1

// Row is one leaderboard line. For found rows Username carries the upstream
// spelling; for not-found rows it is the tracked name itself.
type Row struct {
	Rank     int
	Username string
	Entry    *domain.Entry
	Found    bool
}

func (r Row) score() float64 {
	if !r.Found {
		return notFoundScore
	}
	return r.Entry.FantasyPoints
}

// Build resolves every tracked username through the finder (sequentially, no
// batching) and returns rows sorted by points descending, with all not-found
// rows after all found rows. Ranks are assigned by position, 1-based with no
// gaps; ties keep the sort's order rather than sharing a rank.
func Build(ctx context.Context, usernames []string, finder domain.EntryFinder) []Row {
	rows := make([]Row, 0, len(usernames))
	for _, username := range usernames {
		entry, found := finder.FindEntry(ctx, username)
		row := Row{Username: username, Entry: entry, Found: found}
		if found {
			row.Username = entry.Username
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].score() > rows[j].score()
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
