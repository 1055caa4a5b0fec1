package server

import (
	"bytes"
	"context"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/deufel/golftracker/internal/leaderboard"
)

// rowView is the template-facing shape of one leaderboard row.
type rowView struct {
	ID    string
	Name  string
	Short string
	Rank  int
	Found bool
	Place int
	// Points and Winnings carry the formatted dollar strings.
	Points   string
	Winnings string
	Wins     int
	Top5s    int
	Top20s   int
	Cuts     int
}

type trackerView struct {
	Rows []rowView
}

func (s *Server) renderTracker(ctx context.Context) (string, error) {
	return s.execTemplate("tracker", s.buildTrackerView(ctx))
}

func (s *Server) renderPage(ctx context.Context) (string, error) {
	return s.execTemplate("page", s.buildTrackerView(ctx))
}

func (s *Server) renderLoadingRow(username string) (string, error) {
	return s.execTemplate("loading-row", rowView{
		ID:    strings.ToLower(username),
		Name:  username,
		Short: shorten(username),
	})
}

func (s *Server) buildTrackerView(ctx context.Context) trackerView {
	rows := leaderboard.Build(ctx, s.roster.All(), s.finder)

	views := make([]rowView, len(rows))
	for i, row := range rows {
		views[i] = newRowView(row)
	}
	return trackerView{Rows: views}
}

func newRowView(row leaderboard.Row) rowView {
	v := rowView{
		ID:    strings.ToLower(row.Username),
		Name:  row.Username,
		Short: shorten(row.Username),
		Rank:  row.Rank,
		Found: row.Found,
	}
	if row.Found {
		v.Place = row.Entry.CurrentPlace
		v.Points = dollars(row.Entry.FantasyPoints)
		v.Winnings = dollars(row.Entry.Winnings)
		v.Wins = row.Entry.Stats.Wins
		v.Top5s = row.Entry.Stats.Top5s
		v.Top20s = row.Entry.Stats.Top20s
		v.Cuts = row.Entry.Stats.CutsMade
	}
	return v
}

func (s *Server) execTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func dollars(v float64) string {
	return "$" + humanize.Comma(int64(v))
}

func shorten(name string) string {
	runes := []rune(name)
	if len(runes) > 5 {
		return string(runes[:5])
	}
	return name
}
