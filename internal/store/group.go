package store

import (
	"time"

	"github.com/iksnae/agent-chat/internal"
)

// DayGroup is a run of sessions last updated on the same calendar day
type DayGroup struct {
	Label    string
	Sessions []*internal.Session
}

// GroupByDay buckets sessions by the local calendar day of UpdatedAt,
// labelled "Today", "Yesterday" or e.g. "March 3". Groups appear in the
// order their first session appears; order within a group is preserved.
func GroupByDay(sessions []*internal.Session, now time.Time) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int)

	for _, session := range sessions {
		label := dayLabel(session.UpdatedAt.In(now.Location()), now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DayGroup{Label: label})
		}
		groups[i].Sessions = append(groups[i].Sessions, session)
	}
	return groups
}

func dayLabel(t, now time.Time) string {
	switch {
	case sameDay(t, now):
		return "Today"
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return t.Format("January 2")
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
