package domain

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the layout the CMS writes dates in.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order. Header dates are free text; ISO dates are
// what the CMS writes, the rest show up in hand-written files.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDate leniently parses a header date. ok is false when no known
// layout matches.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortByDateDesc orders posts newest first. Posts with unparseable dates go
// last; ties keep their incoming order.
func SortByDateDesc(posts []*Post) {
	type keyed struct {
		t  time.Time
		ok bool
	}
	keys := make(map[*Post]keyed, len(posts))
	for _, p := range posts {
		t, ok := ParseDate(p.Date)
		keys[p] = keyed{t: t, ok: ok}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		a, b := keys[posts[i]], keys[posts[j]]
		if a.ok != b.ok {
			return a.ok
		}
		return a.t.After(b.t)
	})
}
