package derive

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/anivibe/anivibe/internal/media"
)

const dayKeyLayout = "2006-01-02"

// DayGroup is one calendar day of the home page airing tracker.
type DayGroup struct {
	Key       string        `json:"key"`
	Label     string        `json:"label"`
	DayNumber int           `json:"dayNumber,omitempty"`
	IsToday   bool          `json:"isToday"`
	Entries   []media.Anime `json:"entries"`

	date time.Time
}

var weekdayOrder = map[string]int{
	"monday": 1, "tuesday": 2, "wednesday": 3, "thursday": 4,
	"friday": 5, "saturday": 6, "sunday": 7,
}

// DayKey returns the grouping key of an entry: its calendar date in loc, or
// the lower-cased airing weekday ("daily" when absent) for undated entries.
func DayKey(e media.Anime, loc *time.Location) string {
	if e.AiringAt.Valid() {
		return e.AiringAt.In(loc).Format(dayKeyLayout)
	}
	day := strings.ToLower(strings.TrimSpace(e.AiringDay))
	if day == "" {
		return "daily"
	}
	return day
}

// GroupScheduleByDay buckets schedule entries by calendar day in now's
// location. Dated groups come first in date order; undated groups follow in
// weekday order. Entries within a group are ordered by airing time with
// undated entries last.
func GroupScheduleByDay(entries []media.Anime, now time.Time) []DayGroup {
	if len(entries) == 0 {
		return nil
	}

	loc := now.Location()
	todayKey := now.Format(dayKeyLayout)

	index := make(map[string]int)
	var groups []DayGroup

	for _, e := range entries {
		key := DayKey(e, loc)
		i, ok := index[key]
		if !ok {
			g := DayGroup{Key: key, IsToday: key == todayKey}
			if e.AiringAt.Valid() {
				local := e.AiringAt.In(loc)
				g.date = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
				g.Label = strings.ToUpper(local.Format("Mon"))
				g.DayNumber = local.Day()
			} else {
				g.Label = strings.ToUpper(truncateRunes(media.FirstNonEmpty(e.AiringDay, "Daily"), 3))
			}
			i = len(groups)
			index[key] = i
			groups = append(groups, g)
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}

	slices.SortStableFunc(groups, compareGroups)
	for i := range groups {
		slices.SortStableFunc(groups[i].Entries, compareAiring)
	}
	return groups
}

func compareGroups(a, b DayGroup) int {
	switch {
	case !a.date.IsZero() && !b.date.IsZero():
		return a.date.Compare(b.date)
	case !a.date.IsZero():
		return -1
	case !b.date.IsZero():
		return 1
	}
	return cmp.Compare(weekdayRank(a.Key), weekdayRank(b.Key))
}

func weekdayRank(day string) int {
	if r, ok := weekdayOrder[day]; ok {
		return r
	}
	return len(weekdayOrder) + 1
}

func compareAiring(a, b media.Anime) int {
	switch {
	case a.AiringAt.Valid() && b.AiringAt.Valid():
		return a.AiringAt.Compare(b.AiringAt.Time)
	case a.AiringAt.Valid():
		return -1
	case b.AiringAt.Valid():
		return 1
	}
	return 0
}

// PickScheduleDay keeps the previously active day when it still exists,
// otherwise selects today, otherwise the first group.
func PickScheduleDay(groups []DayGroup, previous string) string {
	if len(groups) == 0 {
		return ""
	}
	if previous != "" {
		for _, g := range groups {
			if g.Key == previous {
				return previous
			}
		}
	}
	for _, g := range groups {
		if g.IsToday {
			return g.Key
		}
	}
	return groups[0].Key
}

// CycleScheduleDay moves the active day by direction, wrapping around. An
// unknown active key counts as the first group.
func CycleScheduleDay(groups []DayGroup, active string, direction int) string {
	n := len(groups)
	if n == 0 {
		return ""
	}
	idx := slices.IndexFunc(groups, func(g DayGroup) bool { return g.Key == active })
	if idx < 0 {
		idx = 0
	}
	next := ((idx+direction)%n + n) % n
	return groups[next].Key
}

// FindDay returns the group with key.
func FindDay(groups []DayGroup, key string) (DayGroup, bool) {
	for _, g := range groups {
		if g.Key == key {
			return g, true
		}
	}
	return DayGroup{}, false
}

// Slot is the weekday and time an entry airs, as shown on schedule rows.
type Slot struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// ScheduleSlot formats an entry's airing slot in loc. Undated entries fall
// back to their airing day and time.
func ScheduleSlot(e media.Anime, loc *time.Location) Slot {
	if e.AiringAt.Valid() {
		t := e.AiringAt.In(loc)
		return Slot{Day: t.Format("Mon"), Time: t.Format("03:04 PM")}
	}
	return Slot{
		Day:  media.FirstNonEmpty(e.AiringDay, "Daily"),
		Time: media.FirstNonEmpty(e.AiringTime, "TBA"),
	}
}

// UnknownDay labels schedule entries without an airing weekday.
const UnknownDay = "Unknown"

// WeekdayGroup is one section of the schedule page.
type WeekdayGroup struct {
	Day     string        `json:"day"`
	Entries []media.Anime `json:"entries"`
}

// GroupByWeekday groups schedule page entries by airing weekday in
// first-seen order. When a day filter is active the whole list is a single
// group named after it.
func GroupByWeekday(entries []media.Anime, activeDay string) []WeekdayGroup {
	if activeDay != "" {
		return []WeekdayGroup{{Day: activeDay, Entries: entries}}
	}

	index := make(map[string]int)
	var groups []WeekdayGroup
	for _, e := range entries {
		day := media.FirstNonEmpty(e.AiringDay, UnknownDay)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, WeekdayGroup{Day: day})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
