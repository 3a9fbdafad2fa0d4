// Package derive computes the collections shown next to raw backend lists:
// top-rated picks, today's releases, schedule day groups, season roadmaps and
// the home page spotlight.
package derive

import (
	"cmp"
	"slices"
	"time"

	"github.com/anivibe/anivibe/internal/media"
)

// TopLimit caps top-rated and "today" lists.
const TopLimit = 10

// Rated is anything carrying a lenient rating.
type Rated interface {
	Rating() media.Rating
}

// ComputeTopRated keeps the items that carry a numeric rating, sorts them by
// rating descending (ties keep their input order) and returns at most ten.
func ComputeTopRated[T Rated](source []T) []T {
	rated := make([]T, 0, len(source))
	for _, item := range source {
		if item.Rating().Valid() {
			rated = append(rated, item)
		}
	}

	slices.SortStableFunc(rated, func(a, b T) int {
		av, _ := a.Rating().Value()
		bv, _ := b.Rating().Value()
		return cmp.Compare(bv, av)
	})

	if len(rated) > TopLimit {
		rated = rated[:TopLimit]
	}
	return rated
}

// TopMangaRatings is the "top scored stories" list for the home page.
func TopMangaRatings(manga []media.Manga) []media.Manga {
	return ComputeTopRated(manga)
}

// SameDay reports whether t falls on now's calendar day in now's location.
func SameDay(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = t.In(now.Location())
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}

// ExtractTodaySchedule returns up to ten entries airing on now's calendar
// day. Entries without an airing timestamp are dropped.
func ExtractTodaySchedule(entries []media.Anime, now time.Time) []media.Anime {
	out := make([]media.Anime, 0, min(len(entries), TopLimit))
	for _, e := range entries {
		if len(out) == TopLimit {
			break
		}
		if SameDay(e.AiringAt.Time, now) {
			out = append(out, e)
		}
	}
	return out
}

// ExtractTodayReleases returns up to ten chapters readable since the start of
// now's calendar day.
func ExtractTodayReleases(chapters []media.Chapter, now time.Time) []media.Chapter {
	out := make([]media.Chapter, 0, min(len(chapters), TopLimit))
	for _, c := range chapters {
		if len(out) == TopLimit {
			break
		}
		if SameDay(c.ReadableAt.Time, now) {
			out = append(out, c)
		}
	}
	return out
}
