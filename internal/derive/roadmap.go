package derive

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/anivibe/anivibe/internal/media"
)

var roadmapRelationTypes = map[string]bool{
	"PREQUEL":             true,
	"SEQUEL":              true,
	"ALTERNATIVE_VERSION": true,
	"ALTERNATIVE_SETTING": true,
	"SPIN_OFF":            true,
	"SUMMARY":             true,
	"PARENT":              true,
	"SIDE_STORY":          true,
	"COMPILATION":         true,
}

var seasonIndex = map[string]int{"winter": 1, "spring": 2, "summer": 3, "fall": 4}

const (
	otherMovieIndex  = 5
	otherSeasonIndex = 6
)

// IsMovieFormat reports whether a media format is a movie.
func IsMovieFormat(format string) bool {
	return strings.EqualFold(format, "MOVIE")
}

// InRoadmap reports whether a relation belongs on the season roadmap.
func InRoadmap(r media.Relation) bool {
	if roadmapRelationTypes[r.RelationType] {
		return true
	}
	return IsMovieFormat(r.Format) && r.RelationType != "" && r.RelationType != "ADAPTATION"
}

// BuildRoadmap lists the anime itself and its season-relevant relations,
// de-duplicated by id (first occurrence wins) and ordered by release year,
// season and title.
func BuildRoadmap(anime media.Anime) []media.RoadmapEntry {
	seen := make(map[media.ID]bool)
	var entries []media.RoadmapEntry

	push := func(e media.RoadmapEntry) {
		if e.ID.IsZero() || seen[e.ID] {
			return
		}
		seen[e.ID] = true
		entries = append(entries, e)
	}

	push(media.RoadmapEntry{
		ID:           anime.ID,
		Title:        media.FirstNonEmpty(anime.Title, anime.TitleEnglish),
		RelationType: media.RelationCurrent,
		Format:       anime.Type,
		Season:       strings.ToLower(anime.Season),
		SeasonYear:   anime.Year,
		Episodes:     anime.Episodes,
		Duration:     anime.Duration,
	})

	for _, r := range anime.Relations {
		if !InRoadmap(r) {
			continue
		}
		year := r.SeasonYear
		if year == 0 {
			year = r.Year
		}
		push(media.RoadmapEntry{
			ID:           r.ID,
			Title:        r.Title,
			RelationType: r.RelationType,
			Format:       r.Format,
			Season:       strings.ToLower(r.Season),
			SeasonYear:   year,
			Episodes:     r.Episodes,
			Duration:     r.Duration,
		})
	}

	col := collate.New(language.English, collate.IgnoreCase)
	slices.SortStableFunc(entries, func(a, b media.RoadmapEntry) int {
		if c := cmp.Compare(roadmapYear(a), roadmapYear(b)); c != 0 {
			return c
		}
		if c := cmp.Compare(roadmapSeason(a), roadmapSeason(b)); c != 0 {
			return c
		}
		return col.CompareString(a.Title, b.Title)
	})
	return entries
}

func roadmapYear(e media.RoadmapEntry) int {
	if e.SeasonYear == 0 {
		return math.MaxInt
	}
	return e.SeasonYear
}

func roadmapSeason(e media.RoadmapEntry) int {
	if e.Season != "" {
		if i, ok := seasonIndex[e.Season]; ok {
			return i
		}
		return otherMovieIndex
	}
	if IsMovieFormat(e.Format) {
		return otherMovieIndex
	}
	return otherSeasonIndex
}

// RelationLabel is the badge shown on a roadmap row.
func RelationLabel(e media.RoadmapEntry) string {
	if e.Current() {
		return "Current season"
	}
	return strings.ReplaceAll(media.FirstNonEmpty(e.RelationType, e.Format, "Related"), "_", " ")
}

// ReleaseLabel is the season line shown on a roadmap row.
func ReleaseLabel(e media.RoadmapEntry) string {
	if label := FormatSeasonLabel(e.Season, e.SeasonYear); label != "" {
		return label
	}
	return "Release TBA"
}
