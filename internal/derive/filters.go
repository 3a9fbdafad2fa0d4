package derive

// Anime feed filter ids.
const (
	FilterAiring         = "airing"
	FilterUpcoming       = "upcoming"
	FilterFavorite       = "favorite"
	FilterWeeklyEpisodes = "weekly-episodes"

	DefaultAnimeFilter = FilterAiring
)

// AnimeFilter is a selectable anime feed.
type AnimeFilter struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

var animeFilters = []AnimeFilter{
	{ID: FilterAiring, Label: "Currently Airing"},
	{ID: FilterUpcoming, Label: "Upcoming"},
	{ID: FilterFavorite, Label: "Legendary Anime"},
	{ID: FilterWeeklyEpisodes, Label: "Top Episodes This Week"},
}

// AnimeFilters returns the anime feeds in display order.
func AnimeFilters() []AnimeFilter {
	out := make([]AnimeFilter, len(animeFilters))
	copy(out, animeFilters)
	return out
}

// IsValidAnimeFilter reports whether value names an anime feed.
func IsValidAnimeFilter(value string) bool {
	for _, f := range animeFilters {
		if f.ID == value {
			return true
		}
	}
	return false
}

// NormalizeAnimeFilter returns value when it names an anime feed and the
// default feed otherwise.
func NormalizeAnimeFilter(value string) string {
	if IsValidAnimeFilter(value) {
		return value
	}
	return DefaultAnimeFilter
}

// IsSinglePageFilter reports whether a feed has no further pages.
func IsSinglePageFilter(filter string) bool {
	return filter == FilterFavorite || filter == FilterWeeklyEpisodes
}

// AnimeFilterLabel returns the display label of a feed.
func AnimeFilterLabel(filter string) string {
	filter = NormalizeAnimeFilter(filter)
	for _, f := range animeFilters {
		if f.ID == filter {
			return f.Label
		}
	}
	return ""
}
