package hooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/anivibe/anivibe/internal/backend"
	"github.com/anivibe/anivibe/internal/media"
)

// Search filters that change what /search shows.
const (
	SearchFilterTrending  = "trending"
	SearchFilterLibrary   = "library"
	SearchFilterBookmarks = "bookmarks"
)

const (
	searchQueryLimit  = 24
	searchBrowseLimit = 12
)

var filterHeadings = map[string]string{
	SearchFilterTrending:  "Trending now",
	SearchFilterLibrary:   "Most followed",
	SearchFilterBookmarks: "Your saved series",
}

// SearchKey is the /search view state.
type SearchKey struct {
	Query  string `json:"q"`
	Filter string `json:"filter"`
}

// NewSearchKey trims the query and lower-cases the filter.
func NewSearchKey(query, filter string) SearchKey {
	return SearchKey{Query: strings.TrimSpace(query), Filter: strings.ToLower(strings.TrimSpace(filter))}
}

// Heading is the page title for the key.
func (k SearchKey) Heading() string {
	if k.Query != "" {
		return fmt.Sprintf("Results for \"%s\"", k.Query)
	}
	if h, ok := filterHeadings[k.Filter]; ok {
		return h
	}
	return "Discover content"
}

// Bookmarks reports whether the key selects the bookmarks placeholder.
func (k SearchKey) Bookmarks() bool { return k.Filter == SearchFilterBookmarks }

// SearchData is the committed search state.
type SearchData struct {
	Key       SearchKey           `json:"key"`
	Heading   string              `json:"heading"`
	Bookmarks bool                `json:"bookmarks"`
	Results   media.SearchResults `json:"results"`
}

// Search is the /search hook keyed by query and filter.
type Search struct {
	*Hook[SearchKey, SearchData]
}

// NewSearch creates the search hook.
func NewSearch(deps Deps) *Search {
	fetch := func(ctx context.Context, key SearchKey) (SearchData, error) {
		data := SearchData{Key: key, Heading: key.Heading(), Bookmarks: key.Bookmarks()}

		switch {
		case key.Bookmarks():
			data.Results = media.NewSearchResults(nil, nil)
			return data, nil
		case key.Query != "":
			res, err := deps.Source.GlobalSearch(ctx, key.Query, 1, searchQueryLimit)
			if err != nil {
				return SearchData{}, err
			}
			data.Results = res
			return data, nil
		}

		animeFilter := backend.FilterByPopularity
		mangaFeed := deps.Source.PopularManga
		if key.Filter == SearchFilterTrending {
			animeFilter = backend.FilterAiring
			mangaFeed = deps.Source.TrendingManga
		}

		var (
			anime media.Page[media.Anime]
			manga media.Page[media.Manga]
		)
		err := All(ctx,
			func(ctx context.Context) (err error) {
				anime, err = deps.Source.TopAnime(ctx, "anime", animeFilter, 1, searchBrowseLimit)
				return err
			},
			func(ctx context.Context) (err error) {
				manga, err = mangaFeed(ctx, 1, searchBrowseLimit)
				return err
			},
		)
		if err != nil {
			return SearchData{}, err
		}
		data.Results = media.NewSearchResults(anime.Results, manga.Results)
		return data, nil
	}
	return &Search{Hook: New("search", fetch, MsgSearch, deps.Logger)}
}

// Query binds the hook to a query and filter.
func (s *Search) Query(ctx context.Context, query, filter string) {
	s.Bind(ctx, NewSearchKey(query, filter))
}
