package nav

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/anivibe/anivibe/internal/derive"
)

// ErrUnknownRoute is returned for paths outside the route table.
var ErrUnknownRoute = errors.New("unknown route")

// Route names a client route.
type Route string

const (
	RouteHome         Route = "home"
	RouteSearch       Route = "search"
	RouteManga        Route = "manga"
	RouteReader       Route = "reader"
	RouteAnime        Route = "anime"
	RouteAnimeDetails Route = "anime-details"
	RouteSchedule     Route = "schedule"
	RouteCommunity    Route = "community"
)

// Search content tabs.
const (
	TabAll   = "all"
	TabAnime = "anime"
	TabManga = "manga"
)

var scheduleDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// View is everything a URL encodes about a page: the route, its path
// parameters, the query parameters it reads and the section hash.
type View struct {
	Route     Route  `json:"route"`
	MangaID   string `json:"mangaId,omitempty"`
	ChapterID string `json:"chapterId,omitempty"`
	AnimeID   string `json:"animeId,omitempty"`
	Query     string `json:"q,omitempty"`
	Filter    string `json:"filter,omitempty"`
	Day       string `json:"day,omitempty"`
	Tab       string `json:"tab,omitempty"`
	Hash      string `json:"hash,omitempty"`
}

// ParseView maps a route URL (path, optional query and hash) to a View.
// Query parameters a route does not read are dropped.
func ParseView(raw string) (View, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return View{}, fmt.Errorf("invalid url %q: %w", raw, err)
	}

	v, err := matchPath(u.EscapedPath())
	if err != nil {
		return View{}, err
	}
	v.Hash = u.Fragment

	q := u.Query()
	switch v.Route {
	case RouteSearch:
		v.Query = strings.TrimSpace(q.Get("q"))
		v.Filter = strings.ToLower(strings.TrimSpace(q.Get("filter")))
		v.Tab = normalizeTab(q.Get("tab"))
	case RouteAnime:
		v.Filter = q.Get("filter")
	case RouteSchedule:
		v.Day = NormalizeDay(q.Get("day"))
	}
	return v, nil
}

func matchPath(escaped string) (View, error) {
	trimmed := strings.Trim(escaped, "/")
	if trimmed == "" {
		return View{Route: RouteHome}, nil
	}

	raw := strings.Split(trimmed, "/")
	parts := make([]string, len(raw))
	for i, p := range raw {
		s, err := url.PathUnescape(p)
		if err != nil || s == "" {
			return View{}, fmt.Errorf("%w: %s", ErrUnknownRoute, escaped)
		}
		parts[i] = s
	}

	switch {
	case len(parts) == 1 && parts[0] == "search":
		return View{Route: RouteSearch}, nil
	case len(parts) == 1 && parts[0] == "community":
		return View{Route: RouteCommunity}, nil
	case len(parts) == 1 && parts[0] == "anime":
		return View{Route: RouteAnime}, nil
	case len(parts) == 2 && parts[0] == "anime" && parts[1] == "schedule":
		return View{Route: RouteSchedule}, nil
	case len(parts) == 2 && parts[0] == "anime":
		return View{Route: RouteAnimeDetails, AnimeID: parts[1]}, nil
	case len(parts) == 2 && parts[0] == "manga":
		return View{Route: RouteManga, MangaID: parts[1]}, nil
	case len(parts) == 4 && parts[0] == "manga" && parts[2] == "read":
		return View{Route: RouteReader, MangaID: parts[1], ChapterID: parts[3]}, nil
	}
	return View{}, fmt.Errorf("%w: %s", ErrUnknownRoute, escaped)
}

// NormalizeDay lower-cases a schedule day and maps anything that is not a
// weekday to "" (all days).
func NormalizeDay(day string) string {
	day = strings.ToLower(strings.TrimSpace(day))
	if scheduleDays[day] {
		return day
	}
	return ""
}

func normalizeTab(tab string) string {
	switch tab = strings.ToLower(strings.TrimSpace(tab)); tab {
	case TabAnime, TabManga:
		return tab
	}
	return TabAll
}

// Path renders the path part of the view's URL.
func (v View) Path() string {
	switch v.Route {
	case RouteSearch:
		return "/search"
	case RouteCommunity:
		return "/community"
	case RouteAnime:
		return "/anime"
	case RouteSchedule:
		return "/anime/schedule"
	case RouteAnimeDetails:
		return "/anime/" + url.PathEscape(v.AnimeID)
	case RouteManga:
		return "/manga/" + url.PathEscape(v.MangaID)
	case RouteReader:
		return "/manga/" + url.PathEscape(v.MangaID) + "/read/" + url.PathEscape(v.ChapterID)
	}
	return "/"
}

// URL renders the view back to a URL that parses to the same view.
func (v View) URL() string {
	q := url.Values{}
	switch v.Route {
	case RouteSearch:
		if v.Query != "" {
			q.Set("q", v.Query)
		}
		if v.Filter != "" {
			q.Set("filter", v.Filter)
		}
		if v.Tab != "" && v.Tab != TabAll {
			q.Set("tab", v.Tab)
		}
	case RouteAnime:
		if v.Filter != "" {
			q.Set("filter", v.Filter)
		}
	case RouteSchedule:
		if v.Day != "" {
			q.Set("day", v.Day)
		}
	}

	out := v.Path()
	if len(q) > 0 {
		out += "?" + q.Encode()
	}
	if v.Hash != "" {
		out += "#" + v.Hash
	}
	return out
}

// AnimeFilter is the normalized anime feed of an anime route.
func (v View) AnimeFilter() string {
	return derive.NormalizeAnimeFilter(v.Filter)
}

// With returns a copy of v with one query-level parameter replaced. It backs
// the tab and day links in templates.
func (v View) With(param, value string) View {
	switch param {
	case "q":
		v.Query = value
	case "filter":
		v.Filter = value
	case "day":
		v.Day = NormalizeDay(value)
	case "tab":
		v.Tab = normalizeTab(value)
	}
	v.Hash = ""
	return v
}
