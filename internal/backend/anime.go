package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/anivibe/anivibe/internal/media"
)

// Top anime filters understood by the backend.
const (
	FilterAiring       = "airing"
	FilterUpcoming     = "upcoming"
	FilterByPopularity = "bypopularity"
	FilterFavorite     = "favorite"
)

// TopAnime returns a page of the top anime list for a type and filter.
func (c *Client) TopAnime(ctx context.Context, typ, filter string, page, limit int) (media.Page[media.Anime], error) {
	params := pageParams(page, limit)
	if typ != "" {
		params.Set("type", typ)
	}
	if filter != "" {
		params.Set("filter", filter)
	}
	var out media.Page[media.Anime]
	err := c.get(ctx, "/api/anime/top", params, &out)
	return out, err
}

// PopularAnime is the top list ordered by popularity.
func (c *Client) PopularAnime(ctx context.Context, page, limit int) (media.Page[media.Anime], error) {
	return c.TopAnime(ctx, "anime", FilterByPopularity, page, limit)
}

// TrendingAnime is the top list of currently airing anime.
func (c *Client) TrendingAnime(ctx context.Context, page, limit int) (media.Page[media.Anime], error) {
	return c.TopAnime(ctx, "anime", FilterAiring, page, limit)
}

// CurrentSeasonAnime returns a page of this season's anime.
func (c *Client) CurrentSeasonAnime(ctx context.Context, page int) (media.Page[media.Anime], error) {
	var out media.Page[media.Anime]
	err := c.get(ctx, "/api/anime/season/now", pageParams(page, 0), &out)
	return out, err
}

// FamousAnime returns the curated list of all-time classics.
func (c *Client) FamousAnime(ctx context.Context) (media.Page[media.Anime], error) {
	var out media.Page[media.Anime]
	err := c.get(ctx, "/api/anime/famous", nil, &out)
	return out, err
}

// WeeklyTopEpisodes returns this week's most popular episodes.
func (c *Client) WeeklyTopEpisodes(ctx context.Context) (media.Page[media.Anime], error) {
	var out media.Page[media.Anime]
	err := c.get(ctx, "/api/anime/episodes/weekly-top", nil, &out)
	return out, err
}

// AnimeSchedule returns the airing schedule, for one weekday when day is set.
func (c *Client) AnimeSchedule(ctx context.Context, day string) (media.Page[media.Anime], error) {
	params := url.Values{}
	if day != "" {
		params.Set("day", day)
	}
	var out media.Page[media.Anime]
	err := c.get(ctx, "/api/anime/schedule", params, &out)
	return out, err
}

// WeeklySchedule is the full-week schedule.
func (c *Client) WeeklySchedule(ctx context.Context) (media.Page[media.Anime], error) {
	return c.AnimeSchedule(ctx, "")
}

// SearchAnime searches anime by title.
func (c *Client) SearchAnime(ctx context.Context, query string, page, limit int) (media.Page[media.Anime], error) {
	params := pageParams(page, limit)
	params.Set("q", query)
	var out media.Page[media.Anime]
	err := c.get(ctx, "/api/anime/search", params, &out)
	return out, err
}

// AnimeByID returns a single anime with relations and recommendations.
func (c *Client) AnimeByID(ctx context.Context, id string) (media.Anime, error) {
	var out media.Anime
	err := c.get(ctx, "/api/anime/"+escapeID(id), nil, &out)
	return out, err
}

// AnimeEpisodes returns a page of episodes. malID is sent only when known.
func (c *Client) AnimeEpisodes(ctx context.Context, id string, page, malID int) (media.Page[media.Episode], error) {
	params := pageParams(page, 0)
	if malID > 0 {
		params.Set("malId", strconv.Itoa(malID))
	}
	var out media.Page[media.Episode]
	err := c.get(ctx, "/api/anime/"+escapeID(id)+"/episodes", params, &out)
	return out, err
}

// AnimeRecommendations returns MAL community recommendations.
func (c *Client) AnimeRecommendations(ctx context.Context, id string, malID int) (media.Page[media.Recommendation], error) {
	params := url.Values{}
	if malID > 0 {
		params.Set("malId", strconv.Itoa(malID))
	}
	var out media.Page[media.Recommendation]
	err := c.get(ctx, "/api/anime/"+escapeID(id)+"/recommendations", params, &out)
	return out, err
}
