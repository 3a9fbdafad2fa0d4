package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/anivibe/anivibe/internal/media"
)

// TrendingManga returns a page of trending manga.
func (c *Client) TrendingManga(ctx context.Context, page, limit int) (media.Page[media.Manga], error) {
	var out media.Page[media.Manga]
	err := c.get(ctx, "/api/manga/trending", pageParams(page, limit), &out)
	return out, err
}

// PopularManga returns a page of the most followed manga.
func (c *Client) PopularManga(ctx context.Context, page, limit int) (media.Page[media.Manga], error) {
	var out media.Page[media.Manga]
	err := c.get(ctx, "/api/manga/popular", pageParams(page, limit), &out)
	return out, err
}

// LatestChapters returns the most recently published chapters.
func (c *Client) LatestChapters(ctx context.Context, limit int) (media.Page[media.Chapter], error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out media.Page[media.Chapter]
	err := c.get(ctx, "/api/manga/latest", params, &out)
	return out, err
}

// SearchManga searches manga by title.
func (c *Client) SearchManga(ctx context.Context, query string, page, limit int) (media.Page[media.Manga], error) {
	params := pageParams(page, limit)
	params.Set("query", query)
	var out media.Page[media.Manga]
	err := c.get(ctx, "/api/manga/search", params, &out)
	return out, err
}

// MangaDetails returns a single manga.
func (c *Client) MangaDetails(ctx context.Context, id string) (media.Manga, error) {
	var out media.Manga
	err := c.get(ctx, "/api/manga/"+escapeID(id), nil, &out)
	return out, err
}

// MangaChapters returns a page of a manga's chapters.
func (c *Client) MangaChapters(ctx context.Context, id string, page, limit int) (media.Page[media.Chapter], error) {
	var out media.Page[media.Chapter]
	err := c.get(ctx, "/api/manga/"+escapeID(id)+"/chapters", pageParams(page, limit), &out)
	return out, err
}

// ChapterPages returns the page images of a chapter.
func (c *Client) ChapterPages(ctx context.Context, chapterID string) (media.ChapterPages, error) {
	var out media.ChapterPages
	err := c.get(ctx, "/api/chapters/"+escapeID(chapterID)+"/pages", nil, &out)
	return out, err
}
