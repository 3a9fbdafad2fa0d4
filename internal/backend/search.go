package backend

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/anivibe/anivibe/internal/media"
)

// GlobalSearch runs the anime and manga searches in parallel and returns the
// combined, content-tagged results. It fails if either search fails.
func (c *Client) GlobalSearch(ctx context.Context, query string, page, limit int) (media.SearchResults, error) {
	var (
		g     errgroup.Group
		anime media.Page[media.Anime]
		manga media.Page[media.Manga]
	)

	g.Go(func() error {
		var err error
		anime, err = c.SearchAnime(ctx, query, page, limit)
		return err
	})
	g.Go(func() error {
		var err error
		manga, err = c.SearchManga(ctx, query, page, limit)
		return err
	})

	if err := g.Wait(); err != nil {
		return media.SearchResults{}, err
	}

	return media.NewSearchResults(anime.Results, manga.Results), nil
}
