package hooks

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/anivibe/anivibe/internal/media"
)

// Source is the subset of the backend client the hooks call.
type Source interface {
	TrendingManga(ctx context.Context, page, limit int) (media.Page[media.Manga], error)
	PopularManga(ctx context.Context, page, limit int) (media.Page[media.Manga], error)
	LatestChapters(ctx context.Context, limit int) (media.Page[media.Chapter], error)
	MangaDetails(ctx context.Context, id string) (media.Manga, error)
	MangaChapters(ctx context.Context, id string, page, limit int) (media.Page[media.Chapter], error)
	ChapterPages(ctx context.Context, chapterID string) (media.ChapterPages, error)

	TopAnime(ctx context.Context, typ, filter string, page, limit int) (media.Page[media.Anime], error)
	PopularAnime(ctx context.Context, page, limit int) (media.Page[media.Anime], error)
	TrendingAnime(ctx context.Context, page, limit int) (media.Page[media.Anime], error)
	FamousAnime(ctx context.Context) (media.Page[media.Anime], error)
	WeeklyTopEpisodes(ctx context.Context) (media.Page[media.Anime], error)
	AnimeSchedule(ctx context.Context, day string) (media.Page[media.Anime], error)
	WeeklySchedule(ctx context.Context) (media.Page[media.Anime], error)
	AnimeByID(ctx context.Context, id string) (media.Anime, error)
	AnimeEpisodes(ctx context.Context, id string, page, malID int) (media.Page[media.Episode], error)
	AnimeRecommendations(ctx context.Context, id string, malID int) (media.Page[media.Recommendation], error)

	GlobalSearch(ctx context.Context, query string, page, limit int) (media.SearchResults, error)
}

// Deps are the collaborators shared by every concrete hook.
type Deps struct {
	Source   Source
	Clock    clockwork.Clock
	Location *time.Location
	Logger   zerolog.Logger
}

// Now returns the current time in the configured location.
func (d Deps) Now() time.Time {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	return clock.Now().In(loc)
}

// Loc returns the configured location.
func (d Deps) Loc() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

// Unit is the key of hooks that load once per mount.
type Unit struct{}
