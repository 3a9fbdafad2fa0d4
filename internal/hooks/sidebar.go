package hooks

import (
	"context"

	"github.com/anivibe/anivibe/internal/derive"
	"github.com/anivibe/anivibe/internal/media"
)

const sidebarLimit = 10

// SidebarData feeds the left sidebar.
type SidebarData struct {
	Popular       []media.Anime `json:"popular"`
	TodaySchedule []media.Anime `json:"todaySchedule"`
	TopRated      []media.Anime `json:"topRated"`
}

// Sidebar loads popular anime, the weekly schedule and trending anime. Each
// source is optional: a failure empties its section only.
type Sidebar struct {
	*Hook[Unit, SidebarData]
}

// NewSidebar creates the left sidebar hook.
func NewSidebar(deps Deps) *Sidebar {
	return &Sidebar{Hook: New("sidebar", loadSidebar(deps), MsgSidebar, deps.Logger)}
}

// Load binds the sidebar for a new mount.
func (s *Sidebar) Load(ctx context.Context) {
	s.Bind(ctx, Unit{})
}

func loadSidebar(deps Deps) FetchFunc[Unit, SidebarData] {
	return func(ctx context.Context, _ Unit) (SidebarData, error) {
		var popular, schedule, trending []media.Anime

		Settle(ctx,
			OrEmpty(&popular, deps.Logger, "popular anime", Results(func(ctx context.Context) (media.Page[media.Anime], error) {
				return deps.Source.PopularAnime(ctx, 1, sidebarLimit)
			})),
			OrEmpty(&schedule, deps.Logger, "weekly schedule", Results(deps.Source.WeeklySchedule)),
			OrEmpty(&trending, deps.Logger, "trending anime", Results(func(ctx context.Context) (media.Page[media.Anime], error) {
				return deps.Source.TrendingAnime(ctx, 1, sidebarLimit)
			})),
		)

		topSource := popular
		switch {
		case len(schedule) > 0:
			topSource = schedule
		case len(trending) > 0:
			topSource = trending
		}

		return SidebarData{
			Popular:       popular,
			TodaySchedule: derive.ExtractTodaySchedule(schedule, deps.Now()),
			TopRated:      derive.ComputeTopRated(topSource),
		}, nil
	}
}

const (
	railLimit         = 10
	railLatestChapter = 30
)

// MangaRailData feeds the right sidebar.
type MangaRailData struct {
	Trending      []media.Manga   `json:"trending"`
	Popular       []media.Manga   `json:"popular"`
	Latest        []media.Chapter `json:"latest"`
	TodayReleases []media.Chapter `json:"todayReleases"`
}

// MangaRail loads trending manga, most followed manga and the latest
// chapters. None of these are critical.
type MangaRail struct {
	*Hook[Unit, MangaRailData]
}

// NewMangaRail creates the right sidebar hook.
func NewMangaRail(deps Deps) *MangaRail {
	return &MangaRail{Hook: New("manga-rail", loadMangaRail(deps), MsgSidebar, deps.Logger)}
}

// Load binds the rail for a new mount.
func (r *MangaRail) Load(ctx context.Context) {
	r.Bind(ctx, Unit{})
}

func loadMangaRail(deps Deps) FetchFunc[Unit, MangaRailData] {
	return func(ctx context.Context, _ Unit) (MangaRailData, error) {
		var data MangaRailData

		Settle(ctx,
			OrEmpty(&data.Trending, deps.Logger, "trending manga", Results(func(ctx context.Context) (media.Page[media.Manga], error) {
				return deps.Source.TrendingManga(ctx, 1, railLimit)
			})),
			OrEmpty(&data.Popular, deps.Logger, "popular manga", Results(func(ctx context.Context) (media.Page[media.Manga], error) {
				return deps.Source.PopularManga(ctx, 1, railLimit)
			})),
			OrEmpty(&data.Latest, deps.Logger, "latest chapters", Results(func(ctx context.Context) (media.Page[media.Chapter], error) {
				return deps.Source.LatestChapters(ctx, railLatestChapter)
			})),
		)

		data.TodayReleases = derive.ExtractTodayReleases(data.Latest, deps.Now())
		return data, nil
	}
}
