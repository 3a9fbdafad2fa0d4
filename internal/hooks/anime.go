package hooks

import (
	"context"
	"errors"

	"github.com/anivibe/anivibe/internal/derive"
	"github.com/anivibe/anivibe/internal/media"
)

// AnimeFeedPageSize is the page size of paged anime feeds.
const AnimeFeedPageSize = 20

// ErrNoMorePages is returned when a load more is requested past the end.
var ErrNoMorePages = errors.New("no more pages")

// AnimeFeedData is the accumulated anime feed for one filter.
type AnimeFeedData struct {
	Filter string             `json:"filter"`
	Label  string             `json:"label"`
	List   Pager[media.Anime] `json:"list"`
}

// FetchAnimeFeedPage loads one page of an anime feed. Single-page feeds
// (favorite, weekly-episodes) ignore page and never report a next page.
func FetchAnimeFeedPage(ctx context.Context, src Source, filter string, page int) (media.Page[media.Anime], error) {
	switch derive.NormalizeAnimeFilter(filter) {
	case derive.FilterFavorite:
		res, err := src.FamousAnime(ctx)
		res.Pagination = nil
		return res, err
	case derive.FilterWeeklyEpisodes:
		res, err := src.WeeklyTopEpisodes(ctx)
		res.Pagination = nil
		return res, err
	default:
		return src.TopAnime(ctx, "anime", derive.NormalizeAnimeFilter(filter), page, AnimeFeedPageSize)
	}
}

// AnimeFeed is the /anime feed keyed by normalized filter.
type AnimeFeed struct {
	*Hook[string, AnimeFeedData]
	deps Deps
}

// NewAnimeFeed creates the anime feed hook.
func NewAnimeFeed(deps Deps) *AnimeFeed {
	fetch := func(ctx context.Context, filter string) (AnimeFeedData, error) {
		res, err := FetchAnimeFeedPage(ctx, deps.Source, filter, 1)
		if err != nil {
			return AnimeFeedData{}, err
		}
		return AnimeFeedData{
			Filter: filter,
			Label:  derive.AnimeFilterLabel(filter),
			List:   Pager[media.Anime]{}.ApplyPage(1, res),
		}, nil
	}
	return &AnimeFeed{Hook: New("anime-feed", fetch, MsgAnimeFeed, deps.Logger), deps: deps}
}

// Select binds the feed to filter after normalizing it. Switching filters
// resets the list to page one.
func (f *AnimeFeed) Select(ctx context.Context, filter string) {
	f.Bind(ctx, derive.NormalizeAnimeFilter(filter))
}

// LoadMore appends the next page. It reports whether a load was started.
func (f *AnimeFeed) LoadMore(ctx context.Context) bool {
	st := f.State()
	if st.Status != StatusSuccess || !st.Data.List.HasNext {
		return false
	}
	return f.Extend(ctx, func(ctx context.Context, filter string, cur AnimeFeedData) (AnimeFeedData, error) {
		if !cur.List.HasNext {
			return cur, ErrNoMorePages
		}
		next := cur.List.NextPage()
		res, err := FetchAnimeFeedPage(ctx, f.deps.Source, filter, next)
		if err != nil {
			return cur, err
		}
		cur.List = cur.List.ApplyPage(next, res)
		return cur, nil
	})
}

// ScheduleData is the schedule page for one day filter.
type ScheduleData struct {
	Day     string                `json:"day"`
	Entries []media.Anime         `json:"entries"`
	Groups  []derive.WeekdayGroup `json:"groups"`
}

// AnimeSchedule is the /anime/schedule hook keyed by weekday ("" for all).
type AnimeSchedule struct {
	*Hook[string, ScheduleData]
}

// NewAnimeSchedule creates the schedule page hook.
func NewAnimeSchedule(deps Deps) *AnimeSchedule {
	fetch := func(ctx context.Context, day string) (ScheduleData, error) {
		res, err := deps.Source.AnimeSchedule(ctx, day)
		if err != nil {
			return ScheduleData{}, err
		}
		entries := nonNil(res.Results)
		return ScheduleData{
			Day:     day,
			Entries: entries,
			Groups:  derive.GroupByWeekday(entries, day),
		}, nil
	}
	return &AnimeSchedule{Hook: New("anime-schedule", fetch, MsgSchedule, deps.Logger)}
}

// AnimeDetailsData is an anime with its roadmap, episodes and MAL picks.
type AnimeDetailsData struct {
	Anime           media.Anime            `json:"anime"`
	Synopsis        string                 `json:"synopsis"`
	Roadmap         []media.RoadmapEntry   `json:"roadmap"`
	Episodes        Pager[media.Episode]   `json:"episodes"`
	Recommendations []media.Recommendation `json:"malRecommendations"`
}

// HasMalID reports whether episodes and MAL recommendations can be loaded.
func (d AnimeDetailsData) HasMalID() bool { return d.Anime.MalID > 0 }

// AnimeDetails is the /anime/:animeId hook. The anime itself is primary;
// episodes and MAL recommendations are secondary and only fetched when a
// MAL id is known.
type AnimeDetails struct {
	*Hook[string, AnimeDetailsData]
	deps Deps
}

// NewAnimeDetails creates the anime details hook.
func NewAnimeDetails(deps Deps) *AnimeDetails {
	fetch := func(ctx context.Context, id string) (AnimeDetailsData, error) {
		anime, err := deps.Source.AnimeByID(ctx, id)
		if err != nil {
			return AnimeDetailsData{}, err
		}

		data := AnimeDetailsData{
			Anime:           anime,
			Synopsis:        derive.Synopsis(anime),
			Roadmap:         derive.BuildRoadmap(anime),
			Episodes:        Pager[media.Episode]{Items: []media.Episode{}, Page: 1},
			Recommendations: []media.Recommendation{},
		}
		if anime.MalID <= 0 {
			return data, nil
		}

		var episodes media.Page[media.Episode]
		errs := Settle(ctx,
			func(ctx context.Context) (err error) {
				episodes, err = deps.Source.AnimeEpisodes(ctx, id, 1, anime.MalID)
				if err != nil {
					deps.Logger.Warn().Err(err).Str("anime", id).Msg("unable to fetch episodes")
				}
				return err
			},
			OrEmpty(&data.Recommendations, deps.Logger, "mal recommendations", Results(func(ctx context.Context) (media.Page[media.Recommendation], error) {
				return deps.Source.AnimeRecommendations(ctx, id, anime.MalID)
			})),
		)
		if errs[0] == nil {
			data.Episodes = data.Episodes.ApplyPage(1, episodes)
		}
		return data, nil
	}
	return &AnimeDetails{Hook: New("anime-details", fetch, MsgAnime, deps.Logger), deps: deps}
}

// LoadMoreEpisodes appends the next episode page. A failure is logged and
// keeps the episodes already shown.
func (a *AnimeDetails) LoadMoreEpisodes(ctx context.Context) bool {
	st := a.State()
	if st.Status != StatusSuccess || !st.Data.HasMalID() || !st.Data.Episodes.HasNext {
		return false
	}
	return a.Extend(ctx, func(ctx context.Context, id string, cur AnimeDetailsData) (AnimeDetailsData, error) {
		next := cur.Episodes.NextPage()
		res, err := a.deps.Source.AnimeEpisodes(ctx, id, next, cur.Anime.MalID)
		if err != nil {
			return cur, err
		}
		cur.Episodes = cur.Episodes.ApplyPage(next, res)
		return cur, nil
	})
}
