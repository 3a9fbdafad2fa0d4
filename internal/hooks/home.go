package hooks

import (
	"context"
	"sync"

	"github.com/anivibe/anivibe/internal/backend"
	"github.com/anivibe/anivibe/internal/derive"
	"github.com/anivibe/anivibe/internal/media"
)

const (
	homeAnimeFetch    = 20
	homeAnimeShown    = 12
	homeMangaFetch    = 12
	homeEpisodesShown = 10
)

// HomeData is the committed home page feed plus everything derived from it.
type HomeData struct {
	TrendingAnime  []media.Anime      `json:"trendingAnime"`
	TrendingManga  []media.Manga      `json:"trendingManga"`
	WeeklyEpisodes []media.Anime      `json:"weeklyEpisodes"`
	Schedule       []media.Anime      `json:"schedule"`
	Hero           []derive.HeroSlide `json:"hero"`
	TopManga       []media.Manga      `json:"topManga"`
	EpisodeList    []media.Anime      `json:"episodeList"`
	Days           []derive.DayGroup  `json:"days"`
	ActiveDay      string             `json:"activeDay"`
}

// TopEpisode is the spotlighted episode of the week, if any.
func (d HomeData) TopEpisode() (media.Anime, bool) {
	if len(d.WeeklyEpisodes) == 0 {
		return media.Anime{}, false
	}
	return d.WeeklyEpisodes[0], true
}

// ActiveEntries are the schedule entries of the selected day.
func (d HomeData) ActiveEntries() []media.Anime {
	g, ok := derive.FindDay(d.Days, d.ActiveDay)
	if !ok {
		return nil
	}
	return g.Entries
}

// HomeFeed loads the four home page sources together; any failure is a
// page-level error.
type HomeFeed struct {
	*Hook[Unit, HomeData]

	mu      sync.Mutex
	lastDay string
}

// NewHomeFeed creates the home page hook.
func NewHomeFeed(deps Deps) *HomeFeed {
	h := &HomeFeed{}
	h.Hook = New("home", h.load(deps), MsgHomeFeed, deps.Logger)
	h.OnChange(h.remember)
	return h
}

// remember records the active day of committed data only; superseded
// fetches never reach observers.
func (h *HomeFeed) remember(st State[HomeData]) {
	if st.Status != StatusSuccess {
		return
	}
	h.mu.Lock()
	h.lastDay = st.Data.ActiveDay
	h.mu.Unlock()
}

// Load binds the feed for a new mount.
func (h *HomeFeed) Load(ctx context.Context) {
	h.Bind(ctx, Unit{})
}

func (h *HomeFeed) load(deps Deps) FetchFunc[Unit, HomeData] {
	return func(ctx context.Context, _ Unit) (HomeData, error) {
		var (
			anime    media.Page[media.Anime]
			manga    media.Page[media.Manga]
			episodes media.Page[media.Anime]
			schedule media.Page[media.Anime]
		)

		err := All(ctx,
			func(ctx context.Context) (err error) {
				anime, err = deps.Source.TopAnime(ctx, "anime", backend.FilterAiring, 1, homeAnimeFetch)
				return err
			},
			func(ctx context.Context) (err error) {
				manga, err = deps.Source.TrendingManga(ctx, 1, homeMangaFetch)
				return err
			},
			func(ctx context.Context) (err error) {
				episodes, err = deps.Source.WeeklyTopEpisodes(ctx)
				return err
			},
			func(ctx context.Context) (err error) {
				schedule, err = deps.Source.AnimeSchedule(ctx, "")
				return err
			},
		)
		if err != nil {
			return HomeData{}, err
		}

		trending := nonNil(anime.Results)
		trending = trending[:min(len(trending), homeAnimeShown)]
		weekly := nonNil(episodes.Results)
		days := derive.GroupScheduleByDay(schedule.Results, deps.Now())

		h.mu.Lock()
		previous := h.lastDay
		h.mu.Unlock()
		active := derive.PickScheduleDay(days, previous)

		return HomeData{
			TrendingAnime:  trending,
			TrendingManga:  nonNil(manga.Results),
			WeeklyEpisodes: weekly,
			Schedule:       nonNil(schedule.Results),
			Hero:           derive.HeroSlides(trending, manga.Results),
			TopManga:       derive.TopMangaRatings(manga.Results),
			EpisodeList:    weekly[:min(len(weekly), homeEpisodesShown)],
			Days:           days,
			ActiveDay:      active,
		}, nil
	}
}

// SelectDay makes key the active schedule day if it exists.
func (h *HomeFeed) SelectDay(key string) bool {
	return h.setDay(func(d HomeData) string {
		if _, ok := derive.FindDay(d.Days, key); ok {
			return key
		}
		return d.ActiveDay
	})
}

// CycleDay moves the active schedule day by direction, wrapping around.
func (h *HomeFeed) CycleDay(direction int) bool {
	return h.setDay(func(d HomeData) string {
		return derive.CycleScheduleDay(d.Days, d.ActiveDay, direction)
	})
}

func (h *HomeFeed) setDay(pick func(HomeData) string) bool {
	return h.Mutate(func(d HomeData) HomeData {
		d.ActiveDay = pick(d)
		return d
	})
}
