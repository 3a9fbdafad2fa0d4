package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anivibe/anivibe/internal/backend"
	"github.com/anivibe/anivibe/internal/derive"
	"github.com/anivibe/anivibe/internal/media"
)

func TestSidebar_PartialFailure(t *testing.T) {
	today := testNow.Add(3 * time.Hour)
	src := &fakeSource{
		topAnime: func(typ, filter string, page, limit int) (media.Page[media.Anime], error) {
			switch filter {
			case backend.FilterByPopularity:
				return media.Page[media.Anime]{}, &backend.StatusError{Code: 500}
			default:
				return media.Page[media.Anime]{Results: animeList("t1", "t2")}, nil
			}
		},
		schedule: func(day string) (media.Page[media.Anime], error) {
			return media.Page[media.Anime]{Results: []media.Anime{
				{ID: "s1", Title: "Today", Score: media.NewRating(7), AiringAt: media.NewTimestamp(today)},
				{ID: "s2", Title: "Later", Score: media.NewRating(9), AiringAt: media.NewTimestamp(today.Add(72 * time.Hour))},
			}}, nil
		},
	}

	sb := NewSidebar(testDeps(src))
	defer sb.Close()
	ctx := waitCtx(t)
	sb.Load(ctx)

	st, err := sb.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, st.Status)
	assert.NotNil(t, st.Data.Popular)
	assert.Empty(t, st.Data.Popular)
	require.Len(t, st.Data.TodaySchedule, 1)
	assert.Equal(t, media.ID("s1"), st.Data.TodaySchedule[0].ID)
	require.Len(t, st.Data.TopRated, 2)
	assert.Equal(t, media.ID("s2"), st.Data.TopRated[0].ID, "top rated comes from the schedule when it has entries")
}

func TestSidebar_TopRatedFallsBackToTrending(t *testing.T) {
	src := &fakeSource{
		topAnime: func(typ, filter string, page, limit int) (media.Page[media.Anime], error) {
			if filter == backend.FilterAiring {
				return media.Page[media.Anime]{Results: []media.Anime{
					{ID: "a", Score: media.NewRating(6)},
					{ID: "b", Score: media.NewRating(8)},
				}}, nil
			}
			return media.Page[media.Anime]{Results: animeList("p1")}, nil
		},
		schedule: func(day string) (media.Page[media.Anime], error) {
			return media.Page[media.Anime]{}, errors.New("down")
		},
	}

	sb := NewSidebar(testDeps(src))
	defer sb.Close()
	ctx := waitCtx(t)
	sb.Load(ctx)
	st, err := sb.Wait(ctx)
	require.NoError(t, err)

	assert.Empty(t, st.Data.TodaySchedule)
	require.Len(t, st.Data.TopRated, 2)
	assert.Equal(t, media.ID("b"), st.Data.TopRated[0].ID)
	assert.Len(t, st.Data.Popular, 1)
}

func TestMangaRail_TodayReleases(t *testing.T) {
	src := &fakeSource{
		latest: func(limit int) (media.Page[media.Chapter], error) {
			assert.Equal(t, 30, limit)
			return media.Page[media.Chapter]{Results: []media.Chapter{
				{ID: "c1", ReadableAt: media.NewTimestamp(testNow)},
				{ID: "c2", ReadableAt: media.NewTimestamp(testNow.AddDate(0, 0, -1))},
			}}, nil
		},
		popularManga: func(page, limit int) (media.Page[media.Manga], error) {
			return media.Page[media.Manga]{}, errors.New("down")
		},
	}

	rail := NewMangaRail(testDeps(src))
	defer rail.Close()
	ctx := waitCtx(t)
	rail.Load(ctx)
	st, err := rail.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, st.Status)
	assert.Empty(t, st.Data.Popular)
	assert.Len(t, st.Data.Latest, 2)
	require.Len(t, st.Data.TodayReleases, 1)
	assert.Equal(t, media.ID("c1"), st.Data.TodayReleases[0].ID)
}

func homeSource() *fakeSource {
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("a%d", i)
	}
	manga := make([]string, 12)
	for i := range manga {
		manga[i] = fmt.Sprintf("m%d", i)
	}
	return &fakeSource{
		topAnime: func(typ, filter string, page, limit int) (media.Page[media.Anime], error) {
			return media.Page[media.Anime]{Results: animeList(ids...)}, nil
		},
		trendingManga: func(page, limit int) (media.Page[media.Manga], error) {
			return media.Page[media.Manga]{Results: mangaList(manga...)}, nil
		},
		weeklyTop: func() (media.Page[media.Anime], error) {
			return media.Page[media.Anime]{Results: animeList(ids[:15]...)}, nil
		},
		schedule: func(day string) (media.Page[media.Anime], error) {
			return media.Page[media.Anime]{Results: []media.Anime{
				{ID: "x", AiringAt: media.NewTimestamp(time.Date(2024, 10, 5, 15, 0, 0, 0, time.UTC))},
				{ID: "y", AiringAt: media.NewTimestamp(time.Date(2024, 10, 6, 10, 0, 0, 0, time.UTC))},
				{ID: "z", AiringAt: media.NewTimestamp(time.Date(2024, 10, 5, 9, 0, 0, 0, time.UTC))},
			}}, nil
		},
	}
}

func TestHomeFeed_Load(t *testing.T) {
	src := homeSource()
	home := NewHomeFeed(testDeps(src))
	defer home.Close()
	ctx := waitCtx(t)
	home.Load(ctx)

	st, err := home.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, st.Status)

	d := st.Data
	assert.Len(t, d.TrendingAnime, 12)
	assert.Len(t, d.TrendingManga, 12)
	assert.Len(t, d.EpisodeList, 10)
	assert.Len(t, d.Hero, 6)
	require.Len(t, d.Days, 2)
	assert.Equal(t, "2024-10-05", d.ActiveDay)
	assert.True(t, d.Days[0].IsToday)

	active := d.ActiveEntries()
	require.Len(t, active, 2)
	assert.Equal(t, media.ID("z"), active[0].ID)
	assert.Equal(t, media.ID("x"), active[1].ID)

	top, ok := d.TopEpisode()
	require.True(t, ok)
	assert.Equal(t, media.ID("a0"), top.ID)
	assert.Equal(t, 1, src.called("topAnime:airing"))
}

func TestHomeFeed_SelectAndCycleDay(t *testing.T) {
	home := NewHomeFeed(testDeps(homeSource()))
	defer home.Close()
	ctx := waitCtx(t)
	home.Load(ctx)
	_, err := home.Wait(ctx)
	require.NoError(t, err)

	assert.True(t, home.SelectDay("2024-10-06"))
	assert.Equal(t, "2024-10-06", home.State().Data.ActiveDay)

	home.SelectDay("nope")
	assert.Equal(t, "2024-10-06", home.State().Data.ActiveDay)

	home.CycleDay(1)
	assert.Equal(t, "2024-10-05", home.State().Data.ActiveDay, "cycling wraps around")

	home.CycleDay(-1)
	assert.Equal(t, "2024-10-06", home.State().Data.ActiveDay)

	// a reload keeps the chosen day while it still exists
	home.Load(ctx)
	st, err := home.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-10-06", st.Data.ActiveDay)
}

func TestHomeFeed_StaleLoadKeepsChosenDay(t *testing.T) {
	src := homeSource()
	full := src.schedule
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	src.schedule = func(day string) (media.Page[media.Anime], error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
			// only today's entries: the chosen day is gone from this result
			return media.Page[media.Anime]{Results: []media.Anime{
				{ID: "x", AiringAt: media.NewTimestamp(time.Date(2024, 10, 5, 15, 0, 0, 0, time.UTC))},
			}}, nil
		}
		return full(day)
	}

	lines := make(lineWriter, 64)
	deps := testDeps(src)
	deps.Logger = zerolog.New(lines)
	home := NewHomeFeed(deps)
	defer home.Close()
	ctx := waitCtx(t)

	home.Load(ctx)
	<-entered
	home.Load(ctx)
	_, err := home.Wait(ctx)
	require.NoError(t, err)
	require.True(t, home.SelectDay("2024-10-06"))

	close(release)
	waitForLine(t, lines, "discarding stale response")

	home.Load(ctx)
	st, err := home.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-10-06", st.Data.ActiveDay)
}

func TestHomeFeed_AnyFailureIsPageError(t *testing.T) {
	src := homeSource()
	src.weeklyTop = func() (media.Page[media.Anime], error) {
		return media.Page[media.Anime]{}, errors.New("boom")
	}
	home := NewHomeFeed(testDeps(src))
	defer home.Close()
	ctx := waitCtx(t)
	home.Load(ctx)

	st, err := home.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, MsgHomeFeed, st.Message)
	assert.Empty(t, st.Data.TrendingAnime)
}

func TestAnimeFeed_PagedFilter(t *testing.T) {
	src := &fakeSource{
		topAnime: func(typ, filter string, page, limit int) (media.Page[media.Anime], error) {
			assert.Equal(t, AnimeFeedPageSize, limit)
			if page == 1 {
				return media.Page[media.Anime]{
					Results:    animeList("1", "2"),
					Pagination: &media.Pagination{HasNextPage: true},
				}, nil
			}
			return media.Page[media.Anime]{
				Results:    animeList("2", "3"),
				Pagination: &media.Pagination{HasNextPage: false},
			}, nil
		},
	}
	feed := NewAnimeFeed(testDeps(src))
	defer feed.Close()
	ctx := waitCtx(t)

	feed.Select(ctx, "bogus")
	st, err := feed.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, derive.FilterAiring, st.Data.Filter)
	assert.Equal(t, "Currently Airing", st.Data.Label)
	assert.True(t, st.Data.List.HasNext)

	require.True(t, feed.LoadMore(ctx))
	st, err = feed.Wait(ctx)
	require.NoError(t, err)
	ids := make([]media.ID, 0, len(st.Data.List.Items))
	for _, a := range st.Data.List.Items {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []media.ID{"1", "2", "2", "3"}, ids)
	assert.False(t, st.Data.List.HasNext)
	assert.False(t, feed.LoadMore(ctx), "no load more past the last page")
}

func TestAnimeFeed_SinglePageFilters(t *testing.T) {
	src := &fakeSource{
		famous: func() (media.Page[media.Anime], error) {
			return media.Page[media.Anime]{
				Results:    animeList("f1"),
				Pagination: &media.Pagination{HasNextPage: true},
			}, nil
		},
	}
	feed := NewAnimeFeed(testDeps(src))
	defer feed.Close()
	ctx := waitCtx(t)

	feed.Select(ctx, derive.FilterFavorite)
	st, err := feed.Wait(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Data.List.Items, 1)
	assert.False(t, st.Data.List.HasNext, "single page feeds never paginate")
	assert.False(t, feed.LoadMore(ctx))

	feed.Select(ctx, derive.FilterWeeklyEpisodes)
	st, err = feed.Wait(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Data.List.Items)
	assert.Equal(t, 1, src.called("famous"))
	assert.Equal(t, 1, src.called("weeklyTop"))
	assert.Equal(t, 0, src.called("topAnime"))
}

func TestAnimeFeed_SwitchFilterResets(t *testing.T) {
	src := &fakeSource{
		topAnime: func(typ, filter string, page, limit int) (media.Page[media.Anime], error) {
			return media.Page[media.Anime]{
				Results:    animeList(filter + "-" + fmt.Sprint(page)),
				Pagination: &media.Pagination{HasNextPage: true},
			}, nil
		},
	}
	feed := NewAnimeFeed(testDeps(src))
	defer feed.Close()
	ctx := waitCtx(t)

	feed.Select(ctx, derive.FilterAiring)
	_, err := feed.Wait(ctx)
	require.NoError(t, err)
	require.True(t, feed.LoadMore(ctx))
	st, err := feed.Wait(ctx)
	require.NoError(t, err)
	require.Len(t, st.Data.List.Items, 2)

	feed.Select(ctx, derive.FilterUpcoming)
	st, err = feed.Wait(ctx)
	require.NoError(t, err)
	require.Len(t, st.Data.List.Items, 1)
	assert.Equal(t, media.ID("upcoming-1"), st.Data.List.Items[0].ID)
	assert.Equal(t, 1, st.Data.List.Page)
}

func TestAnimeSchedule_GroupsByWeekday(t *testing.T) {
	src := &fakeSource{
		schedule: func(day string) (media.Page[media.Anime], error) {
			return media.Page[media.Anime]{Results: []media.Anime{
				{ID: "1", AiringDay: "Monday"},
				{ID: "2", AiringDay: "Friday"},
			}}, nil
		},
	}
	sched := NewAnimeSchedule(testDeps(src))
	defer sched.Close()
	ctx := waitCtx(t)

	sched.Bind(ctx, "monday")
	st, err := sched.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "monday", st.Data.Day)
	assert.Len(t, st.Data.Entries, 2)
	assert.NotEmpty(t, st.Data.Groups)
	assert.Equal(t, 1, src.called("schedule:monday"))
}

func TestAnimeDetails_WithoutMalID(t *testing.T) {
	src := &fakeSource{
		animeByID: func(id string) (media.Anime, error) {
			return media.Anime{ID: media.ID(id), Title: "Solo", Synopsis: "<p>Hello</p>"}, nil
		},
	}
	details := NewAnimeDetails(testDeps(src))
	defer details.Close()
	ctx := waitCtx(t)

	details.Bind(ctx, "42")
	st, err := details.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, st.Status)
	assert.False(t, st.Data.HasMalID())
	assert.Equal(t, "Hello", st.Data.Synopsis)
	assert.Empty(t, st.Data.Episodes.Items)
	assert.Empty(t, st.Data.Recommendations)
	assert.Equal(t, 0, src.called("episodes"))
	assert.Equal(t, 0, src.called("recommendations"))
	assert.False(t, details.LoadMoreEpisodes(ctx))
}

func TestAnimeDetails_SecondaryFailuresDegrade(t *testing.T) {
	src := &fakeSource{
		animeByID: func(id string) (media.Anime, error) {
			return media.Anime{ID: media.ID(id), MalID: 99}, nil
		},
		episodes: func(id string, page, malID int) (media.Page[media.Episode], error) {
			return media.Page[media.Episode]{}, errors.New("episodes down")
		},
		recommendation: func(id string, malID int) (media.Page[media.Recommendation], error) {
			assert.Equal(t, 99, malID)
			return media.Page[media.Recommendation]{Results: []media.Recommendation{{ID: "r1"}}}, nil
		},
	}
	details := NewAnimeDetails(testDeps(src))
	defer details.Close()
	ctx := waitCtx(t)

	details.Bind(ctx, "7")
	st, err := details.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Empty(t, st.Data.Episodes.Items)
	assert.Len(t, st.Data.Recommendations, 1)
}

func TestAnimeDetails_LoadMoreEpisodes(t *testing.T) {
	src := &fakeSource{
		animeByID: func(id string) (media.Anime, error) {
			return media.Anime{ID: media.ID(id), MalID: 5}, nil
		},
		episodes: func(id string, page, malID int) (media.Page[media.Episode], error) {
			return media.Page[media.Episode]{
				Results:    []media.Episode{{Number: page}},
				Pagination: &media.Pagination{HasNextPage: page < 2},
			}, nil
		},
	}
	details := NewAnimeDetails(testDeps(src))
	defer details.Close()
	ctx := waitCtx(t)

	details.Bind(ctx, "7")
	_, err := details.Wait(ctx)
	require.NoError(t, err)
	require.True(t, details.LoadMoreEpisodes(ctx))
	st, err := details.Wait(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Data.Episodes.Items, 2)
	assert.False(t, st.Data.Episodes.HasNext)
}

func TestAnimeDetails_NotFound(t *testing.T) {
	src := &fakeSource{
		animeByID: func(id string) (media.Anime, error) {
			return media.Anime{}, &backend.StatusError{Code: 404, Path: "/api/anime/" + id}
		},
	}
	details := NewAnimeDetails(testDeps(src))
	defer details.Close()
	ctx := waitCtx(t)

	details.Bind(ctx, "missing")
	st, err := details.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, "Not found.", st.Message)
	assert.ErrorIs(t, st.Err, backend.ErrNotFound)
}

func chapterList(prefix string, n int) []media.Chapter {
	out := make([]media.Chapter, n)
	for i := range out {
		out[i] = media.Chapter{ID: media.ID(fmt.Sprintf("%s%d", prefix, i))}
	}
	return out
}

func TestMangaDetails_ChapterPaging(t *testing.T) {
	src := &fakeSource{
		mangaChapters: func(id string, page, limit int) (media.Page[media.Chapter], error) {
			assert.Equal(t, ChaptersPerPage, limit)
			if page == 1 {
				return media.Page[media.Chapter]{Results: chapterList("p1-", 20)}, nil
			}
			return media.Page[media.Chapter]{Results: chapterList("p2-", 5)}, nil
		},
	}
	details := NewMangaDetails(testDeps(src))
	defer details.Close()
	ctx := waitCtx(t)

	details.Bind(ctx, "m1")
	st, err := details.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, media.ID("m1"), st.Data.Manga.ID)
	assert.True(t, st.Data.Chapters.HasNext, "a full page may have more")

	require.True(t, details.LoadMoreChapters(ctx))
	st, err = details.Wait(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Data.Chapters.Items, 25)
	assert.False(t, st.Data.Chapters.HasNext)
	assert.False(t, details.LoadMoreChapters(ctx))
}

func TestMangaDetails_ChapterFailureIsPageError(t *testing.T) {
	src := &fakeSource{
		mangaChapters: func(id string, page, limit int) (media.Page[media.Chapter], error) {
			return media.Page[media.Chapter]{}, fmt.Errorf("%w: connection refused", backend.ErrRequestFailed)
		},
	}
	details := NewMangaDetails(testDeps(src))
	defer details.Close()
	ctx := waitCtx(t)

	details.Bind(ctx, "m1")
	st, err := details.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, msgNetworkError, st.Message)
}

func TestReader(t *testing.T) {
	src := &fakeSource{
		chapterPages: func(id string) (media.ChapterPages, error) {
			assert.Equal(t, "c9", id)
			return media.ChapterPages{Pages: []media.ChapterPage{{Index: 1, URL: "u1"}, {Index: 2, URL: "u2"}}}, nil
		},
	}
	reader := NewReader(testDeps(src))
	defer reader.Close()
	ctx := waitCtx(t)

	reader.Bind(ctx, ReaderKey{MangaID: "m1", ChapterID: "c9"})
	st, err := reader.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m1", st.Data.MangaID)
	assert.Len(t, st.Data.Pages, 2)
}

func TestSearch_Modes(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		filter  string
		heading string
		calls   []string
		none    []string
	}{
		{
			name:    "bookmarks makes no calls",
			filter:  "Bookmarks",
			heading: "Your saved series",
			none:    []string{"globalSearch", "topAnime", "trendingManga", "popularManga"},
		},
		{
			name:    "query uses global search",
			query:   "  naruto ",
			filter:  "trending",
			heading: `Results for "naruto"`,
			calls:   []string{"globalSearch"},
			none:    []string{"topAnime"},
		},
		{
			name:    "trending browses airing anime",
			filter:  "trending",
			heading: "Trending now",
			calls:   []string{"topAnime:airing", "trendingManga"},
			none:    []string{"globalSearch", "popularManga"},
		},
		{
			name:    "default browses popular",
			heading: "Discover content",
			calls:   []string{"topAnime:bypopularity", "popularManga"},
			none:    []string{"globalSearch", "trendingManga"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{
				globalSearch: func(q string, page, limit int) (media.SearchResults, error) {
					assert.Equal(t, "naruto", q)
					assert.Equal(t, 24, limit)
					return media.NewSearchResults(animeList("a"), nil), nil
				},
			}
			search := NewSearch(testDeps(src))
			defer search.Close()
			ctx := waitCtx(t)

			search.Query(ctx, tt.query, tt.filter)
			st, err := search.Wait(ctx)
			require.NoError(t, err)
			require.Equal(t, StatusSuccess, st.Status)
			assert.Equal(t, tt.heading, st.Data.Heading)
			for _, c := range tt.calls {
				assert.Equal(t, 1, src.called(c), c)
			}
			for _, c := range tt.none {
				assert.Equal(t, 0, src.called(c), c)
			}
		})
	}
}

func TestSearch_FailureMessage(t *testing.T) {
	src := &fakeSource{
		globalSearch: func(q string, page, limit int) (media.SearchResults, error) {
			return media.SearchResults{}, context.DeadlineExceeded
		},
	}
	search := NewSearch(testDeps(src))
	defer search.Close()
	ctx := waitCtx(t)

	search.Query(ctx, "x", "")
	st, err := search.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, "The request timed out.", st.Message)
}
