package hooks

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/anivibe/anivibe/internal/media"
)

// fakeSource implements Source with overridable functions. Unset functions
// return an empty result.
type fakeSource struct {
	mu    sync.Mutex
	calls []string

	trendingManga  func(page, limit int) (media.Page[media.Manga], error)
	popularManga   func(page, limit int) (media.Page[media.Manga], error)
	latest         func(limit int) (media.Page[media.Chapter], error)
	mangaDetails   func(id string) (media.Manga, error)
	mangaChapters  func(id string, page, limit int) (media.Page[media.Chapter], error)
	chapterPages   func(id string) (media.ChapterPages, error)
	topAnime       func(typ, filter string, page, limit int) (media.Page[media.Anime], error)
	famous         func() (media.Page[media.Anime], error)
	weeklyTop      func() (media.Page[media.Anime], error)
	schedule       func(day string) (media.Page[media.Anime], error)
	animeByID      func(id string) (media.Anime, error)
	episodes       func(id string, page, malID int) (media.Page[media.Episode], error)
	recommendation func(id string, malID int) (media.Page[media.Recommendation], error)
	globalSearch   func(q string, page, limit int) (media.SearchResults, error)
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeSource) called(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeSource) TrendingManga(_ context.Context, page, limit int) (media.Page[media.Manga], error) {
	f.record("trendingManga")
	if f.trendingManga == nil {
		return media.Page[media.Manga]{}, nil
	}
	return f.trendingManga(page, limit)
}

func (f *fakeSource) PopularManga(_ context.Context, page, limit int) (media.Page[media.Manga], error) {
	f.record("popularManga")
	if f.popularManga == nil {
		return media.Page[media.Manga]{}, nil
	}
	return f.popularManga(page, limit)
}

func (f *fakeSource) LatestChapters(_ context.Context, limit int) (media.Page[media.Chapter], error) {
	f.record("latest")
	if f.latest == nil {
		return media.Page[media.Chapter]{}, nil
	}
	return f.latest(limit)
}

func (f *fakeSource) MangaDetails(_ context.Context, id string) (media.Manga, error) {
	f.record("mangaDetails")
	if f.mangaDetails == nil {
		return media.Manga{ID: media.ID(id)}, nil
	}
	return f.mangaDetails(id)
}

func (f *fakeSource) MangaChapters(_ context.Context, id string, page, limit int) (media.Page[media.Chapter], error) {
	f.record("mangaChapters")
	if f.mangaChapters == nil {
		return media.Page[media.Chapter]{}, nil
	}
	return f.mangaChapters(id, page, limit)
}

func (f *fakeSource) ChapterPages(_ context.Context, id string) (media.ChapterPages, error) {
	f.record("chapterPages")
	if f.chapterPages == nil {
		return media.ChapterPages{}, nil
	}
	return f.chapterPages(id)
}

func (f *fakeSource) TopAnime(_ context.Context, typ, filter string, page, limit int) (media.Page[media.Anime], error) {
	f.record("topAnime:" + filter)
	if f.topAnime == nil {
		return media.Page[media.Anime]{}, nil
	}
	return f.topAnime(typ, filter, page, limit)
}

func (f *fakeSource) PopularAnime(ctx context.Context, page, limit int) (media.Page[media.Anime], error) {
	return f.TopAnime(ctx, "anime", "bypopularity", page, limit)
}

func (f *fakeSource) TrendingAnime(ctx context.Context, page, limit int) (media.Page[media.Anime], error) {
	return f.TopAnime(ctx, "anime", "airing", page, limit)
}

func (f *fakeSource) FamousAnime(_ context.Context) (media.Page[media.Anime], error) {
	f.record("famous")
	if f.famous == nil {
		return media.Page[media.Anime]{}, nil
	}
	return f.famous()
}

func (f *fakeSource) WeeklyTopEpisodes(_ context.Context) (media.Page[media.Anime], error) {
	f.record("weeklyTop")
	if f.weeklyTop == nil {
		return media.Page[media.Anime]{}, nil
	}
	return f.weeklyTop()
}

func (f *fakeSource) AnimeSchedule(_ context.Context, day string) (media.Page[media.Anime], error) {
	f.record("schedule:" + day)
	if f.schedule == nil {
		return media.Page[media.Anime]{}, nil
	}
	return f.schedule(day)
}

func (f *fakeSource) WeeklySchedule(ctx context.Context) (media.Page[media.Anime], error) {
	return f.AnimeSchedule(ctx, "")
}

func (f *fakeSource) AnimeByID(_ context.Context, id string) (media.Anime, error) {
	f.record("animeByID")
	if f.animeByID == nil {
		return media.Anime{ID: media.ID(id)}, nil
	}
	return f.animeByID(id)
}

func (f *fakeSource) AnimeEpisodes(_ context.Context, id string, page, malID int) (media.Page[media.Episode], error) {
	f.record("episodes")
	if f.episodes == nil {
		return media.Page[media.Episode]{}, nil
	}
	return f.episodes(id, page, malID)
}

func (f *fakeSource) AnimeRecommendations(_ context.Context, id string, malID int) (media.Page[media.Recommendation], error) {
	f.record("recommendations")
	if f.recommendation == nil {
		return media.Page[media.Recommendation]{}, nil
	}
	return f.recommendation(id, malID)
}

func (f *fakeSource) GlobalSearch(_ context.Context, q string, page, limit int) (media.SearchResults, error) {
	f.record("globalSearch")
	if f.globalSearch == nil {
		return media.NewSearchResults(nil, nil), nil
	}
	return f.globalSearch(q, page, limit)
}

var testNow = time.Date(2024, 10, 5, 9, 0, 0, 0, time.UTC)

func testDeps(src Source) Deps {
	return Deps{
		Source:   src,
		Clock:    clockwork.NewFakeClockAt(testNow),
		Location: time.UTC,
		Logger:   zerolog.Nop(),
	}
}

// lineWriter forwards each log line to a channel so tests can wait for a
// specific event without sleeping.
type lineWriter chan string

func (w lineWriter) Write(p []byte) (int, error) {
	w <- string(p)
	return len(p), nil
}

func waitForLine(t *testing.T, lines lineWriter, contains string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case l := <-lines:
			if strings.Contains(l, contains) {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for log line containing %q", contains)
		}
	}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func animeList(ids ...string) []media.Anime {
	out := make([]media.Anime, 0, len(ids))
	for _, id := range ids {
		out = append(out, media.Anime{ID: media.ID(id), Title: id})
	}
	return out
}

func mangaList(ids ...string) []media.Manga {
	out := make([]media.Manga, 0, len(ids))
	for _, id := range ids {
		out = append(out, media.Manga{ID: media.ID(id)})
	}
	return out
}
