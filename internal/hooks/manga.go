package hooks

import (
	"context"

	"github.com/anivibe/anivibe/internal/media"
)

// ChaptersPerPage is the manga chapter list page size.
const ChaptersPerPage = 20

// MangaDetailsData is a manga with its accumulated chapter list.
type MangaDetailsData struct {
	Manga    media.Manga          `json:"manga"`
	Chapters Pager[media.Chapter] `json:"chapters"`
}

// FetchChapterPage loads one chapter page. The backend sends no pagination
// for chapters, so a full page means there may be more.
func FetchChapterPage(ctx context.Context, src Source, mangaID string, page int) ([]media.Chapter, bool, error) {
	res, err := src.MangaChapters(ctx, mangaID, page, ChaptersPerPage)
	if err != nil {
		return nil, false, err
	}
	return res.Results, len(res.Results) == ChaptersPerPage, nil
}

// MangaDetails is the /manga/:mangaId hook. Details and the first chapter
// page load together; either failing is a page-level error.
type MangaDetails struct {
	*Hook[string, MangaDetailsData]
	deps Deps
}

// NewMangaDetails creates the manga details hook.
func NewMangaDetails(deps Deps) *MangaDetails {
	fetch := func(ctx context.Context, id string) (MangaDetailsData, error) {
		var (
			manga    media.Manga
			chapters []media.Chapter
			hasMore  bool
		)
		err := All(ctx,
			func(ctx context.Context) (err error) {
				manga, err = deps.Source.MangaDetails(ctx, id)
				return err
			},
			func(ctx context.Context) (err error) {
				chapters, hasMore, err = FetchChapterPage(ctx, deps.Source, id, 1)
				return err
			},
		)
		if err != nil {
			return MangaDetailsData{}, err
		}
		return MangaDetailsData{
			Manga:    manga,
			Chapters: Pager[media.Chapter]{}.Apply(1, chapters, hasMore),
		}, nil
	}
	return &MangaDetails{Hook: New("manga-details", fetch, MsgManga, deps.Logger), deps: deps}
}

// LoadMoreChapters appends the next chapter page. A failure is logged and
// keeps the chapters already shown.
func (m *MangaDetails) LoadMoreChapters(ctx context.Context) bool {
	st := m.State()
	if st.Status != StatusSuccess || !st.Data.Chapters.HasNext {
		return false
	}
	return m.Extend(ctx, func(ctx context.Context, id string, cur MangaDetailsData) (MangaDetailsData, error) {
		next := cur.Chapters.NextPage()
		chapters, hasMore, err := FetchChapterPage(ctx, m.deps.Source, id, next)
		if err != nil {
			return cur, err
		}
		cur.Chapters = cur.Chapters.Apply(next, chapters, hasMore)
		return cur, nil
	})
}

// ReaderKey identifies a chapter within a manga.
type ReaderKey struct {
	MangaID   string `json:"mangaId"`
	ChapterID string `json:"chapterId"`
}

// ReaderData holds a chapter's page images.
type ReaderData struct {
	MangaID   string              `json:"mangaId"`
	ChapterID string              `json:"chapterId"`
	Pages     []media.ChapterPage `json:"pages"`
}

// Reader is the /manga/:mangaId/read/:chapterId hook.
type Reader struct {
	*Hook[ReaderKey, ReaderData]
}

// NewReader creates the chapter reader hook.
func NewReader(deps Deps) *Reader {
	fetch := func(ctx context.Context, key ReaderKey) (ReaderData, error) {
		res, err := deps.Source.ChapterPages(ctx, key.ChapterID)
		if err != nil {
			return ReaderData{}, err
		}
		return ReaderData{MangaID: key.MangaID, ChapterID: key.ChapterID, Pages: nonNil(res.Pages)}, nil
	}
	return &Reader{Hook: New("reader", fetch, MsgChapter, deps.Logger)}
}
