package derive

import (
	"fmt"

	"github.com/anivibe/anivibe/internal/media"
)

const (
	heroAnimeSlides = 4
	heroMangaSlides = 2
)

// HeroSlide is one page of the home page spotlight carousel.
type HeroSlide struct {
	ID          string       `json:"id"`
	Kind        media.Kind   `json:"kind"`
	Title       string       `json:"title"`
	Subtitle    string       `json:"subtitle"`
	Description string       `json:"description"`
	Cover       string       `json:"cover"`
	Badge       string       `json:"badge"`
	Rating      media.Rating `json:"rating"`
	Status      string       `json:"status"`
	Meta        string       `json:"meta"`
	Link        string       `json:"link"`
}

// HeroSlides builds the spotlight from the first four trending anime and the
// first two trending manga, numbered in that order.
func HeroSlides(anime []media.Anime, manga []media.Manga) []HeroSlide {
	slides := make([]HeroSlide, 0, heroAnimeSlides+heroMangaSlides)

	for i, a := range anime[:min(len(anime), heroAnimeSlides)] {
		meta := "New drop"
		if a.Episodes > 0 {
			meta = fmt.Sprintf("%d eps", a.Episodes)
		}
		slides = append(slides, HeroSlide{
			ID:          "anime-" + a.ID.String(),
			Kind:        media.KindAnime,
			Title:       a.DisplayTitle(),
			Subtitle:    "Trending Anime",
			Description: CleanCopy(a.Synopsis, DefaultCopyLimit),
			Cover:       media.FirstNonEmpty(a.BannerImage, a.CoverImage, media.PlaceholderCover),
			Badge:       fmt.Sprintf("#%d", i+1),
			Rating:      a.Score,
			Status:      a.Status,
			Meta:        meta,
			Link:        "/anime/" + a.ID.String(),
		})
	}

	offset := len(slides)
	for i, m := range manga[:min(len(manga), heroMangaSlides)] {
		meta := "Weekly drop"
		if m.LastChapter != "" {
			meta = "Ch. " + m.LastChapter
		}
		slides = append(slides, HeroSlide{
			ID:          "manga-" + m.ID.String(),
			Kind:        media.KindManga,
			Title:       m.DisplayTitle(),
			Subtitle:    "Trending Manga",
			Description: CleanCopy(m.Description, DefaultCopyLimit),
			Cover:       m.Cover(),
			Badge:       fmt.Sprintf("#%d", offset+i+1),
			Rating:      m.Score,
			Status:      media.FirstNonEmpty(m.Status, "NEW"),
			Meta:        meta,
			Link:        "/manga/" + m.ID.String(),
		})
	}

	return slides
}
