package web

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/anivibe/anivibe/internal/derive"
	"github.com/anivibe/anivibe/internal/media"
)

const (
	cardGenres       = 3
	cardTags         = 3
	detailTags       = 8
	searchCopyLimit  = 120
	episodeCopyLimit = 180
	stripCopyLimit   = 140
	mangaCopyLimit   = 120
)

// Components builds the presentational view models. It never performs I/O;
// Proxy rewrites image URLs that need the backend's image proxy.
type Components struct {
	Proxy    func(string) string
	Location *time.Location
}

func (c Components) image(url string) string {
	if c.Proxy == nil || url == "" {
		return url
	}
	return c.Proxy(url)
}

func (c Components) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// AnimeHref links an anime to its details page.
func AnimeHref(id media.ID) string { return "/anime/" + id.String() }

// MangaHref links a manga to its details page.
func MangaHref(id media.ID) string { return "/manga/" + id.String() }

// ReaderHref links a chapter to the reader.
func ReaderHref(mangaID, chapterID media.ID) string {
	return "/manga/" + mangaID.String() + "/read/" + chapterID.String()
}

// AnimeCard is the grid card of an anime.
type AnimeCard struct {
	ID       string
	Href     string
	Title    string
	Cover    string
	Score    string
	Type     string
	Episodes string
	Year     string
	Genres   []string
	Episode  string
}

// AnimeCard builds the card for a.
func (c Components) AnimeCard(a media.Anime) AnimeCard {
	card := AnimeCard{
		ID:     a.ID.String(),
		Href:   AnimeHref(a.ID),
		Title:  media.FirstNonEmpty(a.Title, a.TitleEnglish, media.Untitled),
		Cover:  c.image(a.Cover()),
		Score:  derive.FormatScore(a.Score, 1),
		Type:   a.Type,
		Genres: head(a.Genres, cardGenres),
	}
	if a.Episodes > 0 {
		card.Episodes = fmt.Sprintf("%d eps", a.Episodes)
	}
	if a.Year > 0 {
		card.Year = strconv.Itoa(a.Year)
	}
	if a.Episode > 0 {
		card.Episode = fmt.Sprintf("EP %d", a.Episode)
	}
	return card
}

// AnimeCards builds a card per anime.
func (c Components) AnimeCards(list []media.Anime) []AnimeCard {
	out := make([]AnimeCard, 0, len(list))
	for _, a := range list {
		out = append(out, c.AnimeCard(a))
	}
	return out
}

// MangaCard is the grid card of a manga.
type MangaCard struct {
	ID          string
	Href        string
	Title       string
	Cover       string
	Description string
	Chapter     string
	Rating      string
	Followers   string
	Tags        []string
}

// MangaCard builds the card for m.
func (c Components) MangaCard(m media.Manga) MangaCard {
	return MangaCard{
		ID:          m.ID.String(),
		Href:        MangaHref(m.ID),
		Title:       m.DisplayTitle(),
		Cover:       c.image(m.Cover()),
		Description: media.FirstNonEmpty(derive.StripHTML(m.Description), "No description available just yet."),
		Chapter:     lastChapter(m, "Ongoing"),
		Rating:      derive.FormatScore(m.Score, 2),
		Followers:   derive.CompactCount(m.Followers()),
		Tags:        head(m.Tags, cardTags),
	}
}

// MangaCards builds a card per manga.
func (c Components) MangaCards(list []media.Manga) []MangaCard {
	out := make([]MangaCard, 0, len(list))
	for _, m := range list {
		out = append(out, c.MangaCard(m))
	}
	return out
}

// SearchCard is a search result card. Exactly one of Anime and Manga is set.
type SearchCard struct {
	Kind  media.Kind
	Key   string
	Anime *AnimeSearchCard
	Manga *MangaCard
}

// AnimeSearchCard is the anime variant of a search result.
type AnimeSearchCard struct {
	Href     string
	Title    string
	Cover    string
	Score    string
	Genres   []string
	Synopsis string
	Episodes string
	Year     string
}

// SearchCard builds the card for a tagged result.
func (c Components) SearchCard(item media.Item) SearchCard {
	card := SearchCard{Kind: item.Kind, Key: string(item.Kind) + "-" + item.ItemID().String()}
	switch {
	case item.Anime != nil:
		a := item.Anime
		ac := &AnimeSearchCard{
			Href:     AnimeHref(a.ID),
			Title:    a.DisplayTitle(),
			Cover:    c.image(media.FirstNonEmpty(a.CoverImage, a.BannerImage, media.PlaceholderCover)),
			Score:    derive.FormatScore(a.Score, 1),
			Genres:   head(a.Genres, cardGenres),
			Synopsis: "No description available.",
			Episodes: "Ongoing",
		}
		if s := derive.StripHTML(a.Synopsis); s != "" {
			ac.Synopsis = string([]rune(s)[:min(len([]rune(s)), searchCopyLimit)]) + "..."
		}
		if a.Episodes > 0 {
			ac.Episodes = fmt.Sprintf("%d eps", a.Episodes)
		}
		if a.Year > 0 {
			ac.Year = strconv.Itoa(a.Year)
		}
		card.Anime = ac
	case item.Manga != nil:
		mc := c.MangaCard(*item.Manga)
		card.Manga = &mc
	}
	return card
}

// SearchCards builds a card per result.
func (c Components) SearchCards(items []media.Item) []SearchCard {
	out := make([]SearchCard, 0, len(items))
	for _, it := range items {
		out = append(out, c.SearchCard(it))
	}
	return out
}

// ListItem is a numbered sidebar row.
type ListItem struct {
	Index    int
	Title    string
	Subtitle string
	Href     string
	Score    string
}

// TrendingMangaItems are the right sidebar trending rows.
func TrendingMangaItems(list []media.Manga) []ListItem {
	out := make([]ListItem, 0, len(list))
	for i, m := range list {
		out = append(out, ListItem{
			Index:    i + 1,
			Title:    media.FirstNonEmpty(m.Title.English, m.Title.Romaji, media.Untitled),
			Subtitle: strings.Join(head(m.Tags, 2), " · "),
			Href:     MangaHref(m.ID),
		})
	}
	return out
}

// FollowedMangaItems are the right sidebar most-followed rows.
func FollowedMangaItems(list []media.Manga) []ListItem {
	out := make([]ListItem, 0, len(list))
	for i, m := range list {
		out = append(out, ListItem{
			Index:    i + 1,
			Title:    media.FirstNonEmpty(m.Title.English, m.Title.Romaji, media.Untitled),
			Subtitle: derive.ThousandsFollowers(m.Follows),
			Href:     MangaHref(m.ID),
		})
	}
	return out
}

// ReleaseItems are the right sidebar "Today · New Chapters" rows. Chapters
// whose manga is unknown link nowhere.
func ReleaseItems(list []media.Chapter) []ListItem {
	out := make([]ListItem, 0, len(list))
	for i, ch := range list {
		item := ListItem{
			Index:    i + 1,
			Title:    media.Untitled,
			Subtitle: "Chapter " + media.FirstNonEmpty(ch.Chapter, "—"),
			Href:     "#",
		}
		if ch.Manga != nil {
			item.Title = media.FirstNonEmpty(ch.Manga.Title.English, ch.Manga.Title.Romaji, media.Untitled)
		}
		if parent := ch.Parent(); !parent.IsZero() {
			item.Href = ReaderHref(parent, ch.ID)
		}
		out = append(out, item)
	}
	return out
}

// AnimeItems are left sidebar anime rows.
func AnimeItems(list []media.Anime) []ListItem {
	out := make([]ListItem, 0, len(list))
	for i, a := range list {
		out = append(out, ListItem{
			Index:    i + 1,
			Title:    a.DisplayTitle(),
			Subtitle: media.FirstNonEmpty(a.Type, "TV"),
			Href:     AnimeHref(a.ID),
			Score:    derive.FormatRating(a.Score),
		})
	}
	return out
}

// RatedMangaItems are the home page "Top scored stories" rows.
func RatedMangaItems(list []media.Manga) []ListItem {
	out := make([]ListItem, 0, len(list))
	for i, m := range list {
		out = append(out, ListItem{
			Index:    i + 1,
			Title:    m.DisplayTitle(),
			Subtitle: media.FirstNonEmpty(strings.Join(head(m.Tags, 2), " · "), "Ongoing saga"),
			Href:     MangaHref(m.ID),
			Score:    "IMDb " + derive.FormatRating(m.Score),
		})
	}
	return out
}

// ChapterRow is a row of a manga's chapter list.
type ChapterRow struct {
	ID       string
	Number   string
	Title    string
	Released string
	Href     string
}

// ChapterRows builds the rows for a manga's chapters.
func (c Components) ChapterRows(mangaID string, list []media.Chapter) []ChapterRow {
	out := make([]ChapterRow, 0, len(list))
	for _, ch := range list {
		row := ChapterRow{
			ID:     ch.ID.String(),
			Number: "Chapter " + media.FirstNonEmpty(ch.Chapter, "—"),
			Title:  ch.Title,
			Href:   ReaderHref(media.ID(mangaID), ch.ID),
		}
		if ch.ReadableAt.Valid() {
			row.Released = "Released " + derive.FormatDate(ch.ReadableAt, c.loc())
		}
		out = append(out, row)
	}
	return out
}

// EpisodeRow is a row of an anime's episode guide.
type EpisodeRow struct {
	Number string
	Title  string
	Aired  string
	Score  string
	Filler bool
	Recap  bool
}

// EpisodeRows builds the episode guide rows.
func (c Components) EpisodeRows(list []media.Episode) []EpisodeRow {
	out := make([]EpisodeRow, 0, len(list))
	for _, e := range list {
		number := e.ID.String()
		if e.Number > 0 {
			number = strconv.Itoa(e.Number)
		}
		out = append(out, EpisodeRow{
			Number: "Episode " + number,
			Title:  e.Title,
			Aired:  "Aired " + derive.FormatDate(e.Aired, c.loc()),
			Score:  derive.FormatScore(e.Score, 2),
			Filler: e.Filler,
			Recap:  e.Recap,
		})
	}
	return out
}

// RoadmapRow is a row of the season roadmap. The current entry has no link.
type RoadmapRow struct {
	Href     string
	Title    string
	Relation string
	Release  string
	Episodes string
	Current  bool
}

// RoadmapRows builds the roadmap rows.
func RoadmapRows(entries []media.RoadmapEntry) []RoadmapRow {
	out := make([]RoadmapRow, 0, len(entries))
	for _, e := range entries {
		row := RoadmapRow{
			Title:    media.FirstNonEmpty(e.Title, media.Untitled),
			Relation: derive.RelationLabel(e),
			Release:  derive.ReleaseLabel(e),
			Current:  e.Current(),
		}
		switch {
		case derive.IsMovieFormat(e.Format):
			row.Episodes = "Movie"
			if e.Duration > 0 {
				row.Episodes += fmt.Sprintf(" · %d min", e.Duration)
			}
		case e.Episodes > 0:
			row.Episodes = fmt.Sprintf("%d episodes", e.Episodes)
		default:
			row.Episodes = "Episodes TBA"
		}
		if !row.Current {
			row.Href = AnimeHref(e.ID)
		}
		out = append(out, row)
	}
	return out
}

// ScheduleRow is an airing slot on the home schedule tracker.
type ScheduleRow struct {
	Key      string
	Href     string
	Time     string
	Timezone string
	Title    string
	Episode  string
	Type     string
	Premiere bool
}

// ScheduleRows builds the tracker rows for a day's entries.
func (c Components) ScheduleRows(list []media.Anime) []ScheduleRow {
	out := make([]ScheduleRow, 0, len(list))
	for _, e := range list {
		episode := "?"
		if e.Episode > 0 {
			episode = strconv.Itoa(e.Episode)
		}
		out = append(out, ScheduleRow{
			Key:      e.ID.String() + "-" + episode,
			Href:     AnimeHref(e.ID),
			Time:     derive.ScheduleSlot(e, c.loc()).Time,
			Timezone: media.FirstNonEmpty(e.Timezone, "UTC"),
			Title:    e.DisplayTitle(),
			Episode:  "Episode " + episode,
			Type:     media.FirstNonEmpty(e.Type, "TV"),
			Premiere: e.Episode <= 2,
		})
	}
	return out
}

// HeroCard is a rendered spotlight slide.
type HeroCard struct {
	derive.HeroSlide
	Index     int
	Score     string
	StatusTag string
}

// HeroCards formats the spotlight slides.
func (c Components) HeroCards(slides []derive.HeroSlide) []HeroCard {
	out := make([]HeroCard, 0, len(slides))
	for i, s := range slides {
		s.Cover = c.image(s.Cover)
		status := "NEW"
		if s.Status != "" {
			status = derive.HumanizeStatus(s.Status)
		}
		out = append(out, HeroCard{
			HeroSlide: s,
			Index:     i,
			Score:     "IMDb " + derive.FormatRating(s.Rating),
			StatusTag: status,
		})
	}
	return out
}

// StripCard is a ranked home page strip entry (anime or manga).
type StripCard struct {
	Rank    int
	Href    string
	Title   string
	Cover   string
	Copy    string
	Score   string
	Meta    string
	Status  string
	Episode string
	Slot    derive.Slot
}

// AnimeStrip builds the "Top 10 airing anime" strip.
func (c Components) AnimeStrip(list []media.Anime, limit int) []StripCard {
	list = list[:min(len(list), limit)]
	out := make([]StripCard, 0, len(list))
	for i, a := range list {
		episodes := "?"
		if a.Episodes > 0 {
			episodes = strconv.Itoa(a.Episodes)
		}
		status := "NEW"
		if a.Status != "" {
			status = derive.HumanizeStatus(a.Status)
		}
		out = append(out, StripCard{
			Rank:   i + 1,
			Href:   AnimeHref(a.ID),
			Title:  a.DisplayTitle(),
			Cover:  c.image(a.CoverImage),
			Score:  derive.FormatRating(a.Score),
			Meta:   "EP " + episodes,
			Status: status,
		})
	}
	return out
}

// MangaStrip builds the "Fresh ink drops" strip.
func (c Components) MangaStrip(list []media.Manga) []StripCard {
	out := make([]StripCard, 0, len(list))
	for i, m := range list {
		out = append(out, StripCard{
			Rank:  i + 1,
			Href:  MangaHref(m.ID),
			Title: media.FirstNonEmpty(m.Title.English, m.Title.Romaji, media.Untitled),
			Cover: c.image(media.FirstNonEmpty(m.CoverURL, m.Image)),
			Copy:  derive.CleanCopy(m.Description, mangaCopyLimit),
			Score: derive.FormatRating(m.Score),
			Meta:  lastChapter(m, "Ongoing"),
		})
	}
	return out
}

// EpisodeStrip builds the weekly top episode cards.
func (c Components) EpisodeStrip(list []media.Anime) []StripCard {
	out := make([]StripCard, 0, len(list))
	for i, e := range list {
		out = append(out, StripCard{
			Rank:    i + 1,
			Href:    AnimeHref(e.ID),
			Title:   e.DisplayTitle(),
			Cover:   c.image(media.FirstNonEmpty(e.BannerImage, e.CoverImage)),
			Copy:    derive.CleanCopy(e.Synopsis, stripCopyLimit),
			Score:   derive.FormatRating(e.Score),
			Meta:    media.FirstNonEmpty(e.Type, "TV"),
			Episode: fmt.Sprintf("EP %d", e.Episode),
			Slot:    derive.ScheduleSlot(e, c.loc()),
		})
	}
	return out
}

// Spotlight is the "Top episode of the week" panel.
type Spotlight struct {
	Href    string
	Title   string
	Cover   string
	Copy    string
	Score   string
	Day     string
	Meta    string
	Present bool
}

// TopEpisode builds the spotlight for the week's best episode.
func (c Components) TopEpisode(e media.Anime, ok bool) Spotlight {
	if !ok {
		return Spotlight{}
	}
	day := "Weekly"
	if e.AiredAt.Valid() {
		day = e.AiredAt.In(c.loc()).Weekday().String()
	}
	episodes := "?"
	if e.Episodes > 0 {
		episodes = strconv.Itoa(e.Episodes)
	}
	return Spotlight{
		Href:    AnimeHref(e.ID),
		Title:   fmt.Sprintf("%s · Episode %d", e.DisplayTitle(), e.Episode),
		Cover:   c.image(media.FirstNonEmpty(e.BannerImage, e.CoverImage)),
		Copy:    derive.CleanCopy(e.Synopsis, episodeCopyLimit),
		Score:   "IMDb " + derive.FormatRating(e.Score),
		Day:     "Airing " + day,
		Meta:    episodes + " eps",
		Present: true,
	}
}

// DayTab is a selectable day of the home schedule tracker.
type DayTab struct {
	Key     string
	Label   string
	Number  int
	Count   int
	Active  bool
	IsToday bool
}

// DayTabs builds the tracker tabs.
func DayTabs(groups []derive.DayGroup, active string) []DayTab {
	out := make([]DayTab, 0, len(groups))
	for _, g := range groups {
		out = append(out, DayTab{
			Key:     g.Key,
			Label:   g.Label,
			Number:  g.DayNumber,
			Count:   len(g.Entries),
			Active:  g.Key == active,
			IsToday: g.IsToday,
		})
	}
	return out
}

func lastChapter(m media.Manga, fallback string) string {
	if m.LastChapter == "" {
		return fallback
	}
	return "Ch. " + m.LastChapter
}

func head[T any](list []T, n int) []T {
	return slices.Clone(list[:min(len(list), n)])
}
