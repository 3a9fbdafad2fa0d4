// Package media holds the anime and manga payloads returned by the backend
// along with the display helpers shared by every view that renders them.
package media

import "strings"

// Untitled is shown when an entity carries no usable title.
const Untitled = "Untitled"

// PlaceholderCover is used when an entity has no cover art.
const PlaceholderCover = "https://via.placeholder.com/300x420?text=No+Cover"

// Kind tags a search result with its content type.
type Kind string

const (
	KindAnime Kind = "anime"
	KindManga Kind = "manga"
)

// Title is a multi-locale title.
type Title struct {
	English string `json:"english,omitempty"`
	Romaji  string `json:"romaji,omitempty"`
	Native  string `json:"native,omitempty"`
}

// Display returns the first non-empty of English, Romaji and Native.
func (t Title) Display() string {
	return FirstNonEmpty(t.English, t.Romaji, t.Native, Untitled)
}

// FirstNonEmpty returns the first candidate that is not blank.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

// Stats holds AniList or MAL community figures.
type Stats struct {
	Popularity Count `json:"popularity"`
	Favourites Count `json:"favourites"`
	Favorites  Count `json:"favorites"`
	Rank       Count `json:"rank"`
}

// Favs returns whichever favourites spelling is present.
func (s Stats) Favs() Count {
	if _, ok := s.Favourites.Value(); ok {
		return s.Favourites
	}
	return s.Favorites
}

// ExternalLinks points at the anime's pages on other trackers.
type ExternalLinks struct {
	AniList string `json:"anilist,omitempty"`
	MAL     string `json:"mal,omitempty"`
}

// Platform is a streaming service offering the anime.
type Platform struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Broadcast is the weekly broadcast slot.
type Broadcast struct {
	Day      string `json:"day,omitempty"`
	Time     string `json:"time,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Relation is an entry related to an anime (prequel, sequel, movie...).
type Relation struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	RelationType string `json:"relationType,omitempty"`
	Format       string `json:"format,omitempty"`
	Season       string `json:"season,omitempty"`
	SeasonYear   int    `json:"seasonYear,omitempty"`
	Year         int    `json:"year,omitempty"`
	Episodes     int    `json:"episodes,omitempty"`
	Duration     int    `json:"duration,omitempty"`
	CoverImage   string `json:"coverImage,omitempty"`
}

// Recommendation is a suggested title from AniList or MAL.
type Recommendation struct {
	ID         ID     `json:"id"`
	Title      string `json:"title"`
	CoverImage string `json:"coverImage,omitempty"`
	Score      Rating `json:"score"`
	Source     string `json:"source,omitempty"`
}

// Anime is the anime summary and detail payload. Schedule and weekly-top
// feeds reuse it with their airing fields populated.
type Anime struct {
	ID                 ID               `json:"id"`
	MalID              int              `json:"malId,omitempty"`
	Title              string           `json:"title"`
	TitleEnglish       string           `json:"titleEnglish,omitempty"`
	CoverImage         string           `json:"coverImage,omitempty"`
	BannerImage        string           `json:"bannerImage,omitempty"`
	Score              Rating           `json:"score"`
	Type               string           `json:"type,omitempty"`
	Episodes           int              `json:"episodes,omitempty"`
	Status             string           `json:"status,omitempty"`
	Genres             []string         `json:"genres,omitempty"`
	Themes             []string         `json:"themes,omitempty"`
	Year               int              `json:"year,omitempty"`
	Season             string           `json:"season,omitempty"`
	Synopsis           string           `json:"synopsis,omitempty"`
	DescriptionHTML    string           `json:"descriptionHtml,omitempty"`
	Duration           int              `json:"duration,omitempty"`
	Studios            []string         `json:"studios,omitempty"`
	Producers          []string         `json:"producers,omitempty"`
	Stats              Stats            `json:"stats"`
	MalStats           Stats            `json:"malStats"`
	ExternalLinks      ExternalLinks    `json:"externalLinks"`
	StreamingPlatforms []Platform       `json:"streamingPlatforms,omitempty"`
	Broadcast          Broadcast        `json:"broadcast"`
	Relations          []Relation       `json:"relations,omitempty"`
	Recommendations    []Recommendation `json:"recommendations,omitempty"`

	AiringAt   Timestamp `json:"airingAt"`
	AiringDay  string    `json:"airingDay,omitempty"`
	AiringTime string    `json:"airingTime,omitempty"`
	Timezone   string    `json:"timezone,omitempty"`

	Episode int       `json:"episode,omitempty"`
	AiredAt Timestamp `json:"airedAt"`
}

// DisplayTitle returns the English title, then the default title.
func (a Anime) DisplayTitle() string {
	return FirstNonEmpty(a.TitleEnglish, a.Title, Untitled)
}

// Cover returns the cover art, then the banner, then the placeholder.
func (a Anime) Cover() string {
	return FirstNonEmpty(a.CoverImage, a.BannerImage, PlaceholderCover)
}

// Rating implements the rated constraint used by top-rated lists.
func (a Anime) Rating() Rating { return a.Score }

// Manga is the manga summary and detail payload.
type Manga struct {
	ID          ID       `json:"id"`
	Title       Title    `json:"title"`
	CoverURL    string   `json:"cover,omitempty"`
	Image       string   `json:"image,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Status      string   `json:"status,omitempty"`
	Score       Rating   `json:"rating"`
	Follows     Count    `json:"follows"`
	RatingVotes Count    `json:"ratingVotes"`
	LastChapter string   `json:"lastChapter,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Demographic string   `json:"demographic,omitempty"`
	Year        int      `json:"year,omitempty"`
}

// DisplayTitle returns the first non-empty locale title.
func (m Manga) DisplayTitle() string { return m.Title.Display() }

// Cover returns the cover, then the image, then the placeholder.
func (m Manga) Cover() string {
	return FirstNonEmpty(m.CoverURL, m.Image, PlaceholderCover)
}

// Rating implements the rated constraint used by top-rated lists.
func (m Manga) Rating() Rating { return m.Score }

// Followers returns follows, falling back to the rating vote count.
func (m Manga) Followers() Count {
	if _, ok := m.Follows.Value(); ok {
		return m.Follows
	}
	return m.RatingVotes
}

// Episode is a single episode of an anime, keyed to its parent by MAL id.
type Episode struct {
	ID     ID        `json:"id"`
	MalID  int       `json:"malId,omitempty"`
	Number int       `json:"number"`
	Title  string    `json:"title,omitempty"`
	Aired  Timestamp `json:"aired"`
	Score  Rating    `json:"score"`
	Filler bool      `json:"filler,omitempty"`
	Recap  bool      `json:"recap,omitempty"`
}

// Chapter is a manga chapter. The latest-chapters feed embeds the parent.
type Chapter struct {
	ID         ID        `json:"id"`
	Chapter    string    `json:"chapter,omitempty"`
	Title      string    `json:"title,omitempty"`
	ReadableAt Timestamp `json:"readableAt"`
	Manga      *Manga    `json:"manga,omitempty"`
	MangaID    ID        `json:"mangaId,omitempty"`
}

// Parent returns the id of the chapter's manga, if known.
func (c Chapter) Parent() ID {
	if c.Manga != nil && !c.Manga.ID.IsZero() {
		return c.Manga.ID
	}
	return c.MangaID
}

// ChapterPage is one page image of a chapter.
type ChapterPage struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// ChapterPages is the chapter pages payload.
type ChapterPages struct {
	Pages []ChapterPage `json:"pages"`
}

// Pagination describes whether another page exists. No total is guaranteed.
type Pagination struct {
	HasNextPage bool `json:"has_next_page"`
}

// Page is a paginated result envelope.
type Page[T any] struct {
	Results    []T         `json:"results"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// HasNext reports the has_next_page flag, false when no descriptor is present.
func (p Page[T]) HasNext() bool {
	return p.Pagination != nil && p.Pagination.HasNextPage
}

// Item is a search result tagged with its content type. Exactly one of
// Anime and Manga is set.
type Item struct {
	Kind  Kind   `json:"contentType"`
	Anime *Anime `json:"anime,omitempty"`
	Manga *Manga `json:"manga,omitempty"`
}

// ItemID returns the id of the wrapped entity.
func (i Item) ItemID() ID {
	if i.Anime != nil {
		return i.Anime.ID
	}
	if i.Manga != nil {
		return i.Manga.ID
	}
	return ""
}

// TagAnime wraps anime as search results.
func TagAnime(list []Anime) []Item {
	out := make([]Item, 0, len(list))
	for i := range list {
		out = append(out, Item{Kind: KindAnime, Anime: &list[i]})
	}
	return out
}

// TagManga wraps manga as search results.
func TagManga(list []Manga) []Item {
	out := make([]Item, 0, len(list))
	for i := range list {
		out = append(out, Item{Kind: KindManga, Manga: &list[i]})
	}
	return out
}

// SearchResults groups search results by content type.
type SearchResults struct {
	Anime []Item `json:"anime"`
	Manga []Item `json:"manga"`
	All   []Item `json:"all"`
}

// Tab returns the results for a content tab (all, anime or manga).
func (r SearchResults) Tab(tab string) []Item {
	switch tab {
	case string(KindAnime):
		return r.Anime
	case string(KindManga):
		return r.Manga
	default:
		return r.All
	}
}

// NewSearchResults tags anime and manga and concatenates them, anime first.
func NewSearchResults(anime []Anime, manga []Manga) SearchResults {
	a := TagAnime(anime)
	m := TagManga(manga)
	all := make([]Item, 0, len(a)+len(m))
	all = append(all, a...)
	all = append(all, m...)
	return SearchResults{Anime: a, Manga: m, All: all}
}

// RoadmapEntry is a row of the season roadmap.
type RoadmapEntry struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	RelationType string `json:"relationType"`
	Format       string `json:"format,omitempty"`
	Season       string `json:"season,omitempty"`
	SeasonYear   int    `json:"seasonYear,omitempty"`
	Episodes     int    `json:"episodes,omitempty"`
	Duration     int    `json:"duration,omitempty"`
}

// Current reports whether the entry is the anime being viewed.
func (e RoadmapEntry) Current() bool { return e.RelationType == RelationCurrent }

// RelationCurrent tags the viewed anime's own roadmap entry.
const RelationCurrent = "CURRENT"
