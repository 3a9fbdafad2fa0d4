package web

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/anivibe/anivibe/internal/derive"
	"github.com/anivibe/anivibe/internal/hooks"
	"github.com/anivibe/anivibe/internal/media"
	"github.com/anivibe/anivibe/internal/nav"
)

const (
	homeAiringLimit = 10
	detailTagLimit  = 10
)

// HomeView is the home page.
type HomeView struct {
	Hero        []HeroCard
	Airing      []StripCard
	Fresh       []StripCard
	Rated       []ListItem
	TopEpisode  Spotlight
	EpisodeList []StripCard
	Days        []DayTab
	ActiveDay   string
	Schedule    []ScheduleRow
}

// Home builds the home page.
func (c Components) Home(d hooks.HomeData) HomeView {
	top, ok := d.TopEpisode()
	return HomeView{
		Hero:        c.HeroCards(d.Hero),
		Airing:      c.AnimeStrip(d.TrendingAnime, homeAiringLimit),
		Fresh:       c.MangaStrip(d.TrendingManga),
		Rated:       RatedMangaItems(d.TopManga),
		TopEpisode:  c.TopEpisode(top, ok),
		EpisodeList: c.EpisodeStrip(d.EpisodeList),
		Days:        DayTabs(d.Days, d.ActiveDay),
		ActiveDay:   d.ActiveDay,
		Schedule:    c.ScheduleRows(d.ActiveEntries()),
	}
}

// FeedTab is an anime feed selector.
type FeedTab struct {
	nav.Link
	Active bool
}

// AnimeFeedView is the /anime page.
type AnimeFeedView struct {
	Filter  string
	Label   string
	Feeds   []FeedTab
	Cards   []AnimeCard
	HasNext bool
	MoreURL string
}

// AnimeFeed builds the anime feed page.
func (c Components) AnimeFeed(v nav.View, def *nav.Definition, d hooks.AnimeFeedData) AnimeFeedView {
	out := AnimeFeedView{
		Filter:  d.Filter,
		Label:   d.Label,
		Cards:   c.AnimeCards(d.List.Items),
		HasNext: d.List.HasNext,
	}
	if d.List.HasNext {
		out.MoreURL = AnimeMoreURL(d.Filter, d.List.NextPage())
	}
	if def != nil {
		for _, f := range def.Feeds {
			out.Feeds = append(out.Feeds, FeedTab{Link: f, Active: nav.ActiveFeed(v, f.ID)})
		}
	}
	return out
}

// AnimeMoreURL is the fragment URL of an anime feed page.
func AnimeMoreURL(filter string, page int) string {
	q := url.Values{}
	q.Set("filter", filter)
	q.Set("page", strconv.Itoa(page))
	return "/anime/more?" + q.Encode()
}

// DayOption is a schedule page day selector.
type DayOption struct {
	nav.Option
	Href   string
	Active bool
}

// ScheduleGroup is a weekday section of the schedule page.
type ScheduleGroup struct {
	Day   string
	Count int
	Cards []ScheduleCard
}

// ScheduleCard is an anime card with its airing time.
type ScheduleCard struct {
	AnimeCard
	Airing string
}

// ScheduleView is the /anime/schedule page.
type ScheduleView struct {
	Day    string
	Days   []DayOption
	Groups []ScheduleGroup
}

// Schedule builds the schedule page.
func (c Components) Schedule(v nav.View, def *nav.Definition, d hooks.ScheduleData) ScheduleView {
	out := ScheduleView{Day: d.Day}
	if def != nil {
		for _, o := range def.ScheduleDays {
			out.Days = append(out.Days, DayOption{
				Option: o,
				Href:   v.With("day", o.ID).URL(),
				Active: o.ID == d.Day,
			})
		}
	}
	for _, g := range d.Groups {
		group := ScheduleGroup{Day: g.Day, Count: len(g.Entries)}
		for _, a := range g.Entries {
			card := ScheduleCard{AnimeCard: c.AnimeCard(a)}
			if a.AiringTime != "" {
				card.Airing = a.AiringTime + " " + media.FirstNonEmpty(a.Timezone, "JST")
			}
			group.Cards = append(group.Cards, card)
		}
		out.Groups = append(out.Groups, group)
	}
	return out
}

// Stat is a labelled value chip.
type Stat struct {
	Label string
	Value string
}

// LinkCard is a linked tile with optional art.
type LinkCard struct {
	Href     string
	Title    string
	Cover    string
	Subtitle string
	Score    string
	Source   string
	External bool
}

// AnimeDetailsView is the /anime/:animeId page.
type AnimeDetailsView struct {
	ID              string
	Title           string
	Banner          string
	Cover           string
	Score           string
	Popularity      string
	Favorites       string
	Rank            string
	Synopsis        string
	Stats           []Stat
	Tags            []string
	Platforms       []media.Platform
	Roadmap         []RoadmapRow
	Broadcast       string
	HasMalID        bool
	Episodes        []EpisodeRow
	EpisodesMoreURL string
	Relations       []LinkCard
	Recommendations []LinkCard
	MalPicks        []LinkCard
}

// AnimeDetails builds the anime details page.
func (c Components) AnimeDetails(d hooks.AnimeDetailsData) AnimeDetailsView {
	a := d.Anime
	out := AnimeDetailsView{
		ID:        a.ID.String(),
		Title:     media.FirstNonEmpty(a.Title, a.TitleEnglish, media.Untitled),
		Synopsis:  d.Synopsis,
		Tags:      head(slices.Concat(a.Genres, a.Themes), detailTagLimit),
		Platforms: a.StreamingPlatforms,
		Roadmap:   RoadmapRows(d.Roadmap),
		HasMalID:  d.HasMalID(),
		Episodes:  c.EpisodeRows(d.Episodes.Items),
	}
	if a.BannerImage != "" {
		out.Banner = c.image(a.BannerImage)
	}
	if a.CoverImage != "" {
		out.Cover = c.image(a.CoverImage)
	}
	if a.Score.Valid() {
		out.Score = "IMDb " + derive.FormatRating(a.Score)
	}
	if pop := firstCount(a.Stats.Popularity, a.MalStats.Popularity); pop != "" {
		out.Popularity = "#" + pop + " popularity"
	}
	if favs := firstCount(a.Stats.Favs(), a.MalStats.Favs()); favs != "" {
		out.Favorites = favs + " favorites"
	}
	if rank := firstCount(a.MalStats.Rank); rank != "" {
		out.Rank = "Rank #" + rank
	}

	out.Stats = []Stat{
		{"Episodes", orDefault(a.Episodes, "%d", "TBA")},
		{"Runtime", orDefault(a.Duration, "%d min", "Unknown")},
		{"Status", derive.HumanizeStatus(a.Status)},
		{"Season", media.FirstNonEmpty(derive.FormatSeasonLabel(a.Season, a.Year), orDefault(a.Year, "%d", "TBA"))},
	}
	if a.Broadcast.Time != "" {
		out.Broadcast = fmt.Sprintf("%s · %s (%s)", a.Broadcast.Day, a.Broadcast.Time, media.FirstNonEmpty(a.Broadcast.Timezone, "UTC"))
	}
	if d.HasMalID() && d.Episodes.HasNext {
		out.EpisodesMoreURL = EpisodesMoreURL(a.ID.String(), d.Episodes.NextPage(), a.MalID)
	}

	for _, r := range a.Relations {
		out.Relations = append(out.Relations, LinkCard{
			Href:     AnimeHref(r.ID),
			Title:    r.Title,
			Cover:    c.image(r.CoverImage),
			Subtitle: derive.HumanizeStatus(r.RelationType),
		})
	}
	for _, r := range a.Recommendations {
		out.Recommendations = append(out.Recommendations, c.recommendation(r, AnimeHref(r.ID), false))
	}
	for _, r := range d.Recommendations {
		out.MalPicks = append(out.MalPicks, c.recommendation(r, "https://myanimelist.net/anime/"+r.ID.String(), true))
	}
	return out
}

func (c Components) recommendation(r media.Recommendation, href string, external bool) LinkCard {
	card := LinkCard{Href: href, Title: r.Title, Source: r.Source, External: external}
	if r.CoverImage != "" {
		card.Cover = c.image(r.CoverImage)
	}
	if r.Score.Valid() {
		card.Score = "IMDb " + derive.FormatRating(r.Score)
	}
	return card
}

// EpisodesMoreURL is the fragment URL of an episode page.
func EpisodesMoreURL(animeID string, page, malID int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("malId", strconv.Itoa(malID))
	return AnimeHref(media.ID(animeID)) + "/episodes?" + q.Encode()
}

// MangaDetailsView is the /manga/:mangaId page.
type MangaDetailsView struct {
	ID           string
	Title        string
	Cover        string
	Description  string
	Authors      string
	Demographic  string
	Rating       string
	Followers    string
	Tags         []string
	Chapters     []ChapterRow
	ChapterCount string
	MoreURL      string
}

// MangaDetails builds the manga details page.
func (c Components) MangaDetails(d hooks.MangaDetailsData) MangaDetailsView {
	m := d.Manga
	out := MangaDetailsView{
		ID:          m.ID.String(),
		Title:       m.DisplayTitle(),
		Description: media.FirstNonEmpty(derive.StripHTML(m.Description), "No synopsis available just yet."),
		Demographic: m.Demographic,
		Tags:        head(m.Tags, detailTags),
		Chapters:    c.ChapterRows(m.ID.String(), d.Chapters.Items),
	}
	if m.CoverURL != "" {
		out.Cover = c.image(m.CoverURL)
	}
	if len(m.Authors) > 0 {
		out.Authors = strings.Join(m.Authors, ", ")
	}
	if m.Score.Valid() {
		out.Rating = derive.FormatScore(m.Score, 2)
	}
	if _, ok := m.Follows.Value(); ok {
		out.Followers = derive.ThousandsFollowers(m.Follows)
	}
	if n := len(d.Chapters.Items); n > 0 {
		out.ChapterCount = ChapterCount(n)
	}
	if d.Chapters.HasNext {
		out.MoreURL = ChaptersMoreURL(m.ID.String(), d.Chapters.NextPage())
	}
	return out
}

// ChapterCount renders the chapter list summary line.
func ChapterCount(n int) string {
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("Showing %d chapter%s (%d per page)", n, plural, hooks.ChaptersPerPage)
}

// ChaptersMoreURL is the fragment URL of a chapter page.
func ChaptersMoreURL(mangaID string, page int) string {
	return MangaHref(media.ID(mangaID)) + "/chapters?page=" + strconv.Itoa(page)
}

// ReaderPage is a chapter page image.
type ReaderPage struct {
	Index int
	URL   string
	Alt   string
}

// ReaderView is the /manga/:mangaId/read/:chapterId page.
type ReaderView struct {
	MangaHref string
	ChapterID string
	FirstPage string
	Pages     []ReaderPage
}

// Reader builds the reader page.
func (c Components) Reader(d hooks.ReaderData) ReaderView {
	out := ReaderView{MangaHref: MangaHref(media.ID(d.MangaID)), ChapterID: d.ChapterID}
	for _, p := range d.Pages {
		out.Pages = append(out.Pages, ReaderPage{
			Index: p.Index,
			URL:   p.URL,
			Alt:   fmt.Sprintf("Chapter %s page %d", d.ChapterID, p.Index),
		})
	}
	if len(out.Pages) > 0 {
		out.FirstPage = out.Pages[0].URL
	}
	return out
}

// SearchTab is a search content tab with its result count.
type SearchTab struct {
	nav.Option
	Href   string
	Count  int
	Active bool
}

// SearchView is the /search page.
type SearchView struct {
	Heading   string
	Query     string
	Filter    string
	Tab       string
	Bookmarks bool
	Tabs      []SearchTab
	Cards     []SearchCard
}

// Search builds the search page for the view's active tab.
func (c Components) Search(v nav.View, def *nav.Definition, d hooks.SearchData) SearchView {
	out := SearchView{
		Heading:   d.Heading,
		Query:     d.Key.Query,
		Filter:    d.Key.Filter,
		Tab:       v.Tab,
		Bookmarks: d.Bookmarks,
		Cards:     c.SearchCards(d.Results.Tab(v.Tab)),
	}
	if def != nil {
		for _, o := range def.SearchTabs {
			out.Tabs = append(out.Tabs, SearchTab{
				Option: o,
				Href:   v.With("tab", o.ID).URL(),
				Count:  len(d.Results.Tab(o.ID)),
				Active: o.ID == v.Tab,
			})
		}
	}
	return out
}

func firstCount(counts ...media.Count) string {
	for _, c := range counts {
		if v, ok := c.Value(); ok && v != 0 {
			return derive.CommaCount(c)
		}
	}
	return ""
}

func orDefault(n int, format, fallback string) string {
	if n <= 0 {
		return fallback
	}
	return fmt.Sprintf(format, n)
}
