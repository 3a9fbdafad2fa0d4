package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/anivibe/anivibe/internal/derive"
	"github.com/anivibe/anivibe/internal/hooks"
	"github.com/anivibe/anivibe/internal/nav"
)

// Handlers serves the routed pages, the load-more fragments and the JSON
// view state.
type Handlers struct {
	env              Env
	renderer         *Renderer
	carouselInterval time.Duration
	logger           zerolog.Logger
}

// NewHandlers creates the page handlers.
func NewHandlers(env Env, renderer *Renderer, carouselInterval time.Duration, logger zerolog.Logger) *Handlers {
	return &Handlers{
		env:              env,
		renderer:         renderer,
		carouselInterval: carouselInterval,
		logger:           logger.With().Str("component", "pages").Logger(),
	}
}

// RegisterRoutes registers page, fragment and view state routes.
func (h *Handlers) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Page)
	e.GET("/search", h.Page)
	e.GET("/community", h.Page)
	e.GET("/anime", h.Page)
	e.GET("/anime/schedule", h.Page)
	e.GET("/anime/more", h.AnimeMore)
	e.GET("/anime/:animeId", h.Page)
	e.GET("/anime/:animeId/episodes", h.Episodes)
	e.GET("/manga/:mangaId", h.Page)
	e.GET("/manga/:mangaId/chapters", h.Chapters)
	e.GET("/manga/:mangaId/read/:chapterId", h.Page)

	e.GET("/api/view", h.ViewState)
}

// Layout wraps a page with the shell around it.
func (h *Handlers) Layout(page Page, sidebars *Sidebars) Layout {
	l := Layout{
		Nav:              h.env.Nav,
		Page:             page,
		CarouselInterval: h.carouselInterval.Milliseconds(),
	}
	if sidebars != nil {
		l.Sidebar = sidebars.Left()
		l.Rail = sidebars.Right()
	}
	return l
}

// Renderer returns the template renderer.
func (h *Handlers) Renderer() *Renderer { return h.renderer }

// Env returns the screen environment.
func (h *Handlers) Env() Env { return h.env }

// Load binds a one-shot screen and the sidebars for v, waits for both to
// settle and unmounts them.
func (h *Handlers) Load(ctx context.Context, v nav.View) Layout {
	screen := NewScreen(v.Route, h.env)
	defer screen.Close()
	sidebars := NewSidebars(h.env)
	defer sidebars.Close()

	screen.Bind(ctx, v)
	sidebars.Load(ctx)
	if err := screen.Wait(ctx); err != nil {
		h.logger.Debug().Err(err).Str("url", v.URL()).Msg("page did not settle")
	}
	if err := sidebars.Wait(ctx); err != nil {
		h.logger.Debug().Err(err).Msg("sidebars did not settle")
	}
	return h.Layout(screen.Page(v), sidebars)
}

// Page renders any routed page.
// GET /, /search, /anime, /anime/:animeId, /manga/:mangaId, ...
func (h *Handlers) Page(c echo.Context) error {
	v, err := nav.ParseView(c.Request().URL.RequestURI())
	if err != nil {
		return h.notFound(c)
	}

	l := h.Load(c.Request().Context(), v)
	status := http.StatusOK
	switch {
	case l.Page.NotFound:
		status = http.StatusNotFound
	case l.Page.Status == hooks.StatusError:
		status = http.StatusBadGateway
	}
	return c.Render(status, l.Page.Template, l)
}

// NotFoundPage is shown for URLs that match no route.
func NotFoundPage() Page {
	return Page{
		View:     nav.View{Route: nav.RouteHome},
		Title:    "Not found",
		Template: "error",
		Status:   hooks.StatusError,
		Message:  "This page does not exist.",
		NotFound: true,
	}
}

func (h *Handlers) notFound(c echo.Context) error {
	page := NotFoundPage()
	return c.Render(http.StatusNotFound, page.Template, h.Layout(page, nil))
}

// MoreList is a load-more fragment: the next items and the control for the
// page after them.
type MoreList struct {
	Anime    []AnimeCard
	Chapters []ChapterRow
	Episodes []EpisodeRow
	Label    string
	MoreURL  string
	Message  string
	Busy     bool
}

// Load-more button labels.
const (
	LabelMoreAnime    = "Load More"
	LabelMoreEpisodes = "Load more episodes"
)

// LabelMoreChapters is the chapter list load-more label.
var LabelMoreChapters = fmt.Sprintf("Load Next %d Chapters", hooks.ChaptersPerPage)

// AnimeMore renders the next page of an anime feed.
// GET /anime/more?filter=&page=
func (h *Handlers) AnimeMore(c echo.Context) error {
	filter := derive.NormalizeAnimeFilter(c.QueryParam("filter"))
	page := pageParam(c)

	res, err := hooks.FetchAnimeFeedPage(c.Request().Context(), h.env.Deps.Source, filter, page)
	if err != nil {
		return h.moreFailed(c, "anime-more", LabelMoreAnime, err, AnimeMoreURL(filter, page))
	}
	out := MoreList{Anime: h.env.Components.AnimeCards(res.Results), Label: LabelMoreAnime}
	if res.HasNext() {
		out.MoreURL = AnimeMoreURL(filter, page+1)
	}
	return h.fragment(c, http.StatusOK, "anime-more", out)
}

// Chapters renders the next page of a manga's chapters.
// GET /manga/:mangaId/chapters?page=
func (h *Handlers) Chapters(c echo.Context) error {
	id := c.Param("mangaId")
	page := pageParam(c)

	chapters, hasNext, err := hooks.FetchChapterPage(c.Request().Context(), h.env.Deps.Source, id, page)
	if err != nil {
		return h.moreFailed(c, "chapters-more", LabelMoreChapters, err, ChaptersMoreURL(id, page))
	}
	out := MoreList{Chapters: h.env.Components.ChapterRows(id, chapters), Label: LabelMoreChapters}
	if hasNext {
		out.MoreURL = ChaptersMoreURL(id, page+1)
	}
	return h.fragment(c, http.StatusOK, "chapters-more", out)
}

// Episodes renders the next page of an anime's episode guide.
// GET /anime/:animeId/episodes?page=&malId=
func (h *Handlers) Episodes(c echo.Context) error {
	id := c.Param("animeId")
	page := pageParam(c)
	malID, err := strconv.Atoi(c.QueryParam("malId"))
	if err != nil || malID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "malId is required")
	}

	res, err := h.env.Deps.Source.AnimeEpisodes(c.Request().Context(), id, page, malID)
	if err != nil {
		return h.moreFailed(c, "episodes-more", LabelMoreEpisodes, err, EpisodesMoreURL(id, page, malID))
	}
	out := MoreList{Episodes: h.env.Components.EpisodeRows(res.Results), Label: LabelMoreEpisodes}
	if res.HasNext() {
		out.MoreURL = EpisodesMoreURL(id, page+1, malID)
	}
	return h.fragment(c, http.StatusOK, "episodes-more", out)
}

// moreFailed keeps the load-more control on the failed page so the user can
// retry it.
func (h *Handlers) moreFailed(c echo.Context, name, label string, err error, retry string) error {
	h.logger.Warn().Err(err).Str("url", c.Request().URL.String()).Msg("load more failed")
	status := http.StatusBadGateway
	if errors.Is(err, context.Canceled) {
		status = http.StatusServiceUnavailable
	}
	return h.fragment(c, status, name, MoreList{Label: label, MoreURL: retry, Message: hooks.Message(err, hooks.MsgLoadMore)})
}

func (h *Handlers) fragment(c echo.Context, status int, name string, data MoreList) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return h.renderer.RenderFragment(c.Response(), name, data)
}

// ViewStateResponse is the committed state of a route.
type ViewStateResponse struct {
	View  nav.View `json:"view"`
	Page  Page     `json:"page"`
	State any      `json:"state"`
}

// ViewState returns the committed hook state for a route URL.
// GET /api/view?url=
func (h *Handlers) ViewState(c echo.Context) error {
	raw := c.QueryParam("url")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	v, err := nav.ParseView(raw)
	if err != nil {
		if errors.Is(err, nav.ErrUnknownRoute) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	screen := NewScreen(v.Route, h.env)
	defer screen.Close()
	screen.Bind(c.Request().Context(), v)
	if err := screen.Wait(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusOK, ViewStateResponse{View: v, Page: screen.Page(v), State: screen.State()})
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
