package web

import (
	"context"
	"errors"

	"github.com/anivibe/anivibe/internal/backend"
	"github.com/anivibe/anivibe/internal/hooks"
	"github.com/anivibe/anivibe/internal/nav"
)

// Env is what screens need to load and present data.
type Env struct {
	Deps       hooks.Deps
	Components Components
	Nav        *nav.Definition
}

// Page is the presentational state of a route at one instant.
type Page struct {
	View      nav.View     `json:"view"`
	Title     string       `json:"title"`
	Template  string       `json:"template"`
	Status    hooks.Status `json:"status"`
	Message   string       `json:"error,omitempty"`
	NotFound  bool         `json:"notFound,omitempty"`
	Data      any          `json:"-"`
	Extending bool         `json:"extending,omitempty"`
	ExtendMsg string       `json:"extendError,omitempty"`
}

// Ready reports whether the page has data to render.
func (p Page) Ready() bool { return p.Status == hooks.StatusSuccess }

// Failed reports whether the page shows an error panel.
func (p Page) Failed() bool { return p.Status == hooks.StatusError }

// Screen binds a route's hook to views and presents its state. Page
// handlers use a screen for a single request; live sessions keep one per
// mounted route.
type Screen interface {
	Route() nav.Route
	// Bind loads the data for v unless it is already bound to the same key.
	Bind(ctx context.Context, v nav.View) bool
	Wait(ctx context.Context) error
	Page(v nav.View) Page
	// State is the committed hook state, JSON-encodable.
	State() any
	LoadMore(ctx context.Context) bool
	// SelectDay picks a schedule day by key, or cycles by direction when
	// key is empty.
	SelectDay(key string, direction int) bool
	OnChange(fn func())
	Close()
}

type screen[K comparable, T any] struct {
	route    nav.Route
	template string
	title    string
	hook     *hooks.Hook[K, T]
	key      func(nav.View) K
	build    func(nav.View, T) (string, any)
	more     func(ctx context.Context) bool
	day      func(key string, direction int) bool
}

func (s *screen[K, T]) Route() nav.Route { return s.route }

func (s *screen[K, T]) Bind(ctx context.Context, v nav.View) bool {
	return s.hook.BindIfChanged(ctx, s.key(v))
}

func (s *screen[K, T]) Wait(ctx context.Context) error {
	_, err := s.hook.Wait(ctx)
	return err
}

func (s *screen[K, T]) Page(v nav.View) Page {
	st := s.hook.State()
	p := Page{
		View:      v,
		Title:     s.title,
		Template:  s.template,
		Status:    st.Status,
		Message:   st.Message,
		NotFound:  errors.Is(st.Err, backend.ErrNotFound),
		Extending: st.Extending,
		ExtendMsg: st.ExtendMsg,
	}
	if st.Status == hooks.StatusSuccess {
		title, data := s.build(v, st.Data)
		if title != "" {
			p.Title = title
		}
		p.Data = data
	}
	return p
}

func (s *screen[K, T]) State() any { return s.hook.State() }

func (s *screen[K, T]) LoadMore(ctx context.Context) bool {
	if s.more == nil {
		return false
	}
	return s.more(ctx)
}

func (s *screen[K, T]) SelectDay(key string, direction int) bool {
	if s.day == nil {
		return false
	}
	return s.day(key, direction)
}

func (s *screen[K, T]) OnChange(fn func()) {
	s.hook.OnChange(func(hooks.State[T]) { fn() })
}

func (s *screen[K, T]) Close() { s.hook.Close() }

// NewScreen creates the screen for a route.
func NewScreen(route nav.Route, env Env) Screen {
	c := env.Components
	deps := env.Deps

	switch route {
	case nav.RouteHome:
		h := hooks.NewHomeFeed(deps)
		return &screen[hooks.Unit, hooks.HomeData]{
			route: route, template: "home", title: "Home",
			hook: h.Hook,
			key:  func(nav.View) hooks.Unit { return hooks.Unit{} },
			build: func(_ nav.View, d hooks.HomeData) (string, any) {
				return "", c.Home(d)
			},
			day: func(key string, direction int) bool {
				if key != "" {
					return h.SelectDay(key)
				}
				return h.CycleDay(direction)
			},
		}

	case nav.RouteSearch:
		h := hooks.NewSearch(deps)
		return &screen[hooks.SearchKey, hooks.SearchData]{
			route: route, template: "search", title: "Search",
			hook: h.Hook,
			key: func(v nav.View) hooks.SearchKey {
				return hooks.NewSearchKey(v.Query, v.Filter)
			},
			build: func(v nav.View, d hooks.SearchData) (string, any) {
				return "", c.Search(v, env.Nav, d)
			},
		}

	case nav.RouteManga:
		h := hooks.NewMangaDetails(deps)
		return &screen[string, hooks.MangaDetailsData]{
			route: route, template: "manga", title: "Manga",
			hook: h.Hook,
			key:  func(v nav.View) string { return v.MangaID },
			build: func(_ nav.View, d hooks.MangaDetailsData) (string, any) {
				view := c.MangaDetails(d)
				return view.Title, view
			},
			more: h.LoadMoreChapters,
		}

	case nav.RouteReader:
		h := hooks.NewReader(deps)
		return &screen[hooks.ReaderKey, hooks.ReaderData]{
			route: route, template: "reader", title: "Reader",
			hook: h.Hook,
			key: func(v nav.View) hooks.ReaderKey {
				return hooks.ReaderKey{MangaID: v.MangaID, ChapterID: v.ChapterID}
			},
			build: func(_ nav.View, d hooks.ReaderData) (string, any) {
				return "Chapter " + d.ChapterID, c.Reader(d)
			},
		}

	case nav.RouteAnime:
		h := hooks.NewAnimeFeed(deps)
		return &screen[string, hooks.AnimeFeedData]{
			route: route, template: "anime", title: "Top Anime",
			hook: h.Hook,
			key:  func(v nav.View) string { return v.AnimeFilter() },
			build: func(v nav.View, d hooks.AnimeFeedData) (string, any) {
				return "", c.AnimeFeed(v, env.Nav, d)
			},
			more: h.LoadMore,
		}

	case nav.RouteAnimeDetails:
		h := hooks.NewAnimeDetails(deps)
		return &screen[string, hooks.AnimeDetailsData]{
			route: route, template: "anime-details", title: "Anime",
			hook: h.Hook,
			key:  func(v nav.View) string { return v.AnimeID },
			build: func(_ nav.View, d hooks.AnimeDetailsData) (string, any) {
				view := c.AnimeDetails(d)
				return view.Title, view
			},
			more: h.LoadMoreEpisodes,
		}

	case nav.RouteSchedule:
		h := hooks.NewAnimeSchedule(deps)
		return &screen[string, hooks.ScheduleData]{
			route: route, template: "schedule", title: "Anime Schedule",
			hook: h.Hook,
			key:  func(v nav.View) string { return v.Day },
			build: func(v nav.View, d hooks.ScheduleData) (string, any) {
				return "", c.Schedule(v, env.Nav, d)
			},
		}
	}

	return &staticScreen{route: nav.RouteCommunity, template: "community", title: "Community"}
}

// staticScreen is a route without remote data.
type staticScreen struct {
	route    nav.Route
	template string
	title    string
}

func (s *staticScreen) Route() nav.Route                    { return s.route }
func (s *staticScreen) Bind(context.Context, nav.View) bool { return false }
func (s *staticScreen) Wait(context.Context) error          { return nil }
func (s *staticScreen) LoadMore(context.Context) bool       { return false }
func (s *staticScreen) SelectDay(string, int) bool          { return false }
func (s *staticScreen) OnChange(func())                     {}
func (s *staticScreen) Close()                              {}

func (s *staticScreen) State() any {
	return hooks.State[hooks.Unit]{Status: hooks.StatusSuccess}
}

func (s *staticScreen) Page(v nav.View) Page {
	return Page{View: v, Title: s.title, Template: s.template, Status: hooks.StatusSuccess}
}
