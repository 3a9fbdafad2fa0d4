package live

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/anivibe/anivibe/internal/carousel"
	"github.com/anivibe/anivibe/internal/nav"
	"github.com/anivibe/anivibe/internal/web"
)

const inboxSize = 32

// Sender delivers an encoded message to the browser. It must not block and
// reports whether the message was queued.
type Sender func(msgType string, payload any) bool

// Session is one browser tab's mounted shell: the sidebars, the screen of
// the current route and the hero carousel. All state is owned by the Run
// goroutine; hook observers and the carousel timer only signal it.
type Session struct {
	ID string

	pages  *web.Handlers
	send   Sender
	logger zerolog.Logger

	inbox        chan Message
	viewDirty    chan struct{}
	sidebarDirty chan struct{}
	slideDirty   chan struct{}

	carousel *carousel.Carousel
	sidebars *web.Sidebars
	screen   web.Screen
	view     nav.View
	mounted  bool
}

// NewSession creates an idle session. interval is the carousel period.
func NewSession(pages *web.Handlers, clock clockwork.Clock, interval time.Duration, send Sender, logger zerolog.Logger) *Session {
	id := uuid.NewString()
	s := &Session{
		ID:           id,
		pages:        pages,
		send:         send,
		logger:       logger.With().Str("component", "live").Str("session", id).Logger(),
		inbox:        make(chan Message, inboxSize),
		viewDirty:    make(chan struct{}, 1),
		sidebarDirty: make(chan struct{}, 1),
		slideDirty:   make(chan struct{}, 1),
		sidebars:     web.NewSidebars(pages.Env()),
	}
	s.carousel = carousel.New(clock, interval, func(int) { signal(s.slideDirty) })
	s.sidebars.OnChange(func() { signal(s.sidebarDirty) })
	return s
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Dispatch queues a client message. It never blocks; messages beyond the
// inbox capacity are dropped.
func (s *Session) Dispatch(msg Message) bool {
	select {
	case s.inbox <- msg:
		return true
	default:
		s.logger.Warn().Str("type", msg.Type).Msg("session inbox full, dropping message")
		return false
	}
}

// Run processes messages and state changes until ctx is done, then unmounts
// everything the session owns.
func (s *Session) Run(ctx context.Context) {
	s.logger.Debug().Msg("session started")
	s.sidebars.Load(ctx)
	s.carousel.Start(ctx)

	defer func() {
		s.carousel.Stop()
		s.sidebars.Close()
		if s.screen != nil {
			s.screen.Close()
		}
		s.logger.Debug().Msg("session ended")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.inbox:
			s.handle(ctx, msg)
		case <-s.viewDirty:
			s.renderView()
		case <-s.sidebarDirty:
			s.renderSidebars()
		case <-s.slideDirty:
			s.send(TypeCarousel, CarouselIndexPayload{Index: s.carousel.Index()})
		}
	}
}

func (s *Session) handle(ctx context.Context, msg Message) {
	switch msg.Type {
	case TypeNavigate:
		var p NavigatePayload
		if !s.decode(msg, &p) {
			return
		}
		s.navigate(ctx, p.URL)

	case TypeLoadMore:
		if s.screen != nil {
			s.screen.LoadMore(ctx)
		}

	case TypeCarousel:
		var p CarouselPayload
		if !s.decode(msg, &p) {
			return
		}
		switch p.Action {
		case "next":
			s.carousel.Next()
		case "prev":
			s.carousel.Prev()
		case "select":
			s.carousel.Select(p.Index)
		}

	case TypeScheduleDay:
		var p ScheduleDayPayload
		if !s.decode(msg, &p) {
			return
		}
		if s.screen != nil {
			s.screen.SelectDay(p.Key, p.Direction)
		}

	default:
		s.logger.Debug().Str("type", msg.Type).Msg("ignoring unknown message")
	}
}

func (s *Session) decode(msg Message, v any) bool {
	if len(msg.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		s.logger.Debug().Err(err).Str("type", msg.Type).Msg("invalid payload")
		return false
	}
	return true
}

// navigate mounts the screen of raw's route, reusing the current one when
// the route is unchanged so its hook only refetches when the key differs.
func (s *Session) navigate(ctx context.Context, raw string) {
	v, err := nav.ParseView(raw)
	if err != nil {
		s.logger.Debug().Err(err).Str("url", raw).Msg("navigation to unknown route")
		s.unmount()
		s.view = nav.View{Route: nav.RouteHome}
		s.sendPage(web.NotFoundPage())
		s.renderSidebars()
		return
	}

	if s.screen == nil || s.screen.Route() != v.Route {
		s.unmount()
		s.screen = web.NewScreen(v.Route, s.pages.Env())
		s.screen.OnChange(func() { signal(s.viewDirty) })
	}
	s.view = v
	s.mounted = true
	s.screen.Bind(ctx, v)

	s.renderView()
	s.renderSidebars()
}

func (s *Session) unmount() {
	if s.screen != nil {
		s.screen.Close()
		s.screen = nil
	}
	s.mounted = false
	s.carousel.SetLength(0)
}

func (s *Session) renderView() {
	if !s.mounted || s.screen == nil {
		return
	}
	page := s.screen.Page(s.view)
	s.sendPage(page)

	home, ok := page.Data.(web.HomeView)
	if !ok {
		s.carousel.SetLength(0)
		return
	}
	s.carousel.SetLength(len(home.Hero))
	// Rendered markup always marks the first slide active.
	s.send(TypeCarousel, CarouselIndexPayload{Index: s.carousel.Index()})
}

func (s *Session) sendPage(page web.Page) {
	l := s.pages.Layout(page, nil)
	html, err := s.pages.Renderer().RenderMain(l)
	if err != nil {
		s.logger.Error().Err(err).Str("template", page.Template).Msg("failed to render view")
		return
	}

	title := page.Title
	if l.Nav != nil {
		title += " · " + l.Nav.Brand.Name
	}
	s.send(TypeView, ViewPayload{
		HTML:   html,
		Title:  title,
		Route:  string(page.View.Route),
		URL:    page.View.URL(),
		Status: string(page.Status),
	})
}

func (s *Session) renderSidebars() {
	l := s.pages.Layout(web.Page{View: s.view}, s.sidebars)
	left, right, err := s.pages.Renderer().RenderSidebars(l)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render sidebars")
		return
	}
	s.send(TypeSidebar, SidebarPayload{Left: left, Right: right})
}
