package web

import (
	"context"

	"github.com/anivibe/anivibe/internal/hooks"
)

// SidebarView is the left anime sidebar.
type SidebarView struct {
	Ready         bool
	Message       string
	Popular       []ListItem
	TodaySchedule []ScheduleRow
	TopRated      []ListItem
}

// RailView is the right manga sidebar.
type RailView struct {
	Ready    bool
	Message  string
	Trending []ListItem
	Followed []ListItem
	Releases []ListItem
}

// Sidebars owns the two sidebar hooks of a shell. They load once per mount
// and are independent of the routed page.
type Sidebars struct {
	env  Env
	left *hooks.Sidebar
	rail *hooks.MangaRail
}

// NewSidebars creates the sidebar hooks without loading them.
func NewSidebars(env Env) *Sidebars {
	return &Sidebars{
		env:  env,
		left: hooks.NewSidebar(env.Deps),
		rail: hooks.NewMangaRail(env.Deps),
	}
}

// Load starts both sidebars.
func (s *Sidebars) Load(ctx context.Context) {
	s.left.Load(ctx)
	s.rail.Load(ctx)
}

// Wait blocks until both sidebars have settled.
func (s *Sidebars) Wait(ctx context.Context) error {
	if _, err := s.left.Wait(ctx); err != nil {
		return err
	}
	_, err := s.rail.Wait(ctx)
	return err
}

// OnChange registers fn on both sidebars.
func (s *Sidebars) OnChange(fn func()) {
	s.left.OnChange(func(hooks.State[hooks.SidebarData]) { fn() })
	s.rail.OnChange(func(hooks.State[hooks.MangaRailData]) { fn() })
}

// Close unmounts both sidebars.
func (s *Sidebars) Close() {
	s.left.Close()
	s.rail.Close()
}

// Left presents the anime sidebar.
func (s *Sidebars) Left() SidebarView {
	st := s.left.State()
	out := SidebarView{Ready: st.Status == hooks.StatusSuccess, Message: st.Message}
	if out.Ready {
		out.Popular = AnimeItems(st.Data.Popular)
		out.TodaySchedule = s.env.Components.ScheduleRows(st.Data.TodaySchedule)
		out.TopRated = AnimeItems(st.Data.TopRated)
	}
	return out
}

// Right presents the manga rail.
func (s *Sidebars) Right() RailView {
	st := s.rail.State()
	out := RailView{Ready: st.Status == hooks.StatusSuccess, Message: st.Message}
	if out.Ready {
		out.Trending = TrendingMangaItems(st.Data.Trending)
		out.Followed = FollowedMangaItems(st.Data.Popular)
		out.Releases = ReleaseItems(st.Data.TodayReleases)
	}
	return out
}
