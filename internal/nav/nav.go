// Package nav holds the navigation definition and maps URLs to view state.
package nav

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/anivibe/anivibe/internal/derive"
)

//go:embed nav.yaml
var definitionYAML []byte

// ErrInvalidDefinition is returned when the navigation definition is
// inconsistent with the rest of the application.
var ErrInvalidDefinition = errors.New("invalid navigation definition")

// Link is a navigation entry.
type Link struct {
	ID        string `yaml:"id" json:"id"`
	Label     string `yaml:"label" json:"label"`
	Href      string `yaml:"href" json:"href"`
	Icon      string `yaml:"icon" json:"icon,omitempty"`
	Highlight bool   `yaml:"highlight" json:"highlight,omitempty"`
}

// Section groups sidebar links under a heading.
type Section struct {
	Title string `yaml:"title" json:"title"`
	Links []Link `yaml:"links" json:"links"`
}

// Option is a selectable tab (schedule day, search content type).
type Option struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// Brand is the shell branding copy.
type Brand struct {
	Name     string `yaml:"name" json:"name"`
	Tagline  string `yaml:"tagline" json:"tagline"`
	Headline string `yaml:"headline" json:"headline"`
}

// Definition is the whole navigation tree.
type Definition struct {
	Brand         Brand     `yaml:"brand" json:"brand"`
	Sections      []Section `yaml:"sections" json:"sections"`
	Feeds         []Link    `yaml:"feeds" json:"feeds"`
	MobileTabs    []Link    `yaml:"mobile_tabs" json:"mobileTabs"`
	HomeShortcuts []Link    `yaml:"home_shortcuts" json:"homeShortcuts"`
	ScheduleDays  []Option  `yaml:"schedule_days" json:"scheduleDays"`
	SearchTabs    []Option  `yaml:"search_tabs" json:"searchTabs"`
}

// Load parses the embedded definition.
func Load() (*Definition, error) {
	return Parse(definitionYAML)
}

// MustLoad is Load for package-level initialisation.
func MustLoad() *Definition {
	def, err := Load()
	if err != nil {
		panic(err)
	}
	return def
}

// Parse decodes and validates a definition. Feed links get their href from
// their id.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse navigation YAML: %w", err)
	}

	for i, feed := range def.Feeds {
		if !derive.IsValidAnimeFilter(feed.ID) {
			return nil, fmt.Errorf("%w: unknown anime feed %q", ErrInvalidDefinition, feed.ID)
		}
		if feed.Href == "" {
			def.Feeds[i].Href = View{Route: RouteAnime, Filter: feed.ID}.URL()
		}
	}
	if len(def.Feeds) != len(derive.AnimeFilters()) {
		return nil, fmt.Errorf("%w: expected %d anime feeds, got %d",
			ErrInvalidDefinition, len(derive.AnimeFilters()), len(def.Feeds))
	}
	for _, s := range def.Sections {
		for _, l := range s.Links {
			if _, err := ParseView(l.Href); err != nil {
				return nil, fmt.Errorf("%w: link %q: %w", ErrInvalidDefinition, l.ID, err)
			}
		}
	}
	if len(def.SearchTabs) == 0 {
		return nil, fmt.Errorf("%w: no search tabs", ErrInvalidDefinition)
	}

	return &def, nil
}

// ActiveLink reports whether the sidebar link id is highlighted for v.
func ActiveLink(v View, id string) bool {
	switch id {
	case "home":
		return v.Route == RouteHome
	case "discover":
		return v.Route == RouteSearch && v.Filter == ""
	case "trending", "library", "bookmarks":
		return v.Route == RouteSearch && v.Filter == id
	case "schedule":
		return v.Route == RouteSchedule
	case "top-anime":
		return v.Route == RouteAnime || v.Route == RouteAnimeDetails
	}
	return false
}

// ActiveFeed reports whether the anime feed link id is highlighted for v.
func ActiveFeed(v View, id string) bool {
	return v.Route == RouteAnime && derive.NormalizeAnimeFilter(v.Filter) == id
}

// ActiveTab reports whether the mobile tab with href is highlighted for v.
// Tabs match on the exact path.
func ActiveTab(v View, href string) bool {
	return v.Path() == href
}
