package live

import "encoding/json"

// Client message types.
const (
	TypeNavigate    = "navigate"
	TypeLoadMore    = "loadMore"
	TypeCarousel    = "carousel"
	TypeScheduleDay = "scheduleDay"
)

// Server message types.
const (
	TypeView    = "view"
	TypeSidebar = "sidebar"
	// TypeHealth is broadcast when the backend probe changes state.
	TypeHealth = "health:updated"
)

// Message is a websocket message in either direction.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// NavigatePayload asks the session to show url.
type NavigatePayload struct {
	URL string `json:"url"`
}

// CarouselPayload moves the hero carousel. Action is prev, next or select.
type CarouselPayload struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
}

// ScheduleDayPayload picks a home schedule day by key, or cycles by
// direction when key is empty.
type ScheduleDayPayload struct {
	Key       string `json:"key"`
	Direction int    `json:"direction"`
}

// ViewPayload replaces the routed view.
type ViewPayload struct {
	HTML   string `json:"html"`
	Title  string `json:"title"`
	Route  string `json:"route"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// SidebarPayload replaces both sidebars.
type SidebarPayload struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// CarouselIndexPayload shows a hero slide.
type CarouselIndexPayload struct {
	Index int `json:"index"`
}
