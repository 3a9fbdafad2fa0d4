package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anivibe/anivibe/internal/backend"
	"github.com/anivibe/anivibe/internal/config"
	"github.com/anivibe/anivibe/internal/hooks"
	"github.com/anivibe/anivibe/internal/nav"
	"github.com/anivibe/anivibe/internal/web"
)

var testNow = time.Date(2024, 10, 5, 9, 0, 0, 0, time.UTC)

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func results(items any) map[string]any {
	return map[string]any{"results": items}
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	anime := make([]map[string]any, 0, 3)
	for i := 1; i <= 3; i++ {
		anime = append(anime, map[string]any{
			"id":       fmt.Sprint(i),
			"title":    fmt.Sprintf("Anime %d", i),
			"score":    8,
			"episode":  i,
			"airingAt": testNow.Add(time.Hour).Unix(),
		})
	}
	manga := []map[string]any{
		{"id": "m1", "title": map[string]string{"english": "Manga 1"}, "rating": 9},
		{"id": "m2", "title": map[string]string{"english": "Manga 2"}, "rating": 8},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/anime/top", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, results(anime)) })
	mux.HandleFunc("GET /api/anime/episodes/weekly-top", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, results(anime)) })
	mux.HandleFunc("GET /api/anime/schedule", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, results(anime)) })
	mux.HandleFunc("GET /api/manga/trending", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, results(manga)) })
	mux.HandleFunc("GET /api/manga/popular", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, results(manga)) })
	mux.HandleFunc("GET /api/manga/latest", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, results([]any{})) })
	mux.HandleFunc("GET /api/manga/{id}", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, manga[0]) })
	mux.HandleFunc("GET /api/manga/{id}/chapters", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"results":    []map[string]any{{"id": "c1", "chapter": "1"}},
			"pagination": map[string]bool{"has_next_page": true},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newPages(t *testing.T) *web.Handlers {
	t.Helper()
	server := newBackend(t)
	client := backend.NewClient(config.BackendConfig{BaseURL: server.URL, Timeout: 5}, zerolog.Nop())
	env := web.Env{
		Deps: hooks.Deps{
			Source:   client,
			Clock:    clockwork.NewFakeClockAt(testNow),
			Location: time.UTC,
			Logger:   zerolog.Nop(),
		},
		Components: web.Components{Location: time.UTC},
		Nav:        nav.MustLoad(),
	}
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	return web.NewHandlers(env, renderer, time.Second, zerolog.Nop())
}

type sent struct {
	Type    string
	Payload any
}

// startSession runs a session whose outgoing messages are collected on the
// returned channel.
func startSession(t *testing.T) (*Session, *clockwork.FakeClock, chan sent) {
	t.Helper()
	out := make(chan sent, 256)
	clock := clockwork.NewFakeClockAt(testNow)
	send := func(msgType string, payload any) bool {
		select {
		case out <- sent{Type: msgType, Payload: payload}:
			return true
		default:
			return false
		}
	}
	s := NewSession(newPages(t), clock, time.Second, send, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s, clock, out
}

func dispatch(t *testing.T, s *Session, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.True(t, s.Dispatch(Message{Type: msgType, Payload: raw}))
}

func waitFor(t *testing.T, out chan sent, match func(sent) bool) sent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case m := <-out:
			if match(m) {
				return m
			}
		case <-timeout:
			t.Fatal("timed out waiting for message")
		}
	}
}

func viewWith(status hooks.Status) func(sent) bool {
	return func(m sent) bool {
		v, ok := m.Payload.(ViewPayload)
		return ok && m.Type == TypeView && v.Status == string(status)
	}
}

func TestSession_Navigate(t *testing.T) {
	s, _, out := startSession(t)

	dispatch(t, s, TypeNavigate, NavigatePayload{URL: "/manga/m1"})

	ready := waitFor(t, out, viewWith(hooks.StatusSuccess)).Payload.(ViewPayload)
	assert.Contains(t, ready.HTML, "Manga 1")
	assert.Contains(t, ready.HTML, `data-load-more="/manga/m1/chapters?page=2"`)
	assert.Equal(t, "Manga 1 · AniVibe", ready.Title)
	assert.Equal(t, "/manga/m1", ready.URL)

	side := waitFor(t, out, func(m sent) bool {
		p, ok := m.Payload.(SidebarPayload)
		return ok && strings.Contains(p.Right, "Top 10 · Trending")
	}).Payload.(SidebarPayload)
	assert.Contains(t, side.Left, "Popular anime")
}

func TestSession_NavigateUnknownRoute(t *testing.T) {
	s, _, out := startSession(t)

	dispatch(t, s, TypeNavigate, NavigatePayload{URL: "/definitely/not/here"})

	v := waitFor(t, out, viewWith(hooks.StatusError)).Payload.(ViewPayload)
	assert.Contains(t, v.HTML, "This page does not exist.")
	assert.Equal(t, "Not found · AniVibe", v.Title)
}

func TestSession_StaticRoute(t *testing.T) {
	s, _, out := startSession(t)

	dispatch(t, s, TypeNavigate, NavigatePayload{URL: "/community"})

	v := waitFor(t, out, viewWith(hooks.StatusSuccess)).Payload.(ViewPayload)
	assert.Contains(t, v.HTML, "Discuss chapters with other readers")
}

func TestSession_HomeCarousel(t *testing.T) {
	s, clock, out := startSession(t)

	dispatch(t, s, TypeNavigate, NavigatePayload{URL: "/"})
	home := waitFor(t, out, viewWith(hooks.StatusSuccess)).Payload.(ViewPayload)
	// three trending anime and two trending manga
	assert.Contains(t, home.HTML, `data-count="5"`)
	waitFor(t, out, slide(0))

	dispatch(t, s, TypeCarousel, CarouselPayload{Action: "next"})
	waitFor(t, out, slide(1))

	dispatch(t, s, TypeCarousel, CarouselPayload{Action: "select", Index: 4})
	waitFor(t, out, slide(4))

	clock.Advance(time.Second)
	waitFor(t, out, slide(0))
}

func TestSession_ScheduleDayKeepsCarouselCountdown(t *testing.T) {
	s, clock, out := startSession(t)

	dispatch(t, s, TypeNavigate, NavigatePayload{URL: "/"})
	waitFor(t, out, viewWith(hooks.StatusSuccess))
	waitFor(t, out, slide(0))

	clock.Advance(600 * time.Millisecond)
	dispatch(t, s, TypeScheduleDay, ScheduleDayPayload{Direction: 1})
	waitFor(t, out, viewWith(hooks.StatusSuccess))
	waitFor(t, out, slide(0))

	clock.Advance(500 * time.Millisecond)
	waitFor(t, out, slide(1))
}

func slide(index int) func(sent) bool {
	return func(m sent) bool {
		return m.Type == TypeCarousel && m.Payload == CarouselIndexPayload{Index: index}
	}
}

func TestSession_LoadMoreOutsideListIsIgnored(t *testing.T) {
	s, _, out := startSession(t)

	dispatch(t, s, TypeNavigate, NavigatePayload{URL: "/community"})
	waitFor(t, out, viewWith(hooks.StatusSuccess))

	assert.True(t, s.Dispatch(Message{Type: TypeLoadMore}))
	assert.True(t, s.Dispatch(Message{Type: "bogus"}))
	dispatch(t, s, TypeNavigate, NavigatePayload{URL: "/community#top"})
	v := waitFor(t, out, viewWith(hooks.StatusSuccess)).Payload.(ViewPayload)
	assert.Equal(t, "/community#top", v.URL)
}

func TestHub_WebSocket(t *testing.T) {
	hub := NewHub(newPages(t), clockwork.NewFakeClockAt(testNow), time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", hub.HandleWebSocket)
	server := httptest.NewServer(e)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": TypeNavigate, "payload": map[string]string{"url": "/community"}}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var view ViewPayload
	for view.Status != string(hooks.StatusSuccess) {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == TypeView {
			require.NoError(t, json.Unmarshal(msg.Payload, &view))
		}
	}
	assert.Equal(t, "community", view.Route)

	require.NoError(t, hub.Broadcast(TypeHealth, map[string]string{"status": "ok"}))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == TypeHealth {
			assert.JSONEq(t, `{"status":"ok"}`, string(msg.Payload))
			break
		}
	}

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func newBufferedClient(conn *websocket.Conn, buffer int) *Client {
	return &Client{
		hub:    &Hub{logger: zerolog.Nop()},
		conn:   conn,
		cancel: func() {},
		send:   make(chan []byte, buffer),
		wake:   make(chan struct{}, 1),
	}
}

func decodeView(t *testing.T, data []byte) ViewPayload {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, TypeView, msg.Type)
	var v ViewPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &v))
	return v
}

func TestClient_CoalescesStateWhenBufferFull(t *testing.T) {
	c := newBufferedClient(nil, 1)

	assert.True(t, c.enqueue(TypeView, ViewPayload{URL: "/a"}))
	assert.True(t, c.enqueue(TypeView, ViewPayload{URL: "/b"}))
	assert.True(t, c.enqueue(TypeCarousel, CarouselIndexPayload{Index: 2}))
	assert.True(t, c.enqueue(TypeView, ViewPayload{URL: "/c"}))

	assert.Equal(t, "/a", decodeView(t, <-c.send).URL)
	require.Len(t, c.wake, 1)

	pending := c.takePending()
	require.Len(t, pending, 2)
	assert.Equal(t, "/c", decodeView(t, pending[0]).URL)
	var carousel Message
	require.NoError(t, json.Unmarshal(pending[1], &carousel))
	assert.Equal(t, TypeCarousel, carousel.Type)
	assert.Empty(t, c.takePending())

	// with nothing pending the buffer is used again
	assert.True(t, c.enqueue(TypeView, ViewPayload{URL: "/d"}))
	assert.Equal(t, "/d", decodeView(t, <-c.send).URL)

	c.close()
	assert.False(t, c.enqueue(TypeView, ViewPayload{URL: "/e"}))
}

func TestClient_WritePumpDeliversLatestView(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := newBufferedClient(conn, 1)
		for _, url := range []string{"/a", "/b", "/c"} {
			c.enqueue(TypeView, ViewPayload{URL: url})
		}
		go c.writePump()
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var urls []string
	for range 2 {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		urls = append(urls, decodeView(t, data).URL)
	}
	assert.Equal(t, []string{"/a", "/c"}, urls)
}
