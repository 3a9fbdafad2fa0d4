package media

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle_Display(t *testing.T) {
	tests := []struct {
		name  string
		title Title
		want  string
	}{
		{"english wins", Title{English: "Frieren", Romaji: "Sousou no Frieren"}, "Frieren"},
		{"romaji fallback", Title{Romaji: "Sousou no Frieren", Native: "葬送のフリーレン"}, "Sousou no Frieren"},
		{"native fallback", Title{Native: "葬送のフリーレン"}, "葬送のフリーレン"},
		{"blank english skipped", Title{English: "  ", Romaji: "Dandadan"}, "Dandadan"},
		{"untitled", Title{}, Untitled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.title.Display())
		})
	}
}

func TestAnime_DisplayTitleAndCover(t *testing.T) {
	a := Anime{Title: "Shingeki no Kyojin", TitleEnglish: "Attack on Titan"}
	assert.Equal(t, "Attack on Titan", a.DisplayTitle())
	assert.Equal(t, PlaceholderCover, a.Cover())

	a.TitleEnglish = ""
	a.BannerImage = "https://img/banner.jpg"
	assert.Equal(t, "Shingeki no Kyojin", a.DisplayTitle())
	assert.Equal(t, "https://img/banner.jpg", a.Cover())

	assert.Equal(t, Untitled, Anime{}.DisplayTitle())
}

func TestManga_CoverAndFollowers(t *testing.T) {
	m := Manga{Image: "https://img/m.jpg", RatingVotes: NewCount(42)}
	assert.Equal(t, "https://img/m.jpg", m.Cover())
	n, ok := m.Followers().Value()
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	m.Follows = NewCount(1000)
	n, _ = m.Followers().Value()
	assert.Equal(t, int64(1000), n)
	assert.Equal(t, PlaceholderCover, Manga{}.Cover())
}

func TestRating_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{`8.75`, 8.75, true},
		{`"7.5"`, 7.5, true},
		{`0`, 0, true},
		{`null`, 0, false},
		{`"n/a"`, 0, false},
		{`""`, 0, false},
		{`true`, 0, false},
		{`{"value":1}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var r Rating
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &r))
			v, ok := r.Value()
			assert.Equal(t, tt.valid, ok)
			assert.InDelta(t, tt.want, v, 1e-9)
		})
	}
}

func TestRating_AbsentField(t *testing.T) {
	var m Manga
	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc","title":{"english":"Blue Lock"}}`), &m))
	assert.False(t, m.Score.Valid())
	assert.Equal(t, ID("abc"), m.ID)
}

func TestID_AcceptsNumbers(t *testing.T) {
	var a Anime
	require.NoError(t, json.Unmarshal([]byte(`{"id":154587,"title":"Frieren"}`), &a))
	assert.Equal(t, ID("154587"), a.ID)
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	want := time.Date(2024, 10, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2024-10-05T14:30:00Z"`, want},
		{"unix seconds", `1728138600`, want},
		{"unix millis", `1728138600000`, want},
		{"null", `null`, time.Time{}},
		{"garbage", `"soon"`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}

func TestPage_HasNext(t *testing.T) {
	var p Page[Anime]
	require.NoError(t, json.Unmarshal([]byte(`{"results":[{"id":1}]}`), &p))
	assert.False(t, p.HasNext())

	require.NoError(t, json.Unmarshal([]byte(`{"results":[],"pagination":{"has_next_page":true}}`), &p))
	assert.True(t, p.HasNext())
}

func TestNewSearchResults(t *testing.T) {
	res := NewSearchResults(
		[]Anime{{ID: "a1"}, {ID: "a2"}},
		[]Manga{{ID: "m1"}},
	)

	require.Len(t, res.All, 3)
	assert.Equal(t, KindAnime, res.All[0].Kind)
	assert.Equal(t, ID("m1"), res.All[2].ItemID())
	assert.Len(t, res.Tab("anime"), 2)
	assert.Len(t, res.Tab("manga"), 1)
	assert.Len(t, res.Tab("bogus"), 3)
}
