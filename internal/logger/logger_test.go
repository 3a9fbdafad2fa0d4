package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecent_KeepsNewestEntries(t *testing.T) {
	r := NewRecent(3)
	log := zerolog.New(r)

	for _, msg := range []string{"one", "two", "three", "four"} {
		log.Info().Str("component", "backend").Int("page", 2).Msg(msg)
	}

	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "two", entries[0].Message)
	assert.Equal(t, "four", entries[2].Message)
	assert.Equal(t, "backend", entries[2].Component)
	assert.Equal(t, "info", entries[2].Level)
	assert.InDelta(t, 2, entries[2].Fields["page"], 0)
}

func TestRecent_DropsMalformed(t *testing.T) {
	r := NewRecent(2)
	n, err := r.Write([]byte("not json"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, 0, r.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestNew_WritesFileAndBuffer(t *testing.T) {
	dir := t.TempDir()
	l := New(Config{Level: "info", Format: "json", Path: dir, RecentSize: 10})
	defer l.Close()

	comp := l.WithComponent("test")
	comp.Info().Msg("hello")

	assert.NotEmpty(t, l.FilePath())
	entries := l.RecentEntries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "hello", entries[len(entries)-1].Message)
	assert.Equal(t, "test", entries[len(entries)-1].Component)
}
