package logger

import (
	"encoding/json"
	"sync"
)

const defaultRecentSize = 500

// Entry is a parsed log line kept for the diagnostics endpoint.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Recent is an io.Writer that keeps the last N zerolog JSON entries in a
// circular buffer.
type Recent struct {
	mu    sync.RWMutex
	buf   []Entry
	head  int
	count int
}

// NewRecent creates a buffer holding up to size entries.
func NewRecent(size int) *Recent {
	if size <= 0 {
		size = defaultRecentSize
	}
	return &Recent{buf: make([]Entry, size)}
}

// Write implements io.Writer. Malformed lines are dropped.
func (r *Recent) Write(p []byte) (int, error) {
	entry, ok := parseEntry(p)
	if !ok {
		return len(p), nil
	}

	r.mu.Lock()
	idx := (r.head + r.count) % len(r.buf)
	r.buf[idx] = entry
	if r.count < len(r.buf) {
		r.count++
	} else {
		r.head = (r.head + 1) % len(r.buf)
	}
	r.mu.Unlock()

	return len(p), nil
}

// Entries returns buffered entries, oldest first.
func (r *Recent) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, r.count)
	for i := range r.count {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Len returns the number of buffered entries.
func (r *Recent) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

func parseEntry(data []byte) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Entry{}, false
	}

	entry := Entry{}
	take := func(key string) string {
		s, _ := raw[key].(string)
		delete(raw, key)
		return s
	}
	entry.Timestamp = take(zerologTimeKey)
	entry.Level = take("level")
	entry.Component = take("component")
	entry.Message = take("message")

	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry, true
}

const zerologTimeKey = "time"
