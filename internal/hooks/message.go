package hooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/anivibe/anivibe/internal/backend"
)

// Fallback messages shown when a failure has no more specific text.
const (
	MsgAnimeFeed    = "Failed to load anime"
	MsgHomeFeed     = "Unable to load the feed right now."
	MsgManga        = "Unable to load this manga right now."
	MsgAnime        = "Unable to load this anime right now."
	MsgSchedule     = "Failed to load schedule"
	MsgSearch       = "Something went wrong while searching."
	MsgChapter      = "Unable to load this chapter."
	MsgSidebar      = "Unable to load the sidebar right now."
	MsgLoadMore     = "Unable to load more right now."
	msgNetworkError = "Network error: the backend could not be reached."
)

// Message derives the user-facing text for err, using fallback when the
// error carries nothing worth showing.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var statusErr *backend.StatusError
	switch {
	case errors.As(err, &statusErr):
		if statusErr.Code == 404 {
			return "Not found."
		}
		return fmt.Sprintf("Request failed with status code %d", statusErr.Code)
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out."
	case errors.Is(err, backend.ErrRequestFailed):
		return msgNetworkError
	}
	return fallback
}
