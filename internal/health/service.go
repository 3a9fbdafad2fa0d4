package health

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Broadcaster defines the interface for sending websocket messages.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// UpdatedMessage is the websocket message type of health changes.
const UpdatedMessage = "health:updated"

// Service manages the health state of all tracked items.
// All state is in-memory and resets on application restart.
type Service struct {
	items       map[HealthCategory]map[string]*HealthItem
	mu          sync.RWMutex
	broadcaster Broadcaster
	clock       clockwork.Clock
	logger      zerolog.Logger
}

// NewService creates a new health service.
func NewService(clock clockwork.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Service{
		items:  make(map[HealthCategory]map[string]*HealthItem),
		clock:  clock,
		logger: logger.With().Str("component", "health").Logger(),
	}

	for _, cat := range AllCategories() {
		s.items[cat] = make(map[string]*HealthItem)
	}

	return s
}

// SetBroadcaster sets the websocket broadcaster for real-time updates.
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// RegisterItem adds a new item to health tracking with OK status.
func (s *Service) RegisterItem(category HealthCategory, id, name string) {
	s.mu.Lock()
	if _, ok := s.items[category]; !ok {
		s.items[category] = make(map[string]*HealthItem)
	}
	item := &HealthItem{
		ID:       id,
		Category: category,
		Name:     name,
		Status:   StatusOK,
	}
	s.items[category][id] = item
	payload, b := s.updateLocked(item)
	s.mu.Unlock()

	s.logger.Debug().
		Str("category", string(category)).
		Str("id", id).
		Str("name", name).
		Msg("Registered health item")

	s.broadcast(b, payload)
}

// SetError sets an item to Error status with a message.
func (s *Service) SetError(category HealthCategory, id, message string) {
	s.setStatus(category, id, StatusError, message)
}

// SetWarning sets an item to Warning status with a message. The item still
// works but is degraded.
func (s *Service) SetWarning(category HealthCategory, id, message string) {
	s.setStatus(category, id, StatusWarning, message)
}

// ClearStatus resets an item to OK status.
func (s *Service) ClearStatus(category HealthCategory, id string) {
	s.setStatus(category, id, StatusOK, "")
}

// setStatus records a check of an item. Only status or message changes are
// logged and broadcast.
func (s *Service) setStatus(category HealthCategory, id string, status HealthStatus, message string) {
	s.mu.Lock()

	item, exists := s.items[category][id]
	if !exists {
		s.mu.Unlock()
		s.logger.Warn().
			Str("category", string(category)).
			Str("id", id).
			Msg("Attempted to update status for unregistered item")
		return
	}

	now := s.clock.Now()
	item.CheckedAt = &now

	if item.Status == status && item.Message == message {
		s.mu.Unlock()
		return
	}

	oldStatus := item.Status
	item.Status = status
	item.Message = message
	if status != StatusOK {
		item.Timestamp = &now
	} else {
		item.Timestamp = nil
	}
	payload, b := s.updateLocked(item)
	s.mu.Unlock()

	event := s.logger.Info()
	if status == StatusError {
		event = s.logger.Warn()
	}
	event.
		Str("category", string(category)).
		Str("id", id).
		Str("name", item.Name).
		Str("oldStatus", string(oldStatus)).
		Str("newStatus", string(status)).
		Str("message", message).
		Msg("Health status changed")

	s.broadcast(b, payload)
}

// GetAll returns all health items grouped by category.
func (s *Service) GetAll() *HealthResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &HealthResponse{
		Backend: s.itemsToSlice(CategoryBackend),
	}
}

// GetByCategory returns all items in a specific category.
func (s *Service) GetByCategory(category HealthCategory) []HealthItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.itemsToSlice(category)
}

// GetItem returns a single item by category and ID.
func (s *Service) GetItem(category HealthCategory, id string) *HealthItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[category][id]; exists {
		copy := *item
		return &copy
	}
	return nil
}

// GetSummary returns counts per category.
func (s *Service) GetSummary() *HealthSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &HealthSummary{
		Categories: make([]CategorySummary, 0, len(AllCategories())),
	}

	for _, cat := range AllCategories() {
		catSummary := CategorySummary{Category: cat}

		for _, item := range s.items[cat] {
			switch item.Status {
			case StatusOK:
				catSummary.OK++
			case StatusWarning:
				catSummary.Warning++
			case StatusError:
				catSummary.Error++
			}
		}

		if catSummary.HasIssues() {
			summary.HasIssues = true
		}

		summary.Categories = append(summary.Categories, catSummary)
	}

	return summary
}

// IsHealthy returns true if the specified item is OK.
func (s *Service) IsHealthy(category HealthCategory, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[category][id]; exists {
		return item.Status == StatusOK
	}
	return false
}

// itemsToSlice lists a category's items ordered by ID.
func (s *Service) itemsToSlice(category HealthCategory) []HealthItem {
	items := make([]HealthItem, 0, len(s.items[category]))
	for _, item := range s.items[category] {
		items = append(items, *item)
	}
	slices.SortFunc(items, func(a, b HealthItem) int { return cmp.Compare(a.ID, b.ID) })
	return items
}

func (s *Service) updateLocked(item *HealthItem) (HealthUpdatePayload, Broadcaster) {
	return HealthUpdatePayload{
		Category:  item.Category,
		ID:        item.ID,
		Name:      item.Name,
		Status:    item.Status,
		Message:   item.Message,
		Timestamp: item.Timestamp,
	}, s.broadcaster
}

// broadcast sends a health update via websocket, outside the lock.
func (s *Service) broadcast(b Broadcaster, payload HealthUpdatePayload) {
	if b == nil {
		return
	}
	if err := b.Broadcast(UpdatedMessage, payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to broadcast health update")
	}
}

// LastChecked is the most recent check time of an item.
func (s *Service) LastChecked(category HealthCategory, id string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[category][id]
	if !ok || item.CheckedAt == nil {
		return time.Time{}, false
	}
	return *item.CheckedAt, true
}
