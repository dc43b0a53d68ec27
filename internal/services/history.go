package services

import (
	"sync"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// MaxHistoryTurns is how many recent turns are kept per number.
const MaxHistoryTurns = 10

// History is the bounded recent conversation per WhatsApp number, used as
// context for extraction and replies. Oldest turns are dropped first.
type History struct {
	mu    sync.RWMutex
	turns map[string][]models.Turn
	limit int
}

// NewHistory creates a history keeping limit turns per number.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = MaxHistoryTurns
	}
	return &History{turns: make(map[string][]models.Turn), limit: limit}
}

// Append adds a turn, evicting the oldest beyond the limit.
func (h *History) Append(number string, role models.Role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := append(h.turns[number], models.Turn{Role: role, Content: content})
	if over := len(turns) - h.limit; over > 0 {
		turns = append([]models.Turn(nil), turns[over:]...)
	}
	h.turns[number] = turns
}

// Recent returns a copy of the turns for number, oldest first.
func (h *History) Recent(number string) []models.Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]models.Turn(nil), h.turns[number]...)
}

// LastAssistant returns the most recent assistant-authored turn.
func (h *History) LastAssistant(number string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	turns := h.turns[number]
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == models.RoleAssistant {
			return turns[i].Content, true
		}
	}
	return "", false
}

// Clear forgets the history of number.
func (h *History) Clear(number string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, number)
}
