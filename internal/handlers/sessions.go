package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
	"github.com/Ananth-NQI/alarab-orderbot/internal/services"
)

// SessionsHandler lists in-flight conversations. It exposes customer
// details and is only mounted with the development test routes.
type SessionsHandler struct {
	sessions  *services.SessionManager
	languages *services.LanguageResolver
}

// NewSessionsHandler creates a new sessions handler
func NewSessionsHandler(sessions *services.SessionManager, languages *services.LanguageResolver) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, languages: languages}
}

type sessionView struct {
	WhatsAppNumber string          `json:"whatsapp_number"`
	Step           string          `json:"step"`
	Language       models.Language `json:"language"`
	Session        *models.Session `json:"session"`
}

// ListSessions returns every active session with its locked language
func (h *SessionsHandler) ListSessions(c *fiber.Ctx) error {
	active := h.sessions.GetActiveSessions()
	sort.Slice(active, func(i, j int) bool {
		return active[i].WhatsAppNumber < active[j].WhatsAppNumber
	})

	views := make([]sessionView, 0, len(active))
	for _, a := range active {
		views = append(views, sessionView{
			WhatsAppNumber: a.WhatsAppNumber,
			Step:           a.Session.Step.String(),
			Language:       h.languages.Language(a.WhatsAppNumber),
			Session:        a.Session,
		})
	}

	return c.JSON(fiber.Map{
		"count":    len(views),
		"sessions": views,
	})
}
