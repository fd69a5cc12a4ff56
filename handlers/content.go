// handlers/content.go - Public read-only content endpoints
package handlers

import (
	"strconv"
	"time"

	"shelleylegion/eventstatus"
	"shelleylegion/models"
	"shelleylegion/services"
	"shelleylegion/utils"

	"github.com/gofiber/fiber/v2"
)

// ScheduledEvent is an event as shown to visitors, with its status
// resolved against today's date.
type ScheduledEvent struct {
	models.Event
	EffectiveStatus eventstatus.Status `json:"effectiveStatus"`
	StatusLabel     eventstatus.Label  `json:"statusLabel"`
}

type ContentHandler struct {
	store *services.ContentStore
	clock eventstatus.Clock
}

func NewContentHandler(store *services.ContentStore, clock eventstatus.Clock) *ContentHandler {
	if clock == nil {
		clock = eventstatus.SystemClock{}
	}
	return &ContentHandler{store: store, clock: clock}
}

// GetData serves one content document. Responses are never cached.
func (h *ContentHandler) GetData(c *fiber.Ctx) error {
	name, ok := models.ParseDocumentName(c.Params("name"))
	if !ok {
		return utils.JSONError(c, fiber.StatusNotFound, "Unknown content document")
	}

	doc, err := h.store.Read(c.UserContext(), name)
	if err != nil {
		return utils.RespondError(c, err)
	}

	utils.NoCache(c)
	c.Set("X-Content-Fallback", strconv.FormatBool(doc.Fallback))

	if schedule, ok := doc.Content.(*models.Schedule); ok {
		return c.JSON(fiber.Map{"events": ResolveSchedule(schedule, h.clock.Now())})
	}
	return c.JSON(doc.Content)
}

// ResolveSchedule attaches the effective status and its display label to
// every event.
func ResolveSchedule(schedule *models.Schedule, now time.Time) []ScheduledEvent {
	events := make([]ScheduledEvent, len(schedule.Events))
	for i, e := range schedule.Events {
		status := eventstatus.ResolveEvent(eventstatus.Status(e.Status), e.ISODate, e.Date, now)
		events[i] = ScheduledEvent{
			Event:           e,
			EffectiveStatus: status,
			StatusLabel:     eventstatus.DisplayLabel(status),
		}
	}
	return events
}
