package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"shelleylegion/eventstatus"
	"shelleylegion/handlers"
	"shelleylegion/middleware"
	"shelleylegion/models"
	"shelleylegion/services"
	"shelleylegion/utils"

	"github.com/gofiber/fiber/v2"
)

// ContentHandler serves the admin editing endpoints. Every route is
// mounted behind AdminAuthMiddleware.
type ContentHandler struct {
	store        *services.ContentStore
	clock        eventstatus.Clock
	hasJWTSecret bool
}

func NewContentHandler(store *services.ContentStore, clock eventstatus.Clock, hasJWTSecret bool) *ContentHandler {
	if clock == nil {
		clock = eventstatus.SystemClock{}
	}
	return &ContentHandler{store: store, clock: clock, hasJWTSecret: hasJWTSecret}
}

// envelope is the body of a write. When the body has no "content" or
// "entry" member the whole body is taken as the payload and the expected
// version comes from If-Match.
type envelope struct {
	Content              json.RawMessage `json:"content"`
	Entry                json.RawMessage `json:"entry"`
	ExpectedVersionToken string          `json:"expectedVersionToken"`
}

func parseEnvelope(c *fiber.Ctx) (payload []byte, expected string, err error) {
	body := bytes.TrimSpace(c.Body())
	expected = ifMatch(c)
	if len(body) == 0 {
		return nil, expected, nil
	}

	var env envelope
	if bytes.HasPrefix(body, []byte("{")) {
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, "", err
		}
	}
	if env.ExpectedVersionToken != "" {
		expected = env.ExpectedVersionToken
	}
	switch {
	case len(env.Content) > 0:
		return env.Content, expected, nil
	case len(env.Entry) > 0:
		return env.Entry, expected, nil
	}
	return body, expected, nil
}

func ifMatch(c *fiber.Ctx) string {
	v := strings.TrimSpace(c.Get(fiber.HeaderIfMatch))
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}

func documentName(c *fiber.Ctx) (models.DocumentName, error) {
	name, ok := models.ParseDocumentName(c.Params("name"))
	if !ok {
		return "", services.ErrUnknownDocument
	}
	return name, nil
}

// ListDocuments reports every document with its stored version.
func (h *ContentHandler) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.store.List(c.UserContext())
	if err != nil {
		return utils.RespondError(c, err)
	}
	utils.NoCache(c)
	return utils.JSONSuccess(c, fiber.Map{"documents": docs})
}

// GetDocument returns a document with its version token for editing.
func (h *ContentHandler) GetDocument(c *fiber.Ctx) error {
	name, err := documentName(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	doc, err := h.store.Load(c.UserContext(), name)
	if err != nil {
		return utils.RespondError(c, err)
	}
	utils.NoCache(c)
	if doc.VersionToken != "" {
		c.Set(fiber.HeaderETag, `"`+doc.VersionToken+`"`)
	}
	return utils.JSONSuccess(c, fiber.Map{"document": h.view(doc)})
}

// PutDocument replaces a whole document.
func (h *ContentHandler) PutDocument(c *fiber.Ctx) error {
	name, err := documentName(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	content, expected, err := parseEnvelope(c)
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	doc, err := h.store.Write(c.UserContext(), name, content, expected)
	if err != nil {
		return utils.RespondError(c, err)
	}
	h.logEdit(c, "updated", name, "")
	return h.saved(c, doc)
}

// PutEntry replaces or appends one roster, schedule or stats entry.
func (h *ContentHandler) PutEntry(c *fiber.Ctx) error {
	name, err := documentName(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	entry, expected, err := parseEnvelope(c)
	if err != nil || len(entry) == 0 {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	id := c.Params("id")
	doc, err := h.store.UpsertEntry(c.UserContext(), name, id, entry, expected)
	if err != nil {
		return utils.RespondError(c, err)
	}
	h.logEdit(c, "saved entry of", name, id)
	return h.saved(c, doc)
}

// DeleteEntry removes one list entry.
func (h *ContentHandler) DeleteEntry(c *fiber.Ctx) error {
	name, err := documentName(c)
	if err != nil {
		return utils.RespondError(c, err)
	}
	_, expected, err := parseEnvelope(c)
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	id := c.Params("id")
	doc, err := h.store.DeleteEntry(c.UserContext(), name, id, expected)
	if err != nil {
		return utils.RespondError(c, err)
	}
	h.logEdit(c, "deleted entry from", name, id)
	return h.saved(c, doc)
}

// RefreshStatuses stores "completed" for upcoming events whose date has
// passed.
func (h *ContentHandler) RefreshStatuses(c *fiber.Ctx) error {
	_, expected, err := parseEnvelope(c)
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	doc, changed, err := h.store.RefreshStatuses(c.UserContext(), h.clock.Now(), expected)
	if err != nil {
		return utils.RespondError(c, err)
	}

	message := "All event statuses are already up to date!"
	if changed > 0 {
		message = fmt.Sprintf("Updated %d event status(es) to completed", changed)
		h.logEdit(c, "refreshed statuses of", models.DocSchedule, "")
	}
	if doc.VersionToken != "" {
		c.Set(fiber.HeaderETag, `"`+doc.VersionToken+`"`)
	}
	return utils.JSONSuccess(c, fiber.Map{
		"changed":      changed,
		"message":      message,
		"versionToken": doc.VersionToken,
		"document":     h.view(doc),
	})
}

// Debug reports the storage backend state and fallback activity.
func (h *ContentHandler) Debug(c *fiber.Ctx) error {
	resp := fiber.Map{
		"backend":      h.store.BackendName(),
		"hasJwtSecret": h.hasJWTSecret,
		"fallbacks":    h.store.Fallbacks(),
	}
	docs, err := h.store.List(c.UserContext())
	if err != nil {
		resp["storageError"] = err.Error()
	} else {
		resp["documents"] = docs
	}
	utils.NoCache(c)
	return utils.JSONSuccess(c, resp)
}

func (h *ContentHandler) saved(c *fiber.Ctx, doc *models.ContentDocument) error {
	c.Set(fiber.HeaderETag, `"`+doc.VersionToken+`"`)
	return utils.JSONSuccess(c, fiber.Map{
		"versionToken": doc.VersionToken,
		"document":     h.view(doc),
	})
}

// view attaches effective statuses to a schedule so the editor shows the
// same labels visitors see. The stored statuses are kept alongside.
func (h *ContentHandler) view(doc *models.ContentDocument) *models.ContentDocument {
	schedule, ok := doc.Content.(*models.Schedule)
	if !ok {
		return doc
	}
	v := *doc
	v.Content = fiber.Map{"events": handlers.ResolveSchedule(schedule, h.clock.Now())}
	return &v
}

func (h *ContentHandler) logEdit(c *fiber.Ctx, action string, name models.DocumentName, id string) {
	user, _ := middleware.GetUsername(c)
	if id != "" {
		log.Printf("✏️  %s %s %s (%s)", user, action, name, id)
		return
	}
	log.Printf("✏️  %s %s %s", user, action, name)
}
