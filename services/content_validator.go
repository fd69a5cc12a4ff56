// services/content_validator.go - Shape checks applied before every write
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"shelleylegion/eventstatus"
	"shelleylegion/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FieldError names one missing or invalid field, e.g. "events[2].location".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a submitted document.
type ValidationError struct {
	Document models.DocumentName `json:"document"`
	Fields   []FieldError        `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Document, strings.Join(parts, "; "))
}

// FieldNames returns the offending field paths.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

type fieldErrors []FieldError

func (fe *fieldErrors) add(field, msg string) {
	*fe = append(*fe, FieldError{Field: field, Message: msg})
}

func (fe *fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		fe.add(field, "is required")
	}
}

func (fe *fieldErrors) oneOf(field, value string, allowed []string) {
	if strings.TrimSpace(value) == "" {
		fe.add(field, "is required")
		return
	}
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	fe.add(field, "must be one of "+strings.Join(allowed, ", "))
}

// ContentValidator checks documents against the per-type schema. It never
// runs on reads.
type ContentValidator struct{}

func NewContentValidator() *ContentValidator {
	return &ContentValidator{}
}

// DecodeContent parses raw JSON into the typed content for name. Decode
// failures are reported as a ValidationError on the "content" field.
func DecodeContent(name models.DocumentName, raw []byte) (any, error) {
	var target any
	switch name {
	case models.DocRoster:
		target = &models.Roster{}
	case models.DocSchedule:
		target = &models.Schedule{}
	case models.DocStats:
		target = &models.TeamStats{}
	case models.DocTeamInfo:
		target = &models.TeamInfo{}
	default:
		return nil, ErrUnknownDocument
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &ValidationError{Document: name, Fields: []FieldError{{Field: "content", Message: "is required"}}}
	}
	if err := json.Unmarshal(trimmed, target); err != nil {
		return nil, &ValidationError{Document: name, Fields: []FieldError{{Field: "content", Message: "is not valid JSON for " + string(name) + ": " + err.Error()}}}
	}
	return target, nil
}

// Validate returns nil or a *ValidationError listing every problem.
func (v *ContentValidator) Validate(name models.DocumentName, content any) error {
	var errs fieldErrors

	switch name {
	case models.DocRoster:
		c, ok := content.(*models.Roster)
		if !ok {
			return typeMismatch(name, content)
		}
		v.validateRoster(c, &errs)
	case models.DocSchedule:
		c, ok := content.(*models.Schedule)
		if !ok {
			return typeMismatch(name, content)
		}
		v.validateSchedule(c, &errs)
	case models.DocStats:
		c, ok := content.(*models.TeamStats)
		if !ok {
			return typeMismatch(name, content)
		}
		v.validateStats(c, &errs)
	case models.DocTeamInfo:
		c, ok := content.(*models.TeamInfo)
		if !ok {
			return typeMismatch(name, content)
		}
		v.validateTeamInfo(c, &errs)
	default:
		return ErrUnknownDocument
	}

	if len(errs) > 0 {
		return &ValidationError{Document: name, Fields: errs}
	}
	return nil
}

func typeMismatch(name models.DocumentName, content any) error {
	return &ValidationError{Document: name, Fields: []FieldError{{
		Field:   "content",
		Message: fmt.Sprintf("has type %T", content),
	}}}
}

func (v *ContentValidator) validateRoster(c *models.Roster, errs *fieldErrors) {
	if c.Players == nil {
		errs.add("players", "is required")
		return
	}
	ids := map[string]bool{}
	for i, p := range c.Players {
		prefix := fmt.Sprintf("players[%d].", i)
		checkID(prefix, p.ID, ids, errs)
		switch {
		case p.Number == nil:
			errs.add(prefix+"number", "is required")
		case *p.Number < 0:
			errs.add(prefix+"number", "must not be negative")
		}
		errs.required(prefix+"name", p.Name)
		v.checkPosition(prefix+"position", p.Position, errs)
		errs.required(prefix+"stats", p.Stats)
	}
}

func (v *ContentValidator) checkPosition(field, position string, errs *fieldErrors) {
	if strings.TrimSpace(position) == "" {
		errs.add(field, "is required")
		return
	}
	for _, p := range models.Positions {
		if p == position {
			return
		}
	}
	msg := "must be one of " + strings.Join(models.Positions, ", ")
	if s := suggestPosition(position); s != "" {
		msg = fmt.Sprintf("is not a position; did you mean %q?", s)
	}
	errs.add(field, msg)
}

// suggestPosition returns the closest known position, or "".
func suggestPosition(position string) string {
	ranks := fuzzy.RankFindNormalizedFold(strings.TrimSpace(position), models.Positions)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func (v *ContentValidator) validateSchedule(c *models.Schedule, errs *fieldErrors) {
	if c.Events == nil {
		errs.add("events", "is required")
		return
	}
	ids := map[string]bool{}
	for i, e := range c.Events {
		prefix := fmt.Sprintf("events[%d].", i)
		checkID(prefix, e.ID, ids, errs)
		errs.required(prefix+"date", e.Date)
		if e.ISODate != "" {
			if _, err := time.Parse(eventstatus.ISODateLayout, e.ISODate); err != nil {
				errs.add(prefix+"isoDate", "must be a date like 2025-03-15")
			}
		}
		errs.required(prefix+"title", e.Title)
		errs.oneOf(prefix+"type", e.Type, models.EventTypes)
		errs.required(prefix+"location", e.Location)
		errs.required(prefix+"time", e.Time)
		if strings.TrimSpace(e.Status) == "" {
			errs.add(prefix+"status", "is required")
		} else if !eventstatus.IsStored(e.Status) {
			errs.add(prefix+"status", "must be one of upcoming, completed, cancelled")
		}
		errs.required(prefix+"description", e.Description)
	}
}

func (v *ContentValidator) validateStats(c *models.TeamStats, errs *fieldErrors) {
	if c.TeamStats == nil {
		errs.add("teamStats", "is required")
		return
	}
	ids := map[string]bool{}
	for i, s := range c.TeamStats {
		prefix := fmt.Sprintf("teamStats[%d].", i)
		checkID(prefix, s.ID, ids, errs)
		errs.required(prefix+"label", s.Label)
		errs.required(prefix+"value", s.Value)
		errs.required(prefix+"description", s.Description)
		errs.oneOf(prefix+"icon", s.Icon, models.StatIcons)
	}
}

func (v *ContentValidator) validateTeamInfo(c *models.TeamInfo, errs *fieldErrors) {
	errs.required("teamName", c.TeamName)
	errs.required("tagline", c.Tagline)
	errs.required("description", c.Description)
	if c.Contact == nil {
		errs.add("contact", "is required")
	} else {
		errs.required("contact.phone", c.Contact.Phone)
		errs.required("contact.email", c.Contact.Email)
		errs.required("contact.address", c.Contact.Address)
	}
	// URLs inside socialMedia are optional; the object is not.
	if c.SocialMedia == nil {
		errs.add("socialMedia", "is required")
	}
}

// checkID rejects duplicate entity ids. Empty ids are allowed; the store
// assigns them before validating.
func checkID(prefix, id string, seen map[string]bool, errs *fieldErrors) {
	if id == "" {
		return
	}
	if seen[id] {
		errs.add(prefix+"id", "duplicates an earlier entry")
	}
	seen[id] = true
}
