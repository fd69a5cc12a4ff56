// models/content.go - Site content documents
package models

import (
	"strings"
	"time"
)

// DocumentName identifies one of the editable content documents.
type DocumentName string

const (
	DocRoster   DocumentName = "roster"
	DocSchedule DocumentName = "schedule"
	DocStats    DocumentName = "stats"
	DocTeamInfo DocumentName = "team-info"
)

// DocumentNames is the closed set of content documents, in admin menu order.
var DocumentNames = []DocumentName{DocRoster, DocSchedule, DocStats, DocTeamInfo}

// ParseDocumentName accepts "roster" or "roster.json".
func ParseDocumentName(s string) (DocumentName, bool) {
	s = strings.TrimSuffix(s, ".json")
	for _, n := range DocumentNames {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

// FileName is the object key suffix used by every backend.
func (n DocumentName) FileName() string {
	return string(n) + ".json"
}

// IsList reports whether the document holds an ordered list of entities.
func (n DocumentName) IsList() bool {
	return n != DocTeamInfo
}

// Event types
const (
	EventGame     = "game"
	EventTryout   = "tryout"
	EventPractice = "practice"
	EventOther    = "other"
)

var EventTypes = []string{EventGame, EventTryout, EventPractice, EventOther}

// Event is a scheduled game, tryout, practice or other team event.
// Status is the stored value; the status shown to viewers is derived at
// read time.
type Event struct {
	ID           string `json:"id"`
	DisplayOrder int    `json:"displayOrder"`
	Date         string `json:"date"`
	ISODate      string `json:"isoDate,omitempty"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Location     string `json:"location"`
	Time         string `json:"time"`
	Status       string `json:"status"`
	Description  string `json:"description"`
}

// Schedule is the stored shape of the schedule document.
type Schedule struct {
	Events []Event `json:"events"`
}

// Positions players may be listed at.
var Positions = []string{
	"Pitcher", "Catcher", "First Base", "Second Base", "Third Base",
	"Shortstop", "Left Field", "Center Field", "Right Field", "Utility Player",
}

// Player is a roster entry. Number is not required to be unique; it is a
// pointer so that a missing number can be told apart from #0.
type Player struct {
	ID           string `json:"id"`
	DisplayOrder int    `json:"displayOrder"`
	Number       *int   `json:"number"`
	Name         string `json:"name"`
	Position     string `json:"position"`
	Stats        string `json:"stats"`
}

// Jersey returns a jersey number for Player.Number.
func Jersey(n int) *int {
	return &n
}

// Roster is the stored shape of the roster document.
type Roster struct {
	Players []Player `json:"players"`
}

// Stat icons
const (
	IconTrophy     = "trophy"
	IconTarget     = "target"
	IconTrendingUp = "trending-up"
	IconAward      = "award"
)

var StatIcons = []string{IconTrophy, IconTarget, IconTrendingUp, IconAward}

// TeamStat is a headline team statistic.
type TeamStat struct {
	ID           string `json:"id"`
	DisplayOrder int    `json:"displayOrder"`
	Label        string `json:"label"`
	Value        string `json:"value"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
}

// TeamStats is the stored shape of the stats document.
type TeamStats struct {
	TeamStats []TeamStat `json:"teamStats"`
}

type Contact struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type SocialMedia struct {
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
}

// TeamInfo is the singleton team-info document.
type TeamInfo struct {
	TeamName    string       `json:"teamName"`
	Tagline     string       `json:"tagline"`
	Description string       `json:"description"`
	Contact     *Contact     `json:"contact"`
	SocialMedia *SocialMedia `json:"socialMedia"`
}

// ContentDocument wraps a document read from or written to a backend.
// Content is one of *Roster, *Schedule, *TeamStats or *TeamInfo.
type ContentDocument struct {
	Name         DocumentName `json:"name"`
	Path         string       `json:"path"`
	Content      any          `json:"content"`
	VersionToken string       `json:"versionToken,omitempty"`
	Fallback     bool         `json:"fallback"`
}

// DocumentSummary describes one stored document for the admin listing.
type DocumentSummary struct {
	Name         DocumentName `json:"name"`
	Path         string       `json:"path"`
	Stored       bool         `json:"stored"`
	VersionToken string       `json:"versionToken,omitempty"`
}

// StoredDocument is the row shape used by the Postgres backend.
type StoredDocument struct {
	Key       string    `json:"key" gorm:"column:doc_key;primaryKey;size:255"`
	Data      []byte    `json:"data" gorm:"type:bytea;not null"`
	Version   string    `json:"version" gorm:"size:64;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoredDocument) TableName() string {
	return "content_documents"
}

// Entry accessors let list documents be normalized without knowing the
// element type.

func (e *Event) EntryID() string { return e.ID }
func (e *Event) SetEntryID(id string) { e.ID = id }
func (e *Event) EntryOrder() int { return e.DisplayOrder }
func (e *Event) SetEntryOrder(o int) { e.DisplayOrder = o }
func (p *Player) EntryID() string { return p.ID }
func (p *Player) SetEntryID(id string) { p.ID = id }
func (p *Player) EntryOrder() int { return p.DisplayOrder }
func (p *Player) SetEntryOrder(o int) { p.DisplayOrder = o }
func (s *TeamStat) EntryID() string { return s.ID }
func (s *TeamStat) SetEntryID(id string) { s.ID = id }
func (s *TeamStat) EntryOrder() int { return s.DisplayOrder }
func (s *TeamStat) SetEntryOrder(o int) { s.DisplayOrder = o }
