package services

import (
	"errors"
	"strings"
	"testing"

	"shelleylegion/models"
)

func validEvent() models.Event {
	return models.Event{
		Date:        "March 15",
		Title:       "vs Idaho Falls",
		Type:        models.EventGame,
		Location:    "Legion Field, Shelley",
		Time:        "7:00 PM",
		Status:      "upcoming",
		Description: "Home opener",
	}
}

func validTeamInfo() *models.TeamInfo {
	return &models.TeamInfo{
		TeamName:    "Shelley Legion",
		Tagline:     "Honor, Pride, Victory",
		Description: "Youth baseball",
		Contact:     &models.Contact{Phone: "555", Email: "a@b.c", Address: "Legion Field"},
		SocialMedia: &models.SocialMedia{},
	}
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	return verr.FieldNames()
}

func containsField(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}

func TestContentValidator_Schedule(t *testing.T) {
	v := NewContentValidator()

	tests := []struct {
		name       string
		mutate     func(*models.Event)
		wantFields []string
	}{
		{"valid", func(*models.Event) {}, nil},
		{"missing location", func(e *models.Event) { e.Location = "" }, []string{"events[1].location"}},
		{"blank title", func(e *models.Event) { e.Title = "   " }, []string{"events[1].title"}},
		{"bad type", func(e *models.Event) { e.Type = "scrimmage" }, []string{"events[1].type"}},
		{"today is not storable", func(e *models.Event) { e.Status = "today" }, []string{"events[1].status"}},
		{"missing status", func(e *models.Event) { e.Status = "" }, []string{"events[1].status"}},
		{"bad iso date", func(e *models.Event) { e.ISODate = "03/15/2025" }, []string{"events[1].isoDate"}},
		{"good iso date", func(e *models.Event) { e.ISODate = "2025-03-15" }, nil},
		{"several missing", func(e *models.Event) { e.Time = ""; e.Description = "" }, []string{"events[1].time", "events[1].description"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			second := validEvent()
			tt.mutate(&second)
			doc := &models.Schedule{Events: []models.Event{validEvent(), second}}

			err := v.Validate(models.DocSchedule, doc)
			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			got := fieldsOf(t, err)
			if len(got) != len(tt.wantFields) {
				t.Fatalf("fields = %v, want %v", got, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if !containsField(got, f) {
					t.Errorf("fields = %v, missing %q", got, f)
				}
			}
		})
	}
}

func TestContentValidator_ListRequired(t *testing.T) {
	v := NewContentValidator()
	cases := []struct {
		doc     models.DocumentName
		content any
		field   string
	}{
		{models.DocSchedule, &models.Schedule{}, "events"},
		{models.DocRoster, &models.Roster{}, "players"},
		{models.DocStats, &models.TeamStats{}, "teamStats"},
	}
	for _, c := range cases {
		if got := fieldsOf(t, v.Validate(c.doc, c.content)); !containsField(got, c.field) {
			t.Errorf("%s: fields = %v, want %q", c.doc, got, c.field)
		}
	}

	// An empty list is a valid document.
	if err := v.Validate(models.DocSchedule, &models.Schedule{Events: []models.Event{}}); err != nil {
		t.Errorf("empty schedule: %v", err)
	}
}

func TestContentValidator_Roster(t *testing.T) {
	v := NewContentValidator()
	doc := &models.Roster{Players: []models.Player{
		{Number: models.Jersey(23), Name: "Jake Morrison", Position: "Pitcher", Stats: "2.45 ERA"},
		{Name: "", Position: "shortstop", Stats: ""},
		{Number: models.Jersey(23), Name: "Duplicate Number", Position: "Catcher", Stats: ".250 AVG"},
	}}

	err := v.Validate(models.DocRoster, doc)
	got := fieldsOf(t, err)
	for _, f := range []string{"players[1].number", "players[1].name", "players[1].position", "players[1].stats"} {
		if !containsField(got, f) {
			t.Errorf("fields = %v, missing %q", got, f)
		}
	}
	if containsField(got, "players[2].number") {
		t.Errorf("duplicate numbers must be allowed, got %v", got)
	}
	if !strings.Contains(err.Error(), `did you mean "Shortstop"`) {
		t.Errorf("error %q has no position suggestion", err)
	}
}

func TestContentValidator_JerseyNumber(t *testing.T) {
	v := NewContentValidator()
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"zero", `{"players":[{"number":0,"name":"Zed","position":"Pitcher","stats":"1.00 ERA"}]}`, ""},
		{"missing", `{"players":[{"name":"Zed","position":"Pitcher","stats":"1.00 ERA"}]}`, "is required"},
		{"null", `{"players":[{"number":null,"name":"Zed","position":"Pitcher","stats":"1.00 ERA"}]}`, "is required"},
		{"negative", `{"players":[{"number":-4,"name":"Zed","position":"Pitcher","stats":"1.00 ERA"}]}`, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := DecodeContent(models.DocRoster, []byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeContent: %v", err)
			}
			err = v.Validate(models.DocRoster, content)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || len(verr.Fields) != 1 {
				t.Fatalf("Validate error = %v", err)
			}
			if f := verr.Fields[0]; f.Field != "players[0].number" || f.Message != tt.wantMsg {
				t.Errorf("field error = %+v, want players[0].number %s", f, tt.wantMsg)
			}
		})
	}
}

func TestContentValidator_DuplicateIDs(t *testing.T) {
	v := NewContentValidator()
	doc := &models.TeamStats{TeamStats: []models.TeamStat{
		{ID: "a", Label: "Wins", Value: "18", Description: "x", Icon: models.IconTrophy},
		{ID: "a", Label: "Runs", Value: "99", Description: "y", Icon: models.IconAward},
	}}
	got := fieldsOf(t, v.Validate(models.DocStats, doc))
	if !containsField(got, "teamStats[1].id") {
		t.Errorf("fields = %v, want teamStats[1].id", got)
	}
}

func TestContentValidator_Stats(t *testing.T) {
	v := NewContentValidator()
	doc := &models.TeamStats{TeamStats: []models.TeamStat{
		{Label: "Wins", Value: "18", Description: "Out of 25", Icon: "star"},
	}}
	got := fieldsOf(t, v.Validate(models.DocStats, doc))
	if len(got) != 1 || got[0] != "teamStats[0].icon" {
		t.Errorf("fields = %v, want [teamStats[0].icon]", got)
	}
}

func TestContentValidator_TeamInfo(t *testing.T) {
	v := NewContentValidator()

	tests := []struct {
		name       string
		mutate     func(*models.TeamInfo)
		wantFields []string
	}{
		{"valid", func(*models.TeamInfo) {}, nil},
		{"social urls optional", func(ti *models.TeamInfo) { ti.SocialMedia = &models.SocialMedia{Facebook: "https://fb"} }, nil},
		{"social object required", func(ti *models.TeamInfo) { ti.SocialMedia = nil }, []string{"socialMedia"}},
		{"contact required", func(ti *models.TeamInfo) { ti.Contact = nil }, []string{"contact"}},
		{"contact email required", func(ti *models.TeamInfo) { ti.Contact.Email = "" }, []string{"contact.email"}},
		{"tagline required", func(ti *models.TeamInfo) { ti.Tagline = "" }, []string{"tagline"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := validTeamInfo()
			tt.mutate(ti)
			err := v.Validate(models.DocTeamInfo, ti)
			if tt.wantFields == nil {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			got := fieldsOf(t, err)
			if len(got) != len(tt.wantFields) || got[0] != tt.wantFields[0] {
				t.Errorf("fields = %v, want %v", got, tt.wantFields)
			}
		})
	}
}

func TestContentValidator_WrongType(t *testing.T) {
	v := NewContentValidator()
	got := fieldsOf(t, v.Validate(models.DocRoster, &models.Schedule{}))
	if !containsField(got, "content") {
		t.Errorf("fields = %v", got)
	}
	if err := v.Validate("scores", &models.Roster{}); !errors.Is(err, ErrUnknownDocument) {
		t.Errorf("unknown document error = %v", err)
	}
}

func TestDecodeContent(t *testing.T) {
	if _, err := DecodeContent(models.DocRoster, []byte(`{"players": "nope"}`)); err == nil {
		t.Error("DecodeContent accepted a string player list")
	}
	if _, err := DecodeContent(models.DocRoster, []byte(`  `)); err == nil {
		t.Error("DecodeContent accepted empty content")
	}
	if _, err := DecodeContent(models.DocRoster, []byte(`null`)); err == nil {
		t.Error("DecodeContent accepted null")
	}
	c, err := DecodeContent(models.DocSchedule, []byte(`{"events":[]}`))
	if err != nil {
		t.Fatalf("DecodeContent: %v", err)
	}
	if s, ok := c.(*models.Schedule); !ok || s.Events == nil {
		t.Errorf("DecodeContent = %#v", c)
	}
}
