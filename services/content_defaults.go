// services/content_defaults.go - Baseline content served before anything is saved
package services

import (
	"fmt"

	"shelleylegion/models"

	"github.com/google/uuid"
)

// defaultID derives a stable id so a fallback entry keeps its identity when
// an admin first saves it.
func defaultID(doc models.DocumentName, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("shelleylegion/%s/%d", doc, i))).String()
}

// DefaultContent returns a fresh copy of the fallback document for name.
func DefaultContent(name models.DocumentName) (any, error) {
	switch name {
	case models.DocRoster:
		players := []models.Player{
			{Number: models.Jersey(23), Name: "Jake Morrison", Position: "Pitcher", Stats: "2.45 ERA"},
			{Number: models.Jersey(15), Name: "Mike Rodriguez", Position: "Catcher", Stats: ".285 AVG"},
			{Number: models.Jersey(7), Name: "Sam Johnson", Position: "Shortstop", Stats: ".312 AVG"},
			{Number: models.Jersey(42), Name: "Tyler Davis", Position: "First Base", Stats: "18 HRs"},
			{Number: models.Jersey(9), Name: "Alex Chen", Position: "Center Field", Stats: "25 SBs"},
			{Number: models.Jersey(31), Name: "Ryan Miller", Position: "Third Base", Stats: ".298 AVG"},
		}
		for i := range players {
			players[i].ID = defaultID(name, i)
			players[i].DisplayOrder = i
		}
		return &models.Roster{Players: players}, nil

	case models.DocSchedule:
		events := []models.Event{
			{
				Date:        "January 15",
				Title:       "vs Twin Falls Tigers",
				Type:        models.EventGame,
				Location:    "Legion Field, Shelley",
				Time:        "7:00 PM",
				Status:      "upcoming",
				Description: "Home game against Twin Falls Tigers",
			},
			{
				Date:        "January 22",
				Title:       "Winter Practice",
				Type:        models.EventPractice,
				Location:    "Indoor Facility, Shelley",
				Time:        "6:00 PM",
				Status:      "upcoming",
				Description: "Indoor winter practice session",
			},
		}
		for i := range events {
			events[i].ID = defaultID(name, i)
			events[i].DisplayOrder = i
		}
		return &models.Schedule{Events: events}, nil

	case models.DocStats:
		stats := []models.TeamStat{
			{Label: "Wins This Season", Value: "18", Description: "Out of 25 games", Icon: models.IconTrophy},
			{Label: "Team Batting Average", Value: ".289", Description: "League leading", Icon: models.IconTarget},
			{Label: "Home Runs", Value: "47", Description: "Team total", Icon: models.IconTrendingUp},
			{Label: "League Ranking", Value: "#2", Description: "In division", Icon: models.IconAward},
		}
		for i := range stats {
			stats[i].ID = defaultID(name, i)
			stats[i].DisplayOrder = i
		}
		return &models.TeamStats{TeamStats: stats}, nil

	case models.DocTeamInfo:
		return &models.TeamInfo{
			TeamName:    "Shelley Legion",
			Tagline:     "Honor, Pride, Victory",
			Description: "Shelley's premier youth baseball team for players 18 and under, representing our community with honor and developing the next generation of baseball talent in Eastern Idaho.",
			Contact: &models.Contact{
				Phone:   "(208) 555-LEGION",
				Email:   "info@shelleylegion.com",
				Address: "Legion Field, Shelley, ID",
			},
			SocialMedia: &models.SocialMedia{
				Facebook:  "https://facebook.com/shelleylegion",
				Twitter:   "https://twitter.com/shelleylegion",
				Instagram: "https://instagram.com/shelleylegion",
			},
		}, nil
	}
	return nil, ErrUnknownDocument
}
