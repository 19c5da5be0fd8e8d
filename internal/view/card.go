// Package view turns tracker data into what the list page shows.
package view

import (
	"iter"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/pbaille/jobtrack/internal/domain"
)

// Card is one rendered application
type Card struct {
	ID          string        `json:"id"`
	CompanyName string        `json:"companyName"`
	JobTitle    string        `json:"jobTitle"`
	JobURL      string        `json:"jobUrl,omitempty"`
	Date        civil.Date    `json:"applicationDate"`
	Status      domain.Status `json:"status"`
	StatusClass string        `json:"statusClass"`
	Since       string        `json:"since"`
	Notes       string        `json:"notes,omitempty"`
	HasURL      bool          `json:"hasUrl"`
	HasNotes    bool          `json:"hasNotes"`
}

// NewCard builds the card for app; since phrases its application date
func NewCard(app domain.Application, since func(civil.Date) string) Card {
	return Card{
		ID:          app.ID,
		CompanyName: app.CompanyName,
		JobTitle:    app.JobTitle,
		JobURL:      app.JobURL,
		Date:        app.ApplicationDate,
		Status:      app.Status,
		StatusClass: StatusClass(app.Status),
		Since:       since(app.ApplicationDate),
		Notes:       app.Notes,
		HasURL:      app.JobURL != "",
		HasNotes:    app.Notes != "",
	}
}

// NewCards builds a card per application, in order
func NewCards(apps iter.Seq[domain.Application], since func(civil.Date) string) []Card {
	cards := []Card{}
	for app := range apps {
		cards = append(cards, NewCard(app, since))
	}
	return cards
}

// StatusClass is the CSS class suffix for a status: "Phone Screen" -> "phone-screen"
func StatusClass(s domain.Status) string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
}
