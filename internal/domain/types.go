package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Status is the stage an application is in
type Status string

const (
	StatusApplied   Status = "Applied"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusRejected  Status = "Rejected"
	StatusWithdrawn Status = "Withdrawn"
)

// Statuses lists every recognized status in display order
var Statuses = []Status{
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusWithdrawn,
}

// ParseStatus returns the canonical status matching s, ignoring case
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether s is a recognized status
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Active reports whether the application is still in progress
func (s Status) Active() bool {
	return s == StatusApplied || s == StatusInterview
}

// Application is one tracked job application
type Application struct {
	ID              string     `json:"id"`
	CompanyName     string     `json:"companyName"`
	JobTitle        string     `json:"jobTitle"`
	JobURL          string     `json:"jobUrl,omitempty"`
	ApplicationDate civil.Date `json:"applicationDate"`
	Status          Status     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Fields returns the mutable part of the application
func (a Application) Fields() Fields {
	return Fields{
		CompanyName:     a.CompanyName,
		JobTitle:        a.JobTitle,
		JobURL:          a.JobURL,
		ApplicationDate: a.ApplicationDate,
		Status:          a.Status,
		Notes:           a.Notes,
	}
}

// Apply overwrites every mutable field, leaving ID and CreatedAt alone
func (a *Application) Apply(f Fields) {
	a.CompanyName = f.CompanyName
	a.JobTitle = f.JobTitle
	a.JobURL = f.JobURL
	a.ApplicationDate = f.ApplicationDate
	a.Status = f.Status
	a.Notes = f.Notes
}

// Fields is the user-editable form of an application
type Fields struct {
	CompanyName     string     `json:"companyName"`
	JobTitle        string     `json:"jobTitle"`
	JobURL          string     `json:"jobUrl,omitempty"`
	ApplicationDate civil.Date `json:"applicationDate"`
	Status          Status     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
}

// UnmarshalJSON reads a blank applicationDate as absent, which Validate then
// reports like any other missing field.
func (f *Fields) UnmarshalJSON(data []byte) error {
	type plain Fields
	var aux struct {
		plain
		ApplicationDate string `json:"applicationDate"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*f = Fields(aux.plain)
	f.ApplicationDate = civil.Date{}
	if raw := strings.TrimSpace(aux.ApplicationDate); raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil {
			return fmt.Errorf("invalid applicationDate %q: %w", aux.ApplicationDate, err)
		}
		f.ApplicationDate = d
	}
	return nil
}

// Normalize trims free-text fields and canonicalizes the status spelling
func (f Fields) Normalize() Fields {
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	f.JobTitle = strings.TrimSpace(f.JobTitle)
	f.JobURL = strings.TrimSpace(f.JobURL)
	f.Notes = strings.TrimSpace(f.Notes)
	if st, ok := ParseStatus(string(f.Status)); ok {
		f.Status = st
	}
	return f
}

// Validate checks required fields. It returns a *ValidationError naming every
// offending field, or nil.
func (f Fields) Validate() error {
	var missing []string
	if strings.TrimSpace(f.CompanyName) == "" {
		missing = append(missing, "companyName")
	}
	if strings.TrimSpace(f.JobTitle) == "" {
		missing = append(missing, "jobTitle")
	}
	if f.ApplicationDate.IsZero() || !f.ApplicationDate.IsValid() {
		missing = append(missing, "applicationDate")
	}
	if !f.Status.Valid() {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Stats holds the summary counters shown above the list
type Stats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Interviews int `json:"interviews"`
}
