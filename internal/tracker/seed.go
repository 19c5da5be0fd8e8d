package tracker

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pbaille/jobtrack/internal/domain"
)

// SampleApplications is the demo collection written by Seed
func SampleApplications() []domain.Application {
	return []domain.Application{
		{
			ID:              "1",
			CompanyName:     "KEDGE SCHOOL",
			JobTitle:        "Senior Software Engineer",
			JobURL:          "https://example.com/job1",
			ApplicationDate: civil.Date{Year: 2024, Month: time.January, Day: 15},
			Status:          domain.StatusInterview,
			Notes:           "Phone interview scheduled for next week. Very excited about this opportunity!",
			CreatedAt:       time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:              "2",
			CompanyName:     "HEC SCHOOL",
			JobTitle:        "Full Stack Developer",
			JobURL:          "https://example.com/job2",
			ApplicationDate: civil.Date{Year: 2024, Month: time.January, Day: 10},
			Status:          domain.StatusApplied,
			Notes:           "Applied through LinkedIn. Company seems to have great culture.",
			CreatedAt:       time.Date(2024, time.January, 10, 14, 30, 0, 0, time.UTC),
		},
		{
			ID:              "3",
			CompanyName:     "HARVARD",
			JobTitle:        "Frontend Developer",
			ApplicationDate: civil.Date{Year: 2024, Month: time.January, Day: 5},
			Status:          domain.StatusRejected,
			Notes:           "They were looking for someone with more React experience.",
			CreatedAt:       time.Date(2024, time.January, 5, 9, 15, 0, 0, time.UTC),
		},
	}
}

// Seed stores the sample collection when nothing has been stored yet and
// reports whether it did. Existing data, even an empty collection, is kept.
func (t *Tracker) Seed(ctx context.Context) (bool, error) {
	_, ok, err := t.medium.Get(ctx, t.key)
	if err != nil {
		return false, fmt.Errorf("check stored applications: %w", err)
	}
	if ok {
		return false, nil
	}

	t.apps = SampleApplications()
	t.editing = ""
	clear(t.pending)
	return true, t.persist(ctx)
}
