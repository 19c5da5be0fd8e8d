// Package tracker owns the collection of job applications: it creates, edits
// and deletes records, derives filtered views and summary counters, and writes
// the whole collection back to its Medium after every change.
//
// A Tracker is not safe for concurrent use. Callers that serve several
// requests at once must serialize access.
package tracker

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pbaille/jobtrack/internal/domain"
	"github.com/pbaille/jobtrack/internal/store"
)

// DefaultKey is the storage key the collection lives under
const DefaultKey = "jobApplications"

// Tracker holds the ordered collection, newest first
type Tracker struct {
	medium store.Medium
	key    string
	clock  clockwork.Clock
	newID  func() string

	apps    []domain.Application
	editing string
	pending map[string]string // token -> application id
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock sets the clock used for creation timestamps and day counts
func WithClock(c clockwork.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithKey sets the storage key
func WithKey(key string) Option {
	return func(t *Tracker) { t.key = key }
}

// WithIDFunc sets the id generator
func WithIDFunc(f func() string) Option {
	return func(t *Tracker) { t.newID = f }
}

// New creates an empty Tracker over medium. Call Load to read stored data.
func New(medium store.Medium, opts ...Option) *Tracker {
	t := &Tracker{
		medium:  medium,
		key:     DefaultKey,
		clock:   clockwork.NewRealClock(),
		newID:   func() string { return uuid.New().String() },
		pending: make(map[string]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load replaces the in-memory collection with the stored one. A missing key
// yields an empty collection. A malformed value is discarded with a warning
// rather than failing; so are individual invalid records.
func (t *Tracker) Load(ctx context.Context) error {
	value, ok, err := t.medium.Get(ctx, t.key)
	if err != nil {
		return fmt.Errorf("load applications: %w", err)
	}
	t.apps = nil
	t.editing = ""
	clear(t.pending)
	if !ok {
		return nil
	}

	apps, problems, err := store.Decode(value)
	if err != nil {
		slog.Warn("discarding unreadable applications", "key", t.key, "error", err)
		return nil
	}
	for _, p := range problems {
		slog.Warn("skipping stored application", "key", t.key, "error", p)
	}
	t.apps = apps
	return nil
}

func (t *Tracker) persist(ctx context.Context) error {
	value, err := store.Encode(t.apps)
	if err != nil {
		return err
	}
	if err := t.medium.Set(ctx, t.key, value); err != nil {
		return fmt.Errorf("save applications: %w", err)
	}
	return nil
}

// Create validates fields and prepends a new application. On a validation
// error nothing changes.
func (t *Tracker) Create(ctx context.Context, f domain.Fields) (domain.Application, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return domain.Application{}, err
	}

	id, err := t.uniqueID()
	if err != nil {
		return domain.Application{}, err
	}
	app := domain.Application{
		ID:        id,
		CreatedAt: t.clock.Now().UTC().Truncate(time.Millisecond),
	}
	app.Apply(f)

	t.apps = slices.Insert(t.apps, 0, app)
	return app, t.persist(ctx)
}

// maxIDAttempts bounds how often a colliding id is regenerated
const maxIDAttempts = 16

func (t *Tracker) uniqueID() (string, error) {
	for range maxIDAttempts {
		id := t.newID()
		if t.index(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("no unused id after %d attempts", maxIDAttempts)
}

// Update replaces every mutable field of the application with the given id.
// An unknown id is silently ignored.
func (t *Tracker) Update(ctx context.Context, id string, f domain.Fields) error {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return err
	}

	i := t.index(id)
	if i < 0 {
		return nil
	}
	t.apps[i].Apply(f)
	return t.persist(ctx)
}

// RequestDelete starts a deletion and returns the token that confirms it.
// An id has at most one live token; a new request replaces the previous one.
// Tokens for records that no longer exist are dropped.
func (t *Tracker) RequestDelete(id string) string {
	maps.DeleteFunc(t.pending, func(_, pendingID string) bool {
		return pendingID == id || t.index(pendingID) < 0
	})

	token := uuid.New().String()
	t.pending[token] = id
	return token
}

// CancelDelete abandons a pending deletion
func (t *Tracker) CancelDelete(token string) {
	delete(t.pending, token)
}

// ConfirmDelete removes the application the token was issued for. The record
// having disappeared meanwhile is not an error.
func (t *Tracker) ConfirmDelete(ctx context.Context, token string) error {
	id, ok := t.pending[token]
	if !ok {
		return domain.ErrNoPendingDeletion
	}
	delete(t.pending, token)

	t.apps = slices.DeleteFunc(t.apps, func(a domain.Application) bool { return a.ID == id })
	maps.DeleteFunc(t.pending, func(_, pendingID string) bool { return pendingID == id })
	if t.editing == id {
		t.editing = ""
	}
	return t.persist(ctx)
}

// Delete removes an application the caller has already confirmed
func (t *Tracker) Delete(ctx context.Context, id string) error {
	return t.ConfirmDelete(ctx, t.RequestDelete(id))
}

// Get looks up an application by id
func (t *Tracker) Get(id string) (domain.Application, bool) {
	i := t.index(id)
	if i < 0 {
		return domain.Application{}, false
	}
	return t.apps[i], true
}

// All returns a copy of the collection, newest first
func (t *Tracker) All() []domain.Application {
	return slices.Clone(t.apps)
}

// Len returns the collection size
func (t *Tracker) Len() int {
	return len(t.apps)
}

func (t *Tracker) index(id string) int {
	return slices.IndexFunc(t.apps, func(a domain.Application) bool { return a.ID == id })
}

// Filter returns a view of the applications matching query and status. An
// empty query matches everything, otherwise it must occur, ignoring case, in
// the company name, job title or notes. An empty status matches every status.
// The view reads the collection each time it is iterated.
func (t *Tracker) Filter(query string, status domain.Status) iter.Seq[domain.Application] {
	q := strings.ToLower(query)
	return func(yield func(domain.Application) bool) {
		for _, app := range t.apps {
			if !matches(app, q, status) {
				continue
			}
			if !yield(app) {
				return
			}
		}
	}
}

func matches(app domain.Application, q string, status domain.Status) bool {
	if status != "" && app.Status != status {
		return false
	}
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(app.CompanyName), q) ||
		strings.Contains(strings.ToLower(app.JobTitle), q) ||
		strings.Contains(strings.ToLower(app.Notes), q)
}

// Stats computes the summary counters from the current collection
func (t *Tracker) Stats() domain.Stats {
	s := domain.Stats{Total: len(t.apps)}
	for _, app := range t.apps {
		if app.Status.Active() {
			s.Active++
		}
		if app.Status == domain.StatusInterview {
			s.Interviews++
		}
	}
	return s
}

// DaysSince phrases the distance between date and today: "today", "1 day" or
// "N days". Dates in the future read the same as dates in the past.
func (t *Tracker) DaysSince(date civil.Date) string {
	days := civil.DateOf(t.clock.Now()).DaysSince(date)
	if days < 0 {
		days = -days
	}
	switch days {
	case 0:
		return "today"
	case 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// Today returns the current calendar date in the clock's location
func (t *Tracker) Today() civil.Date {
	return civil.DateOf(t.clock.Now())
}
