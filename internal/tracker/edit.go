package tracker

import (
	"context"

	"github.com/pbaille/jobtrack/internal/domain"
)

// BeginEdit marks the application with id as the one being edited and returns
// it so a form can be filled in.
func (t *Tracker) BeginEdit(id string) (domain.Application, error) {
	app, ok := t.Get(id)
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	t.editing = id
	return app, nil
}

// Editing returns the id of the application being edited, if any
func (t *Tracker) Editing() (string, bool) {
	return t.editing, t.editing != ""
}

// CancelEdit closes the edit session without saving
func (t *Tracker) CancelEdit() {
	t.editing = ""
}

// Submit saves a form: it updates the application being edited, or creates a
// new one when nothing is being edited. The edit session ends on success and
// stays open on a validation error so the input can be corrected.
func (t *Tracker) Submit(ctx context.Context, f domain.Fields) (domain.Application, error) {
	id, editing := t.Editing()
	if !editing {
		return t.Create(ctx, f)
	}

	if err := t.Update(ctx, id, f); err != nil {
		return domain.Application{}, err
	}
	t.editing = ""
	app, _ := t.Get(id)
	return app, nil
}
