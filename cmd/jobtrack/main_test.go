package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pbaille/jobtrack/internal/domain"
	"github.com/pbaille/jobtrack/internal/store"
	"github.com/pbaille/jobtrack/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, db, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("JOBTRACK_BACKEND", "sqlite")
	return execute(t, stdin, append([]string{"--db", db}, args...)...)
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_Workflow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "nested", "jobtrack.db")

	out, err := run(t, db, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No applications yet")

	out, err = run(t, db, "", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 sample applications.")

	out, err = run(t, db, "", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to seed")

	out, err = run(t, db, "", "list", "--status", "rejected")
	require.NoError(t, err)
	assert.Contains(t, out, "HARVARD")
	assert.NotContains(t, out, "KEDGE SCHOOL")

	out, err = run(t, db, "", "list", "-s", "nothing-like-this")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching applications found.")

	_, err = run(t, db, "", "edit", "2", "--status", "interview", "--notes", "Second round")
	require.NoError(t, err)

	out, err = run(t, db, "", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Company: HEC SCHOOL")
	assert.Contains(t, out, "Status:  Interview")
	assert.Contains(t, out, "Second round")

	out, err = run(t, db, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total:      3")
	assert.Contains(t, out, "Interviews: 2")

	out, err = run(t, db, "n\n", "delete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	out, err = run(t, db, "y\n", "delete", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted application: 3")

	out, err = run(t, db, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total:      2")
}

func TestCLI_Add(t *testing.T) {
	db := filepath.Join(t.TempDir(), "jobtrack.db")

	out, err := run(t, db, "", "add", "--company", " Acme ", "--title", "Go Dev", "--date", "2024-01-15", "--status", "offer")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme - Go Dev [Offer]")

	out, err = run(t, db, "", "list", "--search", "ACME")
	require.NoError(t, err)
	assert.Contains(t, out, "Offer")
	assert.Contains(t, out, "Acme - Go Dev")
}

func TestCLI_AddRejectsBadInput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "jobtrack.db")

	_, err := run(t, db, "", "add", "--title", "Go Dev")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = run(t, db, "", "add", "--company", "Acme", "--title", "Go Dev", "--date", "15/01/2024")
	assert.ErrorContains(t, err, "invalid --date")

	_, err = run(t, db, "", "add", "--company", "Acme", "--title", "Go Dev", "--status", "Ghosted")
	assert.ErrorContains(t, err, "unknown status")

	_, err = run(t, db, "", "show", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCLI_BackendFlagOverridesEnvironment(t *testing.T) {
	db := filepath.Join(t.TempDir(), "jobtrack.db")
	t.Setenv("JOBTRACK_BACKEND", "redis")
	t.Setenv("REDIS_URL", "")

	_, err := execute(t, "", "--db", db, "stats")
	assert.EqualError(t, err, "REDIS_URL is required for the redis backend")

	out, err := execute(t, "", "--backend", "sqlite", "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total:      0")
}

func TestCLI_MemoryBackendWarns(t *testing.T) {
	out, err := execute(t, "", "--backend", "memory", "add", "--company", "Acme", "--title", "Go Dev")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: the memory backend discards every change")
	assert.Contains(t, out, "Acme - Go Dev [Applied]")
}

func TestResolve(t *testing.T) {
	ids := []string{"abc-1", "abc-2", "xyz-1"}
	n := 0
	tr := tracker.New(store.NewMemory(), tracker.WithIDFunc(func() string {
		id := ids[n]
		n++
		return id
	}))
	ctx := context.Background()
	require.NoError(t, tr.Load(ctx))
	for i := range ids {
		_, err := tr.Create(ctx, domain.Fields{
			CompanyName:     fmt.Sprintf("Company %d", i),
			JobTitle:        "Dev",
			ApplicationDate: tr.Today(),
			Status:          domain.StatusApplied,
		})
		require.NoError(t, err)
	}

	app, err := resolve(tr, "xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz-1", app.ID)

	app, err = resolve(tr, "abc-2")
	require.NoError(t, err)
	assert.Equal(t, "abc-2", app.ID)

	_, err = resolve(tr, "abc")
	assert.ErrorContains(t, err, "ambiguous id abc matches 2 applications")

	_, err = resolve(tr, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\nb", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "Société", truncate("Société", 7))
	assert.Equal(t, "Soc...", truncate("Société Générale", 6))
}
