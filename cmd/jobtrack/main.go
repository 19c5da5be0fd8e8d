package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/pbaille/jobtrack/internal/api"
	"github.com/pbaille/jobtrack/internal/config"
	"github.com/pbaille/jobtrack/internal/domain"
	"github.com/pbaille/jobtrack/internal/fetcher"
	"github.com/pbaille/jobtrack/internal/logging"
	"github.com/pbaille/jobtrack/internal/store"
	"github.com/pbaille/jobtrack/internal/tracker"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the settings shared by every command
type cli struct {
	cfg *config.Config

	dbPath  string
	backend string
	key     string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "jobtrack",
		Short:         "Track your job applications",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// Flags win over the environment
			flags := cmd.Flags()
			if flags.Changed("db") {
				cfg.DBPath = c.dbPath
			}
			if flags.Changed("backend") {
				cfg.Backend = c.backend
			}
			if flags.Changed("key") {
				cfg.StorageKey = c.key
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logging.Init(cfg.LogLevel, cfg.LogFormat)
			if cfg.Backend == config.BackendMemory && cmd.Name() != "serve" {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: the memory backend discards every change when this command exits")
			}
			c.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.dbPath, "db", "", "database path (default ~/.jobtrack/jobtrack.db)")
	rootCmd.PersistentFlags().StringVar(&c.backend, "backend", config.BackendSQLite, "storage backend: sqlite, redis or memory")
	rootCmd.PersistentFlags().StringVar(&c.key, "key", tracker.DefaultKey, "storage key")

	rootCmd.AddCommand(c.addCmd())
	rootCmd.AddCommand(c.listCmd())
	rootCmd.AddCommand(c.showCmd())
	rootCmd.AddCommand(c.editCmd())
	rootCmd.AddCommand(c.deleteCmd())
	rootCmd.AddCommand(c.statsCmd())
	rootCmd.AddCommand(c.seedCmd())
	rootCmd.AddCommand(c.serveCmd())

	return rootCmd
}

// openTracker opens the configured medium and loads the collection. The
// returned func releases the medium.
func (c *cli) openTracker(ctx context.Context) (*tracker.Tracker, func(), error) {
	var (
		medium store.Medium
		closer = func() {}
	)

	switch c.cfg.Backend {
	case config.BackendRedis:
		r, err := store.NewRedis(ctx, c.cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		medium, closer = r, func() { _ = r.Close() }
	case config.BackendMemory:
		medium = store.NewMemory()
	default:
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(c.cfg.DBPath), 0755); err != nil {
			return nil, nil, fmt.Errorf("create db dir: %w", err)
		}
		s, err := store.New(c.cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		medium, closer = s, func() { _ = s.Close() }
	}

	t := tracker.New(medium, tracker.WithKey(c.cfg.StorageKey))
	if err := t.Load(ctx); err != nil {
		closer()
		return nil, nil, err
	}
	return t, closer, nil
}

// formFlags are the flags shared by add and edit
type formFlags struct {
	company, title, url, date, status, notes string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.company, "company", "c", "", "company name")
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "job title")
	cmd.Flags().StringVarP(&f.url, "url", "u", "", "job posting URL")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "application date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&f.status, "status", "", "status: "+statusList())
	cmd.Flags().StringVarP(&f.notes, "notes", "n", "", "free-form notes")
}

// apply overlays the flags that were set on base
func (f *formFlags) apply(cmd *cobra.Command, base domain.Fields) (domain.Fields, error) {
	flags := cmd.Flags()
	if flags.Changed("company") {
		base.CompanyName = f.company
	}
	if flags.Changed("title") {
		base.JobTitle = f.title
	}
	if flags.Changed("url") {
		base.JobURL = f.url
	}
	if flags.Changed("notes") {
		base.Notes = f.notes
	}
	if flags.Changed("date") {
		d, err := civil.ParseDate(strings.TrimSpace(f.date))
		if err != nil {
			return base, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", f.date)
		}
		base.ApplicationDate = d
	}
	if flags.Changed("status") {
		st, ok := domain.ParseStatus(f.status)
		if !ok {
			return base, fmt.Errorf("unknown status %q (want one of %s)", f.status, statusList())
		}
		base.Status = st
	}
	return base, nil
}

func statusList() string {
	names := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func (c *cli) addCmd() *cobra.Command {
	var (
		form       formFlags
		fetchTitle bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			t, closeFn, err := c.openTracker(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			fields, err := form.apply(cmd, domain.Fields{
				ApplicationDate: t.Today(),
				Status:          domain.StatusApplied,
			})
			if err != nil {
				return err
			}

			if fetchTitle && strings.TrimSpace(fields.JobTitle) == "" && fetcher.IsURL(fields.JobURL) {
				title, err := fetcher.Title(fields.JobURL)
				if err != nil {
					fmt.Fprintf(out, "(title lookup skipped: %v)\n", err)
				} else {
					fields.JobTitle = title
				}
			}

			app, err := t.Create(ctx, fields)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Added application: %s\n", shortID(app.ID))
			fmt.Fprintf(out, "%s - %s [%s]\n", app.CompanyName, app.JobTitle, app.Status)
			return nil
		},
	}

	form.register(cmd)
	cmd.Flags().BoolVar(&fetchTitle, "fetch-title", false, "fill in the job title from the posting page when --title is empty")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var search, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var st domain.Status
			if status != "" {
				var ok bool
				if st, ok = domain.ParseStatus(status); !ok {
					return fmt.Errorf("unknown status %q (want one of %s)", status, statusList())
				}
			}

			t, closeFn, err := c.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if t.Len() == 0 {
				fmt.Fprintln(out, "No applications yet. Use 'jobtrack add' to create one.")
				return nil
			}

			n := 0
			for app := range t.Filter(search, st) {
				fmt.Fprintf(out, "%s  %-10s %s - %s  (%s)\n",
					shortID(app.ID), app.Status, truncate(app.CompanyName, 30), truncate(app.JobTitle, 40), since(t, app))
				n++
			}
			if n == 0 {
				fmt.Fprintln(out, "No matching applications found.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "match company, title or notes (case-insensitive)")
	cmd.Flags().StringVar(&status, "status", "", "only show this status")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show application details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			t, closeFn, err := c.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			app, err := resolve(t, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "ID:      %s\n", app.ID)
			fmt.Fprintf(out, "Company: %s\n", app.CompanyName)
			fmt.Fprintf(out, "Title:   %s\n", app.JobTitle)
			fmt.Fprintf(out, "Status:  %s\n", app.Status)
			fmt.Fprintf(out, "Applied: %s (%s)\n", app.ApplicationDate, since(t, app))
			if app.JobURL != "" {
				fmt.Fprintf(out, "URL:     %s\n", app.JobURL)
			}
			fmt.Fprintf(out, "Created: %s\n", app.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			if app.Notes != "" {
				fmt.Fprintf(out, "Notes:\n%s\n", app.Notes)
			}
			return nil
		},
	}
}

func (c *cli) editCmd() *cobra.Command {
	var form formFlags

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit an application; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, closeFn, err := c.openTracker(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			found, err := resolve(t, args[0])
			if err != nil {
				return err
			}
			app, err := t.BeginEdit(found.ID)
			if err != nil {
				return err
			}

			fields, err := form.apply(cmd, app.Fields())
			if err != nil {
				return err
			}
			app, err = t.Submit(ctx, fields)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated application: %s\n", shortID(app.ID))
			return nil
		},
	}

	form.register(cmd)
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			t, closeFn, err := c.openTracker(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			app, err := resolve(t, args[0])
			if err != nil {
				return err
			}

			token := t.RequestDelete(app.ID)
			if !yes && !confirm(cmd.InOrStdin(), out,
				fmt.Sprintf("Delete %s - %s? Are you sure you want to delete this application? [y/N] ", app.CompanyName, app.JobTitle)) {
				t.CancelDelete(token)
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}

			if err := t.ConfirmDelete(ctx, token); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted application: %s\n", shortID(app.ID))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show summary counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, closeFn, err := c.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			s := t.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:      %d\n", s.Total)
			fmt.Fprintf(out, "Active:     %d\n", s.Active)
			fmt.Fprintf(out, "Interviews: %d\n", s.Interviews)
			return nil
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store sample applications if nothing is stored yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, closeFn, err := c.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			seeded, err := t.Seed(cmd.Context())
			if err != nil {
				return err
			}
			if seeded {
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sample applications.\n", t.Len())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Applications already stored; nothing to seed.")
			}
			return nil
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI and REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Addr
			}

			t, closeFn, err := c.openTracker(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			return api.New(t, addr).Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}

// resolve finds an application by full id or unique id prefix
func resolve(t *tracker.Tracker, ref string) (domain.Application, error) {
	if app, ok := t.Get(ref); ok {
		return app, nil
	}

	var matches []domain.Application
	for _, app := range t.All() {
		if strings.HasPrefix(app.ID, ref) {
			matches = append(matches, app)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Application{}, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return domain.Application{}, fmt.Errorf("ambiguous id %s matches %d applications", ref, len(matches))
	}
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func since(t *tracker.Tracker, app domain.Application) string {
	s := t.DaysSince(app.ApplicationDate)
	if s == "today" {
		return "applied today"
	}
	return "applied " + s + " ago"
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
