package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/simp-lee/consolekit/internal/client"
	"github.com/simp-lee/consolekit/internal/config"
	"github.com/simp-lee/consolekit/internal/dispatch"
	"github.com/simp-lee/consolekit/internal/domain"
	"github.com/simp-lee/consolekit/internal/navsync"
	"github.com/simp-lee/consolekit/internal/querykey"
	"github.com/simp-lee/consolekit/internal/remotecache"
	"github.com/simp-lee/consolekit/internal/screen"
	"github.com/simp-lee/consolekit/internal/session"
	"github.com/simp-lee/consolekit/internal/table"
)

// employeeSchema declares what the employees screen may sort and filter on.
var employeeSchema = domain.Schema{
	DefaultPageSize: 10,
	DefaultSort:     []domain.SortField{{Field: "id"}},
	SortFields:      []string{"id", "name", "salary", "hired_at", "created_at"},
	FilterFields: map[string]domain.FilterKind{
		"name":   domain.FilterString,
		"email":  domain.FilterString,
		"active": domain.FilterBool,
		"salary": domain.FilterRange,
	},
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	username := flag.String("username", "root", "operator username")
	password := flag.String("password", "", "operator password")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	if *password == "" {
		log.Fatal("a password is required (-password)")
	}

	logr, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		log.Fatal("failed to setup logger: ", err)
	}
	defer logr.Close()

	if err := run(cfg, logr.Logger, *username, *password); err != nil {
		logr.Error("console session failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// run wires the console core together and walks one employees session:
// sign in, mount the screen, page forward, filter, and navigate back.
func run(cfg *config.Config, logger *slog.Logger, username, password string) error {
	ctx := context.Background()

	store := session.NewStore(session.NewFileFlag(cfg.Session.StateFile, logger))
	cache := remotecache.New(cfg.CacheFreshFor(30*time.Second), remotecache.WithLogger(logger))

	notifier := dispatch.NotifierFunc(func(spec domain.NotificationSpec) {
		fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", spec.Severity, spec.Title, spec.Message)
	})
	invalidator := &session.Invalidator{Store: store, Cache: cache}
	redirect := func() {
		fmt.Fprintln(os.Stderr, "session ended, returning to login")
	}
	dispatcher := dispatch.New(notifier, invalidator, redirect,
		dispatch.WithRedirectDelay(cfg.SessionRedirectDelay(1500*time.Millisecond)),
		dispatch.WithLogger(logger),
	)

	cli := client.New(cfg.Client.BaseURL, cfg.ClientTimeout(10*time.Second),
		store.Token, dispatcher, cache, client.WithLogger(logger))

	token, err := cli.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	store.Login(token)

	guard := session.NewGuard(store, cache, func(ctx context.Context) (*domain.Profile, error) {
		return cli.FetchProfile(ctx)
	})
	hist := navsync.NewMemoryHistory(nil)

	scr := screen.New("employees", employeeSchema, hist, cli, cache,
		screen.WithGuard(guard),
		screen.WithScope(func() querykey.Scope {
			st := store.State()
			if st.Profile == nil || st.Profile.LocationID == "" {
				return querykey.Scope{}
			}
			return querykey.Scope{Values: map[string]string{"location_id": st.Profile.LocationID}}
		}),
	)

	if err := scr.Mount(ctx); err != nil {
		return fmt.Errorf("mount employees: %w", err)
	}
	defer scr.Unmount()

	page, _ := scr.Snapshot()
	printPage(page)

	// Page forward, then narrow to active employees.
	scr.SetPagination(table.Value(domain.Pagination{PageIndex: 1, PageSize: employeeSchema.DefaultPageSize}))
	if page, err = scr.Load(ctx); err == nil {
		printPage(page)
	}

	scr.SetFilters(table.Value(domain.Filters{"active": domain.BoolValue(true)}))
	if page, err = scr.Load(ctx); err == nil {
		printPage(page)
	}

	// Browser-style back restores the previous state and its cached page.
	if hist.Back() {
		if page, err = scr.Load(ctx); err == nil {
			printPage(page)
		}
	}

	return nil
}

func printPage(page *domain.PageResult[json.RawMessage]) {
	if page == nil {
		return
	}
	fmt.Printf("page %d/%d (%d total)\n",
		page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.Total)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tACTIVE\tSALARY")
	for _, raw := range page.Items {
		var e struct {
			ID     uint    `json:"id"`
			Name   string  `json:"name"`
			Email  string  `json:"email"`
			Active bool    `json:"active"`
			Salary float64 `json:"salary"`
		}
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%.0f\n", e.ID, e.Name, e.Email, e.Active, e.Salary)
	}
	w.Flush()
}
