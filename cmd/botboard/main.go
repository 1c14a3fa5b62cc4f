package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halcyon-ops/botboard/internal/config"
	"github.com/halcyon-ops/botboard/internal/policy"
	"github.com/halcyon-ops/botboard/internal/server"
	"github.com/halcyon-ops/botboard/internal/sheets"
	"github.com/halcyon-ops/botboard/internal/storage"
	"github.com/halcyon-ops/botboard/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file (default ~/.config/botboard/config.toml)")
	serveFlag := flag.Bool("serve", false, "Run the JSON API instead of the dashboard")
	dateFlag := flag.String("date", "", "Initial report date (YYYY-MM-DD, default yesterday)")
	noCacheFlag := flag.Bool("no-cache", false, "Disable the snapshot cache")
	flag.Parse()

	var loadResult *config.LoadResult
	var err error
	if *configFlag != "" {
		loadResult, err = config.LoadFrom(*configFlag)
	} else {
		loadResult, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "botboard: config error: %v\n", err)
		os.Exit(1)
	}
	cfg := loadResult.Config

	for _, w := range loadResult.Warnings {
		fmt.Fprintf(os.Stderr, "botboard: config warning: %s\n", w)
	}

	date := time.Now().AddDate(0, 0, -1)
	if *dateFlag != "" {
		date, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "botboard: invalid -date %q: %v\n", *dateFlag, err)
			os.Exit(1)
		}
	}

	client := sheets.New(
		cfg.Sheets.BaseURL,
		cfg.Sheets.LookupBaseURL,
		time.Duration(cfg.Sheets.TimeoutSeconds)*time.Second,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The cache is best effort: if sqlite cannot open the dashboard
	// still runs, every fetch just goes to the service.
	var cache *storage.Cache
	if !*noCacheFlag {
		db, err := storage.OpenDB(cfg.Storage.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "botboard: snapshot cache unavailable: %v\n", err)
		} else {
			cache = storage.NewCache(db)
			defer cache.Close()
			cache.StartMaintenance(ctx, cfg.Storage.RetentionDays)
		}
	}

	fetcher := storage.NewCachingFetcher(cache, client)

	if *serveFlag {
		runServer(ctx, cancel, cfg, fetcher, client)
		return
	}

	model := tui.NewModel(cfg, fetcher, client, date)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "botboard: %v\n", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg config.Config, fetcher *storage.CachingFetcher, client *sheets.Client) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	roster := policy.RosterFrom(cfg.Departments.Roster)
	srv := server.New(cfg.Server, roster, fetcher, client)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "botboard: %v\n", err)
		os.Exit(1)
	}
}
