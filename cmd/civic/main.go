package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/civic/internal/catalog"
	"github.com/alexanderramin/civic/internal/cli"
	"github.com/alexanderramin/civic/internal/config"
	"github.com/alexanderramin/civic/internal/db"
	"github.com/alexanderramin/civic/internal/metrics"
	"github.com/alexanderramin/civic/internal/preference"
	"github.com/alexanderramin/civic/internal/repository"
	"github.com/alexanderramin/civic/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	// Open database
	database, err := db.OpenDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	actionRepo := repository.NewSQLiteActionRepo(database)
	eventRepo := repository.NewSQLiteActionEventRepo(database)
	prefRepo := repository.NewSQLitePreferenceRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	m := metrics.New(nil)

	// Catalog backend
	var callObserver catalog.Observer = m
	if cfg.Catalog.LogCalls {
		callObserver = catalog.MultiObserver{m, catalog.NewLogObserver(os.Stderr)}
	}
	var client catalog.Client
	var importSvc service.ImportService
	switch cfg.Catalog.Backend {
	case config.BackendHTTP:
		client = catalog.NewHTTPClient(cfg.HTTPConfig(), callObserver, logger)
	default:
		client = catalog.NewRepoClient(actionRepo, eventRepo, callObserver)
		importSvc = service.NewImportService(uow, m)
	}

	// Preferences
	ctx := context.Background()
	initial, err := prefRepo.Get(ctx, cfg.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("loading preferences: %w", err)
	}
	store := preference.NewStore(cfg.UserID, initial, preference.WithListCap(cfg.Preferences.ListCap))
	flusher := preference.NewFlusher(store, prefRepo, cfg.FlusherConfig(), logger, m)

	engine := service.NewEngine(client, store, cfg.EngineConfig(), logger,
		service.NewSlogUseCaseObserver(logger), m)

	app := &cli.App{
		Engine:  engine,
		Import:  importSvc,
		Catalog: client,
		Flusher: flusher,
		Metrics: m,
		Config:  cfg,
		Logger:  logger,
	}

	// Detect interactive terminal for the intake form and spinner.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// configPath picks --config out of args ahead of cobra, which runs only
// after the App is wired.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("civic", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}
