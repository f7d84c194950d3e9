package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/nora/internal/cli"
	"github.com/alexanderramin/nora/internal/config"
	"github.com/alexanderramin/nora/internal/db"
	"github.com/alexanderramin/nora/internal/llm"
	"github.com/alexanderramin/nora/internal/planner"
	"github.com/alexanderramin/nora/internal/repository"
	"github.com/alexanderramin/nora/internal/service"
	"github.com/alexanderramin/nora/internal/transcribe"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(err))
		os.Exit(1)
	}
}

func run() error {
	configPath, err := config.DefaultPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var (
		llmObserver llm.Observer = llm.NoopObserver{}
		useCaseObs  []service.UseCaseObserver
	)
	if cfg.LLM.LogCalls {
		llmObserver = llm.NewLogObserver(os.Stderr)
		useCaseObs = append(useCaseObs, service.NewLogUseCaseObserver(os.Stderr))
	}

	// Wire repositories and services
	itemRepo := repository.NewSQLiteScheduleItemRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	client := llm.NewChatClient(cfg.LLM, llmObserver)
	generator := planner.NewGenerator(planner.NewLLMGateway(client))

	app := &cli.App{
		Items:          service.NewItemService(itemRepo, useCaseObs...),
		Drafts:         service.NewDraftService(uow, useCaseObs...),
		Planner:        generator,
		Location:       loc,
		ConfigPath:     configPath,
		SimulatedDelay: transcribe.SimulatedDelay,
	}

	// Detect interactive terminal for the review screen and forms.
	app.IsInteractive = func() bool {
		in := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		out := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		return in && out
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}
