package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cardboard/application/actions"
	"cardboard/application/queries"
	"cardboard/domain/core/aggregates"
	"cardboard/domain/core/entities"
	"cardboard/domain/core/validators"
	"cardboard/infrastructure/codec"
	"cardboard/infrastructure/config"
	"cardboard/infrastructure/session"
)

var writeInPlace bool

func main() {
	root := &cobra.Command{
		Use:           "boardctl",
		Short:         "Inspect and maintain board documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a board document decodes cleanly and is internally consistent",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	fmtCmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Re-render a board document into canonical form",
		Args:  cobra.ExactArgs(1),
		RunE:  runFmt,
	}
	fmtCmd.Flags().BoolVarP(&writeInPlace, "write", "w", false, "rewrite the file instead of printing to stdout")

	statsCmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Print card, connection and asset counts",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	watchCmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Keep a board document open and revalidate it on every change",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}

	root.AddCommand(validateCmd, fmtCmd, statsCmd, watchCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "boardctl: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func parseFile(path string) (*codec.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return codec.New().Parse(data)
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, err := parseFile(args[0])
	if err != nil {
		return err
	}

	problems := validators.NewBoardValidator().Validate(doc.Board)
	for _, p := range problems {
		fmt.Fprintf(os.Stderr, "warning: %v\n", p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d consistency problem(s)", len(problems))
	}

	fmt.Println("ok")
	return nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	doc, err := parseFile(args[0])
	if err != nil {
		return err
	}

	out, err := codec.New().Render(doc.Board, doc.Assets)
	if err != nil {
		return err
	}

	if writeInPlace {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if err := os.WriteFile(args[0], out, 0o644); err != nil {
			return err
		}
		logger.Info("document rewritten", zap.String("path", args[0]))
		return nil
	}

	_, err = os.Stdout.Write(out)
	return err
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	appCfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	cfg := appCfg.Domain()

	acts := actions.New(aggregates.NewBoard(), cfg, nil, logger)
	s := session.New(acts, codec.New(), session.NewFileDocumentStore(args[0]), nil, cfg, logger)
	if err := s.Load(cmd.Context()); err != nil {
		return err
	}
	defer s.Close()

	w, err := session.NewWatcher(args[0], logger)
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()

	reportProblems(logger, acts.Board().Snapshot())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// All reloads happen here on the command's goroutine; the watcher
	// only delivers notifications.
	for {
		select {
		case <-sigCh:
			return nil
		case <-w.Changes():
			if err := s.Load(cmd.Context()); err != nil {
				logger.Error("reload failed, keeping current board", zap.Error(err))
				continue
			}
			reportProblems(logger, acts.Board().Snapshot())
		}
	}
}

func reportProblems(logger *zap.Logger, snap aggregates.Snapshot) {
	for _, p := range validators.NewBoardValidator().Validate(snap) {
		logger.Warn("consistency problem", zap.Error(p))
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	doc, err := parseFile(args[0])
	if err != nil {
		return err
	}

	stats := queries.BoardStats(doc.Board, doc.Assets)

	fmt.Printf("cards:       %d\n", stats.CardCount)
	for _, t := range []entities.CardType{entities.CardTypeMarkdown, entities.CardTypeAsset, entities.CardTypeTodo} {
		if n := stats.CardsByType[t]; n > 0 {
			fmt.Printf("  %-10s %d\n", string(t)+":", n)
		}
	}
	if stats.TodoOpen+stats.TodoDone > 0 {
		fmt.Printf("  todo open: %d, done: %d\n", stats.TodoOpen, stats.TodoDone)
	}
	fmt.Printf("connections: %d\n", stats.ConnectionCount)
	fmt.Printf("assets:      %d\n", stats.AssetCount)
	return nil
}
