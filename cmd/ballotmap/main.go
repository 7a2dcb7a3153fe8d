package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ballotmap/internal/api"
	"ballotmap/internal/catalog"
	"ballotmap/internal/config"
	"ballotmap/internal/pipeline"
	"ballotmap/internal/storage"
	"ballotmap/internal/view"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	must(err)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	incumbents, err := loadIncumbents(cfg)
	must(err)

	loader := catalog.NewLoader(catalog.NewClient(cfg, logger), cfg.Feeds, logger)

	cmd := os.Args[1]
	switch cmd {
	case "index:build":
		_, report := loader.Build(context.Background(), incumbents)
		printJSON(report)
		if report.FailedFeeds() == len(report.Feeds) && len(report.Feeds) > 0 {
			fmt.Fprintln(os.Stderr, "warning: every feed failed, index holds incumbents only")
		}
	case "index:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		format := fs.String("format", "xlsx", "xlsx|sqlite")
		out := fs.String("out", "", "output path (defaults to OUTPUT_DIR/index.xlsx or DB_PATH)")
		_ = fs.Parse(os.Args[2:])

		idx, report := loader.Build(context.Background(), incumbents)
		rows := idx.ExportRows()
		switch strings.ToLower(strings.TrimSpace(*format)) {
		case "xlsx":
			path := *out
			if strings.TrimSpace(path) == "" {
				path = filepath.Join(cfg.OutputDir, "index.xlsx")
			}
			must(pipeline.ExportRowsToXLSX(rows, path))
			fmt.Printf("exported %d rows to %s build=%s\n", len(rows), path, report.ID)
		case "sqlite":
			path := *out
			if strings.TrimSpace(path) == "" {
				path = cfg.DBPath
			}
			must(cfg.Require("DB_PATH", path))
			db, err := storage.Open(path)
			must(err)
			defer db.Close()
			must(db.WriteIndex(report, rows))
			must(db.SetMetadata("index.last_build", report.ID))
			fmt.Printf("exported %d rows to %s build=%s\n", len(rows), path, report.ID)
		default:
			must(fmt.Errorf("unsupported format: %s", *format))
		}
	case "position":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		key := fs.String("key", "", "position key, e.g. gov or Harris_County_Judge")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*key) == "" {
			must(fmt.Errorf("--key is required"))
		}
		idx, _ := loader.Build(context.Background(), incumbents)
		bucket, ok := idx.Position(*key)
		if !ok {
			must(fmt.Errorf("unknown position: %s", *key))
		}
		printJSON(bucket)
	case "county":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "county name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--name is required"))
		}
		idx, _ := loader.Build(context.Background(), incumbents)
		printJSON(idx.CountyOffices(*name))
	case "serve":
		must(serve(cfg, loader, incumbents, logger))
	default:
		usage()
		os.Exit(1)
	}
}

func serve(cfg config.Config, loader *catalog.Loader, incumbents []catalog.Incumbent, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := view.NewSession(nil, view.WithLogger(logger), view.WithActiveState(cfg.ActiveState))
	server := api.NewServer(session, loader, incumbents, logger)
	if _, applied := server.Reload(ctx); !applied {
		logger.Info("interrupted before the first index build finished")
		return nil
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	server.Invalidate()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if strings.EqualFold(cfg.LogFormat, "console") {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.Level = level
	return zcfg.Build()
}

func loadIncumbents(cfg config.Config) ([]catalog.Incumbent, error) {
	if strings.TrimSpace(cfg.IncumbentsFile) == "" {
		return catalog.DefaultIncumbents, nil
	}
	return catalog.LoadIncumbentsFile(cfg.IncumbentsFile)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	must(enc.Encode(v))
}

func usage() {
	fmt.Println("usage: ballotmap <command>")
	fmt.Println("commands:")
	fmt.Println("  index:build")
	fmt.Println("  index:export --format=xlsx|sqlite [--out=./out/index.xlsx]")
	fmt.Println("  position --key=gov")
	fmt.Println("  county --name=Harris")
	fmt.Println("  serve")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
