package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"prcast/internal/api"
	"prcast/pkg/config"
	"prcast/pkg/db"
	"prcast/pkg/generator"
	"prcast/pkg/github"
	"prcast/pkg/logging"
	"prcast/pkg/model"
	"prcast/pkg/probe"
	"prcast/pkg/store"
	"prcast/pkg/template"
	"prcast/pkg/tracker"
	"prcast/pkg/version"
)

// aggregateCacheAge bounds how old a cached PR aggregate may be before the
// server refetches it from GitHub.
const aggregateCacheAge = 15 * time.Minute

// scriptRetention is how long stored scripts are kept before startup pruning.
const scriptRetention = 90 * 24 * time.Hour

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/prcast.yaml", "Path to config file")
	serve      = flag.Bool("serve", false, "Run the HTTP server")

	prRef        = flag.String("pr", "", "Generate a script for one PR and exit, e.g. owner/repo#123")
	templateType = flag.String("template", "", "Template type (summary, detailed, technical, overview)")
	duration     = flag.Float64("duration", 0, "Target duration in seconds")
	audience     = flag.String("audience", "", "Primary audience (engineering, executive, product, general)")
	level        = flag.String("level", "", "Technical level (beginner, intermediate, advanced)")
	outPath      = flag.String("out", "", "Write the result JSON to this file instead of stdout")
)

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Secrets like GITHUB_TOKEN may live in a local .env.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env", "error", err)
	}

	appCfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("prcast started", "version", version.Version)

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	st := store.NewSQLiteStore(dbConn)
	defer st.Close()

	if err := dbConn.PruneScripts(scriptRetention); err != nil {
		slog.Warn("Failed to prune old scripts", "error", err)
	}

	registry, err := initRegistry(appCfg)
	if err != nil {
		return err
	}

	gen := generator.New(registry)
	tr := tracker.New()
	client := github.NewClient(&appCfg.GitHub)
	client.SetTracker(tr)

	if *prRef != "" {
		return generateOnce(ctx, appCfg, gen, client, st)
	}
	if *serve {
		probes := []probe.Probe{
			{Name: "GitHub API", Check: client.Ping, Critical: true},
			{Name: "Database", Check: dbConn.PingContext, Critical: true},
		}
		if err := probe.AnalyzeResults(probe.Run(ctx, probes)); err != nil {
			return fmt.Errorf("startup checks failed: %w", err)
		}
		return runServer(ctx, appCfg, gen, client, st, registry, tr)
	}
	return fmt.Errorf("nothing to do: pass -serve or -pr owner/repo#123")
}

func initRegistry(cfg *config.Config) (*template.Registry, error) {
	registry := template.NewRegistry()
	if dir := cfg.Engine.TemplateDir; dir != "" {
		if err := registry.LoadDir(dir); err != nil {
			return nil, fmt.Errorf("failed to load templates from %s: %w", dir, err)
		}
		slog.Info("Loaded extra templates", "dir", dir)
	}
	return registry, nil
}

// generateOnce fetches one PR, generates a script, persists it, and writes
// the result JSON to stdout or -out.
func generateOnce(ctx context.Context, cfg *config.Config, gen *generator.Generator, client *github.Client, st store.ScriptStore) error {
	owner, repo, number, err := parsePRRef(*prRef)
	if err != nil {
		return err
	}

	genCfg := resolveConfig(cfg)

	if v := generator.ValidateConfig(genCfg); !v.IsValid {
		return fmt.Errorf("invalid generation config: %s", strings.Join(v.Errors, "; "))
	}

	slog.Info("Fetching PR", "owner", owner, "repo", repo, "pr", number)
	agg, err := client.FetchAggregate(ctx, owner, repo, number)
	if err != nil {
		return fmt.Errorf("failed to fetch PR data: %w", err)
	}

	result := gen.GenerateScript(ctx, agg, genCfg)
	if result.Success {
		if err := st.SaveScript(ctx, owner+"/"+repo, number, result.Script); err != nil {
			slog.Warn("Failed to persist script", "error", err)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *outPath, err)
		}
		slog.Info("Result written", "path", *outPath)
		return nil
	}
	fmt.Println(string(data))
	return nil
}

// resolveConfig builds a generation config from flags, falling back to the
// engine defaults in the config file.
func resolveConfig(cfg *config.Config) generator.Config {
	tt := cfg.Engine.DefaultTemplate
	if *templateType != "" {
		tt = *templateType
	}
	target := float64(cfg.Engine.DefaultTargetSeconds)
	if *duration > 0 {
		target = *duration
	}
	aud := cfg.Engine.DefaultAudience
	if *audience != "" {
		aud = *audience
	}
	lvl := cfg.Engine.DefaultTechnicalLevel
	if *level != "" {
		lvl = *level
	}
	return generator.Config{
		TemplateType:   template.Type(tt),
		TargetDuration: target,
		Audience: model.Audience{
			Primary:        model.AudienceType(aud),
			TechnicalLevel: model.TechnicalLevel(lvl),
		},
	}
}

func parsePRRef(ref string) (owner, repo string, number int, err error) {
	path, num, found := strings.Cut(ref, "#")
	if !found {
		return "", "", 0, fmt.Errorf("invalid PR reference %q, want owner/repo#123", ref)
	}
	owner, repo, found = strings.Cut(path, "/")
	if !found || owner == "" || repo == "" {
		return "", "", 0, fmt.Errorf("invalid PR reference %q, want owner/repo#123", ref)
	}
	number, err = strconv.Atoi(num)
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("invalid PR number in %q", ref)
	}
	return owner, repo, number, nil
}

func runServer(ctx context.Context, cfg *config.Config, gen *generator.Generator, client *github.Client, st store.ScriptStore, registry *template.Registry, tr *tracker.Tracker) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	scriptsH := api.NewScriptsHandler(gen, client, st, aggregateCacheAge)
	scriptsH.SetTracker(tr)
	templatesH := api.NewTemplatesHandler(registry)
	statsH := api.NewStatsHandler(tr)

	srv := api.NewServer(cfg.Server.Address, scriptsH, templatesH, statsH, shutdownFunc)
	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("Request processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
