// Command synonymgen asks the configured LLM for synonym phrases covering
// a tenant's attribute values and stores the accepted suggestions as
// synonym entries. Values that already have an entry are skipped, so the
// tool is safe to re-run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/contentiq/internal/config"
	dbRedis "github.com/kailas-cloud/contentiq/internal/db/redis"
	"github.com/kailas-cloud/contentiq/internal/domain/synonym"
	logpkg "github.com/kailas-cloud/contentiq/internal/logger"
	taxonomyrepo "github.com/kailas-cloud/contentiq/internal/repository/taxonomy"
	openaiLLM "github.com/kailas-cloud/contentiq/internal/transport/openai"
)

func main() {
	var (
		tenantID = flag.String("tenant", "", "tenant to generate synonyms for (required)")
		category = flag.String("category", "", "restrict generation to one category")
		global   = flag.Bool("global", false, "store entries in the global scope instead of the tenant's")
		dryRun   = flag.Bool("dry-run", false, "print suggestions without writing them")
	)
	flag.Parse()

	if *tenantID == "" {
		fmt.Fprintln(os.Stderr, "usage: synonymgen -tenant <id> [-category <name>] [-global] [-dry-run]")
		os.Exit(2)
	}

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		fmt.Fprintln(os.Stderr, "llm.api_key is required for synonym generation")
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *tenantID, *category, *global, *dryRun); err != nil {
		logger.Fatal("synonym generation failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger, tenantID, category string, global, dryRun bool) error {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	repo := taxonomyrepo.New(store)
	generator := openaiLLM.NewExtractor(&openaiLLM.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		Logger:      logger,
	})

	tax, err := repo.Load(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}
	if len(tax.Categories) == 0 {
		return fmt.Errorf("tenant %s has no categories", tenantID)
	}

	existing, err := repo.List(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("list existing synonyms: %w", err)
	}
	covered := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		covered[e.Category()+"\x00"+e.Value()] = struct{}{}
	}

	categories := make([]string, 0, len(tax.Categories))
	for name := range tax.Categories {
		if category != "" && name != category {
			continue
		}
		categories = append(categories, name)
	}
	if len(categories) == 0 {
		return fmt.Errorf("category %q not found for tenant %s", category, tenantID)
	}
	sort.Strings(categories)

	entryTenant := tenantID
	if global {
		entryTenant = ""
	}

	var written int
	for _, name := range categories {
		values := uncoveredValues(name, tax.Categories[name], covered)
		if len(values) == 0 {
			logger.Info("all values covered, skipping", zap.String("category", name))
			continue
		}

		suggestions, err := generator.GenerateSynonyms(ctx, name, values)
		if err != nil {
			return fmt.Errorf("generate synonyms for %s: %w", name, err)
		}

		for _, s := range suggestions {
			entry, err := synonym.New(entryTenant, s.Phrase, name, s.Value, s.Confidence)
			if err != nil {
				logger.Warn("skipping invalid suggestion", zap.String("phrase", s.Phrase), zap.Error(err))
				continue
			}
			if dryRun {
				fmt.Printf("%s: %q -> %s (%.2f)\n", name, s.Phrase, s.Value, s.Confidence)
				continue
			}
			if err := repo.SaveSynonym(ctx, entry); err != nil {
				return fmt.Errorf("save synonym %q: %w", s.Phrase, err)
			}
			written++
		}
	}

	logger.Info("synonym generation complete",
		zap.String("tenant", tenantID),
		zap.Int("written", written),
		zap.Bool("dry_run", dryRun),
	)
	return nil
}

// uncoveredValues filters a category's values down to those with no
// synonym entry yet.
func uncoveredValues(category string, values []string, covered map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := covered[category+"\x00"+v]; ok {
			continue
		}
		out = append(out, v)
	}
	return out
}
