// Package pipeline provides the high-level orchestration of a discovery run:
// scrape all enabled marketplaces, filter the postings, generate replies, and
// optionally submit them, persisting one snapshot of outcomes at the end.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/andrii-d/autoapply/internal/config"
	"github.com/andrii-d/autoapply/internal/filter"
	"github.com/andrii-d/autoapply/internal/marketplace"
	"github.com/andrii-d/autoapply/internal/respond"
	"github.com/andrii-d/autoapply/internal/store"
	"github.com/andrii-d/autoapply/internal/submit"
	"github.com/andrii-d/autoapply/internal/types"
)

// Submitter is the slice of the submission engine the orchestrator needs.
type Submitter interface {
	Submit(ctx context.Context, link, replyText string) (submit.Outcome, error)
	Close()
}

// Options configures one pipeline run.
type Options struct {
	Config   *config.Config
	Criteria filter.Criteria
	Registry *marketplace.Registry

	// Generator produces reply text; nil disables reply generation.
	Generator respond.Generator

	// NewEngine builds a submission engine per marketplace. Left nil, the
	// chromedp-backed engine is used; tests substitute a scripted one.
	NewEngine func(mp marketplace.Marketplace, sessionPath string, testMode bool) Submitter
}

// Result is what one run produced.
type Result struct {
	RunID        uuid.UUID
	Postings     []types.Posting
	SnapshotPath string
}

// Run executes the full pipeline. Per-posting and per-adapter failures are
// isolated and recorded; the run always completes and writes its snapshot.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Registry == nil {
		opts.Registry = marketplace.NewRegistry()
	}
	if opts.NewEngine == nil {
		opts.NewEngine = func(mp marketplace.Marketplace, sessionPath string, testMode bool) Submitter {
			return submit.NewEngine(mp, sessionPath, testMode)
		}
	}

	runID := uuid.New()
	log.Printf("[PIPELINE] starting run %s", runID)

	// Resolve every enabled marketplace before any scraping starts; an unknown
	// identifier is a configuration error, not a runtime fallthrough.
	enabled := cfg.EnabledMarketplaces()
	adapters := make([]marketplace.Marketplace, len(enabled))
	for i, mc := range enabled {
		mp, err := opts.Registry.Lookup(mc.Name)
		if err != nil {
			return nil, err
		}
		adapters[i] = mp
	}

	postings := scrapeAll(ctx, adapters, enabled, cfg.MaxPages)
	log.Printf("[PIPELINE] scraped %d postings from %d marketplaces", len(postings), len(adapters))

	candidates := filter.Apply(postings, opts.Criteria)
	log.Printf("[PIPELINE] filtered down to %d matching postings", len(candidates))

	generateReplies(ctx, candidates, opts.Generator)

	if cfg.AutoSubmit {
		submitReplies(ctx, candidates, adapters, cfg, opts.NewEngine)
	}

	snapshotPath, err := WriteSnapshot(cfg.OutputDir, time.Now().UTC(), candidates)
	if err != nil {
		// The snapshot is the run's one output artifact; failing to write it
		// is the only orchestrator-level error after scraping.
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	log.Printf("[PIPELINE] saved %d postings to %s", len(candidates), snapshotPath)

	persist(ctx, cfg.DatabaseURL, runID, candidates)

	return &Result{RunID: runID, Postings: candidates, SnapshotPath: snapshotPath}, nil
}

// scrapeAll runs every adapter in parallel. Each adapter owns an independent
// browsing session, so they never block one another; an adapter failure is
// logged and its slot stays empty instead of cancelling the siblings.
func scrapeAll(ctx context.Context, adapters []marketplace.Marketplace, configs []config.MarketplaceConfig, maxPages int) []types.Posting {
	results := make([][]types.Posting, len(adapters))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for i, mp := range adapters {
		i, mp := i, mp
		g.Go(func() error {
			log.Printf("[PIPELINE] scraping %s...", mp.Name())
			found, err := mp.FetchListings(gCtx, marketplace.FetchOptions{
				URL:      configs[i].URL,
				MaxPages: maxPages,
			})
			if err != nil {
				log.Printf("[PIPELINE] %s adapter failed: %v", mp.Name(), err)
			}
			mu.Lock()
			results[i] = found
			mu.Unlock()
			log.Printf("[PIPELINE] scraped %d postings from %s", len(found), mp.Name())
			return nil
		})
	}
	_ = g.Wait()

	// Flatten in configuration order so runs are deterministic.
	var all []types.Posting
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}

// generateReplies invokes the generator per posting. A generation failure or
// an empty reply leaves ReplyGenerated false and never blocks the next posting.
func generateReplies(ctx context.Context, postings []types.Posting, gen respond.Generator) {
	if gen == nil {
		return
	}

	for i := range postings {
		if ctx.Err() != nil {
			return
		}
		p := &postings[i]

		text, err := gen.Generate(ctx, p)
		if err != nil {
			log.Printf("[PIPELINE] reply generation failed for %s: %v", p.Key(), err)
			continue
		}
		if text == "" {
			continue
		}

		now := time.Now().UTC()
		p.ReplyText = text
		p.ReplyGenerated = true
		p.ReplyTimestamp = &now
	}
}

// submitReplies drives the submission engines, one per marketplace, created
// lazily and closed before returning. An auth-expired marketplace is dropped
// from the rest of the run; other postings keep going.
func submitReplies(ctx context.Context, postings []types.Posting, adapters []marketplace.Marketplace, cfg *config.Config, newEngine func(marketplace.Marketplace, string, bool) Submitter) {
	bySource := make(map[string]marketplace.Marketplace, len(adapters))
	for _, mp := range adapters {
		bySource[mp.Name()] = mp
	}

	engines := make(map[string]Submitter)
	stopped := make(map[string]bool)
	defer func() {
		for _, e := range engines {
			e.Close()
		}
	}()

	for i := range postings {
		// Cancellation is observed between postings at minimum.
		if ctx.Err() != nil {
			return
		}
		p := &postings[i]
		if !p.ReplyGenerated {
			continue
		}
		if stopped[p.Source] {
			p.SubmissionStatus = types.StatusFailed
			p.SubmissionMessage = "marketplace disabled for this run: authentication expired"
			continue
		}

		mp, ok := bySource[p.Source]
		if !ok {
			p.SubmissionStatus = types.StatusFailed
			p.SubmissionMessage = fmt.Sprintf("no adapter for source %q", p.Source)
			continue
		}

		engine, ok := engines[p.Source]
		if !ok {
			engine = newEngine(mp, cfg.SessionStatePath(p.Source), cfg.TestMode)
			engines[p.Source] = engine
		}

		outcome, err := engine.Submit(ctx, p.Link, p.ReplyText)
		p.SubmissionStatus = outcome.Status
		p.SubmissionMessage = outcome.Message
		if err != nil {
			// AuthExpired and session start failures are marketplace-level
			// hard stops; every other failure is already in the outcome.
			log.Printf("[PIPELINE] stopping submissions for %s: %v", p.Source, err)
			stopped[p.Source] = true
		}
	}
}

// persist writes the run to Postgres when configured. A storage failure is a
// warning, never a run failure.
func persist(ctx context.Context, databaseURL string, runID uuid.UUID, postings []types.Posting) {
	if databaseURL == "" {
		return
	}

	db, err := store.Connect(ctx, databaseURL)
	if err != nil {
		log.Printf("[PIPELINE] warning: database unavailable, skipping persistence: %v", err)
		return
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Printf("[PIPELINE] warning: %v", err)
		return
	}
	if err := db.SaveRun(ctx, runID, postings); err != nil {
		log.Printf("[PIPELINE] warning: failed to persist run: %v", err)
	}
}
