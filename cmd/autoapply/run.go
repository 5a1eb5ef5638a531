package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrii-d/autoapply/internal/config"
	"github.com/andrii-d/autoapply/internal/filter"
	"github.com/andrii-d/autoapply/internal/observability"
	"github.com/andrii-d/autoapply/internal/pipeline"
	"github.com/andrii-d/autoapply/internal/respond"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the discovery -> filter -> reply -> submission pipeline once",
	Long: `Scrapes every enabled marketplace, filters postings against your keyword and
price criteria, generates a candidate reply per posting, and, when auto-submit
is enabled, submits the replies through the captured browser session.

The run always writes one timestamped JSON snapshot of all outcomes.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath string
	runKeywords   string
	runMinPrice   float64
	runAutoSubmit bool
	runTestMode   bool
	runAPIKey     string
	runVerbose    bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "config/config.yaml", "Path to config file (JSON or YAML)")
	runCommand.Flags().StringVar(&runKeywords, "keywords", "", "Path to keywords file (overrides config)")
	runCommand.Flags().Float64Var(&runMinPrice, "min-price", 0, "Minimum posting price (overrides config)")
	runCommand.Flags().BoolVar(&runAutoSubmit, "submit", false, "Submit generated replies automatically")
	runCommand.Flags().BoolVar(&runTestMode, "test-mode", true, "Prepare replies without committing them")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print every posting with its reply")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	// Operator abort closes browser sessions between postings instead of
	// leaving them authenticated and unattended.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(runConfigPath)

	// CLI overrides win when explicitly set.
	if cmd.Flags().Changed("keywords") {
		cfg.KeywordsFile = runKeywords
	}
	if cmd.Flags().Changed("min-price") {
		cfg.MinPrice = runMinPrice
	}
	if cmd.Flags().Changed("submit") {
		cfg.AutoSubmit = runAutoSubmit
	}
	if cmd.Flags().Changed("test-mode") {
		cfg.TestMode = runTestMode
	}
	if cmd.Flags().Changed("api-key") {
		cfg.LLM.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	criteria := filter.Criteria{MinPrice: cfg.MinPrice}
	if cfg.KeywordsFile != "" {
		kw, err := config.LoadKeywords(cfg.KeywordsFile)
		if err != nil {
			log.Printf("[CLI] %v (continuing without keyword criteria)", err)
		} else {
			criteria.IncludeKeywords = kw.Include
			criteria.ExcludeKeywords = kw.Exclude
		}
	}

	generator, err := buildGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = generator.Close() }()

	result, err := pipeline.Run(ctx, pipeline.Options{
		Config:    cfg,
		Criteria:  criteria,
		Generator: generator,
	})
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	if len(result.Postings) == 0 {
		fmt.Println("No matching postings found.")
	} else if cfg.Verbose {
		for i := range result.Postings {
			printer.PrintPosting(i+1, &result.Postings[i])
		}
	}
	printer.PrintRunSummary(result.Postings, result.SnapshotPath)

	return nil
}

// buildGenerator picks the reply generator: Gemini when an API key is
// configured, plain template substitution otherwise.
func buildGenerator(ctx context.Context, cfg *config.Config) (respond.Generator, error) {
	if cfg.LLM.APIKey != "" {
		gen, err := respond.NewLLMGenerator(ctx, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create reply generator: %w", err)
		}
		return gen, nil
	}

	log.Printf("[CLI] no API key configured, using template replies")
	return respond.NewTemplateGenerator(cfg.LLM.Templates, cfg.LLM.Categories), nil
}
