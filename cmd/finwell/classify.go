package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finwell-app/finwell/internal/cli"
	"github.com/finwell-app/finwell/internal/engine"
	"github.com/finwell-app/finwell/internal/llm"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Categorize unclassified transactions",
		Long: `Categorize unclassified transactions using your rules, shared global
rules, the built-in vendor table, and the Gemini fallback.

Examples:
  finwell classify --user alice               # Full pipeline
  finwell classify --user alice --skip-ai     # Rules only, no AI calls
  finwell classify --user alice --no-save-rules  # Don't learn rules from AI results`,
		RunE: runClassify,
	}

	cmd.Flags().Bool("skip-ai", false, "Skip the AI fallback layer")
	cmd.Flags().Bool("no-save-rules", false, "Don't create rules from high-confidence AI results")

	_ = viper.BindPFlag("classification.skip_ai", cmd.Flags().Lookup("skip-ai"))
	_ = viper.BindPFlag("classification.no_save_rules", cmd.Flags().Lookup("no-save-rules"))

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, err := requireUser()
	if err != nil {
		return err
	}

	opts := engine.Options{
		SkipAI:    viper.GetBool("classification.skip_ai"),
		SaveRules: !viper.GetBool("classification.no_save_rules"),
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeStore(store)

	transactions, err := store.ListUnclassifiedTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(transactions) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No unclassified transactions."))
		return nil
	}

	var aiClient llm.Client
	if !opts.SkipAI {
		gemini, geminiErr := llm.NewGeminiClient(ctx, llm.Config{
			APIKey:    viper.GetString("gemini.api_key"),
			Model:     viper.GetString("gemini.model"),
			RateLimit: viper.GetInt("gemini.rate_limit"),
		})
		if geminiErr != nil {
			return fmt.Errorf("failed to create Gemini client: %w", geminiErr)
		}
		defer gemini.Close()
		aiClient = gemini
	}

	eng := engine.New(store, aiClient)

	done := make(chan struct{})
	go renderProgress(eng, done)

	result, err := eng.Classify(ctx, transactions, userID, opts)
	close(done)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	printSummary(result)
	return nil
}

// renderProgress polls the engine's progress snapshots and drives a
// terminal progress bar over AI batches.
func renderProgress(eng *engine.ClassificationEngine, done <-chan struct{}) {
	var bar *progressbar.ProgressBar

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			if bar != nil {
				_ = bar.Finish()
			}
			return
		case <-ticker.C:
			p := eng.Progress()
			if !p.IsRunning {
				continue
			}
			if bar == nil {
				bar = progressbar.NewOptions(p.TotalBatches,
					progressbar.OptionSetDescription("Classifying with Gemini"),
					progressbar.OptionShowCount(),
					progressbar.OptionSetPredictTime(false))
			}
			_ = bar.Set(p.CurrentBatch)
		}
	}
}

func printSummary(result *engine.Result) {
	fmt.Println(cli.TitleStyle.Render("Classification summary"))
	fmt.Println(cli.StatLine("  User rules", result.Stats.ClassifiedByUserRules))
	fmt.Println(cli.StatLine("  Default vendors", result.Stats.ClassifiedByDefaultVendors))
	fmt.Println(cli.StatLine("  Gemini", result.Stats.ClassifiedByAI))
	fmt.Println(cli.StatLine("  Unclassified", result.Stats.Unclassified))

	if len(result.NeedsManualReview) > 0 {
		fmt.Println(cli.WarningStyle.Render(
			fmt.Sprintf("%d transactions need manual review", len(result.NeedsManualReview))))
	} else {
		fmt.Println(cli.SuccessStyle.Render("All transactions classified"))
	}
}
