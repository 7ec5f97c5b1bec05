package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/medvat/medvat/internal/config"
	"github.com/medvat/medvat/internal/gemini"
	"github.com/medvat/medvat/internal/logging"
	"github.com/medvat/medvat/internal/rubric"
)

const version = "1.0.0"

// rootCmd is the main Cobra command for the medvat CLI.
var rootCmd = &cobra.Command{
	Use:   "medvat",
	Short: "AI-assisted video assessment of procedural skills",
	Long: `MedVAT analyzes recorded skill performances (suturing, chest tube
insertion, standardized patient encounters) against built-in assessment
rubrics using Gemini, and writes a PDF report next to each video.

Examples:
  medvat assess surgery.mp4 --rubric "Chest Tube Insertion VOP"
  medvat assess --rubric "Suturing: Auto-Detect"   # file picker
  medvat batch *.mp4 --archive
  medvat models --probe
  medvat config set-key`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the medvat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("medvat %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newService resolves the API key and connects the Gemini client.
func newService(ctx context.Context) *gemini.Client {
	apiKey, err := config.APIKey()
	if err != nil {
		log.Fatal().Err(err).Msg("No API key configured. Set GEMINI_API_KEY or run 'medvat config set-key'")
	}
	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Gemini client")
	}
	return client
}

// resolveRubric looks up the requested rubric key, listing the known keys by
// category when the lookup misses.
func resolveRubric(store *rubric.Store, key string) *rubric.Rubric {
	rb, ok := store.Get(key)
	if ok {
		return rb
	}

	fmt.Fprintf(os.Stderr, "Unknown rubric %q. Available rubrics:\n", key)
	for _, category := range store.Categories() {
		fmt.Fprintf(os.Stderr, "  %s:\n", category)
		for _, r := range store.ByCategory(category) {
			fmt.Fprintf(os.Stderr, "    %q\n", r.Key)
		}
	}
	os.Exit(1)
	return nil
}

// resolveModel picks the model to use: the flag when set, then the saved
// config, then the default.
func resolveModel(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	cfg, err := config.Load()
	if err == nil && cfg.Model != "" {
		return cfg.Model
	}
	return gemini.DefaultModel
}
