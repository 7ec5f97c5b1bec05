package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/medvat/medvat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the stored API key and default model",
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the Gemini API key",
	Long: `Set-key saves the API key to ~/.medvat/config.toml with owner-only
permissions. With no argument the key is read from stdin. The GEMINI_API_KEY
environment variable, when set, always takes precedence over the stored key.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runConfigSetKey,
}

var configSetModelCmd = &cobra.Command{
	Use:   "set-model <model>",
	Short: "Store the default Gemini model",
	Args:  cobra.ExactArgs(1),
	Run:   runConfigSetModel,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored configuration",
	Run:   runConfigShow,
}

func init() {
	configCmd.AddCommand(configSetKeyCmd, configSetModelCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSetKey(cmd *cobra.Command, args []string) {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		fmt.Print("Enter API key: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read API key")
		}
		key = strings.TrimSpace(input)
	}
	if key == "" {
		log.Fatal().Msg("API key is empty")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load existing config")
	}
	cfg.APIKey = key
	if err := config.Save(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to save config")
	}

	path, _ := config.Path()
	fmt.Printf("API key saved to %s\n", path)
}

func runConfigSetModel(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load existing config")
	}
	cfg.Model = args[0]
	if err := config.Save(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to save config")
	}
	fmt.Printf("Default model set to %s\n", args[0])
}

func runConfigShow(cmd *cobra.Command, args []string) {
	path, err := config.Path()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot resolve config path")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	fmt.Printf("Config file: %s\n", path)
	fmt.Printf("API key:     %s\n", maskKey(cfg.APIKey))
	if env := os.Getenv("GEMINI_API_KEY"); env != "" {
		fmt.Println("             (GEMINI_API_KEY is set and takes precedence)")
	}
	model := cfg.Model
	if model == "" {
		model = "(default)"
	}
	fmt.Printf("Model:       %s\n", model)
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
