package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/resume-analyzer/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "resume-analyzer",
	Short:         "Resume vs job description analyzer API",
	Long:          "resume-analyzer extracts text from PDF resumes, scores them against a job description with an LLM and keeps a history of analyses.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	def := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", def, "Path to config.yaml (optional, env vars override it)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}
	return cfg, nil
}

func main() {
	// .env boleh tidak ada
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
