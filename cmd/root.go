package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/mkerrigan/fitcluster/internal/config"
)

var (
	// Global flags (wired to config overrides)
	cfgFile     string
	flagDataDir string
	flagOutDir  string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "fitcluster",
	Short: "fitcluster: cluster Fitbit users by activity, sleep, and heart-rate habits",
	Long: `fitcluster is a batch analysis CLI. It merges activity, sleep, and
heart-rate CSV sources into one daily table, derives a summary feature
vector per user, and groups users with seeded k-means. Outputs are flat
CSV tables plus a JSON run summary for the downstream reporting layer.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./fitcluster.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory with activity.csv, sleep.csv, heart_rate.csv (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagOutDir, "output-dir", "", "directory for generated tables (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fail later with a clearer message if they
		// actually need config.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if f.Changed("output-dir") && flagOutDir != "" {
		cfg.OutputDir = flagOutDir
	}
}

// requireConfig returns the loaded config or an error if startup loading
// failed.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded; check --config and fitcluster.yaml")
	}
	return cfg, nil
}
