package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/mkerrigan/fitcluster/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set fitcluster configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("data_dir: %s\n", cfg.DataDir)
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		fmt.Printf("clusters: %d\n", cfg.Clusters)
		fmt.Printf("random_seed: %d\n", cfg.RandomSeed)
		fmt.Printf("n_init: %d\n", cfg.NInit)
		fmt.Printf("max_iter: %d\n", cfg.MaxIter)
		fmt.Printf("tol: %g\n", cfg.Tol)
		fmt.Printf("sweep: %v\n", cfg.Sweep)
		fmt.Printf("score.steps_weight: %.2f\n", cfg.Score.StepsWeight)
		fmt.Printf("score.sleep_weight: %.2f\n", cfg.Score.SleepWeight)
		fmt.Printf("score.activity_weight: %.2f\n", cfg.Score.ActivityWeight)
		fmt.Printf("score.heart_rate_weight: %.2f\n", cfg.Score.HeartRateWeight)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_dir":
			cfg.DataDir = val
		case "output_dir":
			cfg.OutputDir = val
		case "clusters":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid clusters: %s (positive integer required)", val)
			}
			cfg.Clusters = n
		case "random_seed":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid random_seed: %s (positive integer required)", val)
			}
			cfg.RandomSeed = n
		case "n_init":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid n_init: %s (positive integer required)", val)
			}
			cfg.NInit = n
		case "max_iter":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return fmt.Errorf("invalid max_iter: %s (positive integer required)", val)
			}
			cfg.MaxIter = n
		default:
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Saved %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
