package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkerrigan/fitcluster/internal/export"
)

var featOut string

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Compute the per-user feature table from the merged sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		daily, err := loadMerged(c)
		if err != nil {
			return err
		}
		users, err := computeFeatures(c, daily)
		if err != nil {
			return err
		}

		out := featOut
		if out == "" {
			out = filepath.Join(c.OutputDir, "user_features.csv")
		}
		if err := export.EnsureDir(filepath.Dir(out)); err != nil {
			return fmt.Errorf("mkdir output dir: %w", err)
		}
		if err := export.WriteUserFeaturesCSV(out, users); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote user feature table to %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featuresCmd.Flags().StringVarP(&featOut, "output", "o", "", "path for user_features.csv (default <output-dir>/user_features.csv)")
}
