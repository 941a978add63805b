package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkerrigan/fitcluster/internal/export"
)

var preMergedOut string

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Load, clean, and merge the three sources into the daily table",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		daily, err := loadMerged(c)
		if err != nil {
			return err
		}

		out := preMergedOut
		if out == "" {
			out = filepath.Join(c.OutputDir, "merged.csv")
		}
		if err := export.EnsureDir(filepath.Dir(out)); err != nil {
			return fmt.Errorf("mkdir output dir: %w", err)
		}
		if err := export.WriteMergedCSV(out, daily); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote merged daily table to %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
	preprocessCmd.Flags().StringVarP(&preMergedOut, "output", "o", "", "path for merged.csv (default <output-dir>/merged.csv)")
}
