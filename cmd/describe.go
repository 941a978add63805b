package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkerrigan/fitcluster/internal/stats"
)

var descOutputPath string

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Summary statistics and correlations of the merged daily table",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		daily, err := loadMerged(c)
		if err != nil {
			return err
		}
		text := stats.Describe(daily).Text()

		if descOutputPath != "" {
			if err := os.WriteFile(descOutputPath, []byte(text), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote summary to %s\n", descOutputPath)
			return nil
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the summary")
}
