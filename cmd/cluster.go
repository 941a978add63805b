package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkerrigan/fitcluster/internal/cluster"
	"github.com/mkerrigan/fitcluster/internal/export"
)

var (
	cluK              int
	cluSeed           int64
	cluSweep          bool
	cluDropDegenerate bool
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Run the full pipeline and group users with seeded k-means",
	Long: `Runs preprocess and features, standardizes the feature matrix, and
fits k-means with a fixed seed. With --sweep, every k in the configured
sweep list is fitted and its inertia reported; lower is tighter, and
picking the final k stays with the caller. Cluster label numbering is
arbitrary and not stable across refits.`,
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

		seed := c.RandomSeed
		if cmd.Flags().Changed("seed") {
			seed = cluSeed
		}
		opts := cluster.Options{
			Seed:           seed,
			NInit:          c.NInit,
			MaxIter:        c.MaxIter,
			Tol:            c.Tol,
			DropDegenerate: cluDropDegenerate,
		}

		if cluSweep {
			fmt.Println("Sweeping k (inertia per candidate):")
			for _, k := range c.Sweep {
				res, err := cluster.FitClusters(users, k, opts)
				if err != nil {
					return err
				}
				fmt.Printf("  k=%d  inertia=%.4f\n", k, res.Model.Inertia)
			}
			return nil
		}

		k := c.Clusters
		if cmd.Flags().Changed("k") {
			k = cluK
		}
		res, err := cluster.FitClusters(users, k, opts)
		if err != nil {
			var degErr *cluster.DegenerateInputError
			if errors.As(err, &degErr) {
				return fmt.Errorf("%w (rerun with --drop-degenerate to exclude these columns from scaling)", err)
			}
			return err
		}
		if len(res.DroppedFeatures) > 0 {
			fmt.Printf("⚠ Dropped zero-variance features from scaling: %v\n", res.DroppedFeatures)
		}
		fmt.Printf("k-means fit: k=%d, seed=%d, inertia=%.4f\n", k, seed, res.Model.Inertia)
		for _, p := range res.Profiles {
			fmt.Printf("  cluster %d: %d users, avg steps %.0f, avg sleep efficiency %.3f, lifestyle score %.3f\n",
				p.Cluster, p.Users, p.AvgSteps, p.AvgSleepEfficiency, p.LifestyleScore)
		}

		if err := export.EnsureDir(c.OutputDir); err != nil {
			return fmt.Errorf("mkdir output dir: %w", err)
		}
		clusteredPath := filepath.Join(c.OutputDir, "user_features_clustered.csv")
		if err := export.WriteClusteredCSV(clusteredPath, users, res.Assignments); err != nil {
			return err
		}
		profilesPath := filepath.Join(c.OutputDir, "cluster_profiles.csv")
		if err := export.WriteProfilesCSV(profilesPath, res.Profiles); err != nil {
			return err
		}
		summaryPath := filepath.Join(c.OutputDir, "run_summary.json")
		if err := export.WriteRunSummary(summaryPath, export.NewRunSummary(res, seed)); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s, %s, %s\n", clusteredPath, profilesPath, summaryPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.Flags().IntVar(&cluK, "k", 0, "number of clusters (overrides config)")
	clusterCmd.Flags().Int64Var(&cluSeed, "seed", 0, "random seed for reproducible fits (overrides config)")
	clusterCmd.Flags().BoolVar(&cluSweep, "sweep", false, "fit every k in the configured sweep list and report inertia")
	clusterCmd.Flags().BoolVar(&cluDropDegenerate, "drop-degenerate", false, "drop zero-variance feature columns from scaling instead of failing")
}
