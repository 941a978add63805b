// Package config loads and persists the pipeline configuration.
// Precedence: flags (cfgFile) > env (FITCLUSTER_*) > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	validator "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Score pins the lifestyle score weights and reference constants. The same
// values must be used at fit time and report time.
type Score struct {
	StepsWeight     float64 `mapstructure:"steps_weight" yaml:"steps_weight" validate:"gte=0"`
	SleepWeight     float64 `mapstructure:"sleep_weight" yaml:"sleep_weight" validate:"gte=0"`
	ActivityWeight  float64 `mapstructure:"activity_weight" yaml:"activity_weight" validate:"gte=0"`
	HeartRateWeight float64 `mapstructure:"heart_rate_weight" yaml:"heart_rate_weight" validate:"gte=0"`
	StepsRef        float64 `mapstructure:"steps_ref" yaml:"steps_ref" validate:"gt=0"`
	ActivityRef     float64 `mapstructure:"activity_ref" yaml:"activity_ref" validate:"gt=0"`
	RestingHRBase   float64 `mapstructure:"resting_hr_base" yaml:"resting_hr_base" validate:"gt=0"`
	RestingHRRange  float64 `mapstructure:"resting_hr_range" yaml:"resting_hr_range" validate:"gt=0"`
}

// Global configuration structure.
type Global struct {
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`

	Clusters   int     `mapstructure:"clusters" yaml:"clusters" validate:"gte=1"`
	RandomSeed int64   `mapstructure:"random_seed" yaml:"random_seed" validate:"gte=1"`
	NInit      int     `mapstructure:"n_init" yaml:"n_init" validate:"gte=1"`
	MaxIter    int     `mapstructure:"max_iter" yaml:"max_iter" validate:"gte=1"`
	Tol        float64 `mapstructure:"tol" yaml:"tol" validate:"gt=0"`
	Sweep      []int   `mapstructure:"sweep" yaml:"sweep" validate:"dive,gte=1"`

	Score Score `mapstructure:"score" yaml:"score"`
}

// Load loads configuration from file, env, and defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FITCLUSTER")
	v.AutomaticEnv()

	v.SetDefault("data_dir", "data")
	v.SetDefault("output_dir", "reports")
	v.SetDefault("clusters", 3)
	v.SetDefault("random_seed", 42)
	v.SetDefault("n_init", 10)
	v.SetDefault("max_iter", 300)
	v.SetDefault("tol", 1e-4)
	v.SetDefault("sweep", []int{2, 3, 4})
	v.SetDefault("score.steps_weight", 0.30)
	v.SetDefault("score.sleep_weight", 0.25)
	v.SetDefault("score.activity_weight", 0.25)
	v.SetDefault("score.heart_rate_weight", 0.20)
	v.SetDefault("score.steps_ref", 10000)
	v.SetDefault("score.activity_ref", 60)
	v.SetDefault("score.resting_hr_base", 75)
	v.SetDefault("score.resting_hr_range", 20)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working dir: %w", err)
		}
		v.AddConfigPath(wd)
		v.SetConfigName("fitcluster")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Save writes the configuration to cfgFile, or ./fitcluster.yaml when
// empty.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working dir: %w", err)
		}
		path = filepath.Join(wd, "fitcluster.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
