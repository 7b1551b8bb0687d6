package config

import "github.com/kelseyhightower/envconfig"

// Analysis holds the analytics options recognized by the pipeline.
type Analysis struct {
	PlateauThreshold  float64 `envconfig:"PLATEAU_THRESHOLD" default:"0.05"`
	RSDTolerance      float64 `envconfig:"RSD_TOLERANCE" default:"2.0"`
	FactorRSDLimit    float64 `envconfig:"FACTOR_RSD_LIMIT" default:"20.0"`
	TargetReplicates  int     `envconfig:"TARGET_REPLICATES" default:"12"`
	RoundingPrecision int     `envconfig:"ROUNDING_PRECISION" default:"4"`
}

// Database holds libsql/Turso configuration. Both fields are optional:
// without a URL the tool runs report-only, persisting nothing.
type Database struct {
	URL       string `envconfig:"DATABASE_URL"`
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

// Config is the full tool configuration, loaded from DISSOLVO_* variables.
type Config struct {
	Analysis Analysis
	Database Database
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("DISSOLVO", &cfg.Analysis); err != nil {
		return nil, err
	}
	if err := envconfig.Process("DISSOLVO", &cfg.Database); err != nil {
		return nil, err
	}
	return &cfg, nil
}
