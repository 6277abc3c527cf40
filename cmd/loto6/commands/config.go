package commands

import (
	"time"

	"loto6-backend/internal/loto6"
	"loto6-backend/lib/configutil"
	"loto6-backend/lib/scrapers/kyo"
)

type Config struct {
	SourceUrl            string `json:"source_url"`
	UserAgent            string `json:"user_agent"`
	TimeoutSeconds       int    `json:"timeout_seconds"`
	MaxAttempts          int    `json:"max_attempts"`
	RetryIntervalSeconds int    `json:"retry_interval_seconds"`
	Dataset              string `json:"dataset"`
	// Database is the sqlite file draws are mirrored to, empty disables mirroring.
	Database string `json:"database"`
}

func defaultConfig() Config {
	return Config{
		SourceUrl:            kyo.DefaultUrl,
		UserAgent:            kyo.DefaultUserAgent,
		TimeoutSeconds:       int(kyo.DefaultTimeout / time.Second),
		MaxAttempts:          loto6.DefaultMaxAttempts,
		RetryIntervalSeconds: int(loto6.DefaultRetryInterval / time.Second),
		Dataset:              loto6.DefaultDataset,
	}
}

// readConfig reads the config at path over the defaults, a config file
// only needs the keys it changes.
func readConfig(path string) (Config, error) {
	return configutil.ReadConfigOr(path, defaultConfig())
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalSeconds) * time.Second
}

// datasetArg lets the positional dataset argument win over the config.
func (c Config) datasetArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return c.Dataset
}
