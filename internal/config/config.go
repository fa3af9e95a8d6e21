package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pricehistory/internal/xmldate"
)

// Config holds all configuration for the price history command.
type Config struct {
	AlphavantageAPIKey            string  `mapstructure:"alphavantage_api_key"`
	AlphavantageBaseURL           string  `mapstructure:"alphavantage_base_url"`
	AlphavantageRequestsPerMinute float64 `mapstructure:"alphavantage_requests_per_minute"`
	AlphavantageOutputSize        string  `mapstructure:"alphavantage_output_size"`

	StockSymbols []string `mapstructure:"stock_symbols"`

	// Raw HISTORY_START/HISTORY_END values; parsed into Start and End.
	HistoryStart string `mapstructure:"history_start"`
	HistoryEnd   string `mapstructure:"history_end"`

	// OutputPath is where the XML document goes; "-" means stdout.
	OutputPath string `mapstructure:"output_path"`
	LogEnv     string `mapstructure:"log_env"`

	Start time.Time `mapstructure:"-"`
	End   time.Time `mapstructure:"-"`
}

// envBindings maps config keys to their environment variables.
var envBindings = map[string]string{
	"alphavantage_api_key":             "ALPHAVANTAGE_API_KEY",
	"alphavantage_base_url":            "ALPHAVANTAGE_BASE_URL",
	"alphavantage_requests_per_minute": "ALPHAVANTAGE_REQUESTS_PER_MINUTE",
	"alphavantage_output_size":         "ALPHAVANTAGE_OUTPUT_SIZE",
	"stock_symbols":                    "STOCK_SYMBOLS",
	"history_start":                    "HISTORY_START",
	"history_end":                      "HISTORY_END",
	"output_path":                      "OUTPUT_PATH",
	"log_env":                          "LOG_ENV",
}

// Load reads configuration from environment variables and an optional
// config.yaml in . or $HOME/.pricehistory. Environment variables win.
//
// Required: ALPHAVANTAGE_API_KEY, STOCK_SYMBOLS (comma separated).
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("alphavantage_base_url", "https://www.alphavantage.co/query")
	v.SetDefault("alphavantage_requests_per_minute", 5)
	v.SetDefault("alphavantage_output_size", "compact")
	v.SetDefault("output_path", "-")
	v.SetDefault("log_env", "development")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.pricehistory")

	// A missing config file is fine.
	_ = v.ReadInConfig()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.StockSymbols = normalizeSymbols(config.StockSymbols)

	var missing []string
	if config.AlphavantageAPIKey == "" {
		missing = append(missing, "ALPHAVANTAGE_API_KEY")
	}
	if len(config.StockSymbols) == 0 {
		missing = append(missing, "STOCK_SYMBOLS")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	switch config.AlphavantageOutputSize {
	case "compact", "full":
	default:
		return nil, fmt.Errorf("invalid ALPHAVANTAGE_OUTPUT_SIZE %q: want compact or full", config.AlphavantageOutputSize)
	}

	var err error
	if config.Start, err = parseBound("HISTORY_START", config.HistoryStart); err != nil {
		return nil, err
	}
	if config.End, err = parseBound("HISTORY_END", config.HistoryEnd); err != nil {
		return nil, err
	}
	if !config.Start.IsZero() && !config.End.IsZero() && config.End.Before(config.Start) {
		return nil, fmt.Errorf("HISTORY_END %s is before HISTORY_START %s", config.HistoryEnd, config.HistoryStart)
	}

	return config, nil
}

// normalizeSymbols splits comma separated entries, upper-cases them and drops
// blanks and duplicates.
func normalizeSymbols(in []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, entry := range in {
		for _, s := range strings.Split(entry, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func parseBound(name, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, err := xmldate.Parse(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}
