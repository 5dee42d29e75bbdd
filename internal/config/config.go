package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port      int              `json:"port"`
	Database  DatabaseConfig   `json:"database"`
	AI        AIConfig         `json:"ai"`
	Engine    EngineConfig     `json:"engine"`
	CORSAllow []string         `json:"cors_allow"`
	LogConfig logger.LogConfig `json:"log_config"`
}

type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DBName       string `json:"dbname"`
	SSLMode      string `json:"sslmode"`
	DSN          string `json:"dsn"`
	MaxOpenConns int    `json:"max_open_conns"`
}

type AIConfig struct {
	Provider       string                 `json:"provider"`
	Model          string                 `json:"model"`
	Dimension      int                    `json:"dimension"`
	TimeoutSeconds int                    `json:"timeout_seconds"`
	Data           map[string]interface{} `json:"data"`
	Fallbacks      []AIEndpointConfig     `json:"fallbacks"`
	Cache          EmbedCacheConfig       `json:"cache"`
}

// AIEndpointConfig describes a fallback embedding endpoint. Fallbacks must
// produce vectors with the same dimension as the primary.
type AIEndpointConfig struct {
	Provider string                 `json:"provider"`
	Model    string                 `json:"model"`
	Data     map[string]interface{} `json:"data"`
}

type EmbedCacheConfig struct {
	LRUSize           int    `json:"lru_size"`
	LRUTTLMinutes     int    `json:"lru_ttl_minutes"`
	DBCacheMaxAgeDays int    `json:"db_cache_max_age_days"`
	CleanupCron       string `json:"cleanup_cron"`
}

type EngineConfig struct {
	HighValueThreshold  float64             `json:"high_value_threshold"`
	ExampleCap          int                 `json:"example_cap"`
	RecentWindowDays    int                 `json:"recent_window_days"`
	StoreTimeoutSeconds int                 `json:"store_timeout_seconds"`
	TalkingPoints       map[string][]string `json:"talking_points"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.Dimension == 0 {
		cfg.AI.Dimension = 384
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 30
	}
	if cfg.AI.Cache.LRUSize == 0 {
		cfg.AI.Cache.LRUSize = 10000
	}
	if cfg.AI.Cache.LRUTTLMinutes == 0 {
		cfg.AI.Cache.LRUTTLMinutes = 120
	}
	if cfg.AI.Cache.DBCacheMaxAgeDays == 0 {
		cfg.AI.Cache.DBCacheMaxAgeDays = 30
	}
	if cfg.AI.Cache.CleanupCron == "" {
		cfg.AI.Cache.CleanupCron = "30 4 * * *"
	}
	if cfg.Engine.HighValueThreshold == 0 {
		cfg.Engine.HighValueThreshold = 100000
	}
	if cfg.Engine.ExampleCap == 0 {
		cfg.Engine.ExampleCap = 20
	}
	if cfg.Engine.RecentWindowDays == 0 {
		cfg.Engine.RecentWindowDays = 90
	}
	if cfg.Engine.StoreTimeoutSeconds == 0 {
		cfg.Engine.StoreTimeoutSeconds = 10
	}
	if cfg.Engine.TalkingPoints == nil {
		cfg.Engine.TalkingPoints = DefaultTalkingPoints()
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	return &cfg, nil
}

// DefaultTalkingPoints is the built-in topic advice table. Deployments extend
// or replace it through engine.talking_points in the config file.
func DefaultTalkingPoints() map[string][]string {
	return map[string][]string{
		"pricing": {
			"Emphasize ROI calculations",
			"Share relevant case studies",
			"Discuss flexible payment options",
		},
	}
}
