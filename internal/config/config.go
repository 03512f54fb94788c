package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/mlefebvre/plume/pkg/logger"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logger    logger.Config   `yaml:"logger"`
	Collector CollectorConfig `yaml:"collector"`
	Models    ModelsConfig    `yaml:"models"`
	Affiliate AffiliateConfig `yaml:"affiliate"`
	WordPress WordPressConfig `yaml:"wordpress"`
	Twitter   TwitterConfig   `yaml:"twitter"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type CollectorConfig struct {
	Topics        []string `yaml:"topics"`
	MaxPerTopic   int      `yaml:"max_per_topic"`
	Language      string   `yaml:"language"`
	Region        string   `yaml:"region"`
	MinPauseSecs  int      `yaml:"min_pause_secs"`
	MaxPauseSecs  int      `yaml:"max_pause_secs"`
}

// ModelsConfig lists the generative backends in fallback order.
type ModelsConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	TextModels  []string `yaml:"text_generation"`
	ImageModels []string `yaml:"image_generation"`
}

type AffiliateConfig struct {
	Account         string            `yaml:"account"`
	Categories      map[string]string `yaml:"categories"`
	DefaultCategory string            `yaml:"default_category"`
}

type WordPressConfig struct {
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	AppPassword string `yaml:"app_password"`
}

type TwitterConfig struct {
	Enabled         bool   `yaml:"enabled"`
	BearerToken     string `yaml:"bearer_token"`
	MinPostInterval string `yaml:"min_post_interval"`
}

type SchedulerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	CycleInterval    string `yaml:"cycle_interval"`
	OptimizeInterval string `yaml:"optimize_interval"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	// Set default values
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5841
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if len(cfg.Collector.Topics) == 0 {
		cfg.Collector.Topics = []string{"technology", "finance"}
	}
	if cfg.Collector.MaxPerTopic == 0 {
		cfg.Collector.MaxPerTopic = 5
	}
	if cfg.Collector.Language == "" {
		cfg.Collector.Language = "en"
	}
	if cfg.Collector.Region == "" {
		cfg.Collector.Region = "US"
	}
	if cfg.Collector.MinPauseSecs == 0 {
		cfg.Collector.MinPauseSecs = 5
	}
	if cfg.Collector.MaxPauseSecs == 0 {
		cfg.Collector.MaxPauseSecs = 10
	}
	if cfg.Models.BaseURL == "" {
		cfg.Models.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Affiliate.DefaultCategory == "" {
		cfg.Affiliate.DefaultCategory = "self-help"
	}
	if len(cfg.Affiliate.Categories) == 0 {
		cfg.Affiliate.Categories = map[string]string{
			"health":     "health-and-fitness",
			"fitness":    "health-and-fitness",
			"nutrition":  "health-and-fitness",
			"finance":    "business-and-investing",
			"investing":  "business-and-investing",
			"technology": "computers-and-internet",
			"tech":       "computers-and-internet",
		}
	}
	if cfg.Twitter.MinPostInterval == "" {
		cfg.Twitter.MinPostInterval = "15m"
	}
	if cfg.Scheduler.CycleInterval == "" {
		cfg.Scheduler.CycleInterval = "2h"
	}
	if cfg.Scheduler.OptimizeInterval == "" {
		cfg.Scheduler.OptimizeInterval = "168h"
	}

	return cfg, nil
}
