package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	SourcesFile    string `mapstructure:"sources_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	PoolPath      string `mapstructure:"pool_path"`
	LedgerPath    string `mapstructure:"ledger_path"`
	SelectionPath string `mapstructure:"selection_path"`

	CacheMaxAgeHours int64         `mapstructure:"cache_max_age_hours"`
	CacheMaxAge      time.Duration `mapstructure:"-"`

	RecentCategoryDays int    `mapstructure:"recent_category_days"`
	ResetRetentionDays int    `mapstructure:"reset_retention_days"`
	PrimarySource      string `mapstructure:"primary_source"`

	// Scoring weights; the defaults are tuning constants inherited from the
	// first deployment and are deliberately overridable rather than hard-coded.
	ScoreBase            float64 `mapstructure:"score_base"`
	ScoreCategoryPenalty float64 `mapstructure:"score_category_penalty"`
	ScoreDescriptionBump float64 `mapstructure:"score_description_bump"`
	ScoreSourceBonus     float64 `mapstructure:"score_source_bonus"`
	ScoreJitterRange     float64 `mapstructure:"score_jitter_range"`

	DetailCachePath       string        `mapstructure:"detail_cache_path"`
	DetailTTLSeconds      int64         `mapstructure:"detail_ttl_seconds"`
	DetailCleanupSeconds  int64         `mapstructure:"detail_cleanup_interval_seconds"`
	DetailTTL             time.Duration `mapstructure:"-"`
	DetailCleanupInterval time.Duration `mapstructure:"-"`
	DigestIntervalSeconds int64         `mapstructure:"digest_interval"`
	DigestInterval        time.Duration `mapstructure:"-"`

	OpenRouterAPIKey      string `mapstructure:"openrouter_api_key"`
	OpenRouterURL         string `mapstructure:"openrouter_url"`
	OpenRouterModel       string `mapstructure:"openrouter_model"`
	OpenRouterBackupModel string `mapstructure:"openrouter_backup_model"`
	ArticleAuthor         string `mapstructure:"article_author"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "skill-digest")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("pool_path", "./data/skill_cache.json")
	v.SetDefault("ledger_path", "./data/published_skills.json")
	v.SetDefault("selection_path", "./data/selected_skill.json")
	v.SetDefault("cache_max_age_hours", 24)
	v.SetDefault("recent_category_days", 7)
	v.SetDefault("reset_retention_days", 30)
	v.SetDefault("primary_source", "github-awesome")
	v.SetDefault("score_base", 100.0)
	v.SetDefault("score_category_penalty", 20.0)
	v.SetDefault("score_description_bump", 10.0)
	v.SetDefault("score_source_bonus", 5.0)
	v.SetDefault("score_jitter_range", 20.0)
	v.SetDefault("detail_cache_path", "./data/detail_cache.db")
	v.SetDefault("detail_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("detail_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("digest_interval", int64((24*time.Hour)/time.Second))
	v.SetDefault("openrouter_url", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("openrouter_model", "qwen/qwen-2.5-72b-instruct")
	v.SetDefault("openrouter_backup_model", "google/gemini-2.0-flash-001")
	v.SetDefault("article_author", "skill-digest")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CacheMaxAgeHours <= 0 {
		return nil, fmt.Errorf("invalid cache_max_age_hours (must be positive hours)")
	}
	cfg.CacheMaxAge = time.Duration(cfg.CacheMaxAgeHours) * time.Hour

	if cfg.RecentCategoryDays <= 0 {
		return nil, fmt.Errorf("invalid recent_category_days (must be positive days)")
	}
	if cfg.ResetRetentionDays <= 0 {
		return nil, fmt.Errorf("invalid reset_retention_days (must be positive days)")
	}
	if cfg.ScoreJitterRange < 0 {
		return nil, fmt.Errorf("invalid score_jitter_range (must be non-negative)")
	}

	if cfg.DetailTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid detail_ttl_seconds (must be positive seconds)")
	}
	if cfg.DetailCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid detail_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.DetailTTL = time.Duration(cfg.DetailTTLSeconds) * time.Second
	cfg.DetailCleanupInterval = time.Duration(cfg.DetailCleanupSeconds) * time.Second

	if cfg.DigestIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid digest_interval (must be positive seconds)")
	}
	cfg.DigestInterval = time.Duration(cfg.DigestIntervalSeconds) * time.Second

	return &cfg, nil
}
