// Package config provides configuration management using viper.
// It supports loading from YAML files, a .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	GroupMe     GroupMeConfig     `mapstructure:"groupme"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Admin       AdminConfig       `mapstructure:"admin"`
	Roster      RosterConfig      `mapstructure:"roster"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Rating      RatingConfig      `mapstructure:"rating"`
	Grammar     GrammarConfig     `mapstructure:"grammar"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Digest      DigestConfig      `mapstructure:"digest"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig holds the webhook listener configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// GroupMeConfig holds GroupMe bot API configuration.
type GroupMeConfig struct {
	BotID        string        `mapstructure:"bot_id"`
	GroupID      string        `mapstructure:"group_id"`
	AccessToken  string        `mapstructure:"access_token"`
	APIBase      string        `mapstructure:"api_base"`
	BotName      string        `mapstructure:"bot_name"`
	HistoryLimit int           `mapstructure:"history_limit"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds the GroupMe user ids allowed to run admin commands.
type AdminConfig struct {
	IDs []string `mapstructure:"ids"`
}

// RosterConfig holds the static id%name table.
type RosterConfig struct {
	IDs string `mapstructure:"ids"`
}

// ScoringConfig holds match acceptance rules.
type ScoringConfig struct {
	MinWinningScore int `mapstructure:"min_winning_score"`
	WinBy           int `mapstructure:"win_by"`
	MercyThreshold  int `mapstructure:"mercy_threshold"`
}

// RatingConfig holds rating engine constants.
type RatingConfig struct {
	K             float64      `mapstructure:"k"`
	Default       float64      `mapstructure:"default"`
	MaturityGames int          `mapstructure:"maturity_games"`
	BotchPenalty  float64      `mapstructure:"botch_penalty"`
	Seed          []SeedRating `mapstructure:"seed"`
}

// SeedRating is a starting rating for one player used by replay. It is a list
// entry rather than a map key because viper lower-cases map keys.
type SeedRating struct {
	Name   string  `mapstructure:"name"`
	Rating float64 `mapstructure:"rating"`
}

// Seeds returns the seed ratings keyed by player name.
func (r *RatingConfig) Seeds() map[string]float64 {
	out := make(map[string]float64, len(r.Seed))
	for _, s := range r.Seed {
		out[s.Name] = s.Rating
	}
	return out
}

// GrammarConfig holds the command keywords and accepted mention counts.
type GrammarConfig struct {
	ScoreKeyword  string `mapstructure:"score_keyword"`
	AddKeyword    string `mapstructure:"add_keyword"`
	MentionCounts []int  `mapstructure:"mention_counts"`
}

// LeaderboardConfig holds leaderboard and history display settings.
type LeaderboardConfig struct {
	MinGames int `mapstructure:"min_games"`
	Display  int `mapstructure:"display"`
	History  int `mapstructure:"history"`
}

// DigestConfig holds the scheduled leaderboard post.
type DigestConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DSN returns the PostgreSQL connection string. A configured URL wins.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// legacyEnv maps config keys to the environment names older deployments used.
var legacyEnv = map[string][]string{
	"groupme.bot_id":       {"GROUPME_BOT_ID", "BOT_ID"},
	"groupme.group_id":     {"GROUPME_GROUP_ID"},
	"groupme.access_token": {"GROUPME_ACCESS_TOKEN", "ACCESS_TOKEN"},
	"roster.ids":           {"ROSTER_IDS", "IDS"},
	"admin.ids":            {"ADMIN_IDS", "ADMIN"},
	"database.url":         {"DATABASE_URL"},
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory. A .env file in the
// working directory is loaded into the environment first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using environment variables")
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase
	// e.g., GROUPME_BOT_ID, DATABASE_HOST, SCORING_WIN_BY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	// Read config file (optional - env vars can provide all config)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(":"),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// GroupMe defaults
	v.SetDefault("groupme.bot_id", "")
	v.SetDefault("groupme.group_id", "")
	v.SetDefault("groupme.access_token", "")
	v.SetDefault("groupme.api_base", "https://api.groupme.com/v3")
	v.SetDefault("groupme.bot_name", "scorebot")
	v.SetDefault("groupme.history_limit", 10)
	v.SetDefault("groupme.timeout", "10s")

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "scorebot")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "scorebot")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("admin.ids", []string{})
	v.SetDefault("roster.ids", "")

	// House rules
	v.SetDefault("scoring.min_winning_score", 7)
	v.SetDefault("scoring.win_by", 2)
	v.SetDefault("scoring.mercy_threshold", 4)

	// Rating defaults
	v.SetDefault("rating.k", 32)
	v.SetDefault("rating.default", 1000)
	v.SetDefault("rating.maturity_games", 20)
	v.SetDefault("rating.botch_penalty", 10)
	v.SetDefault("rating.seed", []SeedRating{})

	v.SetDefault("grammar.score_keyword", "score")
	v.SetDefault("grammar.add_keyword", "add")
	v.SetDefault("grammar.mention_counts", []int{4, 3})

	v.SetDefault("leaderboard.min_games", 0)
	v.SetDefault("leaderboard.display", 10)
	v.SetDefault("leaderboard.history", 5)

	v.SetDefault("digest.enabled", false)
	v.SetDefault("digest.cron", "0 12 * * *")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}

// Validate checks the settings the bot cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.GroupMe.BotID == "" {
		errs = append(errs, errors.New("groupme.bot_id is required"))
	}
	if c.Scoring.MinWinningScore < 1 {
		errs = append(errs, errors.New("scoring.min_winning_score must be positive"))
	}
	if c.Scoring.WinBy < 1 {
		errs = append(errs, errors.New("scoring.win_by must be positive"))
	}
	if c.Rating.K <= 0 {
		errs = append(errs, errors.New("rating.k must be positive"))
	}
	if len(c.Grammar.MentionCounts) == 0 {
		errs = append(errs, errors.New("grammar.mention_counts must not be empty"))
	}
	if c.Leaderboard.Display < 1 {
		errs = append(errs, errors.New("leaderboard.display must be positive"))
	}
	return errors.Join(errs...)
}

// IsAdmin checks if a GroupMe user id is in the admin list.
func (c *Config) IsAdmin(userID string) bool {
	return userID != "" && slices.Contains(c.Admin.IDs, userID)
}
