package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"discord-automod/enforcement"
	"discord-automod/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes environment overrides of config.yaml keys, e.g.
// AUTOMOD_MODDELMSG_MAX_HOURS.
const EnvPrefix = "AUTOMOD"

const section = "moddelmsg"

var ErrMissingToken = errors.New("BOT_TOKEN environment variable not set")

// file mirrors the layout of config.yaml.
type file struct {
	Moderation model.ModerationConfig `mapstructure:"moddelmsg"`
}

// Load reads the bot token from the environment (optionally seeded from
// envFile) and the moderation settings from configPath.
func Load(envFile, configPath string) (*model.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			zap.L().Info(".env file not found, relying on environment variables", zap.String("path", envFile))
		}
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, ErrMissingToken
	}

	moderation, err := LoadModeration(configPath)
	if err != nil {
		return nil, err
	}

	return &model.Config{
		BotToken:   token,
		Moderation: *moderation,
	}, nil
}

// LoadModeration reads and validates the moddelmsg section of a YAML file.
// Keys missing from the file keep their defaults.
func LoadModeration(configPath string) (*model.ModerationConfig, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var f file
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg := &f.Moderation
	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"max_hours":             24,
		"default_hours":         1,
		"default_timeout_hours": 0,
		"timeout_cap_hours":     48,
		"timeout_remove_roleid": "",
		"quarantine_roleid":     "",
		"notify_channelid":      "",
		"quarantine_channelid":  "",
		"notify_user_id":        "",
		"forbidden_regexes":     []string{},
		"fetch_limit":           enforcement.DefaultFetchLimit,
		"delete_delay":          enforcement.DefaultDeleteDelay,
		"footer_text":           "Automod",
	}
	for key, value := range defaults {
		v.SetDefault(section+"."+key, value)
	}
}

// normalize validates cfg in place.
func normalize(cfg *model.ModerationConfig) error {
	if cfg.MaxLookbackHours < 0 {
		return fmt.Errorf("%s.max_hours must not be negative, got %d", section, cfg.MaxLookbackHours)
	}
	if cfg.TimeoutCapHours < 0 {
		return fmt.Errorf("%s.timeout_cap_hours must not be negative, got %d", section, cfg.TimeoutCapHours)
	}
	if cfg.FetchLimit < 1 || cfg.FetchLimit > enforcement.DefaultFetchLimit {
		return fmt.Errorf("%s.fetch_limit must be between 1 and %d, got %d",
			section, enforcement.DefaultFetchLimit, cfg.FetchLimit)
	}
	if cfg.DeleteDelay < 0 {
		return fmt.Errorf("%s.delete_delay must not be negative, got %s", section, cfg.DeleteDelay)
	}

	cfg.DefaultLookbackHours = enforcement.ClampHours(cfg.DefaultLookbackHours, cfg.MaxLookbackHours)
	cfg.DefaultTimeoutHours = enforcement.ClampHours(cfg.DefaultTimeoutHours,
		min(cfg.TimeoutCapHours, enforcement.MaxTimeoutHours))

	if _, err := enforcement.NewContentScanner(cfg.ForbiddenRegexes); err != nil {
		return fmt.Errorf("%s.forbidden_regexes: %w", section, err)
	}
	if len(cfg.ForbiddenRegexes) == 0 {
		zap.L().Warn("No forbidden patterns configured, automod will never match")
	}
	return nil
}

// DescribeDelay formats the pacing delay for status output.
func DescribeDelay(d time.Duration) string {
	if d == 0 {
		return "none"
	}
	return d.String()
}
