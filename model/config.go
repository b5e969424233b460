package model

import "time"

// ModerationConfig holds the automod and moderation command settings.
// It is loaded once at startup and never mutated afterwards.
type ModerationConfig struct {
	MaxLookbackHours     int           `mapstructure:"max_hours"`
	DefaultLookbackHours int           `mapstructure:"default_hours"`
	DefaultTimeoutHours  int           `mapstructure:"default_timeout_hours"`
	TimeoutCapHours      int           `mapstructure:"timeout_cap_hours"`
	TimeoutRemoveRoleID  string        `mapstructure:"timeout_remove_roleid"`
	QuarantineRoleID     string        `mapstructure:"quarantine_roleid"`
	NotifyChannelID      string        `mapstructure:"notify_channelid"`
	QuarantineChannelID  string        `mapstructure:"quarantine_channelid"`
	NotifyUserID         string        `mapstructure:"notify_user_id"`
	ForbiddenRegexes     []string      `mapstructure:"forbidden_regexes"`
	FetchLimit           int           `mapstructure:"fetch_limit"`
	DeleteDelay          time.Duration `mapstructure:"delete_delay"`
	FooterText           string        `mapstructure:"footer_text"`
}

// Config 存储应用程序的配置
type Config struct {
	BotToken   string
	Moderation ModerationConfig
}

// IsSet reports whether a snowflake id from the config points at something.
// Unset ids are written as 0 in the YAML file.
func IsSet(id string) bool {
	return id != "" && id != "0"
}
