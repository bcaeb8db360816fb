package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	HistoryLimit      int           `mapstructure:"history_limit" yaml:"history_limit"`
	MessageRateLimit  int           `mapstructure:"message_rate_limit" yaml:"message_rate_limit"`

	Rooms RoomConfig `mapstructure:"rooms" yaml:"rooms"`
}

// RoomConfig tunes room membership limits, moderation and the activity sweep.
type RoomConfig struct {
	// MaxMembers is the hard cap on a room's member count.
	MaxMembers int `mapstructure:"max_members" yaml:"max_members"`
	// MinMembers is the population below which a room counts as low-activity.
	MinMembers int `mapstructure:"min_members" yaml:"min_members"`
	// BanThreshold is the global report count that triggers an automatic ban.
	BanThreshold int `mapstructure:"ban_threshold" yaml:"ban_threshold"`
	// WarningDelay is how long a low-activity room may idle before it is warned.
	WarningDelay time.Duration `mapstructure:"warning_delay" yaml:"warning_delay"`
	// CleanupDelay is how long a low-activity room may idle before it is closed.
	CleanupDelay time.Duration `mapstructure:"cleanup_delay" yaml:"cleanup_delay"`
	// SweepInterval is how often the activity monitor re-evaluates rooms.
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "salon.db",
		LogLevel:          "info",
		HistoryLimit:      50,
		MessageRateLimit:  120, // inbound frames per connection per minute

		Rooms: RoomConfig{
			MaxMembers:    100,
			MinMembers:    5,
			BanThreshold:  3,
			WarningDelay:  9 * time.Minute,
			CleanupDelay:  10 * time.Minute,
			SweepInterval: 30 * time.Second,
		},
	}
}
