package claim

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultTimezone     = "America/New_York"
	DefaultReplyText    = "I'm free, I can take over!"
	DefaultEventTitle   = "TA Office Hours (Covered)"

	// MaxPollInterval bounds the delay between two cycles.
	MaxPollInterval = 10 * time.Minute
)

// Config holds the watcher settings.
type Config struct {
	// PollInterval is the delay between the start of two cycles (default: 10s)
	PollInterval time.Duration

	// Timezone is the IANA zone intervals are read in (default: America/New_York)
	Timezone string

	// ReplyText is sent to the chat when a slot is claimed
	ReplyText string

	// EventTitle is the summary of the calendar entry created for a claim
	EventTitle string

	// MaxCycles stops the run after this many cycles. 0 means no limit.
	MaxCycles int
}

// DefaultConfig returns a Config populated from SHIFTCLAIM_* environment variables.
func DefaultConfig() Config {
	return Config{
		PollInterval: getEnvDurationOrDefault("SHIFTCLAIM_POLL_INTERVAL", DefaultPollInterval),
		Timezone:     getEnvOrDefault("SHIFTCLAIM_TIMEZONE", DefaultTimezone),
		ReplyText:    getEnvOrDefault("SHIFTCLAIM_REPLY_TEXT", DefaultReplyText),
		EventTitle:   getEnvOrDefault("SHIFTCLAIM_EVENT_TITLE", DefaultEventTitle),
		MaxCycles:    getEnvIntOrDefault("SHIFTCLAIM_MAX_CYCLES", 0),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 || c.PollInterval > MaxPollInterval {
		return fmt.Errorf("poll interval must be in (0, %s], got %s", MaxPollInterval, c.PollInterval)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil || c.Timezone == "" {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.ReplyText == "" {
		return fmt.Errorf("reply text must not be empty")
	}
	if c.EventTitle == "" {
		return fmt.Errorf("event title must not be empty")
	}
	if c.MaxCycles < 0 {
		return fmt.Errorf("max cycles must not be negative, got %d", c.MaxCycles)
	}
	return nil
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
