package client

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds client runtime settings
type Config struct {
	ServerURL    string
	StateDir     string
	PollInterval time.Duration
	Obfuscate    bool
}

// LoadDefaults populates c with defaults
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.StateDir = defaultStateDir()
	c.PollInterval = DefaultPollInterval
	c.Obfuscate = true
}

// LoadConfig applies defaults and then the command-line flags in args
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseFlags overlays cfg with:
//
//	-server string    base URL of the streamgate server
//	-state string     directory holding the session file
//	-interval int     session check interval in seconds
//	-obfuscate bool   obfuscate the stored session
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("streamgate", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "base URL of the streamgate server")
	fs.StringVar(&cfg.StateDir, "state", cfg.StateDir, "directory holding the session file")
	interval := fs.Int("interval", int(cfg.PollInterval.Seconds()), "session check interval (in seconds)")
	fs.BoolVar(&cfg.Obfuscate, "obfuscate", cfg.Obfuscate, "obfuscate the stored session")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return fmt.Errorf("interval must be positive, got %d", *interval)
	}
	cfg.PollInterval = time.Duration(*interval) * time.Second
	return nil
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".streamgate"
	}
	return filepath.Join(dir, "streamgate")
}
