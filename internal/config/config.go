package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/studyhall/studyhall/internal/session"
)

// Config holds client settings. Auth is not managed here: the token is an
// opaque credential handed to the HTTP client, obtained out of band.
type Config struct {
	ServerURL    string
	Token        string
	DBPath       string
	PollInterval time.Duration
	Activities   map[string]session.Policy
}

// Policy returns the retry/validation policy for an activity type, falling
// back to a zero policy (backend-defined retries, no word bounds).
func (c *Config) Policy(activity string) session.Policy {
	if p, ok := c.Activities[activity]; ok {
		return p
	}
	return session.Policy{}
}

// Load reads configuration from an optional YAML file and STUDYHALL_* env
// vars. Flag values are applied by the command layer on top of this.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server_url", "http://localhost:8787")
	v.SetDefault("poll_interval", 30*time.Second)
	v.SetDefault("activities.vocab.max_attempts", 2)
	v.SetDefault("activities.conceptmap.max_attempts", 0)
	v.SetDefault("activities.debate.max_attempts", 0)
	v.SetDefault("activities.debate.min_words", 20)
	v.SetDefault("activities.debate.max_words", 300)

	v.SetEnvPrefix("STUDYHALL")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	} else {
		v.SetConfigName("studyhall")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "studyhall"))
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A missing file is fine; a malformed one is not.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		ServerURL:    v.GetString("server_url"),
		Token:        v.GetString("token"),
		DBPath:       v.GetString("db_path"),
		PollInterval: v.GetDuration("poll_interval"),
		Activities:   make(map[string]session.Policy),
	}

	for _, activity := range []string{"vocab", "conceptmap", "debate"} {
		prefix := "activities." + activity + "."
		cfg.Activities[activity] = session.Policy{
			MaxAttempts: v.GetInt(prefix + "max_attempts"),
			MinWords:    v.GetInt(prefix + "min_words"),
			MaxWords:    v.GetInt(prefix + "max_words"),
		}
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}

	return cfg, nil
}
