package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Settings struct {
	APIBaseURL   string          `mapstructure:"api_base_url"`
	Language     string          `mapstructure:"language"`
	LocalesDir   string          `mapstructure:"locales_dir"`
	Profile      string          `mapstructure:"profile"`
	ProfilesPath string          `mapstructure:"profiles_path"`
	HTTP         HTTPSettings    `mapstructure:"http"`
	Session      SessionSettings `mapstructure:"session"`
	Server       ServerSettings  `mapstructure:"server"`
}

type HTTPSettings struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	BreakerFailures  uint32        `mapstructure:"breaker_failures"`
	BreakerOpenDelay time.Duration `mapstructure:"breaker_open_delay"`
}

type SessionSettings struct {
	TTL           time.Duration `mapstructure:"ttl"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	DBPath        string        `mapstructure:"db_path"`
}

type ServerSettings struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "http://127.0.0.1:8000")
	v.SetDefault("language", "en")
	v.SetDefault("locales_dir", "")
	v.SetDefault("profile", DefaultProfile)
	v.SetDefault("profiles_path", "")
	v.SetDefault("http.timeout", 60*time.Second)
	v.SetDefault("http.breaker_failures", 5)
	v.SetDefault("http.breaker_open_delay", 30*time.Second)
	v.SetDefault("session.ttl", 60*time.Minute)
	v.SetDefault("session.check_interval", time.Second)
	v.SetDefault("session.db_path", "ems-session.db")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// LoadSettings reads path (YAML) on top of the defaults. An empty path uses defaults
// and EMS_* environment variables only, e.g. EMS_HTTP_TIMEOUT=30s.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) validate() error {
	if s.APIBaseURL == "" {
		return fmt.Errorf("api_base_url must not be empty")
	}
	if s.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", s.HTTP.Timeout)
	}
	if s.Session.CheckInterval <= 0 {
		return fmt.Errorf("session.check_interval must be positive, got %s", s.Session.CheckInterval)
	}
	return nil
}
