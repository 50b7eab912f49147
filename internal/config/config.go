// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/temidaradev/coinboard/internal/coinlore"
)

const envPrefix = "COINBOARD"

// Config holds the application configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Log    LogConfig    `mapstructure:"log"`
	Window WindowConfig `mapstructure:"window"`
	Web    WebConfig    `mapstructure:"web"`
}

// APIConfig describes the one ticker page fetched at startup.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Start     int           `mapstructure:"start"`
	Limit     int           `mapstructure:"limit"`
	Timeout   time.Duration `mapstructure:"timeout"` // 0 = http.Client default
	UserAgent string        `mapstructure:"user_agent"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"` // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"`
}

type WindowConfig struct {
	Width    int     `mapstructure:"width"`
	Height   int     `mapstructure:"height"`
	Title    string  `mapstructure:"title"`
	FontSize float64 `mapstructure:"font_size"`
}

// WebConfig switches the app to the headless HTTP view.
type WebConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Listen       string   `mapstructure:"listen"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", coinlore.DefaultBaseURL)
	v.SetDefault("api.start", coinlore.DefaultStart)
	v.SetDefault("api.limit", coinlore.DefaultLimit)
	v.SetDefault("api.timeout", time.Duration(0))
	v.SetDefault("api.user_agent", "coinboard/1.0")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	v.SetDefault("window.width", 480)
	v.SetDefault("window.height", 800)
	v.SetDefault("window.title", "Crypto Dashboard")
	v.SetDefault("window.font_size", 12.0)

	v.SetDefault("web.enabled", false)
	v.SetDefault("web.listen", ":8080")
	v.SetDefault("web.allow_origins", []string{"http://localhost:3000"})
}

// Flags declares the command line flags Load understands.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "path to a config file (yaml, json or toml)")
	fs.String("env-file", ".env", "dotenv file loaded before reading the environment")
	fs.String("api.base_url", coinlore.DefaultBaseURL, "CoinLore API base url")
	fs.Int("api.start", coinlore.DefaultStart, "index of the first ticker to fetch")
	fs.Int("api.limit", coinlore.DefaultLimit, "number of tickers to fetch")
	fs.String("log.level", "info", "log level: debug, info, warn, error")
	fs.Bool("web.enabled", false, "serve the dashboard over HTTP instead of opening a window")
	fs.String("web.listen", ":8080", "listen address of the HTTP view")
	return fs
}

// Load resolves the configuration from flags, environment, an optional config
// file and defaults, in that order of precedence. fs must come from Flags and
// be parsed already; nil means no flags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	envFile := ".env"
	configPath := ""
	if fs != nil {
		envFile, _ = fs.GetString("env-file")
		configPath, _ = fs.GetString("config")
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		configPath = os.Getenv(envPrefix + "_CONFIG")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if !strings.Contains(f.Name, ".") || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(f.Name, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the fetch and the window depend on.
func (c *Config) Validate() error {
	var errs []error

	if c.API.Start < 0 {
		errs = append(errs, fmt.Errorf("api.start must be >= 0, got %d", c.API.Start))
	}
	if c.API.Limit <= 0 {
		errs = append(errs, fmt.Errorf("api.limit must be > 0, got %d", c.API.Limit))
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute url", c.API.BaseURL))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if !c.Web.Enabled {
		if c.Window.Width <= 0 || c.Window.Height <= 0 {
			errs = append(errs, fmt.Errorf("window size %dx%d is not positive", c.Window.Width, c.Window.Height))
		}
		if c.Window.FontSize <= 0 {
			errs = append(errs, fmt.Errorf("window.font_size must be > 0"))
		}
	} else if c.Web.Listen == "" {
		errs = append(errs, fmt.Errorf("web.listen is empty"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
