// Package config loads the immutable run configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// DefaultURL is the Cumilla board HSC roll-only result page
const DefaultURL = "https://hscresult.comillaboard.gov.bd/h_rr25/index.php"

// Assist configures the optional LLM fallback
type Assist struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// Config holds every recognised option. Build it with Load and pass it by value.
type Config struct {
	URL            string        `yaml:"url"`
	RollsFile      string        `yaml:"rolls_file"`
	Output         string        `yaml:"output"`
	Headless       bool          `yaml:"headless"`
	LoadDelay      time.Duration `yaml:"load_delay"`
	SubmitDelay    time.Duration `yaml:"submit_delay"`
	BetweenDelay   time.Duration `yaml:"between_delay"`
	CaptureDir     string        `yaml:"capture_dir"`
	ChallengeScale float64       `yaml:"challenge_scale"`
	FailThreshold  int           `yaml:"fail_threshold"`
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	BrowserBin     string        `yaml:"browser_bin"`
	UserAgent      string        `yaml:"user_agent"`
	RespectRobots  bool          `yaml:"respect_robots"`
	Assist         Assist        `yaml:"assist"`
	Verbose        bool          `yaml:"verbose"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"url":             "url",
	"rolls":           "rolls_file",
	"output":          "output",
	"headless":        "headless",
	"load-delay":      "load_delay",
	"submit-delay":    "submit_delay",
	"between-delay":   "between_delay",
	"capture-dir":     "capture_dir",
	"challenge-scale": "challenge_scale",
	"fail-threshold":  "fail_threshold",
	"browser":         "browser_bin",
	"assist":          "assist.provider",
	"assist-model":    "assist.model",
	"no-robots":       "",
	"verbose":         "verbose",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("url", DefaultURL)
	v.SetDefault("rolls_file", "rolls.txt")
	v.SetDefault("output", "results.xlsx")
	v.SetDefault("headless", false)
	v.SetDefault("load_delay", 1500*time.Millisecond)
	v.SetDefault("submit_delay", 2500*time.Millisecond)
	v.SetDefault("between_delay", time.Second)
	v.SetDefault("capture_dir", ".")
	v.SetDefault("challenge_scale", 3.0)
	v.SetDefault("fail_threshold", 500)
	v.SetDefault("width", 1200)
	v.SetDefault("height", 900)
	v.SetDefault("user_agent", "")
	v.SetDefault("respect_robots", true)
	v.SetDefault("assist.provider", "")
	v.SetDefault("assist.model", "")
	v.SetDefault("verbose", false)
}

// Default returns the configuration with nothing overridden
func Default() Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// Load layers flags over RESULTFETCH_* environment (including .env) over an
// optional YAML file over defaults. An explicit file that cannot be read is
// an error; the implicit ./resultfetch.yaml is optional.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RESULTFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("resultfetch")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || key == "" {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
		if f := flags.Lookup("no-robots"); f != nil && f.Changed {
			v.Set("respect_robots", false)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		URL:            v.GetString("url"),
		RollsFile:      v.GetString("rolls_file"),
		Output:         v.GetString("output"),
		Headless:       v.GetBool("headless"),
		LoadDelay:      v.GetDuration("load_delay"),
		SubmitDelay:    v.GetDuration("submit_delay"),
		BetweenDelay:   v.GetDuration("between_delay"),
		CaptureDir:     v.GetString("capture_dir"),
		ChallengeScale: v.GetFloat64("challenge_scale"),
		FailThreshold:  v.GetInt("fail_threshold"),
		Width:          v.GetInt("width"),
		Height:         v.GetInt("height"),
		BrowserBin:     v.GetString("browser_bin"),
		UserAgent:      v.GetString("user_agent"),
		RespectRobots:  v.GetBool("respect_robots"),
		Assist: Assist{
			Provider: strings.ToLower(v.GetString("assist.provider")),
			Model:    v.GetString("assist.model"),
		},
		Verbose: v.GetBool("verbose"),
	}
}

// Validate checks ranges and the target URL
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url %q must be an absolute http(s) URL", ErrInvalid, c.URL)
	}
	if c.LoadDelay < 0 || c.SubmitDelay < 0 || c.BetweenDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalid)
	}
	if c.FailThreshold <= 0 {
		return fmt.Errorf("%w: fail_threshold must be positive", ErrInvalid)
	}
	if c.ChallengeScale < 1 {
		return fmt.Errorf("%w: challenge_scale must be at least 1", ErrInvalid)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: viewport must be positive", ErrInvalid)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalid)
	}
	return nil
}

// MarshalYAML writes durations in their readable form ("1.5s") so the
// output of `config show` can be fed back in as a config file
func (c Config) MarshalYAML() (interface{}, error) {
	return struct {
		URL            string  `yaml:"url"`
		RollsFile      string  `yaml:"rolls_file"`
		Output         string  `yaml:"output"`
		Headless       bool    `yaml:"headless"`
		LoadDelay      string  `yaml:"load_delay"`
		SubmitDelay    string  `yaml:"submit_delay"`
		BetweenDelay   string  `yaml:"between_delay"`
		CaptureDir     string  `yaml:"capture_dir"`
		ChallengeScale float64 `yaml:"challenge_scale"`
		FailThreshold  int     `yaml:"fail_threshold"`
		Width          int     `yaml:"width"`
		Height         int     `yaml:"height"`
		BrowserBin     string  `yaml:"browser_bin"`
		UserAgent      string  `yaml:"user_agent"`
		RespectRobots  bool    `yaml:"respect_robots"`
		Assist         Assist  `yaml:"assist"`
		Verbose        bool    `yaml:"verbose"`
	}{
		URL:            c.URL,
		RollsFile:      c.RollsFile,
		Output:         c.Output,
		Headless:       c.Headless,
		LoadDelay:      c.LoadDelay.String(),
		SubmitDelay:    c.SubmitDelay.String(),
		BetweenDelay:   c.BetweenDelay.String(),
		CaptureDir:     c.CaptureDir,
		ChallengeScale: c.ChallengeScale,
		FailThreshold:  c.FailThreshold,
		Width:          c.Width,
		Height:         c.Height,
		BrowserBin:     c.BrowserBin,
		UserAgent:      c.UserAgent,
		RespectRobots:  c.RespectRobots,
		Assist:         c.Assist,
		Verbose:        c.Verbose,
	}, nil
}
