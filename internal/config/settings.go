package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultBaseURL        = "http://localhost:5000/api"
	defaultAPITimeout     = 10 * time.Second
	defaultPollTick       = 2 * time.Second
	defaultActiveWindow   = time.Minute
	defaultIdleInterval   = 10 * time.Second
	defaultBotReplyDelay  = 500 * time.Millisecond
	defaultOrderFormDelay = 500 * time.Millisecond
	defaultAgentTalking   = 2 * time.Second
	defaultGoodbyeMode    = GoodbyeModeSubstring
	defaultMinCoverage    = 0.5
)

const (
	GoodbyeModeSubstring = "substring"
	GoodbyeModeStrict    = "strict"
)

const (
	EnvAPIURL   = "STORECHAT_API_URL"
	EnvToken    = "STORECHAT_TOKEN"
	EnvLogLevel = "STORECHAT_LOG_LEVEL"
)

type Config struct {
	API     APIConfig     `toml:"api"`
	Polling PollingConfig `toml:"polling"`
	Chat    ChatConfig    `toml:"chat"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`
}

type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

type PollingConfig struct {
	Tick         string `toml:"tick"`
	ActiveWindow string `toml:"active_window"`
	IdleInterval string `toml:"idle_interval"`
}

type ChatConfig struct {
	GoodbyeMode        string   `toml:"goodbye_mode"`
	GoodbyeKeywords    []string `toml:"goodbye_keywords"`
	GoodbyeMinCoverage float64  `toml:"goodbye_min_coverage"`
	BotReplyDelay      string   `toml:"bot_reply_delay"`
	OrderFormDelay     string   `toml:"order_form_delay"`
	AgentTalking       string   `toml:"agent_talking"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type UIConfig struct {
	Markdown *bool `toml:"markdown"`
}

func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: defaultBaseURL,
			Timeout: defaultAPITimeout.String(),
		},
		Polling: PollingConfig{
			Tick:         defaultPollTick.String(),
			ActiveWindow: defaultActiveWindow.String(),
			IdleInterval: defaultIdleInterval.String(),
		},
		Chat: ChatConfig{
			GoodbyeMode:        defaultGoodbyeMode,
			GoodbyeMinCoverage: defaultMinCoverage,
			BotReplyDelay:      defaultBotReplyDelay.String(),
			OrderFormDelay:     defaultOrderFormDelay.String(),
			AgentTalking:       defaultAgentTalking.String(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads config.toml, then .env files in the working directory and the
// data dir, then the process environment. Later sources win.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		return Config{}, err
	}
	envPath, err := dataFile(".env")
	if err != nil {
		return Config{}, err
	}
	if err := LoadEnvFiles(".env", envPath); err != nil {
		return Config{}, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

func LoadFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFiles loads each existing dotenv file without overriding variables
// already present in the environment.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		c.API.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Logging.Level = strings.TrimSpace(v)
	}
}

func (c Config) BaseURL() string {
	url := strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if url == "" {
		return defaultBaseURL
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return url
}

func (c Config) APITimeout() time.Duration {
	return parseDuration(c.API.Timeout, defaultAPITimeout)
}

func (c Config) PollTick() time.Duration {
	return parseDuration(c.Polling.Tick, defaultPollTick)
}

func (c Config) PollActiveWindow() time.Duration {
	return parseDuration(c.Polling.ActiveWindow, defaultActiveWindow)
}

func (c Config) PollIdleInterval() time.Duration {
	idle := parseDuration(c.Polling.IdleInterval, defaultIdleInterval)
	if tick := c.PollTick(); idle < tick {
		return tick
	}
	return idle
}

func (c Config) GoodbyeMode() string {
	switch strings.ToLower(strings.TrimSpace(c.Chat.GoodbyeMode)) {
	case GoodbyeModeStrict:
		return GoodbyeModeStrict
	default:
		return GoodbyeModeSubstring
	}
}

// GoodbyeKeywords returns the configured keywords, or nil to use the
// built-in set.
func (c Config) GoodbyeKeywords() []string {
	return normalizedList(c.Chat.GoodbyeKeywords)
}

func (c Config) GoodbyeMinCoverage() float64 {
	v := c.Chat.GoodbyeMinCoverage
	if v <= 0 || v > 1 {
		return defaultMinCoverage
	}
	return v
}

func (c Config) BotReplyDelay() time.Duration {
	return parseDuration(c.Chat.BotReplyDelay, defaultBotReplyDelay)
}

func (c Config) OrderFormDelay() time.Duration {
	return parseDuration(c.Chat.OrderFormDelay, defaultOrderFormDelay)
}

func (c Config) AgentTalkingDuration() time.Duration {
	return parseDuration(c.Chat.AgentTalking, defaultAgentTalking)
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) MarkdownEnabled() bool {
	if c.UI.Markdown == nil {
		return true
	}
	return *c.UI.Markdown
}

// Encode renders the config as TOML for `storechat config`.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func normalizedList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, raw := range values {
		value := strings.ToLower(strings.TrimSpace(raw))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
