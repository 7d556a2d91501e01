package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"

	"storechat/internal/config"
	"storechat/internal/support"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type ConfigCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig configLoader
}

type configOutput struct {
	ConfigPath string                 `json:"config_path,omitempty" toml:"config_path,omitempty"`
	API        effectiveAPIConfig     `json:"api" toml:"api"`
	Polling    effectivePollingConfig `json:"polling" toml:"polling"`
	Chat       effectiveChatConfig    `json:"chat" toml:"chat"`
	Logging    effectiveLoggingConfig `json:"logging" toml:"logging"`
	UI         effectiveUIConfig      `json:"ui" toml:"ui"`
}

type effectiveAPIConfig struct {
	BaseURL string `json:"base_url" toml:"base_url"`
	Timeout string `json:"timeout" toml:"timeout"`
}

type effectivePollingConfig struct {
	Tick         string `json:"tick" toml:"tick"`
	ActiveWindow string `json:"active_window" toml:"active_window"`
	IdleInterval string `json:"idle_interval" toml:"idle_interval"`
}

type effectiveChatConfig struct {
	GoodbyeMode        string   `json:"goodbye_mode" toml:"goodbye_mode"`
	GoodbyeKeywords    []string `json:"goodbye_keywords" toml:"goodbye_keywords"`
	GoodbyeMinCoverage float64  `json:"goodbye_min_coverage" toml:"goodbye_min_coverage"`
	BotReplyDelay      string   `json:"bot_reply_delay" toml:"bot_reply_delay"`
	OrderFormDelay     string   `json:"order_form_delay" toml:"order_form_delay"`
	AgentTalking       string   `json:"agent_talking" toml:"agent_talking"`
}

type effectiveLoggingConfig struct {
	Level string `json:"level" toml:"level"`
}

type effectiveUIConfig struct {
	Markdown bool `json:"markdown" toml:"markdown"`
}

func NewConfigCommand(stdout, stderr io.Writer, loadConfig configLoader) *ConfigCommand {
	return &ConfigCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default configuration values")
	format := fs.String("format", configFormatTOML, "output format (toml|json)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	outputFormat := strings.ToLower(strings.TrimSpace(*format))
	if outputFormat != configFormatJSON && outputFormat != configFormatTOML {
		return errors.New("format must be toml or json")
	}

	cfg := config.DefaultConfig()
	out := configOutput{}
	if !*defaults {
		loaded, err := c.loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		if path, err := config.ConfigPath(); err == nil {
			out.ConfigPath = path
		}
	}
	fillConfigOutput(&out, cfg)
	return writeConfigOutput(c.stdout, outputFormat, out)
}

func fillConfigOutput(out *configOutput, cfg config.Config) {
	keywords := cfg.GoodbyeKeywords()
	if len(keywords) == 0 {
		keywords = support.DefaultGoodbyeKeywords
	}
	out.API = effectiveAPIConfig{
		BaseURL: cfg.BaseURL(),
		Timeout: cfg.APITimeout().String(),
	}
	out.Polling = effectivePollingConfig{
		Tick:         cfg.PollTick().String(),
		ActiveWindow: cfg.PollActiveWindow().String(),
		IdleInterval: cfg.PollIdleInterval().String(),
	}
	out.Chat = effectiveChatConfig{
		GoodbyeMode:        cfg.GoodbyeMode(),
		GoodbyeKeywords:    keywords,
		GoodbyeMinCoverage: cfg.GoodbyeMinCoverage(),
		BotReplyDelay:      cfg.BotReplyDelay().String(),
		OrderFormDelay:     cfg.OrderFormDelay().String(),
		AgentTalking:       cfg.AgentTalkingDuration().String(),
	}
	out.Logging = effectiveLoggingConfig{Level: cfg.LogLevel()}
	out.UI = effectiveUIConfig{Markdown: cfg.MarkdownEnabled()}
}

func writeConfigOutput(w io.Writer, format string, value any) error {
	switch format {
	case configFormatJSON:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	default:
		data, err := toml.Marshal(value)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}
