package main

import (
	"context"
	"strings"

	"storechat/internal/client"
	"storechat/internal/config"
	"storechat/internal/logging"
	"storechat/internal/store"
	"storechat/internal/support"
	"storechat/internal/types"
)

type clientFactory func(cfg config.Config, logger logging.Logger) (commandClient, error)

type commandClient interface {
	support.Backend
	Credential() (types.Credential, error)
}

type tokenStore interface {
	Credential() (types.Credential, error)
	Save(cred types.Credential) error
	Clear() error
}

type tokenFactory func() (tokenStore, error)

func defaultTokens() (tokenStore, error) {
	return client.DefaultTokenFile()
}

func newStoreClient(cfg config.Config, logger logging.Logger) (commandClient, error) {
	tokens, err := client.DefaultTokenFile()
	if err != nil {
		return nil, err
	}
	opts := []client.Option{client.WithTimeout(cfg.APITimeout())}
	if logger != nil {
		opts = append(opts, client.WithLogger(logger))
	}
	return client.New(cfg.BaseURL(), client.EnvCredential{Fallback: tokens}, opts...), nil
}

func newGoodbyeDetector(cfg config.Config) *support.GoodbyeDetector {
	mode := support.GoodbyeSubstring
	if strings.EqualFold(cfg.GoodbyeMode(), config.GoodbyeModeStrict) {
		mode = support.GoodbyeStrict
	}
	return support.NewGoodbyeDetector(support.GoodbyeOptions{
		Mode:        mode,
		Keywords:    cfg.GoodbyeKeywords(),
		MinCoverage: cfg.GoodbyeMinCoverage(),
	})
}

// newWidget builds the chat widget from the effective configuration. A nil
// transcripts store disables archiving.
func newWidget(cfg config.Config, cred types.Credential, transcripts store.TranscriptStore, logger logging.Logger) *support.Widget {
	opts := support.Options{
		Policy: support.PollPolicy{
			Tick:         cfg.PollTick(),
			ActiveWindow: cfg.PollActiveWindow(),
			IdleInterval: cfg.PollIdleInterval(),
		},
		Goodbye:    newGoodbyeDetector(cfg),
		TalkingFor: cfg.AgentTalkingDuration(),
		FormDelay:  cfg.OrderFormDelay(),
		ReplyDelay: cfg.BotReplyDelay(),
		Logger:     logger,
		Credential: cred,
	}
	if transcripts != nil {
		opts.Transcripts = store.NewTranscriptSink(transcripts)
	}
	return support.NewWidget(opts)
}

func withTimeout(cfg config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cfg.APITimeout())
}
