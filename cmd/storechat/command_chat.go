package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"storechat/internal/app"
	"storechat/internal/config"
	"storechat/internal/logging"
	"storechat/internal/store"
)

type ChatCommand struct {
	stderr     io.Writer
	loadConfig configLoader
	newClient  clientFactory
	openStore  storeFactory
	runUI      func(app.Options) error
	openLog    func(level string) (logging.Logger, io.Closer, error)
}

func NewChatCommand(stderr io.Writer, loadConfig configLoader, newClient clientFactory, openStore storeFactory, runUI func(app.Options) error) *ChatCommand {
	return &ChatCommand{
		stderr:     stderr,
		loadConfig: loadConfig,
		newClient:  newClient,
		openStore:  openStore,
		runUI:      runUI,
		openLog:    openUILog,
	}
}

func (c *ChatCommand) Run(args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	noMarkdown := fs.Bool("no-markdown", false, "render messages as plain text")
	logLevel := fs.String("log-level", "", "ui log level (debug|info|warn|error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	level := strings.TrimSpace(*logLevel)
	if level == "" {
		level = cfg.LogLevel()
	}
	logger := logging.Nop()
	if c.openLog != nil {
		fileLogger, closer, err := c.openLog(level)
		if err != nil {
			fmt.Fprintf(c.stderr, "ui log disabled: %v\n", err)
		} else {
			logger = fileLogger
			defer closer.Close()
		}
	}

	backend, err := c.newClient(cfg, logger.With(logging.F("component", "client")))
	if err != nil {
		return err
	}
	cred, err := backend.Credential()
	if err != nil {
		return err
	}

	repo, err := c.openStore(false)
	if err != nil {
		if errors.Is(err, store.ErrLocked) {
			return errors.New("another chat session is already running")
		}
		return err
	}
	defer repo.Close()

	widget := newWidget(cfg, cred, repo.Transcripts(), logger.With(logging.F("component", "widget")))
	return c.runUI(app.Options{
		Widget:   widget,
		Backend:  backend,
		AppState: repo.AppState(),
		Logger:   logger,
		Timeout:  cfg.APITimeout(),
		Markdown: cfg.MarkdownEnabled() && !*noMarkdown,
	})
}

func openUILog(level string) (logging.Logger, io.Closer, error) {
	path, err := config.UILogPath()
	if err != nil {
		return nil, nil, err
	}
	return logging.OpenFile(path, logging.ParseLevel(level))
}
