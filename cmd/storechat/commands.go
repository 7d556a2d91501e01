package main

import (
	"io"
	"os"

	"storechat/internal/app"
	"storechat/internal/config"
	"storechat/internal/store"
)

type commandRunner interface {
	Run(args []string) error
}

type configLoader func() (config.Config, error)

// storeFactory opens the local transcript store. Read-only opens fail when
// the file does not exist yet.
type storeFactory func(readOnly bool) (store.Repository, error)

type commandWiring struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig configLoader
	newClient  clientFactory
	openStore  storeFactory
	tokens     tokenFactory
	runUI      func(app.Options) error
	version    string
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: config.Load,
		newClient:  newStoreClient,
		openStore:  openLocalStore,
		tokens:     defaultTokens,
		runUI:      app.Run,
		version:    buildVersion(),
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"chat":        NewChatCommand(wiring.stderr, wiring.loadConfig, wiring.newClient, wiring.openStore, wiring.runUI),
		"watch":       NewWatchCommand(wiring.stdout, wiring.stderr, wiring.loadConfig, wiring.newClient, wiring.openStore),
		"messages":    NewMessagesCommand(wiring.stdout, wiring.stderr, wiring.loadConfig, wiring.newClient),
		"send":        NewSendCommand(wiring.stdout, wiring.stderr, wiring.loadConfig, wiring.newClient),
		"close":       NewCloseCommand(wiring.stdout, wiring.stderr, wiring.loadConfig, wiring.newClient, wiring.openStore),
		"orders":      NewOrdersCommand(wiring.stdout, wiring.stderr, wiring.loadConfig, wiring.newClient),
		"transcripts": NewTranscriptsCommand(wiring.stdout, wiring.stderr, wiring.openStore),
		"login":       NewLoginCommand(wiring.stdout, wiring.stderr, wiring.tokens),
		"logout":      NewLogoutCommand(wiring.stdout, wiring.stderr, wiring.tokens),
		"config":      NewConfigCommand(wiring.stdout, wiring.stderr, wiring.loadConfig),
		"version":     NewVersionCommand(wiring.stdout, wiring.version),
	}
}

func openLocalStore(readOnly bool) (store.Repository, error) {
	path, err := config.DBPath()
	if err != nil {
		return nil, err
	}
	if readOnly {
		return store.OpenReadOnly(path)
	}
	return store.NewBboltRepository(path)
}
