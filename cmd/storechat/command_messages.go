package main

import (
	"encoding/json"
	"flag"
	"io"

	"storechat/internal/types"
)

type MessagesCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig configLoader
	newClient  clientFactory
}

func NewMessagesCommand(stdout, stderr io.Writer, loadConfig configLoader, newClient clientFactory) *MessagesCommand {
	return &MessagesCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
		newClient:  newClient,
	}
}

func (c *MessagesCommand) Run(args []string) error {
	fs := flag.NewFlagSet("messages", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	all := fs.Bool("all", false, "include closed messages")
	jsonOut := fs.Bool("json", false, "print json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	backend, err := c.newClient(cfg, nil)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(cfg)
	defer cancel()
	messages, err := backend.FetchMessages(ctx)
	if err != nil {
		return err
	}
	if !*all {
		open := messages[:0]
		for _, msg := range messages {
			if !msg.IsClosed() {
				open = append(open, msg)
			}
		}
		messages = open
	}
	if *jsonOut {
		if messages == nil {
			messages = []types.Message{}
		}
		return json.NewEncoder(c.stdout).Encode(messages)
	}
	printMessages(c.stdout, messages)
	return nil
}
