package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"storechat/internal/client"
	"storechat/internal/support"
)

type SendCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig configLoader
	newClient  clientFactory
}

func NewSendCommand(stdout, stderr io.Writer, loadConfig configLoader, newClient clientFactory) *SendCommand {
	return &SendCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
		newClient:  newClient,
	}
}

func (c *SendCommand) Run(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	orderID := fs.Int64("order-id", 0, "attach the message to an order")
	skipTelegram := fs.Bool("skip-telegram", false, "do not notify support staff (implied for bot-handled openers)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return errors.New("send requires a message")
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	backend, err := c.newClient(cfg, nil)
	if err != nil {
		return err
	}
	req := client.SendMessageRequest{
		Message:      text,
		SkipTelegram: *skipTelegram || support.SkipTelegram(text),
	}
	if *orderID > 0 {
		id := *orderID
		req.OrderID = &id
	}
	ctx, cancel := withTimeout(cfg)
	defer cancel()
	resp, err := backend.SendMessage(ctx, req)
	if err != nil {
		return err
	}
	if resp != nil && resp.Message != nil && resp.Message.ID > 0 {
		fmt.Fprintf(c.stdout, "sent message %d\n", resp.Message.ID)
		return nil
	}
	fmt.Fprintln(c.stdout, "sent")
	return nil
}
