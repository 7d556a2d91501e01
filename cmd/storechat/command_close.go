package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storechat/internal/logging"
	"storechat/internal/store"
	"storechat/internal/support"
)

type CloseCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig configLoader
	newClient  clientFactory
	openStore  storeFactory
}

func NewCloseCommand(stdout, stderr io.Writer, loadConfig configLoader, newClient clientFactory, openStore storeFactory) *CloseCommand {
	return &CloseCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
		newClient:  newClient,
		openStore:  openStore,
	}
}

func (c *CloseCommand) Run(args []string) error {
	fs := flag.NewFlagSet("close", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	conversation := fs.Bool("conversation", false, "end the current conversation, or clear one support already ended")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *conversation {
		if fs.NArg() > 0 {
			return errors.New("close --conversation takes no message ids")
		}
		return c.closeConversation()
	}
	if fs.NArg() < 1 {
		return errors.New("close requires at least one message id")
	}
	ids := make([]int64, 0, fs.NArg())
	for _, raw := range fs.Args() {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid message id %q", raw)
		}
		ids = append(ids, id)
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
	failed, err := support.CloseAll(ctx, backend, ids)
	fmt.Fprintf(c.stdout, "closed %d of %d\n", len(ids)-len(failed), len(ids))
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", joinIDs(failed), err)
	}
	return nil
}

// closeConversation loads the conversation the way the widget sees it and
// runs end chat, or start new when support already said goodbye.
func (c *CloseCommand) closeConversation() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(c.stderr, logging.ParseLevel(cfg.LogLevel()))
	backend, err := c.newClient(cfg, logger)
	if err != nil {
		return err
	}
	cred, err := backend.Credential()
	if err != nil {
		return err
	}
	if !cred.CanChat() {
		return errSignedOut
	}

	var transcripts store.TranscriptStore
	if c.openStore != nil {
		repo, err := c.openStore(false)
		if err != nil {
			logger.Warn("transcript_store_unavailable", logging.Err(err))
		} else {
			defer repo.Close()
			transcripts = repo.Transcripts()
		}
	}

	widget := newWidget(cfg, cred, transcripts, logger)
	widget.Open()
	driver := support.NewDriver(widget, backend)

	ctx, cancel := withTimeout(cfg)
	defer cancel()
	if outcome, _ := driver.Refresh(ctx); outcome.Err != nil {
		return outcome.Err
	}

	var outcome support.CloseOutcome
	if widget.View().CanStartNew {
		outcome, err = driver.StartNew(ctx)
	} else {
		outcome, err = driver.EndChat(ctx)
	}
	if errors.Is(err, support.ErrNoFlow) {
		fmt.Fprintln(c.stdout, "no active conversation")
		return nil
	}
	if err != nil {
		return err
	}
	if outcome.Kind == support.CloseStartNew {
		fmt.Fprintln(c.stdout, "cleared ended conversation")
	} else {
		fmt.Fprintln(c.stdout, "conversation ended")
	}
	if len(outcome.Failed) > 0 {
		return fmt.Errorf("failed to close %s", joinIDs(outcome.Failed))
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ", ")
}
