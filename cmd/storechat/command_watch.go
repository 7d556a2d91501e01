package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storechat/internal/client"
	"storechat/internal/logging"
	"storechat/internal/store"
	"storechat/internal/support"
	"storechat/internal/types"
)

var errSignedOut = errors.New("support chat requires a signed-in customer account; run storechat login")

type WatchCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig configLoader
	newClient  clientFactory
	openStore  storeFactory
	ticker     support.TickerFunc
	notify     func() (context.Context, context.CancelFunc)
}

func NewWatchCommand(stdout, stderr io.Writer, loadConfig configLoader, newClient clientFactory, openStore storeFactory) *WatchCommand {
	return &WatchCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
		newClient:  newClient,
		openStore:  openStore,
		notify: func() (context.Context, context.CancelFunc) {
			return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		},
	}
}

func (c *WatchCommand) Run(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	once := fs.Bool("once", false, "fetch once and exit")
	jsonOut := fs.Bool("json", false, "emit events as json lines")
	noArchive := fs.Bool("no-archive", false, "do not save transcripts when a conversation ends")
	if err := fs.Parse(args); err != nil {
		return err
	}

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
	if !*noArchive && c.openStore != nil {
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
	printer := newEventPrinter(c.stdout, *jsonOut)

	if *once {
		ctx, cancel := withTimeout(cfg)
		defer cancel()
		outcome, _ := driver.Refresh(ctx)
		if outcome.Err != nil {
			return outcome.Err
		}
		return printer.print(widget.View(), outcome)
	}

	ctx, stop := c.notify()
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var runErr error
	poll := func(ctx context.Context, _ time.Time) {
		reqCtx, reqCancel := context.WithTimeout(ctx, cfg.APITimeout())
		defer reqCancel()
		outcome, ok := driver.Poll(reqCtx)
		if !ok {
			return
		}
		if outcome.Err != nil {
			if client.IsUnauthenticated(outcome.Err) {
				runErr = errSignedOut
				cancel()
				return
			}
			logger.Warn("poll_failed", logging.Err(outcome.Err))
			return
		}
		if err := printer.print(widget.View(), outcome); err != nil {
			runErr = err
			cancel()
			return
		}
		// Nothing more arrives once support ends the conversation.
		if outcome.Transcript != nil {
			logger.Info("watch_stopped", logging.F("reason", "session_ended"))
			cancel()
		}
	}
	opts := []support.SchedulerOption{support.WithSchedulerLogger(logger)}
	if c.ticker != nil {
		opts = append(opts, support.WithTicker(c.ticker))
	}
	scheduler := support.NewScheduler(widget.Policy().Tick, poll, opts...)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	scheduler.Stop()
	return runErr
}

type watchEvent struct {
	Type         string       `json:"type"`
	Entry        *types.Entry `json:"entry,omitempty"`
	TranscriptID string       `json:"transcript_id,omitempty"`
}

// eventPrinter writes each entry once, plus agent and session-end notices.
type eventPrinter struct {
	out  io.Writer
	json bool
	seen map[string]struct{}
}

func newEventPrinter(out io.Writer, jsonOut bool) *eventPrinter {
	return &eventPrinter{out: out, json: jsonOut, seen: map[string]struct{}{}}
}

func (p *eventPrinter) print(view support.View, outcome support.FetchOutcome) error {
	if outcome.Result.AgentJoined {
		if err := p.emit(watchEvent{Type: "agent_joined"}); err != nil {
			return err
		}
	}
	// Entries of a conversation that just ended have moved to the archive.
	for _, entry := range view.Archived {
		if err := p.entry(entry); err != nil {
			return err
		}
	}
	for _, entry := range view.Active {
		if err := p.entry(entry.Entry); err != nil {
			return err
		}
	}
	if outcome.Transcript != nil {
		return p.emit(watchEvent{Type: "session_ended", TranscriptID: outcome.Transcript.ID})
	}
	return nil
}

func (p *eventPrinter) entry(entry types.Entry) error {
	key := entry.Key()
	if _, ok := p.seen[key]; ok {
		return nil
	}
	p.seen[key] = struct{}{}
	return p.emit(watchEvent{Type: "message", Entry: &entry})
}

func (p *eventPrinter) emit(event watchEvent) error {
	if p.json {
		return json.NewEncoder(p.out).Encode(event)
	}
	var err error
	switch event.Type {
	case "agent_joined":
		_, err = fmt.Fprintln(p.out, "-- agent connected")
	case "session_ended":
		_, err = fmt.Fprintf(p.out, "-- conversation ended (transcript %s)\n", event.TranscriptID)
	case "message":
		_, err = fmt.Fprintln(p.out, formatEntryLine(*event.Entry))
	}
	return err
}

func formatEntryLine(entry types.Entry) string {
	who := "support"
	switch {
	case entry.IsEphemeral():
		who = "assistant"
	case entry.Sender == types.SenderCustomer:
		who = "you"
	}
	stamp := "--:--"
	if !entry.CreatedAt.IsZero() {
		stamp = entry.CreatedAt.Local().Format("15:04")
	}
	return fmt.Sprintf("[%s] %s: %s", stamp, who, strings.TrimSpace(entry.Text))
}
