package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const transcriptTimeout = 5 * time.Second

type TranscriptsCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	openStore storeFactory
}

func NewTranscriptsCommand(stdout, stderr io.Writer, openStore storeFactory) *TranscriptsCommand {
	return &TranscriptsCommand{
		stdout:    stdout,
		stderr:    stderr,
		openStore: openStore,
	}
}

func (c *TranscriptsCommand) Run(args []string) error {
	if len(args) == 0 {
		return c.list(nil)
	}
	switch args[0] {
	case "list", "ls":
		return c.list(args[1:])
	case "show":
		return c.show(args[1:])
	case "delete", "rm":
		return c.delete(args[1:])
	}
	if strings.HasPrefix(args[0], "-") {
		return c.list(args)
	}
	return fmt.Errorf("unknown transcripts subcommand: %s", args[0])
}

func (c *TranscriptsCommand) list(args []string) error {
	fs := flag.NewFlagSet("transcripts list", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	limit := fs.Int("limit", 20, "maximum transcripts to list (0 for all)")
	jsonOut := fs.Bool("json", false, "print json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	repo, err := c.openStore(true)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			printTranscripts(c.stdout, nil)
			return nil
		}
		return err
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), transcriptTimeout)
	defer cancel()
	transcripts, err := repo.Transcripts().List(ctx, *limit)
	if err != nil {
		return err
	}
	if *jsonOut {
		return json.NewEncoder(c.stdout).Encode(transcripts)
	}
	printTranscripts(c.stdout, transcripts)
	return nil
}

func (c *TranscriptsCommand) show(args []string) error {
	fs := flag.NewFlagSet("transcripts show", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	jsonOut := fs.Bool("json", false, "print json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("transcripts show requires a transcript id")
	}
	id := strings.TrimSpace(fs.Arg(0))

	repo, err := c.openStore(true)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("transcript %s not found", id)
		}
		return err
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), transcriptTimeout)
	defer cancel()
	transcript, ok, err := repo.Transcripts().Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("transcript %s not found", id)
	}
	if *jsonOut {
		return json.NewEncoder(c.stdout).Encode(transcript)
	}
	fmt.Fprintf(c.stdout, "transcript %s (ended %s)\n", transcript.ID, transcript.EndedAt.Local().Format("2006-01-02 15:04"))
	for _, entry := range transcript.Entries {
		fmt.Fprintln(c.stdout, formatEntryLine(entry))
	}
	return nil
}

func (c *TranscriptsCommand) delete(args []string) error {
	fs := flag.NewFlagSet("transcripts delete", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("transcripts delete requires a transcript id")
	}

	repo, err := c.openStore(false)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), transcriptTimeout)
	defer cancel()
	for _, id := range fs.Args() {
		id = strings.TrimSpace(id)
		if err := repo.Transcripts().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		fmt.Fprintf(c.stdout, "deleted %s\n", id)
	}
	return nil
}
