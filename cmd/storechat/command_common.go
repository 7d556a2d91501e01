package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"

	"storechat/internal/support"
	"storechat/internal/types"
)

const (
	version        = "dev"
	tableTextWidth = 60
)

func printMessages(output io.Writer, messages []types.Message) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tSENDER\tSTATUS\tORDER\tCREATED\tTEXT")
	for _, msg := range messages {
		order := "-"
		if msg.OrderID != nil {
			order = fmt.Sprintf("%d", *msg.OrderID)
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\n", msg.ID, msg.Sender, msg.Status, order, formatStamp(msg.CreatedAt), tableText(msg.Text))
	}
	_ = writer.Flush()
}

func printOrders(output io.Writer, orders []types.Order) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "NUMBER\tID\tSTATUS\tPAYMENT\tTOTAL\tTRACKING")
	for _, order := range orders {
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\t%s\t%s\n",
			order.DisplayNumber(),
			order.ID,
			dash(order.Status),
			dash(order.PaymentStatus),
			support.FormatTotal(order),
			dash(order.TrackingNumber),
		)
	}
	_ = writer.Flush()
}

func printTranscripts(output io.Writer, transcripts []types.Transcript) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tENDED\tMESSAGES\tFIRST")
	for _, transcript := range transcripts {
		first := ""
		if len(transcript.Entries) > 0 {
			first = transcript.Entries[0].Text
		}
		fmt.Fprintf(writer, "%s\t%s\t%d\t%s\n",
			transcript.ID,
			formatStamp(transcript.EndedAt),
			len(transcript.Entries),
			tableText(first),
		)
	}
	_ = writer.Flush()
}

// tableText flattens text to one line and caps its display width.
func tableText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return runewidth.Truncate(text, tableTextWidth, "...")
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

type VersionCommand struct {
	stdout  io.Writer
	version string
}

func NewVersionCommand(stdout io.Writer, version string) *VersionCommand {
	return &VersionCommand{stdout: stdout, version: version}
}

func (c *VersionCommand) Run([]string) error {
	_, err := fmt.Fprintln(c.stdout, c.version)
	return err
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
