package main

import (
	"fmt"
	"os"
)

const usageText = `storechat is the storefront support chat client.

Usage:
  storechat <command> [flags]

Commands:
  chat         open the support chat widget (terminal UI)
  watch        poll the conversation and print new messages
  messages     list messages in the conversation
  send         send a message to support
  close        close messages by id, or the conversation with --conversation
  orders       list your orders
  transcripts  list, show or delete saved transcripts
  login        store a session token
  logout       remove the stored session token
  config       print configuration (effective or defaults)
  version      print the build version
  help         show help

Flags:
  -h, --help   show help

Environment:
  STORECHAT_API_URL     backend base url
  STORECHAT_TOKEN       session token (overrides the stored token)
  STORECHAT_LOG_LEVEL   debug, info, warn or error

Examples:
  storechat login --token <token> --email me@example.com
  storechat chat
  storechat send --order-id 42 "Where is my parcel?"
  storechat close --conversation
  storechat transcripts show <id>
  storechat config --default --format json
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
