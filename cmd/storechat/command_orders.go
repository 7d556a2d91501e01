package main

import (
	"encoding/json"
	"flag"
	"io"

	"storechat/internal/types"
)

type OrdersCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig configLoader
	newClient  clientFactory
}

func NewOrdersCommand(stdout, stderr io.Writer, loadConfig configLoader, newClient clientFactory) *OrdersCommand {
	return &OrdersCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
		newClient:  newClient,
	}
}

func (c *OrdersCommand) Run(args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
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
	orders, err := backend.ListOrders(ctx)
	if err != nil {
		return err
	}
	if *jsonOut {
		if orders == nil {
			orders = []types.Order{}
		}
		return json.NewEncoder(c.stdout).Encode(orders)
	}
	printOrders(c.stdout, orders)
	return nil
}
