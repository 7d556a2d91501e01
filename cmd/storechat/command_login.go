package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"storechat/internal/types"
)

type LoginCommand struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	tokens tokenFactory
}

func NewLoginCommand(stdout, stderr io.Writer, tokens tokenFactory) *LoginCommand {
	return &LoginCommand{
		stdout: stdout,
		stderr: stderr,
		stdin:  os.Stdin,
		tokens: tokens,
	}
}

func (c *LoginCommand) Run(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	token := fs.String("token", "", "session token (- reads it from stdin)")
	role := fs.String("role", string(types.RoleCustomer), "account role (customer|admin)")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	value := strings.TrimSpace(*token)
	if value == "-" {
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		value = strings.TrimSpace(line)
	}
	if value == "" {
		return errors.New("login requires --token")
	}
	accountRole := types.Role(strings.ToLower(strings.TrimSpace(*role)))
	if accountRole != types.RoleCustomer && accountRole != types.RoleAdmin {
		return fmt.Errorf("unknown role %q", *role)
	}

	tokens, err := c.tokens()
	if err != nil {
		return err
	}
	cred := types.Credential{Token: value, Role: accountRole, Email: strings.TrimSpace(*email)}
	if err := tokens.Save(cred); err != nil {
		return err
	}
	if cred.CanChat() {
		fmt.Fprintln(c.stdout, "logged in")
	} else {
		fmt.Fprintln(c.stdout, "logged in (support chat is not available to admin accounts)")
	}
	return nil
}

type LogoutCommand struct {
	stdout io.Writer
	stderr io.Writer
	tokens tokenFactory
}

func NewLogoutCommand(stdout, stderr io.Writer, tokens tokenFactory) *LogoutCommand {
	return &LogoutCommand{
		stdout: stdout,
		stderr: stderr,
		tokens: tokens,
	}
}

func (c *LogoutCommand) Run(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	tokens, err := c.tokens()
	if err != nil {
		return err
	}
	if err := tokens.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "logged out")
	return nil
}
