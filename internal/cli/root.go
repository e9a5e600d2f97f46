// Package cli implements the taskctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yukikurage/task-sphere/internal/client"
)

// DefaultServer is used when neither --server nor a saved session names one.
const DefaultServer = "http://localhost:8080"

type options struct {
	server      string
	sessionPath string
}

// app is the per-invocation state shared by subcommands.
type app struct {
	sessionPath string
	session     *Session
	client      *client.Client
}

func (o *options) open() (*app, error) {
	path := o.sessionPath
	if path == "" {
		var err error
		if path, err = DefaultSessionPath(); err != nil {
			return nil, err
		}
	}

	session, err := LoadSession(path)
	if err != nil {
		return nil, err
	}

	server := o.server
	if server == "" {
		server = session.Server
	}
	if server == "" {
		server = DefaultServer
	}

	c, err := client.New(server)
	if err != nil {
		return nil, err
	}
	// A token is only valid for the server that issued it.
	if session.Token != "" && session.Server == c.BaseURL() {
		c.SetToken(session.Token)
	}

	return &app{sessionPath: path, session: session, client: c}, nil
}

// save records the client's current server and token.
func (a *app) save() error {
	a.session.Server = a.client.BaseURL()
	a.session.Token = a.client.Token()
	if a.session.Token == "" {
		a.session.Email = ""
	}
	return a.session.Save(a.sessionPath)
}

// NewRootCmd builds the taskctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage task-sphere tasks from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.server, "server", os.Getenv("TASKCTL_SERVER"), "Server base URL")
	cmd.PersistentFlags().StringVar(&opts.sessionPath, "session", os.Getenv("TASKCTL_SESSION"), "Session file path")

	cmd.AddCommand(
		signupCmd(opts),
		loginCmd(opts),
		logoutCmd(opts),
		whoamiCmd(opts),
		listCmd(opts),
		addCmd(opts),
		doneCmd(opts),
		editCmd(opts),
		rmCmd(opts),
		moveCmd(opts),
		suggestCmd(opts),
	)

	return cmd
}

// Execute runs taskctl with os.Args.
func Execute(ctx context.Context) error {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
