// Command schedulectl is the operator CLI of the course schedule service:
// schema migrations, schedule copying, deadline checks, task disabling and
// certificate generation against the configured storage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(ctx).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "schedulectl: %v\n", err)
		os.Exit(1)
	}
}

func newApp(ctx context.Context) *cli.App {
	app := cli.NewApp()
	app.Name = "schedulectl"
	app.HelpName = "schedulectl"
	app.Usage = "manage course schedules"
	app.UsageText = "schedulectl <command> [arguments...]"
	app.Version = version
	app.Commands = []cli.Command{
		{
			Name:   "migrate",
			Usage:  "apply pending database migrations",
			Action: withContainer(ctx, migrate),
			Flags:  migrateFlags,
		},
		{
			Name:   "copy",
			Usage:  "copy tasks and events from one course to another",
			Action: withContainer(ctx, copySchedule),
			Flags:  copyFlags,
		},
		{
			Name:    "pending",
			Aliases: []string{"p"},
			Usage:   "list tasks whose deadline falls within the next hours",
			Action:  withContainer(ctx, pending),
			Flags:   pendingFlags,
		},
		{
			Name:   "disable",
			Usage:  "disable a course task",
			Action: withContainer(ctx, disable),
			Flags:  disableFlags,
		},
		{
			Name:   "certificates",
			Usage:  "issue certificates for a course",
			Action: withContainer(ctx, certificates),
			Flags:  certificateFlags,
		},
	}
	return app
}
