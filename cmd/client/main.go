package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"

	"github.com/nestjam/goto/internal/cli"
	"github.com/nestjam/goto/internal/client"
)

const requestTimeout = 10 * time.Second

func main() {
	args, err := cli.ParseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		exit(err)
	}

	path, err := cli.DefaultConfigPath()
	if err != nil {
		exit(err)
	}

	conf, err := cli.OpenOrCreateConfig(path)
	if err != nil {
		exit(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(cli.APIURL(args, conf), client.WithTimeout(requestTimeout))
	if err := cli.New(cli.NewOptions(args, conf), c, os.Stdout, nil).Run(ctx); err != nil {
		stop()
		exit(err)
	}
}

func exit(err error) {
	_, _ = color.New(color.FgRed).Fprintln(os.Stderr, err)
	os.Exit(1)
}
