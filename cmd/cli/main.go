package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/jwtly10/go-reqbench/internal/cli"
	"github.com/jwtly10/go-reqbench/internal/config"
	"github.com/mattn/go-isatty"
)

type watchCmd struct{}

func (c *watchCmd) Run(ctx context.Context, app *cli.App) error {
	return app.Watch(ctx)
}

type setCmd struct {
	Target string `arg:"" help:"Field to set, as <store>.<field> (e.g. request.url, response.body)"`
	Value  string `arg:"" help:"New value for the field"`
}

func (c *setCmd) Run(ctx context.Context, app *cli.App) error {
	return app.Set(ctx, c.Target, c.Value)
}

type saveCmd struct{}

func (c *saveCmd) Run(ctx context.Context, app *cli.App) error {
	return app.Save(ctx)
}

type historyCmd struct {
	Limit int `short:"n" default:"20" help:"Maximum number of saved requests to list"`
}

func (c *historyCmd) Run(ctx context.Context, app *cli.App) error {
	return app.History(ctx, c.Limit)
}

type restoreCmd struct {
	ID string `arg:"" help:"History entry to load back into the request"`
}

func (c *restoreCmd) Run(ctx context.Context, app *cli.App) error {
	return app.Restore(ctx, c.ID)
}

func main() {
	var root struct {
		Server string `default:"http://localhost:8001" env:"REQBENCH_SERVER_URL" help:"reqbench server URL"`
		Debug  bool   `help:"Write debug logs to ~/.reqbench/logs"`

		Watch   watchCmd   `cmd:"" default:"1" help:"Show the request and response live"`
		Set     setCmd     `cmd:"" help:"Set a single request or response field"`
		Save    saveCmd    `cmd:"" help:"Save the current request to history"`
		History historyCmd `cmd:"" help:"List saved requests, newest first"`
		Restore restoreCmd `cmd:"" help:"Load a saved request back into the workbench"`
	}

	cliCtx := kong.Parse(&root,
		kong.Name("reqbench"),
		kong.Description("Inspect and edit a reqbench workbench from the terminal."),
		kong.UsageOnError(),
	)

	logger, err := cli.SetupLogger(root.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := &config.ClientConfig{ServerURL: root.Server}
	app := cli.NewApp(cfg, os.Stdout, isatty.IsTerminal(os.Stdout.Fd()), logger)

	cliCtx.BindTo(ctx, (*context.Context)(nil))
	err = cliCtx.Run(app)
	if err != nil {
		logger.Error("command failed", "command", cliCtx.Command(), "error", err)
	}
	cliCtx.FatalIfErrorf(err)
}
