package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"flight-insurance/api"
	"flight-insurance/app"
	"flight-insurance/config"
	"flight-insurance/dispatcher"
	"flight-insurance/storage"
	"flight-insurance/types"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		logrus.WithError(err).Fatal("flightctl failed")
	}
}

func newApp() *cli.App {
	cmds := operationCommands()
	cmds = append(cmds,
		&cli.Command{
			Name:  "actors",
			Usage: "list configured actors and their accounts",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "provider or passenger"},
			},
			Action: listActors,
		},
		&cli.Command{
			Name:  "calls",
			Usage: "print the local call journal",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "actor", Aliases: []string{"a"}, Usage: "only calls made by `NAME`"},
			},
			Action: listCalls,
		},
		&cli.Command{
			Name:   "serve",
			Usage:  "serve the JSON API on HTTP_ADDR",
			Action: serve,
		},
	)

	return &cli.App{
		Name:     "flightctl",
		Usage:    "drive the flight insurance contract as any configured actor",
		Commands: cmds,
	}
}

func operationCommands() []*cli.Command {
	ops := dispatcher.Operations()
	cmds := make([]*cli.Command, 0, len(ops))
	for _, op := range ops {
		op := op
		cmds = append(cmds, &cli.Command{
			Name:      op.Name,
			Usage:     fmt.Sprintf("%s %s() as a %s", op.Kind, op.Method, op.Group),
			ArgsUsage: strings.Join(op.Params, " "),
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "actor", Aliases: []string{"a"}, Usage: "acting " + string(op.Group), Required: true},
			},
			Action: func(c *cli.Context) error {
				a, err := setup(c.Context)
				if err != nil {
					return err
				}
				defer a.Close()

				res, err := a.Dispatcher.InvokeStrings(c.Context, op.Name, c.String("actor"), c.Args().Slice())
				if err != nil {
					return err
				}
				return printJSON(c, res)
			},
		})
	}
	return cmds
}

func loadConfig() (*config.Config, error) {
	cfg, err := app.LoadConfig("FlightInsurance")
	if errors.Is(err, config.ErrMissingEnv) {
		return nil, cli.Exit(config.ErrMissingEnv.Error(), 1)
	}
	return cfg, err
}

func setup(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, app.DefaultRoster(), nil)
}

type actorRow struct {
	Name    string `json:"name"`
	Group   string `json:"group"`
	Account string `json:"account"`
}

func listActors(c *cli.Context) error {
	var group types.Group
	if g := c.String("group"); g != "" {
		parsed, err := types.ParseGroup(g)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		group = parsed
	}

	a, err := setup(c.Context)
	if err != nil {
		return err
	}
	defer a.Close()

	rows := make([]actorRow, 0, len(a.Registry.Actors()))
	for _, actor := range a.Registry.Actors() {
		if group != "" && actor.Group != group {
			continue
		}
		rows = append(rows, actorRow{Name: actor.Name, Group: string(actor.Group), Account: actor.Client.Account.Hex()})
	}
	return printJSON(c, rows)
}

func listCalls(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.JournalPath == "" {
		return cli.Exit("JOURNAL_PATH is not set", 1)
	}

	journal, err := storage.Open(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	var recs []storage.CallRecord
	if actor := c.String("actor"); actor != "" {
		recs, err = journal.ByActor(actor)
	} else {
		recs, err = journal.All()
	}
	if err != nil {
		return err
	}
	return printJSON(c, recs)
}

func serve(c *cli.Context) error {
	a, err := setup(c.Context)
	if err != nil {
		return err
	}
	defer a.Close()

	var calls api.CallLog
	if a.Journal != nil {
		calls = a.Journal
	}
	return api.NewServer(a.Dispatcher, a.Registry, calls).Serve(c.Context, a.Config.HTTPAddr)
}

func printJSON(c *cli.Context, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}
