package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"

	"flight-insurance/app"
	"flight-insurance/config"
	"flight-insurance/dispatcher"

	"github.com/sirupsen/logrus"
)

func main() {
	err := start(context.Background())
	if errors.Is(err, config.ErrMissingEnv) {
		fmt.Fprintln(os.Stderr, config.ErrMissingEnv.Error())
		os.Exit(1)
	}
	if err != nil {
		logrus.WithError(err).Fatal("Walnut round failed")
	}
}

func start(ctx context.Context) error {
	cfg, err := app.LoadConfig("Walnut")
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, app.DefaultRoster(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return run(ctx, a.Dispatcher)
}

// invoker is the part of the dispatcher a round needs.
type invoker interface {
	Invoke(ctx context.Context, operation, actor string, args ...interface{}) (*dispatcher.Result, error)
	Look(ctx context.Context, player string) (*dispatcher.Result, error)
}

type step struct {
	op     string
	player string
	args   []interface{}
}

func run(ctx context.Context, d invoker) error {
	steps := []step{
		{op: dispatcher.OpReset, player: "Alice"},
		{op: dispatcher.OpShake, player: "Alice", args: []interface{}{big.NewInt(2)}},
		{op: dispatcher.OpHit, player: "Alice"},
		{op: dispatcher.OpShake, player: "Alice", args: []interface{}{big.NewInt(4)}},
		{op: dispatcher.OpHit, player: "Alice"},
		{op: dispatcher.OpShake, player: "Alice", args: []interface{}{big.NewInt(1)}},
		{op: dispatcher.OpHit, player: "Alice"},
		{op: dispatcher.OpLook, player: "Alice"},
		{op: dispatcher.OpReset, player: "Bob"},
		{op: dispatcher.OpHit, player: "Bob"},
		{op: dispatcher.OpShake, player: "Bob", args: []interface{}{big.NewInt(1)}},
		{op: dispatcher.OpHit, player: "Bob"},
		{op: dispatcher.OpShake, player: "Bob", args: []interface{}{big.NewInt(1)}},
		{op: dispatcher.OpHit, player: "Bob"},
	}
	for _, s := range steps {
		if _, err := d.Invoke(ctx, s.op, s.player, s.args...); err != nil {
			return err
		}
	}

	// Bob may look before the shell is cracked; the contract rejects that.
	if _, err := d.Look(ctx, "Bob"); err != nil {
		logrus.WithError(err).Error("Error looking at the number")
	}
	return nil
}
