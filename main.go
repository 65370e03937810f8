package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"

	"flight-insurance/app"
	"flight-insurance/config"
	"flight-insurance/types"

	"github.com/sirupsen/logrus"
)

var flights = []types.Flight{
	{FlightID: 1, Departure: "NYC", Arrival: "LAX"},
	{FlightID: 2, Departure: "SFO", Arrival: "SEA"},
	{FlightID: 3, Departure: "MIA", Arrival: "ORD"},
}

type policy struct {
	provider string
	id       int64
	flight   types.Flight
	premium  int64
	coverage int64
}

func main() {
	err := start(context.Background())
	if errors.Is(err, config.ErrMissingEnv) {
		fmt.Fprintln(os.Stderr, config.ErrMissingEnv.Error())
		os.Exit(1)
	}
	if err != nil {
		logrus.WithError(err).Fatal("Scenario failed")
	}
}

func start(ctx context.Context) error {
	cfg, err := app.LoadConfig("FlightInsurance")
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, app.DefaultRoster(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return run(ctx, a)
}

func run(ctx context.Context, a *app.App) error {
	d := a.Dispatcher

	policies := []policy{
		{provider: "Aaron", id: 1, flight: flights[0], premium: 5, coverage: 200},
		{provider: "Bella", id: 2, flight: flights[2], premium: 25, coverage: 400},
		{provider: "Charlie", id: 3, flight: flights[1], premium: 50, coverage: 500},
		{provider: "Diana", id: 4, flight: flights[1], premium: 40, coverage: 500},
		{provider: "Ethan", id: 5, flight: flights[0], premium: 20, coverage: 200},
		{provider: "Fiona", id: 6, flight: flights[0], premium: 15, coverage: 200},
	}
	for _, p := range policies {
		logrus.Infof("- %s creating policy %d for flight %d (%s -> %s)", p.provider, p.id, p.flight.FlightID, p.flight.Departure, p.flight.Arrival)
		if _, err := d.CreatePolicy(ctx, p.provider,
			big.NewInt(p.id), big.NewInt(p.flight.FlightID), big.NewInt(p.premium), big.NewInt(p.coverage)); err != nil {
			return err
		}
	}

	// policy 1 has the lowest premium on flight 1
	_, err := d.BuyPolicy(ctx, "Alice", big.NewInt(flights[0].FlightID))
	return err
}
