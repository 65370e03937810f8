package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"flight-insurance/blockchain"
	"flight-insurance/contracts"
	"flight-insurance/dispatcher"
	"flight-insurance/registry"
	"flight-insurance/storage"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// Registry exposes the configured actors and what they are bound to.
// *registry.Registry satisfies it.
type Registry interface {
	Actors() []*registry.Actor
	Contract() *contracts.Contract
	Network() blockchain.Network
}

// CallLog is the read side of the call journal.
type CallLog interface {
	All() ([]storage.CallRecord, error)
	ByActor(actor string) ([]storage.CallRecord, error)
}

type Server struct {
	dispatcher *dispatcher.Dispatcher
	registry   Registry
	journal    CallLog
}

// NewServer wires the HTTP surface. journal may be nil, which disables /calls.
func NewServer(d *dispatcher.Dispatcher, reg Registry, journal CallLog) *Server {
	return &Server{dispatcher: d, registry: reg, journal: journal}
}

// Handler returns the routes wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	})
	return c.Handler(s.routes())
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("Starting server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
