package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultProbeTimeout = 3 * time.Second

// Readiness is a connector annotated with whether it can be used right now.
type Readiness struct {
	Connector Connector
	Ready     bool
}

// Prober determines connector readiness.
type Prober struct {
	timeout  time.Duration
	recorder Recorder
	logger   zerolog.Logger
}

// NewProber creates a prober. Every probe of a single connector is bounded by timeout.
func NewProber(timeout time.Duration, recorder Recorder, logger zerolog.Logger) *Prober {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Prober{
		timeout:  timeout,
		recorder: recorder,
		logger:   logger.With().Str(logging.FieldModule, "prober").Logger(),
	}
}

// Probe checks all connectors concurrently. The result has the same length and order
// as the input. A failing connector is reported as not ready; an error is returned
// only when the batch as a whole could not complete (e.g. ctx was cancelled).
func (p *Prober) Probe(ctx context.Context, connectors []Connector) ([]Readiness, error) {
	var (
		results             = make([]Readiness, len(connectors))
		errGroup, ctxShared = errgroup.WithContext(ctx)
	)

	for i, c := range connectors {
		errGroup.Go(func() error {
			ready := p.probeOne(ctxShared, c)
			results[i] = Readiness{Connector: c, Ready: ready}
			p.recorder.ProbeCompleted(c.ID(), ready)

			return nil
		})
	}

	if err := errGroup.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to probe connectors")
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "connector probing aborted")
	}

	return results, nil
}

func (p *Prober) probeOne(ctx context.Context, c Connector) (ready bool) {
	logger := p.logger.With().Str(logging.FieldConnector, c.ID()).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Debug().Str("panic", fmt.Sprint(r)).Msg("Connector probe panicked")
			ready = false
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// remote pairing does not depend on anything installed locally
	if qr, ok := c.(QRConnector); ok {
		return qr.Configured()
	}

	if auth, ok := c.(Authorizer); ok {
		authorized, err := auth.IsAuthorized(ctx)
		switch {
		case err != nil:
			logger.Debug().Err(err).Msg("isAuthorized probe failed")
		case authorized:
			return true
		}
	}

	src, ok := c.(ProviderSource)
	if !ok {
		return false
	}

	provider, err := src.Provider(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Provider probe failed")
		return false
	}

	return provider != nil
}
