// Package geo produces one-shot position fixes. Callers re-invoke
// RequestCurrentPosition to refresh; there is no continuous stream.
package geo

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/nearby/internal/domain"
	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/metrics"
)

type Status string

const (
	StatusGranted     Status = "granted"
	StatusDenied      Status = "denied"
	StatusUnavailable Status = "unavailable"
)

var (
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
)

// Options mirror the platform request options.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
}

func DefaultOptions() Options {
	return Options{HighAccuracy: true, Timeout: 5 * time.Second}
}

// Provider is the underlying location source. It may ignore ctx; the
// adapter never waits past the timeout either way.
type Provider interface {
	CurrentPosition(ctx context.Context, opts Options) (domain.Location, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, opts Options) (domain.Location, error)

func (f ProviderFunc) CurrentPosition(ctx context.Context, opts Options) (domain.Location, error) {
	return f(ctx, opts)
}

// Position is the outcome of one request. Location is set only when
// Status is granted.
type Position struct {
	Status   Status           `json:"status"`
	Location *domain.Location `json:"location,omitempty"`
}

func (p Position) Granted() bool { return p.Status == StatusGranted && p.Location != nil }

type Adapter struct {
	provider Provider
	opts     Options
	logger   logger.Logger
}

func New(p Provider, opts Options, log logger.Logger) *Adapter {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{provider: p, opts: opts, logger: log}
}

type fix struct {
	loc domain.Location
	err error
}

// RequestCurrentPosition asks the provider for a fix and resolves to
// unavailable if it has not answered within the configured timeout. Every
// call asks the provider; fixes are never reused.
func (a *Adapter) RequestCurrentPosition(ctx context.Context) Position {
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	// Buffered so a provider that answers late never blocks forever.
	ch := make(chan fix, 1)
	go func() {
		loc, err := a.provider.CurrentPosition(ctx, a.opts)
		ch <- fix{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		a.logger.Debug("position request timed out", logger.Duration("timeout", a.opts.Timeout))
		return a.result(Position{Status: StatusUnavailable})
	case f := <-ch:
		switch {
		case errors.Is(f.err, ErrPermissionDenied):
			return a.result(Position{Status: StatusDenied})
		case f.err != nil:
			a.logger.Debug("position unavailable", logger.Error(f.err))
			return a.result(Position{Status: StatusUnavailable})
		}
		if err := Validate(f.loc); err != nil {
			a.logger.Debug("provider returned an invalid fix", logger.Error(err))
			return a.result(Position{Status: StatusUnavailable})
		}
		loc := f.loc
		return a.result(Position{Status: StatusGranted, Location: &loc})
	}
}

func (a *Adapter) result(p Position) Position {
	metrics.GeoRequests.WithLabelValues(string(p.Status)).Inc()
	return p
}
