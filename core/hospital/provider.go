// Package hospital resolves the destination hospital for a dispatch through
// an ordered chain of providers. Each provider is tried in turn until one
// yields a non-empty candidate list; the last provider in the chain is
// expected to always succeed.
package hospital

import (
	"context"
	"errors"

	"github.com/swiftresponder/swiftresponder/core/events"
	"github.com/swiftresponder/swiftresponder/core/logger"
	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/internal/eventbus"
)

// Query describes a hospital search.
type Query struct {
	Location   model.LatLng
	RadiusM    int
	Needs      string
	Severity   model.Severity
	PatientAge int
}

// Provider yields ranked hospital candidates for a query.
type Provider interface {
	Name() string
	Find(ctx context.Context, q Query) ([]model.Hospital, error)
}

// ErrNoHospital is returned when every provider in the chain fails.
var ErrNoHospital = errors.New("hospital: no provider returned a candidate")

// Finder tries providers in order and returns the first non-empty result.
type Finder struct {
	providers []Provider
	log       logger.Logger
	bus       eventbus.EventBus
}

// NewFinder creates a Finder. bus may be nil.
func NewFinder(log logger.Logger, bus eventbus.EventBus, providers ...Provider) *Finder {
	return &Finder{providers: providers, log: log, bus: bus}
}

// Find returns the ranked candidates from the first provider that succeeds.
func (f *Finder) Find(ctx context.Context, q Query) ([]model.Hospital, error) {
	for _, p := range f.providers {
		hs, err := p.Find(ctx, q)
		if err == nil && len(hs) > 0 {
			f.log.Infof("hospital search via %s returned %d candidates", p.Name(), len(hs))
			return hs, nil
		}
		if err == nil {
			err = errors.New("empty result")
		}
		f.log.Warnf("hospital provider %s failed, trying next: %v", p.Name(), err)
		if f.bus != nil {
			f.bus.Publish(events.ProviderFallbackEvent{Provider: p.Name(), Err: err})
		}
	}
	return nil, ErrNoHospital
}

// FindBest returns the top candidate from the chain.
func (f *Finder) FindBest(ctx context.Context, q Query) (model.Hospital, error) {
	hs, err := f.Find(ctx, q)
	if err != nil {
		return model.Hospital{}, err
	}
	return hs[0], nil
}
