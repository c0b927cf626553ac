package world

import (
	"log"

	"overviewer.app/internal/save/dimensions"
)

type options struct {
	dims     dimensions.Config
	observer Observer
	logger   *log.Logger
	// rel is the regionset directory relative to the world root; set by World.
	rel string
}

type Option func(*options)

// WithDimensions sets the scan and naming policy.
func WithDimensions(cfg dimensions.Config) Option {
	return func(o *options) { o.dims = cfg }
}

// WithObserver receives a lookup outcome for every chunk query.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLogger enables logging of discovery and corrupt chunks.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func withRel(rel string) Option {
	return func(o *options) { o.rel = rel }
}

func buildOptions(opts []Option) options {
	o := options{
		dims:     dimensions.Default(),
		observer: nopObserver{},
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (o options) logf(format string, args ...any) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
	}
}
