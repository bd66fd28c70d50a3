package web

import (
	"github.com/custodia-labs/aobun/internal/core/ports/driven"
	"github.com/custodia-labs/aobun/internal/core/ports/driving"
)

// Ports aggregates the port interfaces required by the web server.
type Ports struct {
	// Conversion converts uploads.
	Conversion driving.ConversionService

	// Results holds artifacts between conversion and download.
	Results driven.ResultStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Conversion == nil {
		return ErrMissingConversionService
	}
	if p.Results == nil {
		return ErrMissingResultStore
	}
	return nil
}
