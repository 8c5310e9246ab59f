package query

import "github.com/cockroachdb/errors"

var (
	// ErrInsufficientFacets is returned when no facet carries usable input
	ErrInsufficientFacets = errors.New("cannot build a query: no usable facets")

	// ErrMissingFacet is returned when a guided level lacks a required facet
	ErrMissingFacet = errors.New("missing required facet")
)
