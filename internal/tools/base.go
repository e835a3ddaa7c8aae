package tools

import (
	"context"
	"fmt"
)

// Registry dispatches validated requests to the provider for their kind
type Registry struct {
	Hotels  HotelSearcher
	Flights FlightSearcher
}

// NewRegistry creates a registry backed by one provider for both lookups
func NewRegistry(s Searcher) *Registry {
	return &Registry{Hotels: s, Flights: s}
}

// Execute runs req against its adapter and returns the normalized result
func (r *Registry) Execute(ctx context.Context, req Request) (interface{}, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch req.Kind {
	case KindHotels:
		if r.Hotels == nil {
			return nil, fmt.Errorf("no hotel provider configured")
		}
		return r.Hotels.SearchHotels(ctx, *req.Hotels)
	case KindFlights:
		if r.Flights == nil {
			return nil, fmt.Errorf("no flight provider configured")
		}
		return r.Flights.SearchFlights(ctx, *req.Flights)
	default:
		return nil, fmt.Errorf("unsupported tool %q", req.Kind)
	}
}
