package tools

import (
	"context"
)

// HotelSearcher performs hotel lookups. Implementations validate their input
// and return *errors.AdapterError on provider failure; no matches is a
// successful, empty result.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, in HotelsInput) (*HotelResults, error)
}

// FlightSearcher performs flight lookups with the same error contract as
// HotelSearcher.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, in FlightsInput) (*FlightResults, error)
}

// Searcher is a provider serving both lookups
type Searcher interface {
	HotelSearcher
	FlightSearcher
}
