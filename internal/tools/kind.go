package tools

import (
	"strings"
)

// Kind identifies one of the registered lookup tools
type Kind string

const (
	KindHotels  Kind = "hotels_finder"
	KindFlights Kind = "flights_finder"
)

// Kinds lists every registered tool in declaration order
var Kinds = []Kind{KindHotels, KindFlights}

// ParseKind maps a tool name from the model onto a registered Kind
func ParseKind(name string) (Kind, bool) {
	switch Kind(strings.TrimSpace(name)) {
	case KindHotels:
		return KindHotels, true
	case KindFlights:
		return KindFlights, true
	default:
		return "", false
	}
}

// Request is a validated, fully populated tool invocation. Exactly one of
// Hotels or Flights is set, matching Kind.
type Request struct {
	Kind    Kind
	Hotels  *HotelsInput
	Flights *FlightsInput
}

// HotelRequest wraps in as a Request
func HotelRequest(in HotelsInput) Request {
	return Request{Kind: KindHotels, Hotels: &in}
}

// FlightRequest wraps in as a Request
func FlightRequest(in FlightsInput) Request {
	return Request{Kind: KindFlights, Flights: &in}
}

// Validate re-checks the variant carried by the request
func (r Request) Validate() error {
	switch r.Kind {
	case KindHotels:
		if r.Hotels == nil || r.Flights != nil {
			return errMismatchedVariant(r.Kind)
		}
		return r.Hotels.Validate()
	case KindFlights:
		if r.Flights == nil || r.Hotels != nil {
			return errMismatchedVariant(r.Kind)
		}
		return r.Flights.Validate()
	default:
		return errMismatchedVariant(r.Kind)
	}
}
