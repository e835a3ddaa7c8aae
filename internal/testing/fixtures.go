package testing

import (
	"context"
	"sync"
	"time"

	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/tools"
)

// ParisTrip is the form used across planner scenarios
func ParisTrip() session.Context {
	return session.Context{
		Origin:      "Madrid",
		Destination: "Paris",
		StartDate:   "2025-07-01",
		EndDate:     "2025-07-05",
		Budget:      session.BudgetLow,
		Adults:      session.IntPtr(2),
		Children:    session.IntPtr(0),
		Interests:   "museums, food",
	}
}

// SampleHotelResults returns a small hotel result set for query
func SampleHotelResults(query string) *tools.HotelResults {
	return &tools.HotelResults{
		Query:    query,
		Currency: "EUR",
		Properties: []tools.HotelProperty{
			{Name: "Hotel Lumière", Rating: 4.2, Reviews: 812, HotelClass: 2, PricePerNight: "€84", TotalPrice: "€337", Link: "https://example.com/lumiere"},
			{Name: "Le Petit Marais", Rating: 4.0, Reviews: 405, HotelClass: 2, PricePerNight: "€91", TotalPrice: "€364"},
		},
	}
}

// SampleFlightResults returns a single best itinerary between two airports
func SampleFlightResults(from, to string) *tools.FlightResults {
	return &tools.FlightResults{
		DepartureAirport: from,
		ArrivalAirport:   to,
		Currency:         "EUR",
		Best: []tools.FlightOption{{
			Airline:     "Iberia",
			Price:       142,
			DurationMin: 125,
			Legs: []tools.FlightLeg{{
				From: from, To: to,
				Depart: "2025-07-01 08:05", Arrive: "2025-07-01 10:10",
				Airline: "Iberia", FlightNumber: "IB 3436",
			}},
		}},
	}
}

// HotelStep scripts one hotel lookup outcome
type HotelStep struct {
	Result *tools.HotelResults
	Err    error
	Delay  time.Duration
}

// FlightStep scripts one flight lookup outcome
type FlightStep struct {
	Result *tools.FlightResults
	Err    error
	Delay  time.Duration
}

// FakeSearcher implements tools.Searcher with scripted outcomes. Calls past
// the end of a script reuse its last step; with no script, sample results
// are returned.
type FakeSearcher struct {
	mu           sync.Mutex
	HotelSteps   []HotelStep
	FlightSteps  []FlightStep
	HotelInputs  []tools.HotelsInput
	FlightInputs []tools.FlightsInput
}

// NewFakeSearcher creates a searcher returning sample results
func NewFakeSearcher() *FakeSearcher {
	return &FakeSearcher{}
}

// SearchHotels implements tools.HotelSearcher
func (f *FakeSearcher) SearchHotels(ctx context.Context, in tools.HotelsInput) (*tools.HotelResults, error) {
	f.mu.Lock()
	n := len(f.HotelInputs)
	f.HotelInputs = append(f.HotelInputs, in)
	step := HotelStep{Result: SampleHotelResults(in.Query)}
	if len(f.HotelSteps) > 0 {
		step = f.HotelSteps[min(n, len(f.HotelSteps)-1)]
	}
	f.mu.Unlock()

	if err := wait(ctx, step.Delay); err != nil {
		return nil, err
	}
	return step.Result, step.Err
}

// SearchFlights implements tools.FlightSearcher
func (f *FakeSearcher) SearchFlights(ctx context.Context, in tools.FlightsInput) (*tools.FlightResults, error) {
	f.mu.Lock()
	n := len(f.FlightInputs)
	f.FlightInputs = append(f.FlightInputs, in)
	step := FlightStep{Result: SampleFlightResults(in.DepartureAirport, in.ArrivalAirport)}
	if len(f.FlightSteps) > 0 {
		step = f.FlightSteps[min(n, len(f.FlightSteps)-1)]
	}
	f.mu.Unlock()

	if err := wait(ctx, step.Delay); err != nil {
		return nil, err
	}
	return step.Result, step.Err
}

// HotelCalls returns the inputs of every hotel lookup so far
func (f *FakeSearcher) HotelCalls() []tools.HotelsInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tools.HotelsInput(nil), f.HotelInputs...)
}

// FlightCalls returns the inputs of every flight lookup so far
func (f *FakeSearcher) FlightCalls() []tools.FlightsInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tools.FlightsInput(nil), f.FlightInputs...)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
